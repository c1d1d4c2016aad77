package parallel

// minRowsPerBand keeps bands large enough to amortize scheduling.
const minRowsPerBand = 16

// Rows calls fn over disjoint row bands [y0, y1) covering [0, height).
// With a nil pool, or for short images, fn runs once on the calling
// goroutine. Rows returns after every band has completed.
func Rows(pool *WorkerPool, height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	if pool == nil || !pool.IsRunning() || height < 2*minRowsPerBand {
		fn(0, height)
		return
	}

	bands := min(pool.Workers()*2, height/minRowsPerBand)
	rows := (height + bands - 1) / bands

	work := make([]func(), 0, bands)
	for y0 := 0; y0 < height; y0 += rows {
		y1 := min(y0+rows, height)
		work = append(work, func() { fn(y0, y1) })
	}
	pool.ExecuteAll(work)
}
