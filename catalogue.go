package dither

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/dither/internal/filter"
)

// Masks used by the catalogues.
var (
	grayBayerLevels  = []int{0, 1, 2, 3}
	colorBayerLevels = []int{1, 3}
)

// GrayCatalogue returns the binary steps of gray jobs, in run order.
func GrayCatalogue(tag language.Tag) []Step {
	p := message.NewPrinter(tag)

	steps := []Step{
		{ID: "quantized", Title: p.Sprintf("Quantized"), Method: MethodQuantize},
		{ID: "random", Title: p.Sprintf("Dithering"), Method: MethodRandom},
	}
	for _, level := range grayBayerLevels {
		steps = append(steps, Step{
			ID:     fmt.Sprintf("bayer-%d", level),
			Title:  p.Sprintf("Bayer Level %d", level+1),
			Method: MethodOrdered,
			Asset:  AssetKey{Kind: MaskBayer, Level: level},
		})
	}
	return append(steps,
		Step{ID: "2derrdiff", Title: p.Sprintf("Simple Error Diffusion"), Method: MethodDiffuse, Kernel: filter.Simple2D()},
		Step{ID: "floydsteinberg", Title: p.Sprintf("Floyd-Steinberg Diffusion"), Method: MethodDiffuse, Kernel: filter.FloydSteinberg()},
		Step{ID: "jjn", Title: p.Sprintf("Jarvis-Judice-Ninke Diffusion"), Method: MethodDiffuse, Kernel: filter.JarvisJudiceNinke()},
	)
}

// ColorCatalogue returns the palette steps of color jobs, in run order:
// one block per entry of levels, each using levels³ colors.
func ColorCatalogue(tag language.Tag, levels []int, blueNoiseLevel int) []Step {
	p := message.NewPrinter(tag)
	blue := AssetKey{Kind: MaskBlueNoise, Level: blueNoiseLevel}

	var steps []Step
	for _, l := range levels {
		l = min(max(l, 2), 255)
		n := l * l * l
		title := func(name string) string {
			return p.Sprintf("%s (%d colors)", name, n)
		}

		steps = append(steps,
			Step{ID: fmt.Sprintf("quantized:%d", n), Title: title("Quantized"), Method: MethodQuantize, Levels: l},
			Step{ID: fmt.Sprintf("dither:%d", n), Title: title("Dithering"), Method: MethodRandom, Levels: l},
		)
		for _, level := range colorBayerLevels {
			steps = append(steps, Step{
				ID:     fmt.Sprintf("bayer%d:%d", level, n),
				Title:  title(fmt.Sprintf("Bayer Level %d", level)),
				Method: MethodOrdered,
				Levels: l,
				Asset:  AssetKey{Kind: MaskBayer, Level: level},
			})
		}
		steps = append(steps,
			Step{ID: fmt.Sprintf("2ded:%d", n), Title: title("Simple Error Diffusion"), Method: MethodDiffuse, Levels: l, Kernel: filter.Simple2D()},
			Step{ID: fmt.Sprintf("fsed:%d", n), Title: title("Floyd-Steinberg Error Diffusion"), Method: MethodDiffuse, Levels: l, Kernel: filter.FloydSteinberg()},
			Step{ID: fmt.Sprintf("jjned:%d", n), Title: title("Jarvis-Judice-Ninke Error Diffusion"), Method: MethodDiffuse, Levels: l, Kernel: filter.JarvisJudiceNinke()},
			Step{ID: fmt.Sprintf("bluenoise:%d", n), Title: title("Blue Noise"), Method: MethodOrdered, Levels: l, Asset: blue},
		)
	}
	return steps
}

// assetKeys lists the distinct masks of steps in first-use order.
func assetKeys(steps []Step) []AssetKey {
	var keys []AssetKey
	seen := make(map[AssetKey]bool)
	for _, s := range steps {
		if s.Method != MethodOrdered || seen[s.Asset] {
			continue
		}
		seen[s.Asset] = true
		keys = append(keys, s.Asset)
	}
	return keys
}
