// Command dither renders every step of the dithering catalogues for one
// image and writes the results as PNG files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/internal/image"
)

func main() {
	var (
		input     = flag.String("in", "", "input image (png, jpeg, gif, bmp, tiff, webp)")
		outDir    = flag.String("out", "dithered", "output directory")
		width     = flag.Int("width", 400, "downscale wider images to this width (0 keeps the size)")
		mode      = flag.String("mode", "both", "catalogue to run: gray, color or both")
		levels    = flag.String("levels", "2,3,4", "color palette levels per axis, comma separated")
		workers   = flag.Int("workers", 0, "asset worker goroutines (0 = GOMAXPROCS)")
		blueLevel = flag.Int("bluenoise", dither.DefaultBlueNoiseLevel, "blue noise mask size as a power of two")
		seed      = flag.Uint64("seed", 0, "blue noise seed")
		lang      = flag.String("lang", "en", "language for step titles")
		linear    = flag.Bool("linear", false, "dither in linear light")
		rows      = flag.Bool("parallel", true, "split pointwise steps into row bands")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	dither.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	palette, err := parseLevels(*levels)
	if err != nil {
		log.Fatalf("Invalid -levels: %v", err)
	}
	modes, err := parseModes(*mode)
	if err != nil {
		log.Fatalf("Invalid -mode: %v", err)
	}
	tag, err := language.Parse(*lang)
	if err != nil {
		log.Fatalf("Invalid -lang: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []dither.Option{
		dither.WithWorkers(*workers),
		dither.WithBlueNoise(*blueLevel, 0, *seed),
		dither.WithPaletteLevels(palette...),
		dither.WithLanguage(tag),
		dither.WithLinearLight(*linear),
		dither.WithParallelRows(*rows),
	}
	if err := run(ctx, *input, *outDir, *width, modes, opts); err != nil {
		log.Printf("Failed: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, input, outDir string, width int, modes []dither.Mode, opts []dither.Option) error {
	img, err := decodeFile(input, width)
	if err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	p, err := dither.New(opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	n, err := render(ctx, p, img, modes, outDir)
	if err != nil {
		return err
	}
	log.Printf("Wrote %d images to %s (%dx%d)\n", n, outDir, img.Width, img.Height)
	return nil
}

// render runs every mode concurrently and writes each result as it
// arrives. It returns the number of files written.
func render(ctx context.Context, p *dither.Pipeline, img dither.Image, modes []dither.Mode, dir string) (int, error) {
	jobs, ctx := errgroup.WithContext(ctx)
	writes, wctx := errgroup.WithContext(ctx)
	writes.SetLimit(4)

	written := make(chan string, 256)
	for _, m := range modes {
		jobs.Go(func() error {
			return p.Process(ctx, dither.Job{ID: m.String(), Mode: m, Image: img}, func(e dither.Event) {
				if e.Type != dither.EventResult {
					return
				}
				name := filepath.Join(dir, fileName(e.JobID, e.ID))
				writes.Go(func() error {
					if err := wctx.Err(); err != nil {
						return err
					}
					if err := writePNG(name, e.Image); err != nil {
						return err
					}
					written <- name
					return nil
				})
			})
		})
	}

	count := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range written {
			count++
		}
	}()

	err := jobs.Wait()
	err = errors.Join(err, writes.Wait())
	close(written)
	<-done
	return count, err
}

var unsafeNameChars = strings.NewReplacer(":", "_", "/", "_")

func fileName(jobID, stepID string) string {
	return unsafeNameChars.Replace(jobID+"-"+stepID) + ".png"
}

func decodeFile(path string, maxWidth int) (dither.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return dither.Image{}, err
	}
	defer f.Close()
	return image.Decode(f, maxWidth)
}

func writePNG(path string, img dither.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return image.EncodePNG(f, img)
}

func parseLevels(s string) ([]int, error) {
	var levels []int
	for _, field := range strings.Split(s, ",") {
		l, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		if l < 2 || l > 255 {
			return nil, fmt.Errorf("level %d outside [2,255]", l)
		}
		levels = append(levels, l)
	}
	return levels, nil
}

func parseModes(s string) ([]dither.Mode, error) {
	switch s {
	case "gray":
		return []dither.Mode{dither.ModeGray}, nil
	case "color":
		return []dither.Mode{dither.ModeColor}, nil
	case "both":
		return []dither.Mode{dither.ModeGray, dither.ModeColor}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", s)
	}
}
