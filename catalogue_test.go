package dither

import (
	"slices"
	"testing"

	"golang.org/x/text/language"
)

func stepIDs(steps []Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID
	}
	return ids
}

func TestGrayCatalogue(t *testing.T) {
	steps := GrayCatalogue(language.English)

	wantIDs := []string{
		"quantized", "random", "bayer-0", "bayer-1", "bayer-2", "bayer-3",
		"2derrdiff", "floydsteinberg", "jjn",
	}
	if got := stepIDs(steps); !slices.Equal(got, wantIDs) {
		t.Fatalf("ids = %v, want %v", got, wantIDs)
	}

	wantTitles := map[string]string{
		"quantized":      "Quantized",
		"random":         "Dithering",
		"bayer-0":        "Bayer Level 1",
		"bayer-3":        "Bayer Level 4",
		"2derrdiff":      "Simple Error Diffusion",
		"floydsteinberg": "Floyd-Steinberg Diffusion",
		"jjn":            "Jarvis-Judice-Ninke Diffusion",
	}
	for _, s := range steps {
		if want, ok := wantTitles[s.ID]; ok && s.Title != want {
			t.Errorf("%s title = %q, want %q", s.ID, s.Title, want)
		}
		if s.Levels != 0 {
			t.Errorf("%s levels = %d, want binary", s.ID, s.Levels)
		}
	}
}

func TestColorCatalogue(t *testing.T) {
	steps := ColorCatalogue(language.English, DefaultPaletteLevels, 6)
	if len(steps) != 24 {
		t.Fatalf("len = %d, want 24", len(steps))
	}

	wantIDs := []string{
		"quantized:8", "dither:8", "bayer1:8", "bayer3:8", "2ded:8", "fsed:8", "jjned:8", "bluenoise:8",
	}
	if got := stepIDs(steps[:8]); !slices.Equal(got, wantIDs) {
		t.Errorf("first block ids = %v, want %v", got, wantIDs)
	}
	if got := steps[8].ID; got != "quantized:27" {
		t.Errorf("second block starts with %q, want quantized:27", got)
	}

	last := steps[len(steps)-1]
	if last.ID != "bluenoise:64" || last.Title != "Blue Noise (64 colors)" || last.Levels != 4 {
		t.Errorf("last step = %+v", last)
	}
	if last.Asset != (AssetKey{Kind: MaskBlueNoise, Level: 6}) {
		t.Errorf("blue noise asset = %v", last.Asset)
	}
	if got := steps[5].Title; got != "Floyd-Steinberg Error Diffusion (8 colors)" {
		t.Errorf("fsed title = %q", got)
	}
}

func TestColorCatalogueTitleLocale(t *testing.T) {
	tests := []struct {
		tag  language.Tag
		want string
	}{
		{language.English, "Quantized (1,000 colors)"},
		{language.German, "Quantized (1.000 colors)"},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			steps := ColorCatalogue(tt.tag, []int{10}, 6)
			if steps[0].ID != "quantized:1000" {
				t.Errorf("id = %q, want quantized:1000", steps[0].ID)
			}
			if steps[0].Title != tt.want {
				t.Errorf("title = %q, want %q", steps[0].Title, tt.want)
			}
		})
	}
}

func TestColorCatalogueClampsLevels(t *testing.T) {
	steps := ColorCatalogue(language.English, []int{1}, 6)
	if steps[0].ID != "quantized:8" || steps[0].Levels != 2 {
		t.Errorf("level 1 step = %+v, want clamped to 2 levels", steps[0])
	}
}

func TestAssetKeys(t *testing.T) {
	gray := assetKeys(GrayCatalogue(language.English))
	wantGray := []AssetKey{
		{Kind: MaskBayer, Level: 0},
		{Kind: MaskBayer, Level: 1},
		{Kind: MaskBayer, Level: 2},
		{Kind: MaskBayer, Level: 3},
	}
	if !slices.Equal(gray, wantGray) {
		t.Errorf("gray keys = %v, want %v", gray, wantGray)
	}

	color := assetKeys(ColorCatalogue(language.English, DefaultPaletteLevels, 5))
	wantColor := []AssetKey{
		{Kind: MaskBayer, Level: 1},
		{Kind: MaskBayer, Level: 3},
		{Kind: MaskBlueNoise, Level: 5},
	}
	if !slices.Equal(color, wantColor) {
		t.Errorf("color keys = %v, want %v", color, wantColor)
	}
}
