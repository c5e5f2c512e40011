package media

import (
	"errors"
	"path/filepath"
	"testing"
)

func validItem() MediaItem {
	return MediaItem{
		ID:   "beach",
		Name: "Beach",
		Kind: KindImage,
		Size: Size{Width: 1600, Height: 900},
		Variant: []Variant{
			{Format: "avif", Width: 640, URL: "hero/beach/beach.3fa9c2d1.avif_640"},
			{Format: "avif", Width: 1280, URL: "hero/beach/beach.3fa9c2d1.avif_1280"},
			{Format: "avif", Width: 1920, URL: "hero/beach/beach.3fa9c2d1.avif_1920"},
		},
		Focal: FocalPoints{
			Main:      FocalPoint{X: 0.5, Y: 0.5},
			Secondary: FocalPoint{X: 0.3, Y: 0.7},
		},
	}
}

func TestMediaItemValidate(t *testing.T) {
	item := validItem()
	if err := item.Validate(); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}

	bad := validItem()
	bad.Size.Width = 0
	var verr *ValidationError
	if err := bad.Validate(); !errors.As(err, &verr) {
		t.Errorf("zero width: expected ValidationError, got %v", err)
	}

	bad = validItem()
	bad.Focal.Main.X = 1.7
	if err := bad.Validate(); !errors.As(err, &verr) {
		t.Errorf("focal point 1.7: expected ValidationError, got %v", err)
	}

	// Edge-biased focal points inside the soft tolerance are accepted
	edge := validItem()
	edge.Focal.Secondary = FocalPoint{X: -0.4, Y: 1.4}
	if err := edge.Validate(); err != nil {
		t.Errorf("edge-biased focal point rejected: %v", err)
	}
}

func TestVariantFor(t *testing.T) {
	item := validItem()

	tests := []struct {
		want  int
		width int
	}{
		{500, 640},   // narrowest covering width
		{640, 640},   // exact match
		{1000, 1280}, // next width up
		{1920, 1920},
		{2560, 1920}, // wider than all: widest available
	}

	for _, tt := range tests {
		got := item.VariantFor(tt.want)
		if got.Width != tt.width {
			t.Errorf("VariantFor(%d): expected width %d, got %d", tt.want, tt.width, got.Width)
		}
	}
}

func TestPosterFor(t *testing.T) {
	item := validItem()
	item.Kind = KindVideo
	item.Poster = []Variant{
		{Format: "webp", Width: 640, URL: "hero/beach/beach.poster.8b1de402.webp_640"},
		{Format: "webp", Width: 1920, URL: "hero/beach/beach.poster.8b1de402.webp_1920"},
	}

	if got := item.PosterFor(500).Width; got != 640 {
		t.Errorf("PosterFor(500): expected width 640, got %d", got)
	}
	if got := item.PosterFor(1000).Width; got != 1920 {
		t.Errorf("PosterFor(1000): expected width 1920, got %d", got)
	}

	// No derived poster set: fall back to the source variants.
	item.Poster = nil
	if got := item.PosterFor(1000).Width; got != 1280 {
		t.Errorf("PosterFor(1000) without posters: expected width 1280, got %d", got)
	}
}

func TestValidateViewport(t *testing.T) {
	if err := ValidateViewport(Viewport{Width: 1000, Height: 800, HeaderHeight: 50}); err != nil {
		t.Fatalf("valid viewport rejected: %v", err)
	}

	var verr *ValidationError
	cases := []Viewport{
		{Width: 0, Height: 800, HeaderHeight: 0},
		{Width: 1000, Height: 800, HeaderHeight: -1},
		{Width: 1000, Height: 800, HeaderHeight: 800}, // no visible height left
		{Width: 1000, Height: 800, HeaderHeight: 900},
	}
	for i, vp := range cases {
		if err := ValidateViewport(vp); !errors.As(err, &verr) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestContentHash(t *testing.T) {
	tests := []struct {
		url  string
		hash string
		key  string
	}{
		{"hero/beach/beach.3fa9c2d1.avif", "3fa9c2d1", "hero/beach/beach.avif"},
		{"https://cdn.example.com/hero/dune.0a1b2c3d4e5f.webp?w=1280", "0a1b2c3d4e5f", "https://cdn.example.com/hero/dune.webp"},
		{"hero/beach/beach.avif", "", "hero/beach/beach.avif"},
		{"hero/clip/clip.min.av1.mp4", "", "hero/clip/clip.min.av1.mp4"}, // "min" and "av1" are not hashes
	}

	for _, tt := range tests {
		if got := ContentHash(tt.url); got != tt.hash {
			t.Errorf("ContentHash(%q) = %q, expected %q", tt.url, got, tt.hash)
		}
		if got := CacheKey(tt.url); got != tt.key {
			t.Errorf("CacheKey(%q) = %q, expected %q", tt.url, got, tt.key)
		}
	}
}

func TestManifestWriteRead(t *testing.T) {
	m := &Manifest{Version: "1.0", Items: []MediaItem{validItem()}}

	p := filepath.Join(t.TempDir(), "hero.yaml")
	if err := WriteManifest(m, p); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	read, err := ReadManifest(p)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}

	if len(read.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(read.Items))
	}
	got := read.Items[0]
	if got.ID != "beach" || got.Kind != KindImage || len(got.Variant) != 3 {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.Focal.Secondary.Y != 0.7 {
		t.Errorf("focal point lost in round trip: %+v", got.Focal)
	}
}
