package qr

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestRenderPNG(t *testing.T) {
	t.Run("defaults produce a decodable 400px PNG", func(t *testing.T) {
		data, err := RenderPNG("https://short.gy/abc12", Options{})
		if err != nil {
			t.Fatalf("RenderPNG: %v", err)
		}

		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != DefaultPixelSize || bounds.Dy() != DefaultPixelSize {
			t.Errorf("size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), DefaultPixelSize, DefaultPixelSize)
		}
	})

	t.Run("every allowed size and level renders", func(t *testing.T) {
		for _, size := range PixelSizes {
			for _, level := range []string{"L", "M", "Q", "H"} {
				opts := Options{PixelSize: size, Level: level}
				if _, err := RenderPNG("https://short.gy/abc12", opts); err != nil {
					t.Errorf("size %d level %s: %v", size, level, err)
				}
			}
		}
	})

	t.Run("custom colors", func(t *testing.T) {
		opts := Options{Foreground: "#1a2b3c", Background: "#f0f0f0"}
		if _, err := RenderPNG("https://short.gy/abc12", opts); err != nil {
			t.Fatalf("RenderPNG: %v", err)
		}
	})

	invalid := []struct {
		name string
		opts Options
	}{
		{"odd pixel size", Options{PixelSize: 300}},
		{"unknown level", Options{Level: "X"}},
		{"bad foreground color", Options{Foreground: "black"}},
		{"bad background color", Options{Background: "#fff"}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RenderPNG("https://short.gy/abc12", tc.opts)
			if !errors.Is(err, ErrInvalidOptions) {
				t.Fatalf("err = %v, want ErrInvalidOptions", err)
			}
		})
	}

	t.Run("empty content", func(t *testing.T) {
		_, err := RenderPNG("", Options{})
		if !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("err = %v, want ErrInvalidOptions", err)
		}
	})
}
