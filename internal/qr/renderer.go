// Package qr renders QR code PNGs for shortened links.
package qr

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrInvalidOptions = errors.New("invalid qr options")

// PixelSizes are the accepted square output sizes.
var PixelSizes = []int{200, 400, 600, 800}

const (
	DefaultPixelSize  = 400
	DefaultLevel      = "M"
	DefaultForeground = "#000000"
	DefaultBackground = "#ffffff"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Options controls one render. Zero values fall back to the defaults above.
type Options struct {
	PixelSize  int    `json:"pixelSize"`
	Level      string `json:"level"`
	Foreground string `json:"fg"`
	Background string `json:"bg"`
}

func (o Options) withDefaults() Options {
	if o.PixelSize == 0 {
		o.PixelSize = DefaultPixelSize
	}
	if o.Level == "" {
		o.Level = DefaultLevel
	}
	if o.Foreground == "" {
		o.Foreground = DefaultForeground
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	return o
}

func (o Options) validate() error {
	valid := false
	for _, size := range PixelSizes {
		if o.PixelSize == size {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: pixel size %d not in %v", ErrInvalidOptions, o.PixelSize, PixelSizes)
	}
	if _, err := recoveryLevel(o.Level); err != nil {
		return err
	}
	if !hexColor.MatchString(o.Foreground) || !hexColor.MatchString(o.Background) {
		return fmt.Errorf("%w: colors must be #rrggbb", ErrInvalidOptions)
	}
	return nil
}

func recoveryLevel(level string) (qrcode.RecoveryLevel, error) {
	switch level {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("%w: level %q not one of L, M, Q, H", ErrInvalidOptions, level)
	}
}

func parseHex(s string) color.Color {
	var r, g, b uint8
	fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// RenderPNG encodes content as a QR code PNG. Unset options take defaults;
// invalid ones yield ErrInvalidOptions.
func RenderPNG(content string, opts Options) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidOptions)
	}

	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	level, err := recoveryLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(content, level)
	if err != nil {
		return nil, err
	}
	code.ForegroundColor = parseHex(opts.Foreground)
	code.BackgroundColor = parseHex(opts.Background)

	return code.PNG(opts.PixelSize)
}
