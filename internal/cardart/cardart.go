// Package cardart renders card images as ANSI half-block art.
package cardart

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// Default art size in terminal cells
const (
	DefaultWidth  = 20
	DefaultHeight = 14
)

// Render converts an image to ANSI art of width x height cells. Each cell
// covers a 2x2 pixel block: the top pair becomes the foreground of an upper
// half block and the bottom pair its background.
func Render(img image.Image, width, height int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			upper := averageColor(pixel(resized, x, y), pixel(resized, x+1, y))
			lower := averageColor(pixel(resized, x, y+1), pixel(resized, x+1, y+1))
			buffer.WriteString(halfBlock(upper, lower))
		}
		buffer.WriteString("\n")
	}

	return buffer.String()
}

// Cache stores rendered art on disk keyed by image URL
type Cache struct {
	Dir string
}

// Path returns the cache file for an image URL
func (c Cache) Path(imageURL string) string {
	return filepath.Join(c.Dir, fmt.Sprintf("%x.ansi", md5.Sum([]byte(imageURL))))
}

// Load returns cached art and whether it was found
func (c Cache) Load(imageURL string) (string, bool) {
	data, err := os.ReadFile(c.Path(imageURL))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Store writes art to the cache
func (c Cache) Store(imageURL, art string) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create ANSI cache directory: %v", err)
	}
	if err := os.WriteFile(c.Path(imageURL), []byte(art), 0644); err != nil {
		return fmt.Errorf("failed to write ANSI art to file: %v", err)
	}
	return nil
}

// VisibleWidth returns the printed width of s, ignoring ANSI escapes
func VisibleWidth(s string) int {
	return len([]rune(StripANSI(s)))
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// pixel returns black outside the image bounds
func pixel(img image.Image, x, y int) colorful.Color {
	var c color.Color = color.RGBA{0, 0, 0, 255}
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		c = img.At(x, y)
	}
	col, _ := colorful.MakeColor(c)
	return col
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

func halfBlock(fg, bg colorful.Color) string {
	r1, g1, b1 := fg.Clamped().RGB255()
	r2, g2, b2 := bg.Clamped().RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀\x1b[0m", r1, g1, b1, r2, g2, b2)
}
