// Package inspector renders a snapshot tree as an image for visual debugging.
//
// Every element with non-empty visible bounds is outlined in a color keyed
// to its depth, optionally labeled with its class and index.
package inspector

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/axsnap/pkg/geometry"
	"github.com/go-drift/axsnap/pkg/snapshot"
)

// Background fills the canvas before outlines are drawn.
var Background = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// DepthColors cycles by element depth.
var DepthColors = []color.RGBA{
	{R: 0xE5, G: 0x39, B: 0x35, A: 0xFF},
	{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF},
	{R: 0x43, G: 0xA0, B: 0x47, A: 0xFF},
	{R: 0xFB, G: 0x8C, B: 0x00, A: 0xFF},
	{R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
	{R: 0x00, G: 0x89, B: 0x7B, A: 0xFF},
}

// MaxPixels bounds the area of both the full-size and the scaled canvas.
const MaxPixels = 1 << 26

// Options controls rendering.
type Options struct {
	// Scale resizes the output. Zero means 1.
	Scale float64
	// Labels draws "class[index]" in the top-left corner of each outline
	// tall enough to hold a line of text.
	Labels bool
}

// DepthColor returns the outline color for an element at depth.
func DepthColor(depth int) color.RGBA {
	return DepthColors[depth%len(DepthColors)]
}

// Render draws root's tree onto a canvas covering root's bounds. Element
// coordinates are translated so the root's top-left corner is the origin.
func Render(root *snapshot.Element, opts Options) (image.Image, error) {
	if root == nil {
		return nil, fmt.Errorf("inspector: nil root")
	}
	frame := root.Bounds()
	if frame.IsEmpty() {
		return nil, fmt.Errorf("inspector: root bounds %s are empty", frame)
	}
	if opts.Scale < 0 {
		return nil, fmt.Errorf("inspector: negative scale %g", opts.Scale)
	}

	if err := checkArea(float64(frame.Width()), float64(frame.Height())); err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	sw := math.Round(float64(frame.Width()) * scale)
	sh := math.Round(float64(frame.Height()) * scale)
	if err := checkArea(sw, sh); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, frame.Width(), frame.Height()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	root.Walk(func(e *snapshot.Element) bool {
		r := e.VisibleBounds()
		if r.IsEmpty() {
			return true
		}
		r = r.Translate(-frame.Left, -frame.Top)
		col := DepthColor(e.Depth())
		outline(canvas, r, col)
		if opts.Labels {
			label(canvas, r, col, e.String())
		}
		return true
	})

	if scale == 1 {
		return canvas, nil
	}
	w := max(1, int(sw))
	h := max(1, int(sh))
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return scaled, nil
}

func checkArea(w, h float64) error {
	if w*h > MaxPixels {
		return fmt.Errorf("inspector: canvas %gx%g exceeds %d pixels", w, h, MaxPixels)
	}
	return nil
}

// EncodePNG writes img as a PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// outline strokes a one-pixel border just inside r.
func outline(dst draw.Image, r geometry.Rect, col color.Color) {
	src := image.NewUniform(col)
	edges := []image.Rectangle{
		image.Rect(r.Left, r.Top, r.Right, r.Top+1),
		image.Rect(r.Left, r.Bottom-1, r.Right, r.Bottom),
		image.Rect(r.Left, r.Top, r.Left+1, r.Bottom),
		image.Rect(r.Right-1, r.Top, r.Right, r.Bottom),
	}
	for _, edge := range edges {
		draw.Draw(dst, edge, src, image.Point{}, draw.Src)
	}
}

func label(dst draw.Image, r geometry.Rect, col color.Color, text string) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	if r.Height() < lineHeight+2 {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(r.Left+2, r.Top+1+metrics.Ascent.Ceil()),
	}
	d.DrawString(fitText(face, text, fixed.I(r.Width()-4)))
}

// fitText drops trailing runes from text until it measures at most maxWidth.
func fitText(face font.Face, text string, maxWidth fixed.Int26_6) string {
	for len(text) > 0 && font.MeasureString(face, text) > maxWidth {
		_, size := utf8.DecodeLastRuneInString(text)
		text = text[:len(text)-size]
	}
	return text
}
