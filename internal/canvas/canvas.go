package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas is a mutable drawing surface for one physical output page.
// It is owned by a single render call and must not be shared.
type Canvas struct {
	img  *image.RGBA
	face font.Face
	ink  *image.Uniform
}

// New creates a white canvas of the given size
func New(width, height int, face font.Face) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &Canvas{img: img, face: face, ink: image.NewUniform(color.Black)}
}

// FromImage copies src into a new canvas; src is never modified.
func FromImage(src image.Image, face font.Face) *Canvas {
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Over)
	return &Canvas{img: img, face: face, ink: image.NewUniform(color.Black)}
}

func (c *Canvas) Width() int  { return c.img.Bounds().Dx() }
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Image exposes the underlying pixels.
func (c *Canvas) Image() *image.RGBA { return c.img }

// SetFace switches the face used by subsequent DrawString calls.
func (c *Canvas) SetFace(face font.Face) { c.face = face }

// Face returns the current face.
func (c *Canvas) Face() font.Face { return c.face }

// DrawString draws s with its top-left corner at (x, y).
func (c *Canvas) DrawString(x, y int, s string) {
	if s == "" || c.face == nil {
		return
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  c.ink,
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + c.face.Metrics().Ascent},
	}
	d.DrawString(s)
}

// DrawLine draws a straight line of the given width between two points.
// Only horizontal and vertical lines are drawn exactly; diagonal lines are
// stepped along the longer axis.
func (c *Canvas) DrawLine(x1, y1, x2, y2, width int) {
	if width < 1 {
		width = 1
	}
	dx, dy := x2-x1, y2-y1
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		c.dot(x1, y1, width)
		return
	}
	for i := 0; i <= steps; i++ {
		c.dot(x1+dx*i/steps, y1+dy*i/steps, width)
	}
}

func (c *Canvas) dot(x, y, width int) {
	r := image.Rect(x, y, x+width, y+width).Intersect(c.img.Bounds())
	draw.Draw(c.img, r, c.ink, image.Point{}, draw.Src)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Stack places the canvases one below the other, left-aligned, on a white
// image as wide as the widest canvas and as tall as all of them together.
func Stack(canvases []*Canvas) *image.RGBA {
	width, height := 0, 0
	for _, c := range canvases {
		if c.Width() > width {
			width = c.Width()
		}
		height += c.Height()
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	offset := 0
	for _, c := range canvases {
		r := image.Rect(0, offset, c.Width(), offset+c.Height())
		draw.Draw(out, r, c.img, image.Point{}, draw.Src)
		offset += c.Height()
	}
	return out
}
