package overlay

import (
	"image"

	"github.com/techcodex100/BOb-from/internal/canvas"
	"github.com/techcodex100/BOb-from/internal/templates"
)

// Document is the ordered set of populated canvases of one request.
type Document struct {
	Pages  []*canvas.Canvas
	Layout templates.Layout
}

// PageCount is the number of template pages in the document.
func (d *Document) PageCount() int { return len(d.Pages) }

// Width is the widest canvas.
func (d *Document) Width() int {
	w := 0
	for _, p := range d.Pages {
		if p.Width() > w {
			w = p.Width()
		}
	}
	return w
}

// Height is the sum of all canvas heights.
func (d *Document) Height() int {
	h := 0
	for _, p := range d.Pages {
		h += p.Height()
	}
	return h
}

// Images returns the artifact pages: a single composite for the stacked
// layout, one image per canvas otherwise.
func (d *Document) Images() []image.Image {
	if d.Layout == templates.LayoutPaged {
		out := make([]image.Image, len(d.Pages))
		for i, p := range d.Pages {
			out[i] = p.Image()
		}
		return out
	}
	return []image.Image{canvas.Stack(d.Pages)}
}
