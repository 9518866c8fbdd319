package overlay

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/techcodex100/BOb-from/internal/canvas"
	"github.com/techcodex100/BOb-from/internal/templates"
)

// ErrNoPages is returned when a template yields no canvases to draw on.
var ErrNoPages = errors.New("overlay: template has no pages")

// Surface is the drawing capability the renderer needs from a page.
// *canvas.Canvas implements it.
type Surface interface {
	DrawString(x, y int, s string)
	DrawLine(x1, y1, x2, y2, width int)
	Face() font.Face
	SetFace(face font.Face)
}

var _ Surface = (*canvas.Canvas)(nil)

// Renderer overlays field values onto template pages.
type Renderer struct {
	loader *templates.AssetLoader
	fonts  canvas.FontProvider
	logger *zap.Logger
}

// NewRenderer creates a renderer drawing on canvases from loader
func NewRenderer(loader *templates.AssetLoader, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	var fonts canvas.FontProvider
	if loader != nil {
		fonts = loader.Fonts()
	}
	if fonts == nil {
		fonts = canvas.NewDefaultProvider()
	}
	return &Renderer{loader: loader, fonts: fonts, logger: logger}
}

// Render loads fresh canvases for tmpl, draws values onto them and returns
// the assembled document. Nothing is returned on failure.
func (r *Renderer) Render(ctx context.Context, tmpl *templates.Template, values Values) (*Document, error) {
	if r.loader == nil {
		return nil, errors.New("overlay: renderer has no asset loader")
	}
	pages, err := r.loader.LoadPages(ctx, tmpl)
	if err != nil {
		return nil, err
	}

	surfaces := make([]Surface, len(pages))
	for i, p := range pages {
		surfaces[i] = p
	}
	if err := r.Overlay(surfaces, tmpl, values); err != nil {
		return nil, err
	}

	return &Document{Pages: pages, Layout: tmpl.Layout}, nil
}

// Overlay draws the template's static marks and every field present in both
// the table and values. Unknown names, empty values and values of the wrong
// shape are skipped without error.
func (r *Renderer) Overlay(pages []Surface, tmpl *templates.Template, values Values) error {
	if len(pages) == 0 {
		return ErrNoPages
	}

	for _, rule := range tmpl.Rules {
		if page, ok := pageAt(pages, rule.Page); ok {
			page.DrawLine(rule.X1, rule.Y1, rule.X2, rule.Y2, rule.Width)
		}
	}
	for _, s := range tmpl.Static {
		page, ok := pageAt(pages, s.Page)
		if !ok {
			continue
		}
		r.withSize(page, s.Size, func() {
			page.DrawString(s.X, s.Y, s.Text)
		})
	}

	drawn := 0
	for _, name := range tmpl.FieldNames() {
		value, ok := values[name]
		if !ok {
			continue
		}
		spec := tmpl.Fields[name]
		page, ok := pageAt(pages, spec.Page)
		if !ok {
			r.logger.Debug("field page out of range",
				zap.String("template", tmpl.ID),
				zap.String("field", name),
				zap.Int("page", spec.Page))
			continue
		}

		r.withSize(page, spec.Size, func() {
			switch spec.Mode {
			case templates.ModeBoxed:
				drawBoxed(page, spec, tmpl.SpacingFor(spec), value)
			default:
				drawPlain(page, spec, tmpl.LineHeight, value)
			}
		})
		drawn++
	}

	if ignored := len(values) - drawn; ignored > 0 {
		r.logger.Debug("fields without position skipped",
			zap.String("template", tmpl.ID),
			zap.Int("ignored", ignored))
	}
	return nil
}

// withSize temporarily switches the page face when size differs from the
// template default.
func (r *Renderer) withSize(page Surface, size float64, draw func()) {
	if size <= 0 {
		draw()
		return
	}
	prev := page.Face()
	page.SetFace(r.fonts.Face(size))
	draw()
	page.SetFace(prev)
}

func pageAt(pages []Surface, index int) (Surface, bool) {
	if index < 0 || index >= len(pages) {
		return nil, false
	}
	return pages[index], true
}

// drawBoxed places character i at x + i*spacing.
func drawBoxed(page Surface, spec templates.FieldSpec, spacing int, value Value) {
	if !value.IsText() {
		return
	}
	for i, ch := range []rune(value.String()) {
		page.DrawString(spec.X+i*spacing, spec.Y, string(ch))
	}
}

// drawPlain places line i at y + i*lineHeight.
func drawPlain(page Surface, spec templates.FieldSpec, lineHeight int, value Value) {
	for i, line := range value.Lines() {
		page.DrawString(spec.X, spec.Y+i*lineHeight, line)
	}
}
