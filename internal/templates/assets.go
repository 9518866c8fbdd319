package templates

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/techcodex100/BOb-from/internal/canvas"
)

// TemplateLoadError reports a background asset that could not be opened or
// decoded. The whole render fails with it.
type TemplateLoadError struct {
	Template string
	Asset    string
	Err      error
}

func (e *TemplateLoadError) Error() string {
	return fmt.Sprintf("template %s: load asset %q: %v", e.Template, e.Asset, e.Err)
}

func (e *TemplateLoadError) Unwrap() error { return e.Err }

// AssetLoader turns a template's page list into fresh canvases.
type AssetLoader struct {
	assets fs.FS
	fonts  canvas.FontProvider
	cache  bool

	mu      sync.RWMutex
	decoded map[string]image.Image
}

// NewAssetLoader creates a loader reading backgrounds from assets. With
// cache enabled decoded backgrounds are kept in memory; canvases still get
// their own copy.
func NewAssetLoader(assets fs.FS, fonts canvas.FontProvider, cache bool) *AssetLoader {
	if fonts == nil {
		fonts = canvas.NewDefaultProvider()
	}
	return &AssetLoader{
		assets:  assets,
		fonts:   fonts,
		cache:   cache,
		decoded: make(map[string]image.Image),
	}
}

// Fonts returns the provider used for new canvases.
func (l *AssetLoader) Fonts() canvas.FontProvider { return l.fonts }

// LoadPages creates one canvas per page of t, in page order.
func (l *AssetLoader) LoadPages(ctx context.Context, t *Template) ([]*canvas.Canvas, error) {
	pages := make([]*canvas.Canvas, 0, len(t.Pages))
	for _, p := range t.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		face := l.fonts.Face(t.FontSize)
		if p.Blank != nil {
			pages = append(pages, canvas.New(p.Blank.Width, p.Blank.Height, face))
			continue
		}
		img, err := l.background(p.Background)
		if err != nil {
			return nil, &TemplateLoadError{Template: t.ID, Asset: p.Background, Err: err}
		}
		pages = append(pages, canvas.FromImage(img, face))
	}
	return pages, nil
}

func (l *AssetLoader) background(name string) (image.Image, error) {
	if l.cache {
		l.mu.RLock()
		img, ok := l.decoded[name]
		l.mu.RUnlock()
		if ok {
			return img, nil
		}
	}

	if l.assets == nil {
		return nil, fs.ErrNotExist
	}
	f, err := l.assets.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if l.cache {
		l.mu.Lock()
		l.decoded[name] = img
		l.mu.Unlock()
	}
	return img, nil
}

// Preload decodes every background of the given templates so a missing
// asset is reported at startup instead of on the first request.
func (l *AssetLoader) Preload(ctx context.Context, ts ...*Template) error {
	for _, t := range ts {
		for _, p := range t.Pages {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p.Background == "" {
				continue
			}
			if _, err := l.background(p.Background); err != nil {
				return &TemplateLoadError{Template: t.ID, Asset: p.Background, Err: err}
			}
		}
	}
	return nil
}
