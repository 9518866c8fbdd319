package canvas

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontProvider hands out faces for drawing. Face never fails; when the
// configured font is unusable a built-in font is returned instead.
//
// A font.Face is not safe for concurrent use, so callers ask for a new face
// per render.
type FontProvider interface {
	Face(size float64) font.Face
}

// DefaultProvider serves the embedded Go Regular font.
type DefaultProvider struct {
	once sync.Once
	font *opentype.Font
}

// NewDefaultProvider creates a provider backed by the embedded Go Regular font
func NewDefaultProvider() *DefaultProvider {
	return &DefaultProvider{}
}

func (p *DefaultProvider) Face(size float64) font.Face {
	p.once.Do(func() {
		// goregular.TTF is compiled in; a parse error leaves p.font nil and
		// every face falls through to basicfont.
		p.font, _ = opentype.Parse(goregular.TTF)
	})
	return newFace(p.font, size)
}

// TrueTypeProvider serves a TrueType/OpenType font read from disk and falls
// back to the embedded default when the file is missing or corrupt.
type TrueTypeProvider struct {
	path     string
	logger   *zap.Logger
	fallback *DefaultProvider

	once sync.Once
	font *opentype.Font
}

// NewTrueTypeProvider creates a provider for the font file at path
func NewTrueTypeProvider(path string, logger *zap.Logger) *TrueTypeProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrueTypeProvider{
		path:     path,
		logger:   logger,
		fallback: NewDefaultProvider(),
	}
}

func (p *TrueTypeProvider) Face(size float64) font.Face {
	p.once.Do(p.load)
	if p.font == nil {
		return p.fallback.Face(size)
	}
	return newFace(p.font, size)
}

func (p *TrueTypeProvider) load() {
	if p.path == "" {
		return
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Warn("font load warning, using default font",
			zap.String("path", p.path), zap.Error(err))
		return
	}
	f, err := opentype.Parse(data)
	if err != nil {
		p.logger.Warn("font load warning, using default font",
			zap.String("path", p.path), zap.Error(err))
		return
	}
	p.font = f
}

// Fallback reports whether the provider is serving the built-in font.
func (p *TrueTypeProvider) Fallback() bool {
	p.once.Do(p.load)
	return p.font == nil
}

func newFace(f *opentype.Font, size float64) font.Face {
	if f == nil || size <= 0 {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
