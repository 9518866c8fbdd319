package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// ErrNoPages is returned when Generate is called without images.
var ErrNoPages = errors.New("pdf: no pages to write")

// Generator serializes rendered page images into a PDF document.
type Generator interface {
	Generate(ctx context.Context, pages []image.Image) (io.ReadSeeker, error)
}

// ImageFormat is the encoding used to embed page images
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// Options configures the image generator
type Options struct {
	Format      ImageFormat `json:"format"`
	JPEGQuality int         `json:"jpeg_quality"`
	Title       string      `json:"title,omitempty"`
	Creator     string      `json:"creator,omitempty"`
}

// DefaultOptions returns lossless PNG embedding
func DefaultOptions() Options {
	return Options{
		Format:      FormatPNG,
		JPEGQuality: 90,
	}
}

type imageGenerator struct {
	options Options
}

// NewImageGenerator creates a generator that places each image on its own
// page sized to the image, one pixel per point.
func NewImageGenerator(options Options) Generator {
	if options.Format == "" {
		options.Format = FormatPNG
	}
	if options.JPEGQuality <= 0 || options.JPEGQuality > 100 {
		options.JPEGQuality = 90
	}
	return &imageGenerator{options: options}
}

func (g *imageGenerator) Generate(ctx context.Context, pages []image.Image) (io.ReadSeeker, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	first := pages[0].Bounds()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(first.Dx()), Ht: float64(first.Dy())},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	if g.options.Title != "" {
		pdf.SetTitle(g.options.Title, true)
	}
	if g.options.Creator != "" {
		pdf.SetCreator(g.options.Creator, true)
	}

	imageType := "PNG"
	if g.options.Format == FormatJPEG {
		imageType = "JPG"
	}

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b := page.Bounds()
		w, h := float64(b.Dx()), float64(b.Dy())
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})

		var buf bytes.Buffer
		if err := g.encode(&buf, page); err != nil {
			return nil, fmt.Errorf("pdf: encode page %d: %w", i+1, err)
		}

		name := fmt.Sprintf("page-%d", i+1)
		opts := gofpdf.ImageOptions{ImageType: imageType}
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("pdf: page %d: %w", i+1, err)
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	return bytes.NewReader(out.Bytes()), nil
}

func (g *imageGenerator) encode(w io.Writer, img image.Image) error {
	if g.options.Format == FormatJPEG {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: g.options.JPEGQuality})
	}
	return png.Encode(w, img)
}
