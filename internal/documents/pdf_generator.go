package documents

import (
	"context"
	"io"

	"github.com/techcodex100/BOb-from/internal/overlay"
	"github.com/techcodex100/BOb-from/pkg/pdf"
)

type PDFService struct {
	generator pdf.Generator
}

func NewPDFService(generator pdf.Generator) *PDFService {
	return &PDFService{
		generator: generator,
	}
}

// Serialize writes the document's pages as PDF bytes.
func (s *PDFService) Serialize(ctx context.Context, doc *overlay.Document) ([]byte, error) {
	r, err := s.generator.Generate(ctx, doc.Images())
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
