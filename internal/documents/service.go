package documents

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techcodex100/BOb-from/internal/overlay"
	"github.com/techcodex100/BOb-from/internal/sequence"
	"github.com/techcodex100/BOb-from/internal/templates"
)

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedDocument, error)
	Templates() []templates.Summary
	Template(id string) (*templates.Template, error)
}

type documentService struct {
	registry *templates.Registry
	renderer *overlay.Renderer
	pdf      *PDFService
	counter  sequence.Counter
	storage  *StorageProvider
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the generation pipeline. counter may be nil when no
// registered template is numbered; storage may be nil to skip archiving.
func NewService(
	registry *templates.Registry,
	renderer *overlay.Renderer,
	pdf *PDFService,
	counter sequence.Counter,
	storage *StorageProvider,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentService{
		registry: registry,
		renderer: renderer,
		pdf:      pdf,
		counter:  counter,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *documentService) Generate(ctx context.Context, req GenerateRequest) (*GeneratedDocument, error) {
	tmpl, ok := s.registry.Get(req.TemplateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, req.TemplateID)
	}

	values := req.Values
	number := 0
	if tmpl.Output.Numbered {
		if s.counter == nil {
			return nil, ErrCounterUnavailable
		}
		n, err := s.counter.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("allocate document number: %w", err)
		}
		number = n
		if field := tmpl.Output.NumberField; field != "" {
			if _, supplied := values[field]; !supplied {
				values = values.Clone()
				values[field] = overlay.Text(strconv.Itoa(n))
			}
		}
	}

	doc, err := s.renderer.Render(ctx, tmpl, values)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl.ID, err)
	}

	content, err := s.pdf.Serialize(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", tmpl.ID, err)
	}

	generated := &GeneratedDocument{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		Filename:   tmpl.Filename(number),
		Content:    content,
		Pages:      doc.PageCount(),
		Width:      doc.Width(),
		Height:     doc.Height(),
		Number:     number,
		CreatedAt:  s.now(),
	}

	if s.storage.Enabled() {
		archiveCtx, cancel := context.WithTimeout(ctx, archiveTimeout)
		key, err := s.storage.Archive(archiveCtx, generated)
		cancel()
		if err != nil {
			s.logger.Warn("Failed to archive document",
				zap.String("document_id", generated.ID.String()),
				zap.String("filename", generated.Filename),
				zap.Error(err))
		} else {
			generated.ArchiveKey = key
		}
	}

	s.logger.Info("Document generated",
		zap.String("document_id", generated.ID.String()),
		zap.String("template", tmpl.ID),
		zap.String("filename", generated.Filename),
		zap.Int("pages", generated.Pages),
		zap.Int("bytes", len(content)))

	return generated, nil
}

func (s *documentService) Templates() []templates.Summary {
	list := s.registry.List()
	out := make([]templates.Summary, len(list))
	for i, t := range list {
		out[i] = t.Summarize()
	}
	return out
}

func (s *documentService) Template(id string) (*templates.Template, error) {
	t, ok := s.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}
