package documents

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/techcodex100/BOb-from/internal/overlay"
)

const (
	TemplateRemittance    = "bob-remittance"
	TemplateSalesContract = "sales-contract"

	ContentTypePDF = "application/pdf"
)

var (
	// ErrTemplateNotFound is returned for an unknown template ID.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrCounterUnavailable is returned when a numbered template is rendered
	// without a configured sequence counter.
	ErrCounterUnavailable = errors.New("document counter unavailable")
)

type GenerateRequest struct {
	TemplateID string
	Values     overlay.Values
}

// GeneratedDocument is the finished artifact of one request
type GeneratedDocument struct {
	ID         uuid.UUID `json:"id"`
	TemplateID string    `json:"template_id"`
	Filename   string    `json:"filename"`
	Content    []byte    `json:"-"`
	Pages      int       `json:"pages"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Number     int       `json:"number,omitempty"`
	ArchiveKey string    `json:"archive_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
