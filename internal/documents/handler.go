package documents

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techcodex100/BOb-from/internal/overlay"
)

// Handler serves document generation over HTTP
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the compatibility routes on router and the template
// catalogue on api.
func (h *Handler) RegisterRoutes(router gin.IRoutes, api *gin.RouterGroup) {
	router.POST("/generate", h.generateFor(TemplateRemittance))
	router.POST("/generate-pdf/", h.generateFor(TemplateSalesContract))

	tmpl := api.Group("/templates")
	{
		tmpl.GET("", h.listTemplates)
		tmpl.GET("/:id", h.getTemplate)
		tmpl.POST("/:id/generate", h.generate)
	}
}

func (h *Handler) generateFor(templateID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, templateID)
	}
}

// generate handles POST /api/v1/templates/:id/generate
func (h *Handler) generate(c *gin.Context) {
	h.render(c, c.Param("id"))
}

func (h *Handler) render(c *gin.Context, templateID string) {
	var values overlay.Values
	if err := json.NewDecoder(c.Request.Body).Decode(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	doc, err := h.service.Generate(c.Request.Context(), GenerateRequest{
		TemplateID: templateID,
		Values:     values,
	})
	if err != nil {
		status := statusFor(err)
		h.logger.Error("Failed to generate document",
			zap.String("template", templateID),
			zap.Int("status", status),
			zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header("X-Document-ID", doc.ID.String())
	c.Data(http.StatusOK, ContentTypePDF, doc.Content)
}

// listTemplates handles GET /api/v1/templates
func (h *Handler) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.service.Templates()})
}

// getTemplate handles GET /api/v1/templates/:id
func (h *Handler) getTemplate(c *gin.Context) {
	t, err := h.service.Template(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// statusFor maps service errors to HTTP status codes. Asset, counter and
// PDF failures all surface as 500.
func statusFor(err error) int {
	if errors.Is(err, ErrTemplateNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
