package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Domenick1991/ragbooking/internal/domain"
	"github.com/Domenick1991/ragbooking/internal/repository"
	"github.com/Domenick1991/ragbooking/internal/service/ingest"
	"github.com/gin-gonic/gin"
)

const defaultMaxUploadBytes = 20 << 20

// DocumentCatalog reads stored document metadata.
type DocumentCatalog interface {
	List(ctx context.Context) ([]domain.Document, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Document, error)
}

type DocumentHandler struct {
	service        ingest.IngestUseCase
	catalog        DocumentCatalog
	maxUploadBytes int64
}

type documentResponse struct {
	ExternalID  string `json:"external_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	UploadedAt  string `json:"uploaded_at"`
}

func NewDocumentHandler(service ingest.IngestUseCase, catalog DocumentCatalog, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &DocumentHandler{service: service, catalog: catalog, maxUploadBytes: maxUploadBytes}
}

func (h *DocumentHandler) Register(router *gin.RouterGroup) {
	router.POST("/ingestion", h.ingest)
	router.POST("/ingestion/", h.ingest)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func (h *DocumentHandler) ingest(c *gin.Context) {
	strategy, err := ingest.ParseStrategy(c.Query("chunking_strategy"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes)})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), ingest.IngestInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
		Strategy:    strategy,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(ingestStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DocumentHandler) list(c *gin.Context) {
	docs, err := h.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]documentResponse, len(docs))
	for i, d := range docs {
		out[i] = toDocumentResponse(d)
	}
	c.JSON(http.StatusOK, out)
}

func (h *DocumentHandler) get(c *gin.Context) {
	doc, err := h.catalog.GetByExternalID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(*doc))
}

func toDocumentResponse(d domain.Document) documentResponse {
	return documentResponse{
		ExternalID:  d.ExternalID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		UploadedAt:  d.UploadedAt.UTC().Format(time.RFC3339),
	}
}

func ingestStatus(err error) int {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFileType),
		errors.Is(err, ingest.ErrUnknownStrategy),
		errors.Is(err, ingest.ErrNoChunks):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrVectorStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
