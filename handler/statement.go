package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/julilatch/rs-api/model"
	"github.com/julilatch/rs-api/pipeline"
	"github.com/julilatch/rs-api/pkg/logger"
)

// Processor runs the extraction pipeline over a set of documents.
type Processor interface {
	Process(ctx context.Context, docs []model.Document) model.BatchResponse
}

type StatementHandler struct {
	processor Processor
}

var _ Processor = (*pipeline.Orchestrator)(nil)

func NewStatementHandler(p Processor) *StatementHandler {
	return &StatementHandler{processor: p}
}

// Extract handles multi-document table extraction. Every file attached
// under the "file" field is processed; documents that fail are dropped
// from the results, so a partial response is still a 200.
func (h *StatementHandler) Extract(c *gin.Context) {
	files, ok := formFiles(c)
	if !ok {
		return
	}

	docs, ok := readDocuments(c, files)
	if !ok {
		return
	}

	resp := h.processor.Process(c.Request.Context(), docs)

	logger.Info(c.Request.Context(), "extraction request completed",
		"documents", len(docs),
		"results", len(resp.Results),
	)

	c.JSON(http.StatusOK, resp)
}

// ExtractSingle handles the single-document variant: exactly one file,
// response carries the flat table list instead of per-document results.
func (h *StatementHandler) ExtractSingle(c *gin.Context) {
	files, ok := formFiles(c)
	if !ok {
		return
	}
	if len(files) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one file must be provided"})
		return
	}

	docs, ok := readDocuments(c, files)
	if !ok {
		return
	}

	resp := h.processor.Process(c.Request.Context(), docs)
	if len(resp.Results) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Extraction failed for the provided document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables": resp.Results[0].Tables})
}

// formFiles pulls the uploaded files from the "file" multipart field and
// rejects the request when none are attached.
func formFiles(c *gin.Context) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return nil, false
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return nil, false
	}

	return files, true
}

// readDocuments validates and buffers every upload. Reading happens before
// the pipeline starts so a broken upload is an input error, not a
// document-level pipeline failure.
func readDocuments(c *gin.Context, files []*multipart.FileHeader) ([]model.Document, bool) {
	docs := make([]model.Document, 0, len(files))
	for _, fh := range files {
		if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != ".pdf" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
			return nil, false
		}

		data, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + fh.Filename})
			return nil, false
		}
		docs = append(docs, model.Document{Name: fh.Filename, Data: data})
	}
	return docs, true
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
