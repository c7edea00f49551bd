package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/julilatch/rs-api/model"
)

// fakeProcessor echoes one result per document, optionally dropping the
// documents listed in failNames the way the pipeline drops failures.
type fakeProcessor struct {
	failNames map[string]bool
	lastDocs  []model.Document
}

func (f *fakeProcessor) Process(ctx context.Context, docs []model.Document) model.BatchResponse {
	f.lastDocs = docs
	var resp model.BatchResponse
	for _, doc := range docs {
		if f.failNames[doc.Name] {
			continue
		}
		resp.Results = append(resp.Results, model.DocumentResult{
			FileName: doc.Name,
			Tables: []model.Table{
				{Headers: []string{"Date", "Amount"}, Rows: [][]string{{"2024-01-02", "12.50"}}},
			},
		})
	}
	return resp
}

func multipartRequest(t *testing.T, url string, filenames ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 fake content")); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func statementRouter(p Processor) *gin.Engine {
	handler := NewStatementHandler(p)
	router := gin.New()
	router.POST("/api/v1/statements", handler.Extract)
	router.POST("/api/v1/statements/single", handler.ExtractSingle)
	return router
}

func TestStatementExtract(t *testing.T) {
	proc := &fakeProcessor{}
	router := statementRouter(proc)

	req := multipartRequest(t, "/api/v1/statements", "jan.pdf", "feb.pdf")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp model.BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].FileName != "jan.pdf" || resp.Results[1].FileName != "feb.pdf" {
		t.Errorf("Expected results in upload order, got %q then %q",
			resp.Results[0].FileName, resp.Results[1].FileName)
	}
	if len(proc.lastDocs) != 2 || len(proc.lastDocs[0].Data) == 0 {
		t.Error("Expected both uploads buffered and handed to the processor")
	}
}

func TestStatementExtractPartialFailure(t *testing.T) {
	proc := &fakeProcessor{failNames: map[string]bool{"feb.pdf": true}}
	router := statementRouter(proc)

	req := multipartRequest(t, "/api/v1/statements", "jan.pdf", "feb.pdf", "mar.pdf")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// A failed document is dropped, not an error for the whole batch
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp model.BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].FileName != "jan.pdf" || resp.Results[1].FileName != "mar.pdf" {
		t.Errorf("Expected surviving documents in order, got %q then %q",
			resp.Results[0].FileName, resp.Results[1].FileName)
	}
}

func TestStatementExtractNoFile(t *testing.T) {
	router := statementRouter(&fakeProcessor{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["error"] != "No file provided" {
		t.Errorf("Expected 'No file provided' error, got %q", resp["error"])
	}
}

func TestStatementExtractRejectsNonPDF(t *testing.T) {
	proc := &fakeProcessor{}
	router := statementRouter(proc)

	req := multipartRequest(t, "/api/v1/statements", "jan.pdf", "notes.txt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if proc.lastDocs != nil {
		t.Error("Expected processor not to run on rejected input")
	}
}

func TestStatementExtractSingle(t *testing.T) {
	router := statementRouter(&fakeProcessor{})

	req := multipartRequest(t, "/api/v1/statements/single", "jan.pdf")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Tables []model.Table `json:"tables"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Tables) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(resp.Tables))
	}
	if resp.Tables[0].Headers[0] != "Date" {
		t.Errorf("Expected first header 'Date', got %q", resp.Tables[0].Headers[0])
	}
}

func TestStatementExtractSingleCardinality(t *testing.T) {
	router := statementRouter(&fakeProcessor{})

	req := multipartRequest(t, "/api/v1/statements/single", "jan.pdf", "feb.pdf")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for two files, got %d", w.Code)
	}
}

func TestStatementExtractSingleFailedDocument(t *testing.T) {
	proc := &fakeProcessor{failNames: map[string]bool{"jan.pdf": true}}
	router := statementRouter(proc)

	req := multipartRequest(t, "/api/v1/statements/single", "jan.pdf")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 when the only document fails, got %d", w.Code)
	}
}
