package model

// Document is one uploaded source document. The bytes are owned by the
// caller for the duration of a single request and never outlive it.
type Document struct {
	Name string
	Data []byte
}

// Table is one table recognized on a single page image. Headers and rows
// are passed through from the recognition service unvalidated; a malformed
// row may carry fewer cells than the header count.
type Table struct {
	Name    string     `json:"table_name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// DocumentResult holds every table extracted from one document. Order is
// page order of origin, then within-page order as returned by recognition.
type DocumentResult struct {
	FileName string  `json:"fileName"`
	Tables   []Table `json:"tables"`
}

// BatchResponse covers all documents of one request, in request order.
// Documents whose whole pipeline failed are excluded.
type BatchResponse struct {
	Results []DocumentResult `json:"results"`
}
