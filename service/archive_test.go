package service

import (
	"testing"

	"github.com/julilatch/rs-api/config"
)

func TestNewArchiveService(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "failed-statements",
		UseSSL:    false,
	}

	svc, err := NewArchiveService(cfg)
	// Client creation does not dial; the connection is tested on first
	// operation, so this should succeed with any well-formed endpoint.
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("Expected non-nil service")
	}
}

func TestNewArchiveServiceInvalidEndpoint(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Endpoint: "http://not a host",
		Bucket:   "failed-statements",
	}

	if _, err := NewArchiveService(cfg); err == nil {
		t.Error("Expected error for malformed endpoint")
	}
}

func TestArchiveServiceObjectName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		expected string
	}{
		{
			name:     "plain name",
			fileName: "statement.pdf",
			expected: "errors/statement.pdf",
		},
		{
			name:     "name with spaces",
			fileName: "january statement.pdf",
			expected: "errors/january statement.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &ArchiveService{bucket: "failed-statements"}
			if got := svc.ObjectName(tt.fileName); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}
