package mocks

import (
	"context"
	"io"
)

// MockExtractor implements extract.Extractor with a fixed answer.
type MockExtractor struct {
	Text string
	Err  error

	// Received holds the bytes of the last document.
	Received []byte
}

// Extract implements extract.Extractor.
func (m *MockExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.Received = data
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}
