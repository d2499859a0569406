package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentInfo describes an extracted document.
type DocumentInfo struct {
	Filename string `json:"filename"`
	NumPages int    `json:"num_pages"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
}

// Page is one page of extracted text, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// Extractor turns a file on disk into page-structured text.
type Extractor interface {
	// Extract reads the file at path and returns its pages and metadata.
	Extract(path string) ([]Page, DocumentInfo, error)

	// Supports reports whether this extractor handles the given filename.
	Supports(filename string) bool
}

// TextExtractor handles plain-text and markdown files. Form feeds split
// pages; a file without form feeds is a single page.
type TextExtractor struct{}

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".rst": true,
	".log": true,
}

// Supports reports whether the filename has a recognized text extension.
func (e *TextExtractor) Supports(filename string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extract reads the file and splits it into pages on form-feed characters.
func (e *TextExtractor) Extract(path string) ([]Page, DocumentInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, DocumentInfo{}, fmt.Errorf("reading %s: %w", path, err)
	}

	raw := strings.Split(string(data), "\f")
	pages := make([]Page, 0, len(raw))
	for i, text := range raw {
		pages = append(pages, Page{Number: i + 1, Text: text})
	}

	info := DocumentInfo{
		Filename: filepath.Base(path),
		NumPages: len(pages),
		Title:    titleFrom(pages[0].Text, filepath.Base(path)),
	}
	return pages, info, nil
}

// titleFrom takes the first non-empty line as the document title, falling
// back to the filename.
func titleFrom(firstPage, fallback string) string {
	for _, line := range strings.Split(firstPage, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return fallback
}
