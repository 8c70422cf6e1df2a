// Package document extracts plain text from uploaded PDF, Word and text
// files so it can be quoted in a prompt.
package document

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Kinds of supported document.
const (
	KindPDF  = "pdf"
	KindDOCX = "docx"
	KindText = "text"
)

var (
	// ErrUnsupportedType is returned for anything that is not a PDF, a Word
	// document or plain text.
	ErrUnsupportedType = errors.New("unsupported file type: please upload a PDF or Word document")

	// ErrTooLarge is returned when the upload exceeds the configured limit.
	ErrTooLarge = errors.New("file is too large")

	// ErrNoText is returned when a supported file contains no extractable text.
	ErrNoText = errors.New("no text could be extracted from the file")
)

// Text is the extracted content of one upload.
type Text struct {
	Filename string `json:"filename"`
	Kind     string `json:"kind"`
	// Pages is the PDF page count; zero for other kinds.
	Pages   int    `json:"pages,omitempty"`
	Content string `json:"text"`
}

// Extractor applies a size limit to uploads.
type Extractor struct {
	MaxBytes int64
}

// Extract detects the document kind from contentType, falling back to the
// filename extension, and returns its text.
func (e Extractor) Extract(filename, contentType string, data []byte) (*Text, error) {
	if e.MaxBytes > 0 && int64(len(data)) > e.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, len(data), e.MaxBytes)
	}

	kind := Detect(filename, contentType)
	out := &Text{Filename: filepath.Base(filename), Kind: kind}

	var err error
	switch kind {
	case KindPDF:
		out.Content, out.Pages, err = extractPDF(data)
	case KindDOCX:
		out.Content, err = extractDOCX(data)
	case KindText:
		out.Content, err = extractText(data)
	default:
		return nil, ErrUnsupportedType
	}
	if err != nil {
		return nil, err
	}

	out.Content = tidy(out.Content)
	if out.Content == "" {
		return nil, ErrNoText
	}
	return out, nil
}

// Extract runs an Extractor with no size limit.
func Extract(filename, contentType string, data []byte) (*Text, error) {
	return Extractor{}.Extract(filename, contentType, data)
}

// Detect returns the document kind, or "" when unsupported.
func Detect(filename, contentType string) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/pdf":
		return KindPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/msword":
		return KindDOCX
	case "text/plain", "text/markdown":
		return KindText
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".txt", ".md", ".markdown":
		return KindText
	}
	return ""
}

// tidy trims trailing spaces from lines and collapses runs of blank lines.
func tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Truncate cuts s to at most n runes, appending "..." when it was cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
