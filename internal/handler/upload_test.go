package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/dashboard/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return req
}

func TestUpload(t *testing.T) {
	h := NewUploadHandler(1024, zap.NewNop())

	tests := []struct {
		name     string
		filename string
		content  []byte
		want     []string
	}{
		{
			name:     "text file",
			filename: "brief.txt",
			content:  []byte("Write a persuasive essay about recycling.\n"),
			want:     []string{`name="fileContent"`, "Write a persuasive essay about recycling.", `value="brief.txt"`},
		},
		{
			name:     "unsupported type",
			filename: "diagram.png",
			content:  []byte("\x89PNG"),
			want:     []string{"unsupported file type"},
		},
		{
			name:     "empty text",
			filename: "blank.txt",
			content:  []byte("   \n\n"),
			want:     []string{"no text could be extracted"},
		},
		{
			name:     "too large",
			filename: "huge.txt",
			content:  bytes.Repeat([]byte("a"), 2048),
			want:     []string{"file is too large"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Upload(rec, uploadRequest(t, tt.filename, tt.content))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 for HTMX requests", rec.Code)
			}
			for _, s := range tt.want {
				if !strings.Contains(rec.Body.String(), s) {
					t.Errorf("body missing %q: %s", s, rec.Body.String())
				}
			}
		})
	}
}

func TestUpload_NoFile(t *testing.T) {
	h := NewUploadHandler(1024, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/dashboard/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please choose a file") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
