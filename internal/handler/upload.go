package handler

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/document"
)

// uploadPreview is how many characters of extracted text the upload
// fragment previews.
const uploadPreview = 400

// UploadResult is the template data for the upload fragment.
type UploadResult struct {
	Text    *document.Text
	Preview string
	Error   string
}

// UploadHandler extracts text from documents attached to tool forms.
type UploadHandler struct {
	extractor document.Extractor
	log       *zap.Logger
}

// NewUploadHandler creates an UploadHandler enforcing maxBytes per file.
func NewUploadHandler(maxBytes int64, log *zap.Logger) *UploadHandler {
	return &UploadHandler{extractor: document.Extractor{MaxBytes: maxBytes}, log: log}
}

// Upload handles POST /dashboard/upload with a multipart "file" field and
// returns the upload_result fragment. The fragment carries the text in a
// hidden fileContent field so it posts with the surrounding form.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.extractor.MaxBytes+64<<10)
	if err := r.ParseMultipartForm(h.extractor.MaxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.fail(w, r, http.StatusRequestEntityTooLarge, document.ErrTooLarge.Error())
			return
		}
		h.fail(w, r, http.StatusBadRequest, "Please choose a file to upload.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Please choose a file to upload.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.extractor.MaxBytes+1))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "The file could not be read.")
		return
	}

	text, err := h.extractor.Extract(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, document.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.log.Info("document extraction failed", zap.String("filename", header.Filename), zap.Error(err))
		h.fail(w, r, status, userMessage(err))
		return
	}

	renderFragment(w, "upload_result", UploadResult{
		Text:    text,
		Preview: document.Truncate(text.Content, uploadPreview),
	})
}

// userMessage returns the sentinel message for known extraction failures.
func userMessage(err error) string {
	for _, known := range []error{document.ErrUnsupportedType, document.ErrTooLarge, document.ErrNoText} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "The file could not be read."
}

// fail renders the fragment with an error. HTMX only swaps 2xx responses,
// so HTMX requests get 200 and the message.
func (h *UploadHandler) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isHTMX(r) {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = fragmentTmpl.ExecuteTemplate(w, "upload_result", UploadResult{Error: msg})
}
