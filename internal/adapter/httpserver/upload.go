package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tailorhq/resume-tailor/internal/domain"
	"github.com/tailorhq/resume-tailor/pkg/textx"
)

// minResumeChars rejects payloads too short to be a resume once trimmed.
const minResumeChars = 100

// controlByteLimit is the fraction of control bytes above which a payload is
// treated as binary rather than text.
const controlByteLimit = 0.1

// UploadHandler accepts a plain-text resume as a multipart "file" part,
// rejects rich formats and binaries, and returns the sanitized text. Format
// conversion is out of scope; only detection and rejection happen here.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrBadRequest), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code:    "BAD_REQUEST",
					Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrBadRequest, err), nil)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file part required", domain.ErrMissingInput), map[string]string{"field": "file"})
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: read file: %v", domain.ErrBadRequest, err), nil)
			return
		}

		if kind, rich := textx.LooksLikeRichFormat(data); rich {
			writeUnsupported(w, header.Filename, kind)
			return
		}
		if m := mimetype.Detect(data); !m.Is("text/plain") {
			writeUnsupported(w, header.Filename, m.String())
			return
		}
		if textx.ControlByteRatio(data) > controlByteLimit {
			writeUnsupported(w, header.Filename, "binary")
			return
		}

		text := textx.SanitizeText(string(data))
		if len(strings.TrimSpace(text)) < minResumeChars {
			writeError(w, r, fmt.Errorf("%w: resume must be at least %d characters", domain.ErrBadRequest, minResumeChars), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"text":     text,
			"filename": header.Filename,
			"bytes":    len(data),
		})
	}
}

func writeUnsupported(w http.ResponseWriter, filename, detected string) {
	writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
		Code:    "BAD_REQUEST",
		Message: "unsupported file format; paste plain text instead",
		Details: map[string]any{"filename": filename, "detected": detected},
	}})
}
