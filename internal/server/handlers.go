package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docveil/docveil/internal/document"
	"github.com/docveil/docveil/internal/pipeline"
	"go.uber.org/zap"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// handleAnonymize accepts one multipart upload under the "document" field,
// runs it through the pipeline and streams the redacted file back as an
// attachment. Each request gets its own scratch directory and its own
// pipeline run, so concurrent uploads never share state.
func (s *Server) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Limits.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.Limits.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing \"document\" form field")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if _, err := document.ForPath(name); err != nil {
		s.writeError(w, http.StatusUnsupportedMediaType, "only .docx and .pdf files are supported")
		return
	}

	requestDir, err := os.MkdirTemp(s.scratchDir, "upload-*")
	if err != nil {
		s.logger.Error("Failed to create scratch dir", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer os.RemoveAll(requestDir)

	inputPath := filepath.Join(requestDir, name)
	if err := saveUpload(file, inputPath); err != nil {
		s.logger.Error("Failed to save upload", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pipe := pipeline.New(s.config.Rules.Path, filepath.Join(requestDir, "out"), s.logger, s.hub)
	outputPath, err := pipe.Process(inputPath)
	if err != nil {
		s.writeError(w, statusForError(err), fmt.Sprintf("anonymization failed: %v", err))
		return
	}

	s.serveAttachment(w, outputPath, "anonymized_"+name)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name":       "docveil",
		"rules_path": s.config.Rules.Path,
		"formats":    []string{"docx", "pdf"},
	})
}

func (s *Server) serveAttachment(w http.ResponseWriter, path, downloadName string) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Error("Failed to open output file", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", mimeForPath(path))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	}
	io.Copy(w, f)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func saveUpload(src io.Reader, destPath string) error {
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// statusForError maps pipeline failures onto HTTP status codes.
func statusForError(err error) int {
	var docErr *document.Error
	if errors.As(err, &docErr) {
		switch docErr.Kind {
		case document.UnsupportedFormat:
			return http.StatusUnsupportedMediaType
		case document.UnreadableSource:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return docxMIME
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
