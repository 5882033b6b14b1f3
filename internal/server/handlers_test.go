package server

import (
	"archive/zip"
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docveil/docveil/internal/config"
	"github.com/docveil/docveil/internal/document"
	"github.com/docveil/docveil/internal/events"
	"github.com/docveil/docveil/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(`
exact_replacements:
  - pattern: "KFC España"
    replacement: "ABC S.A."
regex_replacements:
  - pattern: '[A-Z]\d{8}'
    replacement_value: "[CIF-REDACTED]"
`), 0644))

	cfg := config.GetDefaults()
	cfg.Rules.Path = rulesPath
	cfg.Dirs.Output = filepath.Join(dir, "out")
	cfg.Dirs.Scratch = filepath.Join(dir, "scratch")

	srv, err := New(cfg, logger.NewNop(), events.NewHub(logger.NewNop().Logger))
	require.NoError(t, err)
	return srv
}

func buildUploadDocx(t *testing.T, paragraph string) []byte {
	t.Helper()

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + paragraph + `</w:t></w:r></w:p>`)
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/document.xml": body.String(),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestHandleIndexServesForm(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/anonymize"`)
}

func TestHandleAnonymizeDocxUpload(t *testing.T) {
	srv := newTestServer(t)
	docx := buildUploadDocx(t, "Cliente KFC España con CIF A12345678")
	body, contentType := multipartUpload(t, "document", "cliente.docx", docx)

	req := httptest.NewRequest("POST", "/anonymize", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docxMIME, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "anonymized_cliente.docx")

	// The response body must be a parseable DOCX with the redacted text.
	out := filepath.Join(t.TempDir(), "respuesta.docx")
	require.NoError(t, os.WriteFile(out, rec.Body.Bytes(), 0644))

	adapter := &document.DocxAdapter{}
	units, err := adapter.ExtractTextUnits(out)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Cliente ABC S.A. con CIF [CIF-REDACTED]", units[0])
}

func TestHandleAnonymizeUnsupportedExtension(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartUpload(t, "document", "notas.txt", []byte("hola"))

	req := httptest.NewRequest("POST", "/anonymize", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestHandleAnonymizeCorruptUpload(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartUpload(t, "document", "roto.docx", []byte("not a zip"))

	req := httptest.NewRequest("POST", "/anonymize", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnonymizeMissingField(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartUpload(t, "otro", "cliente.docx", []byte("x"))

	req := httptest.NewRequest("POST", "/anonymize", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusUnsupportedMediaType,
		statusForError(&document.Error{Kind: document.UnsupportedFormat}))
	assert.Equal(t, http.StatusBadRequest,
		statusForError(&document.Error{Kind: document.UnreadableSource}))
	assert.Equal(t, http.StatusInternalServerError,
		statusForError(&document.Error{Kind: document.WriteFailure}))
	assert.Equal(t, http.StatusInternalServerError,
		statusForError(io.ErrUnexpectedEOF))
}

func TestMimeForPath(t *testing.T) {
	assert.Equal(t, docxMIME, mimeForPath("a.docx"))
	assert.Equal(t, "application/pdf", mimeForPath("a.PDF"))
	assert.True(t, strings.HasPrefix(mimeForPath("a.bin"), "application/octet-stream"))
}
