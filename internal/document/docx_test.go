package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// buildDocx writes a minimal DOCX package where each element of paragraphs
// is one w:p and each inner string is one w:r/w:t run.
func buildDocx(t *testing.T, path string, paragraphs [][]string) {
	t.Helper()

	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, runs := range paragraphs {
		body.WriteString("<w:p>")
		for _, run := range runs {
			body.WriteString(`<w:r><w:t xml:space="preserve">`)
			body.WriteString(run)
			body.WriteString(`</w:t></w:r>`)
		}
		body.WriteString("</w:p>")
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":         relsXML,
		"word/document.xml":   body.String(),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestDocxExtractMergesRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.docx")
	buildDocx(t, path, [][]string{
		{"Cliente ", "KFC España", " con CIF A12345678"},
		{"Segunda línea"},
	})

	adapter := &DocxAdapter{}
	units, err := adapter.ExtractTextUnits(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Cliente KFC España con CIF A12345678",
		"Segunda línea",
	}, units)
}

func TestDocxWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.docx")
	dest := filepath.Join(dir, "out.docx")
	buildDocx(t, src, [][]string{
		{"Cliente ", "KFC España", " con CIF A12345678"},
		{"Segunda línea"},
	})

	adapter := &DocxAdapter{}
	err := adapter.WriteTextUnits(src, dest, []string{
		"Cliente [CLIENTE] con CIF [CIF-REDACTED]",
		"Segunda línea",
	})
	require.NoError(t, err)

	// The output must be an independently parseable package.
	units, err := adapter.ExtractTextUnits(dest)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Cliente [CLIENTE] con CIF [CIF-REDACTED]",
		"Segunda línea",
	}, units)

	// Unrelated package parts are carried over.
	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["[Content_Types].xml"])
	assert.True(t, names["_rels/.rels"])
}

func TestDocxExtractUnreadableSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0644))

	adapter := &DocxAdapter{}
	_, err := adapter.ExtractTextUnits(path)
	require.Error(t, err)

	var docErr *Error
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, UnreadableSource, docErr.Kind)
}

func TestDocxWriteUnitCountMismatchLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.docx")
	dest := filepath.Join(dir, "out.docx")
	buildDocx(t, src, [][]string{{"uno"}, {"dos"}})

	adapter := &DocxAdapter{}
	err := adapter.WriteTextUnits(src, dest, []string{"solo uno"})
	require.Error(t, err)

	var docErr *Error
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, WriteFailure, docErr.Kind)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no partial output may remain")
}

func TestDocxParagraphWithoutRuns(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.docx")
	dest := filepath.Join(dir, "out.docx")
	buildDocx(t, src, [][]string{{}, {"texto"}})

	adapter := &DocxAdapter{}
	units, err := adapter.ExtractTextUnits(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "texto"}, units)

	require.NoError(t, adapter.WriteTextUnits(src, dest, []string{"", "otro"}))
	units, err = adapter.ExtractTextUnits(dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "otro"}, units)
}
