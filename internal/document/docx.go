package document

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

const wordDocumentPath = "word/document.xml"

// DocxAdapter treats each w:p paragraph of word/document.xml as one text
// unit, body and table paragraphs alike. The runs inside a paragraph are
// merged before transformation, so character-level styling that only covered
// part of a replaced span is lost; headers and footers live in other package
// parts and are not touched.
type DocxAdapter struct{}

// ExtractTextUnits returns the concatenated run text of every paragraph, in
// document order.
func (a *DocxAdapter) ExtractTextUnits(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &Error{Kind: UnreadableSource, Path: path, Err: err}
	}
	defer zr.Close()

	doc, err := readDocumentXML(&zr.Reader)
	if err != nil {
		return nil, &Error{Kind: UnreadableSource, Path: path, Err: err}
	}

	paragraphs := doc.FindElements("//w:p")
	units := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		units[i] = paragraphText(p)
	}
	return units, nil
}

// WriteTextUnits overwrites each paragraph's text with the corresponding
// unit and saves a copy of the package to destPath. Every part other than
// word/document.xml is carried over byte for byte.
func (a *DocxAdapter) WriteTextUnits(srcPath, destPath string, units []string) error {
	zr, err := zip.OpenReader(srcPath)
	if err != nil {
		return &Error{Kind: UnreadableSource, Path: srcPath, Err: err}
	}
	defer zr.Close()

	doc, err := readDocumentXML(&zr.Reader)
	if err != nil {
		return &Error{Kind: UnreadableSource, Path: srcPath, Err: err}
	}

	paragraphs := doc.FindElements("//w:p")
	if len(paragraphs) != len(units) {
		return &Error{Kind: WriteFailure, Path: destPath,
			Err: fmt.Errorf("%d units for %d paragraphs", len(units), len(paragraphs))}
	}
	for i, p := range paragraphs {
		setParagraphText(p, units[i])
	}

	xmlBytes, err := doc.WriteToBytes()
	if err != nil {
		return &Error{Kind: WriteFailure, Path: destPath, Err: err}
	}

	err = writeAtomic(destPath, func(w io.Writer) error {
		return rewritePackage(&zr.Reader, w, xmlBytes)
	})
	if err != nil {
		return &Error{Kind: WriteFailure, Path: destPath, Err: err}
	}
	return nil
}

func readDocumentXML(zr *zip.Reader) (*etree.Document, error) {
	for _, f := range zr.File {
		if f.Name != wordDocumentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", wordDocumentPath, err)
		}
		defer rc.Close()

		doc := etree.NewDocument()
		if _, err := doc.ReadFrom(rc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", wordDocumentPath, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%s not found in package", wordDocumentPath)
}

// paragraphText merges all w:t runs of a paragraph into one string.
func paragraphText(p *etree.Element) string {
	var b strings.Builder
	for _, t := range p.FindElements(".//w:t") {
		b.WriteString(t.Text())
	}
	return b.String()
}

// setParagraphText puts the whole new text into the paragraph's first run and
// empties the rest. A paragraph without runs has no text to carry and is left
// alone.
func setParagraphText(p *etree.Element, text string) {
	runs := p.FindElements(".//w:t")
	if len(runs) == 0 {
		return
	}
	runs[0].SetText(text)
	runs[0].CreateAttr("xml:space", "preserve")
	for _, t := range runs[1:] {
		t.SetText("")
	}
}

// rewritePackage copies every zip entry from the source package, substituting
// the updated document.xml.
func rewritePackage(zr *zip.Reader, w io.Writer, documentXML []byte) error {
	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		header := f.FileHeader
		entry, err := zw.CreateHeader(&header)
		if err != nil {
			return err
		}
		if f.Name == wordDocumentPath {
			if _, err := entry.Write(documentXML); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return zw.Close()
}
