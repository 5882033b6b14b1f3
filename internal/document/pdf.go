package document

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
)

// PDFAdapter treats each page's extracted text as one unit. A pattern split
// across a page boundary will not match; that limitation is part of the
// contract. Write-back regenerates the document as plain flowed text, one
// output page per unit: original layout, fonts and images are not preserved.
type PDFAdapter struct{}

// ExtractTextUnits returns the plain text of every page in order. A page
// that yields no extractable text becomes an empty unit rather than an
// error, matching how scanned or image-only pages behave.
func (a *PDFAdapter) ExtractTextUnits(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &Error{Kind: UnreadableSource, Path: path, Err: err}
	}
	defer f.Close()

	total := reader.NumPage()
	units := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		text, err := pageText(reader, i)
		if err != nil {
			text = ""
		}
		units = append(units, text)
	}
	return units, nil
}

// pageText extracts one page's text. The pdf library panics on some
// malformed content streams instead of returning an error; the recover turns
// that into an empty page.
func pageText(reader *pdf.Reader, number int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", number, r)
		}
	}()

	page := reader.Page(number)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// WriteTextUnits renders the units as a new PDF at destPath, one page per
// unit. The source document is not consulted.
func (a *PDFAdapter) WriteTextUnits(_, destPath string, units []string) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 11)
	translate := doc.UnicodeTranslatorFromDescriptor("")

	if len(units) == 0 {
		doc.AddPage()
	}
	for _, unit := range units {
		doc.AddPage()
		doc.MultiCell(0, 5, translate(unit), "", "L", false)
	}

	err := writeAtomic(destPath, doc.Output)
	if err != nil {
		return &Error{Kind: WriteFailure, Path: destPath, Err: err}
	}
	return nil
}
