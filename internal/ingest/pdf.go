package ingest

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// pageText is the plain text of one PDF page.
type pageText struct {
	page int
	text string
}

// readPages extracts the plain text of every page in the PDF.
// An unopenable or unparsable file is a fatal error for the ingestion call.
// A single page whose text cannot be decoded yields an empty page instead;
// text extraction quality varies with the PDF's font encoding.
func readPages(path string) ([]pageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadablePDF, path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]pageText, 0, total)
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, pageText{page: i, text: text})
	}
	return pages, nil
}
