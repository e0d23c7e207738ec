package pdfextract

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads the entire content of r and extracts plain text from the
// PDF. Returns an empty string and nil error when the PDF has no extractable
// text; the caller decides whether that is an ingestion failure.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
