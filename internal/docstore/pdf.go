package docstore

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF")

// IsPDF reports whether the file at p starts with the PDF magic bytes.
// Files shorter than the magic are simply not PDFs.
func IsPDF(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()
	return hasPDFMagic(f)
}

func hasPDFMagic(r io.Reader) (bool, error) {
	buf := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(buf, pdfMagic), nil
}

// PageCount returns the number of pages declared by the PDF at p.
// Unreadable or malformed documents count as zero pages.
func PageCount(p string) (n int) {
	f, err := os.Open(p)
	if err != nil {
		return 0
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()

	r, err := pdf.NewReader(f, st.Size())
	if err != nil {
		return 0
	}
	if n = r.NumPage(); n < 0 {
		return 0
	}
	return n
}
