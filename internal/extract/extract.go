package extract

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// MaxUploadSize bounds an uploaded image or PDF.
const MaxUploadSize = 20 << 20

type Kind string

const (
	KindImage       Kind = "image"
	KindPDF         Kind = "pdf"
	KindUnsupported Kind = "unsupported"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type, upload an image or PDF")
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = fmt.Errorf("file exceeds %d MB", MaxUploadSize>>20)
	ErrNoText          = errors.New("no text found in PDF")
)

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Detection is the sniffed type of an upload.
type Detection struct {
	MimeType  string `json:"mimeType"`
	Extension string `json:"extension"`
	Kind      Kind   `json:"kind"`
}

// Detect sniffs data by content, never trusting the client supplied type.
func Detect(data []byte) (Detection, error) {
	if len(data) == 0 {
		return Detection{}, ErrEmptyFile
	}
	if len(data) > MaxUploadSize {
		return Detection{}, ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	d := Detection{MimeType: mt.String(), Extension: mt.Extension(), Kind: KindUnsupported}
	switch {
	case mt.Is("application/pdf"):
		d.MimeType = "application/pdf"
		d.Kind = KindPDF
	case imageTypes[baseType(mt.String())]:
		d.MimeType = baseType(mt.String())
		d.Kind = KindImage
	}
	return d, nil
}

// ToBase64 returns the standard base64 encoding of data, without a data URL prefix.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURL renders data as an inline data URL, the form question images are stored in.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + ToBase64(data)
}

// PDFText extracts the plain text of every page, pages separated by a blank line.
func PDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", ErrNoText
	}
	return strings.Join(pages, "\n\n"), nil
}

func baseType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		return strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
