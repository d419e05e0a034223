package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gen2brain/go-fitz"
)

// decodeImage opens a jpeg/png file as an image.
func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("декодирование %s: %w", path, err)
	}
	return img, nil
}

// renderPDFPage rasterizes one PDF page at a DPI high enough for a 1080-wide
// vertical frame.
func renderPDFPage(path string, index int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("открытие PDF %s: %w", path, err)
	}
	defer doc.Close()

	if index < 0 || index >= doc.NumPage() {
		return nil, fmt.Errorf("страница %d вне диапазона (%d страниц)", index, doc.NumPage())
	}
	return doc.ImageDPI(index, 150)
}
