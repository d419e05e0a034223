// Package source разрешает фоновую подложку ролика: явная картинка,
// первая страница PDF или процедурный градиент, если ничего не задано.
package source

import (
	"fmt"
	"image"
	"log"
	"math/rand"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/poem2video/internal/background"
	"github.com/ivlev/poem2video/internal/palette"
)

// Backdrop is the static base layer of a video. Kind names where it came from.
type Backdrop struct {
	Image *image.RGBA
	Kind  string // "image", "pdf", "gradient"
}

// Options selects and parameterizes the backdrop.
type Options struct {
	ImagePath string
	Palette   string
	Direction background.Direction
	Width     int
	Height    int
	Zoom      float64 // итоговый размер раздувается под Ken Burns
	Rand      *rand.Rand
}

// Resolve builds the backdrop for one poem. An unreadable image path is not
// fatal: the pipeline degrades to a procedural gradient and keeps going.
func Resolve(opts Options) (*Backdrop, error) {
	if opts.Zoom < 1 {
		opts.Zoom = 1
	}
	w := int(float64(opts.Width) * opts.Zoom)
	h := int(float64(opts.Height) * opts.Zoom)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("некорректный размер подложки %dx%d", w, h)
	}

	if opts.ImagePath != "" {
		img, kind, err := loadVisual(opts.ImagePath)
		if err != nil {
			log.Printf("[!] Подложка %s недоступна (%v), переходим на градиент", opts.ImagePath, err)
		} else {
			return &Backdrop{Image: scaleToFill(img, w, h), Kind: kind}, nil
		}
	}

	name, pal, err := palette.Resolve(opts.Palette, opts.Rand)
	if err != nil {
		return nil, err
	}
	log.Printf("[*] Градиентная подложка: палитра %s", name)
	grad := background.Generate(w, h, pal, background.Options{
		Direction: opts.Direction,
		Noise:     true,
		Rand:      opts.Rand,
	})
	return &Backdrop{Image: grad, Kind: "gradient"}, nil
}

// loadVisual decodes a raster image or renders page 1 of a PDF.
func loadVisual(path string) (image.Image, string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		img, err := renderPDFPage(path, 0)
		return img, "pdf", err
	}
	img, err := decodeImage(path)
	return img, "image", err
}

// scaleToFill scales src to cover dst dimensions entirely, cropping the
// overflow around the center. CatmullRom keeps text on scanned pages crisp.
func scaleToFill(src image.Image, w, h int) *image.RGBA {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw < 1 || sh < 1 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	scale := float64(w) / float64(sw)
	if s := float64(h) / float64(sh); s > scale {
		scale = s
	}
	scaledW := int(float64(sw)*scale + 0.5)
	scaledH := int(float64(sh)*scale + 0.5)

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, sb, xdraw.Src, nil)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	offX := (scaledW - w) / 2
	offY := (scaledH - h) / 2
	xdraw.Draw(dst, dst.Bounds(), scaled, image.Pt(offX, offY), xdraw.Src)
	return dst
}
