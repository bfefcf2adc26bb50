package docstore

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Renderer rasterises a single zero-based page of a PDF file.
type Renderer interface {
	RenderPage(ctx context.Context, pdfPath string, page int) (image.Image, error)
}

// ThumbName returns the thumbnail path for page n of the PDF at p,
// e.g. "a/b/20240102101500-7-thumb003.png" for n = 3.
func ThumbName(p string, n int) string {
	stem := strings.TrimSuffix(p, filepath.Ext(p))
	return fmt.Sprintf("%s-thumb%03d.png", stem, n)
}

// GenerateThumbs writes one PNG per page next to pdfPath and returns how many were written.
// The page count is read first; rendering stops at the first page that fails, so the
// written set is always contiguous from index 0. When the parser cannot count the pages
// of a file that still carries the PDF magic, pages are rendered until the renderer gives up.
func GenerateThumbs(ctx context.Context, r Renderer, pdfPath string, width int) int {
	if !strings.EqualFold(filepath.Ext(pdfPath), ".pdf") {
		return 0
	}
	pages := PageCount(pdfPath)
	if pages == 0 {
		if ok, err := IsPDF(pdfPath); err != nil || !ok {
			return 0
		}
		pages = maxThumbs
	}

	written := 0
	for page := 0; page < pages; page++ {
		if ctx.Err() != nil {
			break
		}
		img, err := r.RenderPage(ctx, pdfPath, page)
		if err != nil || img == nil {
			break
		}
		if err := writePNG(ThumbName(pdfPath, page), Scale(img, width)); err != nil {
			break
		}
		written++
	}
	return written
}

// Scale resizes img to the given width keeping its aspect ratio.
// A non-positive width returns img unchanged.
func Scale(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 {
		return img
	}
	height := (b.Dy()*width + b.Dx()/2) / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func writePNG(p string, img image.Image) error {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return err
	}
	return nil
}
