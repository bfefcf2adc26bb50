package docstore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// PopplerRenderer renders pages with poppler's pdftoppm command.
type PopplerRenderer struct {
	Command string // defaults to "pdftoppm"
	DPI     int    // defaults to 72
}

func (p PopplerRenderer) RenderPage(ctx context.Context, pdfPath string, page int) (image.Image, error) {
	if page < 0 {
		return nil, fmt.Errorf("page index %d out of range", page)
	}
	bin := p.Command
	if bin == "" {
		bin = "pdftoppm"
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}

	dir, err := os.MkdirTemp("", "pdftoppm-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	// pdftoppm numbers pages from 1.
	n := strconv.Itoa(page + 1)
	prefix := filepath.Join(dir, "page")
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin,
		"-png", "-r", strconv.Itoa(dpi), "-f", n, "-l", n, "-singlefile",
		pdfPath, prefix)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("render page %d: %w: %s", page, err, bytes.TrimSpace(stderr.Bytes()))
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	defer f.Close()
	return png.Decode(f)
}
