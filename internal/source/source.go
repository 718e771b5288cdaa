// Package source loads case-study slide artwork from a PDF deck or a
// directory of images.
package source

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"
)

type Source interface {
	PageCount() int
	PageSize(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks the PDF reader for .pdf paths and the image reader otherwise.
func Open(path string) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewPDFSource(path)
	}
	return NewImageSource(path)
}

type PDFSource struct {
	doc  *fitz.Document
	path string
}

func NewPDFSource(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &PDFSource{doc: doc, path: path}, nil
}

func (f *PDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *PDFSource) PageSize(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens its own document handle: a fitz document is not safe
// for concurrent use, and pages are rendered in parallel.
func (f *PDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	doc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.ImageDPI(index, float64(dpi))
}

func (f *PDFSource) Close() error {
	return f.doc.Close()
}

// AssetKey names slide i (zero-based) the way stage elements refer to it.
func AssetKey(i int) string { return fmt.Sprintf("slide-%d", i+1) }

// LoadDeck renders up to max pages (all when max <= 0) with the given
// parallelism.
func LoadDeck(ctx context.Context, src Source, dpi, max, workers int) ([]image.Image, error) {
	n := src.PageCount()
	if max > 0 && max < n {
		n = max
	}
	pages := make([]image.Image, n)

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := src.RenderPage(i, dpi)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			pages[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}
