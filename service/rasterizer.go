package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	xdraw "golang.org/x/image/draw"

	"github.com/julilatch/rs-api/config"
)

const jpegQuality = 90

// RasterizerService renders PDF pages into JPEG buffers using MuPDF.
type RasterizerService struct {
	cfg *config.PipelineConfig
}

func NewRasterizerService(cfg *config.PipelineConfig) *RasterizerService {
	return &RasterizerService{cfg: cfg}
}

// Rasterize renders every page of the document, in page order. Pages are
// rendered in ranges of ImageBatchSize pages, each range through its own
// document handle, so a very large document never holds more than one
// range of decoded pages at a time.
func (s *RasterizerService) Rasterize(ctx context.Context, data []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	total := doc.NumPage()
	doc.Close()

	if total == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	images := make([][]byte, 0, total)
	for _, r := range pageRanges(total, s.cfg.ImageBatchSize) {
		chunk, err := s.renderRange(ctx, data, r)
		if err != nil {
			return nil, err
		}
		images = append(images, chunk...)
	}
	return images, nil
}

// pageRange is a half-open, zero-based page interval.
type pageRange struct {
	start, end int
}

func pageRanges(total, chunk int) []pageRange {
	if chunk < 1 {
		chunk = total
	}

	var ranges []pageRange
	for start := 0; start < total; start += chunk {
		end := start + chunk
		if end > total {
			end = total
		}
		ranges = append(ranges, pageRange{start: start, end: end})
	}
	return ranges
}

func (s *RasterizerService) renderRange(ctx context.Context, data []byte, r pageRange) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	out := make([][]byte, 0, r.end-r.start)
	for page := r.start; page < r.end; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(page, float64(s.cfg.Resolution.Density))
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page+1, err)
		}

		buf, err := s.encodePage(img)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", page+1, err)
		}
		out = append(out, buf)
	}
	return out, nil
}

func (s *RasterizerService) encodePage(img image.Image) ([]byte, error) {
	res := s.cfg.Resolution
	if res.Width > 0 && res.Height > 0 {
		scaled := image.NewRGBA(image.Rect(0, 0, res.Width, res.Height))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
