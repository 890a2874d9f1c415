package store

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
)

// Rasterizer turns an uploaded PDF into page images. The conversion itself
// is an external collaborator; only its HTTP contract lives here.
type Rasterizer interface {
	RasterizePDF(ctx context.Context, pdfURL string) ([]string, error)
}

// RasterizeFunc adapts a function to Rasterizer, used in tests.
type RasterizeFunc func(ctx context.Context, pdfURL string) ([]string, error)

func (f RasterizeFunc) RasterizePDF(ctx context.Context, pdfURL string) ([]string, error) {
	return f(ctx, pdfURL)
}

// HTTPRasterizer calls the rasterizer service. Request: {"url": ...};
// response: {"pages": [...page image urls...]}.
type HTTPRasterizer struct {
	endpoint string
}

func NewHTTPRasterizer(endpoint string) *HTTPRasterizer {
	return &HTTPRasterizer{endpoint: endpoint}
}

func (r *HTTPRasterizer) RasterizePDF(ctx context.Context, pdfURL string) ([]string, error) {
	if r.endpoint == "" {
		return nil, errors.New("rasterizer not configured")
	}
	var resp struct {
		Pages []string `json:"pages"`
	}
	err := gout.POST(r.endpoint).
		WithContext(ctx).
		SetTimeout(60 * time.Second).
		SetJSON(gout.H{"url": pdfURL}).
		BindJSON(&resp).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "rasterize pdf")
	}
	return resp.Pages, nil
}
