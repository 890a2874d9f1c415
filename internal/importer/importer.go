// Package importer reconciles an externally supplied hierarchical file set
// (Brand/Category/Product/...) into document entities. Import builds a
// partial brand list; Merge folds it into the canonical document.
package importer

import (
	"context"
	"encoding/base64"
	"mime"
	"path"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/store"
	"github.com/talkincode/toughkiosk/pkg/common"
)

// File is one entry of the flat import selection; Path is relative and
// slash-separated, its segments carry the hierarchy.
type File struct {
	Path string
	Data []byte
}

type Importer struct {
	assets    store.AssetStore
	raster    store.Rasterizer
	maxInline int64
}

func New(assets store.AssetStore, raster store.Rasterizer, maxInline int64) *Importer {
	return &Importer{assets: assets, raster: raster, maxInline: maxInline}
}

type productKey struct {
	brand, category, product string
}

// Import walks the selection and builds the imported brand list. When
// targetBrand is set the paths are Category/Product/... under that brand,
// otherwise the first segment names the brand. Files too shallow to reach
// a product become brand-level assets (logo/icon by filename).
//
// Products are not de-duplicated within one run; duplicate names collapse
// only at merge time, by name.
func (im *Importer) Import(ctx context.Context, files []File, targetBrand string) ([]domain.Brand, error) {
	var brands []domain.Brand

	brandByName := func(name string) *domain.Brand {
		for i := range brands {
			if brands[i].Name == name {
				return &brands[i]
			}
		}
		brands = append(brands, domain.Brand{
			Id:         common.UUID(),
			Name:       name,
			Categories: []domain.Category{},
			Models:     []domain.TvModel{},
		})
		return &brands[len(brands)-1]
	}

	groups := make(map[productKey][]File)
	var order []productKey

	for _, f := range files {
		segs := splitPath(f.Path)
		if len(segs) == 0 {
			continue
		}

		var key productKey
		switch {
		case targetBrand != "" && len(segs) >= 3:
			key = productKey{targetBrand, segs[0], segs[1]}
		case targetBrand == "" && len(segs) >= 4:
			key = productKey{segs[0], segs[1], segs[2]}
		default:
			// Too shallow for a product: brand-level asset.
			brandName := targetBrand
			if brandName == "" {
				brandName = segs[0]
			}
			if err := im.applyBrandAsset(ctx, brandByName(brandName), f); err != nil {
				return nil, err
			}
			continue
		}

		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	for _, key := range order {
		b := brandByName(key.brand)
		cat := b.FindCategory(key.category)
		if cat == nil {
			b.Categories = append(b.Categories, domain.Category{
				Id:       common.UUID(),
				Name:     key.category,
				Products: []domain.Product{},
			})
			cat = &b.Categories[len(b.Categories)-1]
		}

		// Always a fresh product; de-dup is the merge step's concern.
		p, err := im.buildProduct(ctx, key.product, groups[key])
		if err != nil {
			return nil, err
		}
		cat.Products = append(cat.Products, *p)
	}

	return brands, nil
}

func (im *Importer) applyBrandAsset(ctx context.Context, b *domain.Brand, f File) error {
	name := strings.ToLower(path.Base(f.Path))
	if !strings.Contains(name, "logo") && !strings.Contains(name, "icon") {
		zap.S().Debugf("ignoring stray brand-level file %s", f.Path)
		return nil
	}
	url, err := im.placeAsset(ctx, f)
	if err != nil {
		return err
	}
	b.Logo = url
	return nil
}

func (im *Importer) buildProduct(ctx context.Context, name string, files []File) (*domain.Product, error) {
	p := &domain.Product{
		Id:          common.UUID(),
		Name:        name,
		Specs:       map[string]string{},
		Features:    []string{},
		BoxContents: []string{},
		Dimensions:  []domain.DimensionSet{},
		Gallery:     []string{},
		Manuals:     []domain.Manual{},
	}

	var images, pdfs []File
	for _, f := range files {
		base := path.Base(f.Path)
		switch {
		case base == "info.txt":
			parseInfo(p, f.Data)
		case isImage(base):
			images = append(images, f)
		case isVideo(base):
			url, err := im.placeAsset(ctx, f)
			if err != nil {
				return nil, err
			}
			p.Video = url
		case strings.EqualFold(path.Ext(base), ".pdf"):
			pdfs = append(pdfs, f)
		default:
			zap.S().Debugf("ignoring unrecognized file %s", f.Path)
		}
	}

	// Primary image: any name containing main/cover/primary, else the
	// first; the rest fill the gallery.
	primary := -1
	for i, f := range images {
		lower := strings.ToLower(path.Base(f.Path))
		if strings.Contains(lower, "main") || strings.Contains(lower, "cover") || strings.Contains(lower, "primary") {
			primary = i
			break
		}
	}
	if primary < 0 && len(images) > 0 {
		primary = 0
	}
	for i, f := range images {
		url, err := im.placeAsset(ctx, f)
		if err != nil {
			return nil, err
		}
		if i == primary {
			p.Image = url
		} else {
			p.Gallery = append(p.Gallery, url)
		}
	}

	for _, f := range pdfs {
		url, err := im.placeAsset(ctx, f)
		if err != nil {
			return nil, err
		}
		man := domain.Manual{Label: strings.TrimSuffix(path.Base(f.Path), path.Ext(f.Path)), Url: url, Pages: []string{}}
		if im.raster != nil && !strings.HasPrefix(url, "data:") {
			pages, err := im.raster.RasterizePDF(ctx, url)
			if err != nil {
				zap.S().Warnf("manual page extraction failed for %s: %s", f.Path, err.Error())
			} else {
				man.Pages = pages
			}
		}
		p.Manuals = append(p.Manuals, man)
	}

	return p, nil
}

// UploadAsset places a single standalone asset (e.g. a device snapshot)
// through the same upload-or-inline policy the import uses.
func (im *Importer) UploadAsset(ctx context.Context, name string, data []byte) (string, error) {
	return im.placeAsset(ctx, File{Path: name, Data: data})
}

// placeAsset uploads a binary to the remote asset store. When the upload
// fails, small assets fall back to inline embedding; an oversized asset
// aborts the whole import instead of silently bloating the document.
func (im *Importer) placeAsset(ctx context.Context, f File) (string, error) {
	url, err := im.assets.Upload(ctx, path.Base(f.Path), f.Data)
	if err == nil {
		return url, nil
	}
	if int64(len(f.Data)) > im.maxInline {
		return "", errors.Errorf(
			"import aborted: %s is %s, exceeds the %s inline ceiling and could not be uploaded: %s",
			f.Path, common.HumanBytes(int64(len(f.Data))), common.HumanBytes(im.maxInline), err.Error())
	}
	zap.S().Warnf("upload failed for %s, embedding inline: %s", f.Path, err.Error())
	mimeType := mime.TypeByExtension(path.Ext(f.Path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(f.Data), nil
}

func splitPath(p string) []string {
	p = strings.Trim(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

func isImage(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}

func isVideo(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp4", ".webm", ".mov":
		return true
	}
	return false
}
