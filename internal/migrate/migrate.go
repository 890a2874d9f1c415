// Package migrate repairs arbitrarily shaped document blobs into the
// current schema. Normalize is total and idempotent: malformed input
// degrades to defaults, it never returns an error. A failure here would
// leave every device unable to read the shared document, so there is no
// error path at all.
package migrate

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"github.com/talkincode/toughkiosk/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NormalizeJSON decodes a raw serialized document and normalizes it.
// Undecodable bytes degrade to the default document.
func NormalizeJSON(data []byte) *domain.Document {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Normalize(nil)
	}
	return Normalize(raw)
}

// Normalize converts an arbitrary-shaped document into the current schema.
// Each repair below is independent; ordering only matters where a legacy
// field is folded and then cleared.
func Normalize(raw map[string]interface{}) *domain.Document {
	doc := domain.DefaultDocument()
	if raw == nil {
		return doc
	}

	// Bulk decode with weak typing; fields that cannot be coerced keep
	// their zero value and are repaired below.
	decoded := domain.Document{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err == nil {
		// Decode errors are deliberately ignored: whatever fields did
		// decode are kept, the rest fall through to defaults.
		_ = dec.Decode(raw)
	}

	out := &decoded
	out.Version = domain.CurrentSchemaVersion

	// Config sub-objects default wholesale when missing or malformed.
	if !isMap(raw["heroConfig"]) {
		out.Hero = domain.DefaultHero
	}
	if !isMap(raw["screensaverConfig"]) {
		out.Screensaver = domain.DefaultScreensaver
	}
	if !isMap(raw["appIcon"]) {
		out.AppIcon = domain.DefaultAppIcon
	}
	if out.Screensaver.DelaySec <= 0 {
		out.Screensaver.DelaySec = domain.DefaultScreensaver.DelaySec
	}

	// Every expected list exists.
	if out.Hero.Images == nil {
		out.Hero.Images = []string{}
	}
	if out.Screensaver.Media == nil {
		out.Screensaver.Media = []string{}
	}
	if out.Catalogues == nil {
		out.Catalogues = []domain.Catalogue{}
	}
	if out.Brands == nil {
		out.Brands = []domain.Brand{}
	}
	if out.AdZones == nil {
		out.AdZones = []domain.AdZone{}
	}
	if out.Admins == nil {
		out.Admins = []domain.AdminUser{}
	}
	if out.Archive.Catalogues == nil {
		out.Archive.Catalogues = []domain.Catalogue{}
	}
	if out.Archive.Brands == nil {
		out.Archive.Brands = []domain.Brand{}
	}
	if out.Archive.DeletedAt == nil {
		out.Archive.DeletedAt = map[string]string{}
	}

	normalizeAdmins(out)
	for i := range out.Brands {
		normalizeBrand(&out.Brands[i])
	}
	for i := range out.Catalogues {
		normalizeCatalogue(&out.Catalogues[i])
	}
	for i := range out.Archive.Catalogues {
		normalizeCatalogue(&out.Archive.Catalogues[i])
	}

	// Fleet content inside the blob is never authoritative; it is dropped
	// here and overlaid from the presence table by the sync engine.
	out.Fleet = nil

	return out
}

func normalizeAdmins(doc *domain.Document) {
	for i := range doc.Admins {
		adm := &doc.Admins[i]
		if adm.Permissions == nil {
			adm.Permissions = make(map[string]bool, len(domain.PermissionNames))
			for _, n := range domain.PermissionNames {
				adm.Permissions[n] = false
			}
		}
		// Authorization safety net: the well-known super admin always
		// carries full permissions, whatever the blob says.
		if adm.Name == domain.SuperAdminName && adm.Pin == domain.SuperAdminPin {
			adm.IsSuperAdmin = true
			adm.Permissions = domain.FullPermissions()
		}
	}
}

func normalizeBrand(b *domain.Brand) {
	if b.Categories == nil {
		b.Categories = []domain.Category{}
	}
	if b.Models == nil {
		b.Models = []domain.TvModel{}
	}

	// Legacy flat video list on a TV-mode brand becomes one synthetic
	// model; folded only once, then the legacy field is cleared.
	if b.TvMode && len(b.LegacyVideos) > 0 && len(b.Models) == 0 {
		b.Models = append(b.Models, domain.TvModel{
			Name:   b.Name,
			Videos: b.LegacyVideos,
		})
	}
	b.LegacyVideos = nil

	for ci := range b.Categories {
		c := &b.Categories[ci]
		if c.Products == nil {
			c.Products = []domain.Product{}
		}
		for pi := range c.Products {
			normalizeProduct(&c.Products[pi])
		}
	}
}

func normalizeProduct(p *domain.Product) {
	if p.Specs == nil {
		p.Specs = map[string]string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.BoxContents == nil {
		p.BoxContents = []string{}
	}
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
	if p.Dimensions == nil {
		p.Dimensions = []domain.DimensionSet{}
	}
	if p.Manuals == nil {
		p.Manuals = []domain.Manual{}
	}

	// Legacy single dimensions object becomes a one-element labeled list.
	if p.LegacyDimensions != nil {
		if len(p.Dimensions) == 0 {
			d := *p.LegacyDimensions
			if d.Label == "" {
				d.Label = "Standard"
			}
			p.Dimensions = append(p.Dimensions, d)
		}
		p.LegacyDimensions = nil
	}

	// Legacy single-manual fields become a one-element manuals list, but
	// only when the list is empty: repeated normalization must not
	// duplicate the entry.
	if (p.LegacyManualUrl != "" || len(p.LegacyManualImgs) > 0) && len(p.Manuals) == 0 {
		p.Manuals = append(p.Manuals, domain.Manual{
			Label: "Manual",
			Url:   p.LegacyManualUrl,
			Pages: append([]string{}, p.LegacyManualImgs...),
		})
	}
	p.LegacyManualUrl = ""
	p.LegacyManualImgs = nil
}

func normalizeCatalogue(c *domain.Catalogue) {
	if c.Pages == nil {
		c.Pages = []string{}
	}
	// Type discriminator backfill derived from brand scoping.
	if c.Type == "" {
		if c.BrandId != "" {
			c.Type = domain.CatalogueTypeCatalogue
		} else {
			c.Type = domain.CatalogueTypePamphlet
		}
	}
}

func isMap(v interface{}) bool {
	if v == nil {
		return false
	}
	_, err := cast.ToStringMapE(v)
	return err == nil
}
