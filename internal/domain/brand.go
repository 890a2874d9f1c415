package domain

// Brand is the root of the strict containment tree Brand -> Category ->
// Product. Identity is an opaque generated id, unique within the parent
// collection only.
type Brand struct {
	Id         string     `json:"id"`
	Name       string     `json:"name"`
	Logo       string     `json:"logo"`
	TvMode     bool       `json:"tvMode"`
	Models     []TvModel  `json:"models"`
	Categories []Category `json:"categories"`

	// LegacyVideos is the pre-model flat video list on TV-mode brands.
	// The migrate package folds it into a single synthetic model and
	// clears it; it is kept in the wire format so old blobs decode.
	LegacyVideos []string `json:"videos,omitempty"`
}

type TvModel struct {
	Id     string   `json:"id"`
	Name   string   `json:"name"`
	Videos []string `json:"videos"`
}

type Category struct {
	Id       string    `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

type Product struct {
	Id          string            `json:"id"`
	Name        string            `json:"name"`
	Sku         string            `json:"sku"`
	Price       string            `json:"price"`
	Description string            `json:"description"`
	Specs       map[string]string `json:"specs"`
	Features    []string          `json:"features"`
	BoxContents []string          `json:"boxContents"`
	Dimensions  []DimensionSet    `json:"dimensionSets"`
	Image       string            `json:"image"`
	Gallery     []string          `json:"gallery"`
	Video       string            `json:"video"`
	Manuals     []Manual          `json:"manuals"`

	// Legacy single-valued fields, folded into Dimensions/Manuals by the
	// migrate package.
	LegacyDimensions *DimensionSet `json:"dimensions,omitempty"`
	LegacyManualUrl  string        `json:"manualUrl,omitempty"`
	LegacyManualImgs []string      `json:"manualImages,omitempty"`
}

// DimensionSet is one labeled measurement set, e.g. "Boxed" or "Unboxed".
type DimensionSet struct {
	Label  string `json:"label"`
	Width  string `json:"width"`
	Height string `json:"height"`
	Depth  string `json:"depth"`
	Weight string `json:"weight"`
}

// Manual is a product document with optional rasterized page images.
type Manual struct {
	Label string   `json:"label"`
	Url   string   `json:"url"`
	Pages []string `json:"pages"`
}

// FindCategory returns the category with the given name, nil when absent.
func (b *Brand) FindCategory(name string) *Category {
	for i := range b.Categories {
		if b.Categories[i].Name == name {
			return &b.Categories[i]
		}
	}
	return nil
}

// FindProduct returns the product with the given name, nil when absent.
func (c *Category) FindProduct(name string) *Product {
	for i := range c.Products {
		if c.Products[i].Name == name {
			return &c.Products[i]
		}
	}
	return nil
}
