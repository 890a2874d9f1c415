package importer

import "github.com/talkincode/toughkiosk/internal/domain"

// Merge folds an imported brand list into the canonical document, by name
// at every level: an existing brand gains the imported categories, an
// existing category gains the imported products, and a product with a
// matching name is overwritten in place. Unmatched names are appended.
// The brand logo is only replaced when the import actually supplied one.
func Merge(doc *domain.Document, imported []domain.Brand) {
	for _, ib := range imported {
		dst := findBrand(doc, ib.Name)
		if dst == nil {
			doc.Brands = append(doc.Brands, ib)
			continue
		}
		if ib.Logo != "" {
			dst.Logo = ib.Logo
		}
		for _, ic := range ib.Categories {
			dc := dst.FindCategory(ic.Name)
			if dc == nil {
				dst.Categories = append(dst.Categories, ic)
				continue
			}
			for _, ip := range ic.Products {
				if dp := dc.FindProduct(ip.Name); dp != nil {
					// Keep the established id so references stay valid;
					// everything else is replaced by the import.
					ip.Id = dp.Id
					*dp = ip
				} else {
					dc.Products = append(dc.Products, ip)
				}
			}
		}
	}
}

func findBrand(doc *domain.Document, name string) *domain.Brand {
	for i := range doc.Brands {
		if doc.Brands[i].Name == name {
			return &doc.Brands[i]
		}
	}
	return nil
}
