package domain

import (
	"time"

	"github.com/araddon/dateparse"
)

const (
	CatalogueTypeCatalogue = "catalogue"
	CatalogueTypePamphlet  = "pamphlet"
)

// Catalogue is a time-boxed set of page images, either brand-scoped
// (BrandId set, type "catalogue") or global (type "pamphlet"). Once
// EndDate passes it is moved to the archive by the sweep package; that
// transition is one-directional.
type Catalogue struct {
	Id        string   `json:"id"`
	Title     string   `json:"title"`
	Type      string   `json:"type"`
	BrandId   string   `json:"brandId,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Pages     []string `json:"pages"`
}

// ExpiresAt parses EndDate tolerantly. ok is false when no end date is
// set or the value cannot be parsed; such catalogues never expire.
func (c *Catalogue) ExpiresAt() (time.Time, bool) {
	if c.EndDate == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(c.EndDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Expired reports whether the catalogue's end date lies strictly before now.
func (c *Catalogue) Expired(now time.Time) bool {
	t, ok := c.ExpiresAt()
	return ok && t.Before(now)
}
