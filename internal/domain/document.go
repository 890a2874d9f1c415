package domain

// Document is the single canonical configuration aggregate shared by the
// editor and every display device. It is stored as one JSONB blob in the
// hub database and as one serialized value in each device's local cache.
//
// The json tags are the wire format of the blob and must stay stable across
// schema generations; legacy shapes are repaired by the migrate package.
type Document struct {
	Version     int               `json:"version"`
	Hero        HeroConfig        `json:"heroConfig"`
	Screensaver ScreensaverConfig `json:"screensaverConfig"`
	Catalogues  []Catalogue       `json:"catalogues"`
	Brands      []Brand           `json:"brands"`
	AdZones     []AdZone          `json:"adZones"`
	Admins      []AdminUser       `json:"adminUsers"`
	AppIcon     AppIconConfig     `json:"appIcon"`
	Archive     ArchiveData       `json:"archive"`

	// Fleet is transient: it is overlaid from the presence table after
	// every fetch and stripped before every save. The blob copy is never
	// authoritative.
	Fleet []FleetEntry `json:"fleet,omitempty"`
}

type HeroConfig struct {
	Enabled  bool     `json:"enabled"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Images   []string `json:"images"`
}

type ScreensaverConfig struct {
	Enabled  bool     `json:"enabled"`
	DelaySec int      `json:"delaySec"`
	Media    []string `json:"media"`
}

type AdZone struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	Media       []string `json:"media"`
	IntervalSec int      `json:"intervalSec"`
}

type AppIconConfig struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// AdminUser is an editor account gated by a shared PIN. IsSuperAdmin
// implies every permission regardless of the stored flags.
type AdminUser struct {
	Id           string          `json:"id"`
	Name         string          `json:"name"`
	Pin          string          `json:"pin"`
	IsSuperAdmin bool            `json:"isSuperAdmin"`
	Permissions  map[string]bool `json:"permissions"`
}

// Permission names carried in AdminUser.Permissions.
var PermissionNames = []string{
	"manageBrands",
	"manageCatalogues",
	"manageAds",
	"manageFleet",
	"manageAdmins",
	"importData",
}

// HasPermission honours the super-admin escape hatch before the stored set.
func (u *AdminUser) HasPermission(name string) bool {
	if u.IsSuperAdmin {
		return true
	}
	return u.Permissions[name]
}

// FullPermissions returns a permission set with every known flag enabled.
func FullPermissions() map[string]bool {
	m := make(map[string]bool, len(PermissionNames))
	for _, n := range PermissionNames {
		m[n] = true
	}
	return m
}

// ArchiveData accumulates expired entries. Append-only: nothing is ever
// restored automatically out of it.
type ArchiveData struct {
	Catalogues []Catalogue       `json:"catalogues"`
	Brands     []Brand           `json:"brands"`
	DeletedAt  map[string]string `json:"deletedAt"`
}
