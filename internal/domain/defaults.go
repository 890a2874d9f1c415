package domain

// CurrentSchemaVersion is stamped on every normalized document.
const CurrentSchemaVersion = 3

// Well-known super admin identity. The migrate package forces this account
// to full permissions whenever name and pin match exactly, overriding any
// stored flags. Authorization safety net for recovered/hand-edited blobs.
const (
	SuperAdminName = "admin"
	SuperAdminPin  = "2580"
)

// DefaultHero is the hard-coded hero fallback used when a blob carries no
// usable hero section.
var DefaultHero = HeroConfig{
	Enabled:  true,
	Title:    "Welcome",
	Subtitle: "",
	Images:   []string{},
}

var DefaultScreensaver = ScreensaverConfig{
	Enabled:  true,
	DelaySec: 300,
	Media:    []string{},
}

var DefaultAppIcon = AppIconConfig{
	Icon:  "",
	Label: "ToughKiosk",
}

// DefaultDocument returns the document every device falls back to when
// both the remote store and the local cache are unavailable.
func DefaultDocument() *Document {
	return &Document{
		Version:     CurrentSchemaVersion,
		Hero:        DefaultHero,
		Screensaver: DefaultScreensaver,
		Catalogues:  []Catalogue{},
		Brands:      []Brand{},
		AdZones:     []AdZone{},
		Admins: []AdminUser{
			{
				Id:           "admin",
				Name:         SuperAdminName,
				Pin:          SuperAdminPin,
				IsSuperAdmin: true,
				Permissions:  FullPermissions(),
			},
		},
		AppIcon: DefaultAppIcon,
		Archive: ArchiveData{
			Catalogues: []Catalogue{},
			Brands:     []Brand{},
			DeletedAt:  map[string]string{},
		},
	}
}
