package migrate

import (
	"reflect"
	"testing"

	"github.com/talkincode/toughkiosk/internal/domain"
)

func roundtrip(t *testing.T, doc *domain.Document) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return raw
}

func TestNormalizeNilInput(t *testing.T) {
	doc := Normalize(nil)
	if doc == nil {
		t.Fatal("expected a document")
	}
	if doc.Version != domain.CurrentSchemaVersion {
		t.Errorf("version = %d", doc.Version)
	}
	if doc.Catalogues == nil || doc.Brands == nil || doc.Admins == nil {
		t.Error("expected all lists initialized")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []map[string]interface{}{
		nil,
		{},
		{"heroConfig": "not-an-object", "catalogues": 42},
		{
			"brands": []interface{}{
				map[string]interface{}{
					"name":   "Acme",
					"tvMode": true,
					"videos": []interface{}{"a.mp4", "b.mp4"},
					"categories": []interface{}{
						map[string]interface{}{
							"name": "TVs",
							"products": []interface{}{
								map[string]interface{}{
									"name":       "X1",
									"dimensions": map[string]interface{}{"width": "10", "height": "20", "depth": "5"},
									"manualUrl":  "http://m/x1.pdf",
								},
							},
						},
					},
				},
			},
			"catalogues": []interface{}{
				map[string]interface{}{"id": "c1", "brandId": "b1"},
				map[string]interface{}{"id": "c2"},
			},
			"adminUsers": []interface{}{
				map[string]interface{}{"name": "viewer", "pin": "1111"},
			},
		},
	}

	for i, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(roundtrip(t, once))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("case %d: normalize not idempotent\nonce:  %+v\ntwice: %+v", i, once, twice)
		}
	}
}

func TestNormalizeForcesSuperAdmin(t *testing.T) {
	raw := map[string]interface{}{
		"adminUsers": []interface{}{
			map[string]interface{}{
				"name":         domain.SuperAdminName,
				"pin":          domain.SuperAdminPin,
				"isSuperAdmin": false,
				"permissions":  map[string]interface{}{"manageBrands": false},
			},
		},
	}
	doc := Normalize(raw)
	adm := doc.Admins[0]
	if !adm.IsSuperAdmin {
		t.Error("well-known super admin must be forced to super")
	}
	for _, name := range domain.PermissionNames {
		if !adm.Permissions[name] {
			t.Errorf("permission %s not granted", name)
		}
	}
}

func TestNormalizeBackfillsPermissions(t *testing.T) {
	raw := map[string]interface{}{
		"adminUsers": []interface{}{
			map[string]interface{}{"name": "clerk", "pin": "9999"},
		},
	}
	doc := Normalize(raw)
	if doc.Admins[0].Permissions == nil {
		t.Fatal("permissions not backfilled")
	}
	if doc.Admins[0].HasPermission("manageBrands") {
		t.Error("backfilled permissions should default to false")
	}
}

func TestNormalizeLegacyDimensions(t *testing.T) {
	raw := map[string]interface{}{
		"brands": []interface{}{
			map[string]interface{}{
				"name": "Acme",
				"categories": []interface{}{
					map[string]interface{}{
						"name": "TVs",
						"products": []interface{}{
							map[string]interface{}{
								"name":       "X1",
								"dimensions": map[string]interface{}{"width": "100", "height": "60", "depth": "8"},
							},
						},
					},
				},
			},
		},
	}
	doc := Normalize(raw)
	p := doc.Brands[0].Categories[0].Products[0]
	if len(p.Dimensions) != 1 {
		t.Fatalf("dimension sets = %d, want 1", len(p.Dimensions))
	}
	if p.Dimensions[0].Width != "100" || p.Dimensions[0].Label == "" {
		t.Errorf("unexpected dimension set %+v", p.Dimensions[0])
	}
	if p.LegacyDimensions != nil {
		t.Error("legacy dimensions not cleared")
	}
}

func TestNormalizeLegacyManualNoDuplication(t *testing.T) {
	raw := map[string]interface{}{
		"brands": []interface{}{
			map[string]interface{}{
				"name": "Acme",
				"categories": []interface{}{
					map[string]interface{}{
						"name": "TVs",
						"products": []interface{}{
							map[string]interface{}{
								"name":         "X1",
								"manualUrl":    "http://m/x1.pdf",
								"manualImages": []interface{}{"p1.png"},
							},
						},
					},
				},
			},
		},
	}
	once := Normalize(raw)
	p := once.Brands[0].Categories[0].Products[0]
	if len(p.Manuals) != 1 || p.Manuals[0].Url != "http://m/x1.pdf" {
		t.Fatalf("manuals = %+v", p.Manuals)
	}

	twice := Normalize(roundtrip(t, once))
	if n := len(twice.Brands[0].Categories[0].Products[0].Manuals); n != 1 {
		t.Errorf("repeated normalization duplicated manuals: %d", n)
	}
}

func TestNormalizeLegacyTvVideos(t *testing.T) {
	raw := map[string]interface{}{
		"brands": []interface{}{
			map[string]interface{}{
				"name":   "Acme",
				"tvMode": true,
				"videos": []interface{}{"a.mp4"},
			},
		},
	}
	doc := Normalize(raw)
	b := doc.Brands[0]
	if len(b.Models) != 1 || len(b.Models[0].Videos) != 1 {
		t.Fatalf("models = %+v", b.Models)
	}
	if b.LegacyVideos != nil {
		t.Error("legacy video list not cleared")
	}
}

func TestNormalizeCatalogueTypeBackfill(t *testing.T) {
	raw := map[string]interface{}{
		"catalogues": []interface{}{
			map[string]interface{}{"id": "c1", "brandId": "b1"},
			map[string]interface{}{"id": "c2"},
		},
	}
	doc := Normalize(raw)
	if doc.Catalogues[0].Type != domain.CatalogueTypeCatalogue {
		t.Errorf("brand-scoped entry type = %q", doc.Catalogues[0].Type)
	}
	if doc.Catalogues[1].Type != domain.CatalogueTypePamphlet {
		t.Errorf("global entry type = %q", doc.Catalogues[1].Type)
	}
}

func TestNormalizeDropsFleet(t *testing.T) {
	raw := map[string]interface{}{
		"fleet": []interface{}{
			map[string]interface{}{"deviceId": "stale-1"},
		},
	}
	doc := Normalize(raw)
	if doc.Fleet != nil {
		t.Error("blob fleet content must be discarded")
	}
}

func TestNormalizeJSONGarbage(t *testing.T) {
	doc := NormalizeJSON([]byte("{{{not json"))
	if doc == nil || doc.Version != domain.CurrentSchemaVersion {
		t.Fatal("garbage input must degrade to defaults")
	}
}
