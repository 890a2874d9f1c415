package syncer

import (
	"strings"
	"testing"

	"github.com/talkincode/toughkiosk/internal/domain"
)

func TestExportImportRoundTrip(t *testing.T) {
	doc := domain.DefaultDocument()
	doc.Brands = []domain.Brand{{Id: "b1", Name: "Acme"}}
	doc.Catalogues = []domain.Catalogue{{Id: "c1", Title: "Spring", BrandId: "b1", Type: domain.CatalogueTypeCatalogue}}
	doc.Fleet = []domain.FleetEntry{{DeviceId: "LOC-001"}}

	data, err := Export(doc)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.Contains(string(data), "LOC-001") {
		t.Error("fleet must not appear in an export file")
	}

	got, err := Import(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Brands) != 1 || got.Brands[0].Name != "Acme" {
		t.Errorf("brands = %+v", got.Brands)
	}
	if len(got.Catalogues) != 1 || got.Catalogues[0].Id != "c1" {
		t.Errorf("catalogues = %+v", got.Catalogues)
	}
}

func TestImportRejectsMissingBrands(t *testing.T) {
	if _, err := Import([]byte(`{"catalogues": []}`)); err == nil {
		t.Error("file without a brand list must be rejected")
	}
	if _, err := Import([]byte(`{"brands": "oops"}`)); err == nil {
		t.Error("non-list brand field must be rejected")
	}
	if _, err := Import([]byte(`not json`)); err == nil {
		t.Error("unparseable file must be rejected")
	}
}

func TestImportNormalizesLegacyShape(t *testing.T) {
	legacy := []byte(`{
		"brands": [
			{"name": "Acme", "tvMode": true, "videos": ["a.mp4"]}
		]
	}`)
	got, err := Import(legacy)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Version != domain.CurrentSchemaVersion {
		t.Errorf("version = %d", got.Version)
	}
	if len(got.Brands[0].Models) != 1 {
		t.Errorf("legacy tv videos not migrated: %+v", got.Brands[0])
	}
}
