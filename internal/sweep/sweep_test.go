package sweep

import (
	"testing"
	"time"

	"github.com/talkincode/toughkiosk/internal/domain"
)

func TestSweepExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := domain.DefaultDocument()
	doc.Catalogues = []domain.Catalogue{
		{Id: "c1", Title: "old", EndDate: "2020-01-01"},
		{Id: "c2", Title: "current", EndDate: "2026-06-30"},
		{Id: "c3", Title: "evergreen"},
	}

	swept, res := Sweep(doc, now)

	if len(swept.Catalogues) != 2 {
		t.Fatalf("active = %d, want 2", len(swept.Catalogues))
	}
	for _, c := range swept.Catalogues {
		if c.Id == "c1" {
			t.Error("expired catalogue still active")
		}
	}
	if len(swept.Archive.Catalogues) != 1 || swept.Archive.Catalogues[0].Id != "c1" {
		t.Fatalf("archive = %+v", swept.Archive.Catalogues)
	}
	if _, okk := swept.Archive.DeletedAt["c1"]; !okk {
		t.Error("deletedAt record missing for c1")
	}
	if !res.Changed() || len(res.Expired) != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestSweepNothingExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := domain.DefaultDocument()
	doc.Catalogues = []domain.Catalogue{
		{Id: "c1", EndDate: "2025-01-01"}, // boundary: not strictly before now
		{Id: "c2"},
	}

	swept, res := Sweep(doc, now)

	if res.Changed() {
		t.Fatalf("unexpected expiry: %+v", res)
	}
	if len(swept.Catalogues) != 2 || len(swept.Archive.Catalogues) != 0 {
		t.Errorf("active=%d archived=%d", len(swept.Catalogues), len(swept.Archive.Catalogues))
	}
}

func TestSweepUnparseableEndDate(t *testing.T) {
	doc := domain.DefaultDocument()
	doc.Catalogues = []domain.Catalogue{{Id: "c1", EndDate: "someday"}}

	_, res := Sweep(doc, time.Now())
	if res.Changed() {
		t.Error("unparseable end date must never expire an entry")
	}
}

func TestSweepAccumulates(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := domain.DefaultDocument()
	doc.Archive.Catalogues = []domain.Catalogue{{Id: "older"}}
	doc.Archive.DeletedAt["older"] = "2024-01-01T00:00:00Z"
	doc.Catalogues = []domain.Catalogue{{Id: "c1", EndDate: "2020-01-01"}}

	swept, _ := Sweep(doc, now)
	if len(swept.Archive.Catalogues) != 2 {
		t.Fatalf("archive must be append-only, got %d entries", len(swept.Archive.Catalogues))
	}
	if _, okk := swept.Archive.DeletedAt["older"]; !okk {
		t.Error("prior deletedAt entry lost")
	}
}
