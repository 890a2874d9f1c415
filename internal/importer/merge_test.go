package importer

import (
	"testing"

	"github.com/talkincode/toughkiosk/internal/domain"
)

func TestMergeAppendsNewBrand(t *testing.T) {
	doc := domain.DefaultDocument()
	doc.Brands = []domain.Brand{{Id: "b1", Name: "Acme"}}

	Merge(doc, []domain.Brand{{Id: "b2", Name: "Nova"}})

	if len(doc.Brands) != 2 {
		t.Fatalf("brands = %d, want 2", len(doc.Brands))
	}
	if doc.Brands[1].Name != "Nova" {
		t.Errorf("appended brand = %+v", doc.Brands[1])
	}
}

func TestMergeOverwritesProductKeepingId(t *testing.T) {
	doc := domain.DefaultDocument()
	doc.Brands = []domain.Brand{{
		Id: "b1", Name: "Acme",
		Categories: []domain.Category{{
			Id: "cat1", Name: "TVs",
			Products: []domain.Product{
				{Id: "p1", Name: "X1", Sku: "OLD", Price: "399"},
				{Id: "p2", Name: "X2", Sku: "KEEP"},
			},
		}},
	}}

	Merge(doc, []domain.Brand{{
		Id: "imported-b", Name: "Acme",
		Categories: []domain.Category{{
			Id: "imported-c", Name: "TVs",
			Products: []domain.Product{
				{Id: "imported-p", Name: "X1", Sku: "NEW", Price: "499"},
				{Id: "imported-p3", Name: "X3"},
			},
		}},
	}})

	cat := doc.Brands[0].Categories[0]
	if len(cat.Products) != 3 {
		t.Fatalf("products = %d, want 3", len(cat.Products))
	}
	x1 := cat.FindProduct("X1")
	if x1.Id != "p1" {
		t.Errorf("established id must survive, got %q", x1.Id)
	}
	if x1.Sku != "NEW" || x1.Price != "499" {
		t.Errorf("product not overwritten: %+v", x1)
	}
	if cat.FindProduct("X2").Sku != "KEEP" {
		t.Error("untouched sibling modified")
	}
	if cat.FindProduct("X3") == nil {
		t.Error("new product not appended")
	}
	if doc.Brands[0].Id != "b1" || cat.Id != "cat1" {
		t.Error("matched brand/category identity must not change")
	}
}

func TestMergeLogoOnlyWhenProvided(t *testing.T) {
	doc := domain.DefaultDocument()
	doc.Brands = []domain.Brand{{Id: "b1", Name: "Acme", Logo: "https://cdn.example/old.png"}}

	Merge(doc, []domain.Brand{{Name: "Acme"}})
	if doc.Brands[0].Logo != "https://cdn.example/old.png" {
		t.Error("empty imported logo must not clear the existing one")
	}

	Merge(doc, []domain.Brand{{Name: "Acme", Logo: "https://cdn.example/new.png"}})
	if doc.Brands[0].Logo != "https://cdn.example/new.png" {
		t.Error("supplied logo must replace the existing one")
	}
}

func TestMergeNewCategoryUnderExistingBrand(t *testing.T) {
	doc := domain.DefaultDocument()
	doc.Brands = []domain.Brand{{Id: "b1", Name: "Acme", Categories: []domain.Category{{Name: "TVs"}}}}

	Merge(doc, []domain.Brand{{
		Name: "Acme",
		Categories: []domain.Category{{
			Name:     "Audio",
			Products: []domain.Product{{Id: "p1", Name: "S1"}},
		}},
	}})

	if len(doc.Brands[0].Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(doc.Brands[0].Categories))
	}
	audio := doc.Brands[0].FindCategory("Audio")
	if audio == nil || len(audio.Products) != 1 {
		t.Errorf("appended category = %+v", audio)
	}
}
