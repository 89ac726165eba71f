package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/models"
)

func TestSeedIdempotent(t *testing.T) {
	d, err := gorm.Open(sqlite.Open("file:seedtest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AutoMigrate(&models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatal(err)
	}
	Seed(d)
	Seed(d)
	var pCount, vCount int64
	d.Model(&models.Product{}).Count(&pCount)
	d.Model(&models.ProductVariant{}).Count(&vCount)
	if pCount < 3 {
		t.Fatalf("expected at least 3 catalog products got %d", pCount)
	}
	if vCount < 4 {
		t.Fatalf("expected at least 4 variants got %d", vCount)
	}
	// Ensure baseline entries exist exactly once (idempotency)
	var c1, c2 int64
	d.Model(&models.Product{}).Where("name = ?", "Exterior Wash").Count(&c1)
	d.Model(&models.Product{}).Where("name = ?", "Ceramic Coating").Count(&c2)
	if c1 != 1 || c2 != 1 {
		t.Fatalf("baseline products duplicated or missing: wash=%d coating=%d", c1, c2)
	}
}
