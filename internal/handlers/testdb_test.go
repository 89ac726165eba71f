package handlers

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.ShopSettings{}, &models.Customer{}, &models.Vehicle{}, &models.Booking{}, &models.Product{}, &models.ProductVariant{}, &models.Invoice{}, &models.LineItem{}, &models.Payment{}, &models.Expense{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCustomerWithVehicle(t *testing.T, db *gorm.DB) (models.Customer, models.Vehicle) {
	t.Helper()
	c := models.Customer{Name: "Dana Webb", Phone: "555-0101"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	v := models.Vehicle{CustomerID: c.ID, Make: "Honda", Model: "Civic", Plate: "ABC123"}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("vehicle: %v", err)
	}
	return c, v
}
