package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/detailops/backoffice/internal/models"
)

func TestProductCreateWithVariants(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	body := `{"name":"Exterior Wash","category":"exterior","variants":[
		{"sku":"ext-wash-sedan","variant_name":"Sedan","price":25},
		{"sku":"ext-wash-suv","variant_name":"SUV","price":35}]}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ListCreate(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var p models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Variants) != 2 || p.Variants[0].SKU != "EXT-WASH-SEDAN" {
		t.Fatalf("variants wrong: %+v", p.Variants)
	}
}

func TestProductDuplicateSKURejected(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	body := `{"name":"Wax","variants":[{"sku":"WAX-1","variant_name":"Std","price":10}]}`
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ListCreate(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("first create: %d", w.Code)
	}
	body = `{"name":"Other Wax","variants":[{"sku":"WAX-1","variant_name":"Std","price":12}]}`
	req = httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	w = httptest.NewRecorder()
	h.ListCreate(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestProductSoftDeleteHidesFromList(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	p := models.Product{Name: "Interior Detail", Variants: []models.ProductVariant{{SKU: "INT-1", VariantName: "Sedan"}}}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/products/delete?id=%d", p.ID), nil)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	w = httptest.NewRecorder()
	h.ListCreate(w, req)
	var list struct {
		Items []models.Product `json:"items"`
		Total int64            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("soft-deleted product still listed: %+v", list)
	}
	// The row survives for old invoices that reference its variants.
	var count int64
	db.Unscoped().Model(&models.Product{}).Count(&count)
	if count != 1 {
		t.Fatalf("row physically deleted")
	}
}

func TestVariantStockUpdate(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	p := models.Product{Name: "Towels", Variants: []models.ProductVariant{{SKU: "TWL-6", VariantName: "6 pack", Quantity: 10}}}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	vid := p.Variants[0].ID

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/products/variants?id=%d", vid), strings.NewReader(`{"quantity":25,"price":19.5}`))
	w := httptest.NewRecorder()
	h.Variants(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var stored models.ProductVariant
	db.First(&stored, vid)
	if stored.Quantity != 25 {
		t.Fatalf("quantity = %d, want 25", stored.Quantity)
	}

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/products/variants?id=%d", vid), strings.NewReader(`{"quantity":-1}`))
	w = httptest.NewRecorder()
	h.Variants(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative stock got %d", w.Code)
	}
}

func TestVariantAddToExistingProduct(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	p := models.Product{Name: "Coating"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	body := fmt.Sprintf(`{"product_id":%d,"sku":"coat-pro","variant_name":"Pro","price":650}`, p.ID)
	req := httptest.NewRequest(http.MethodPost, "/products/variants", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Variants(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var pv models.ProductVariant
	if err := json.Unmarshal(w.Body.Bytes(), &pv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pv.SKU != "COAT-PRO" || pv.ProductID != p.ID {
		t.Fatalf("variant wrong: %+v", pv)
	}
}
