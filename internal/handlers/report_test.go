package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/reports"
)

func TestReportMonthlyJSON(t *testing.T) {
	db := setupTestDB(t)
	cust, _ := seedCustomerWithVehicle(t, db)
	aug := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	inv := models.Invoice{CustomerID: cust.ID, Status: models.StatusPaid, Subtotal: decimal.NewFromInt(100), TaxAmount: decimal.NewFromInt(10), TotalAmount: decimal.NewFromInt(110), DueDate: aug, CreatedAt: aug}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	pay := models.Payment{InvoiceID: inv.ID, Reference: "r1", Amount: decimal.NewFromInt(110), Method: models.PayCash, Date: aug}
	if err := db.Create(&pay).Error; err != nil {
		t.Fatalf("payment: %v", err)
	}

	h := NewReportHandler(db)
	req := httptest.NewRequest(http.MethodGet, "/reports/monthly?month=8&year=2026", nil)
	w := httptest.NewRecorder()
	h.Monthly(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var data reports.MonthlyData
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !data.Collected.Equal(decimal.NewFromInt(110)) || data.InvoiceCount != 1 {
		t.Fatalf("aggregates wrong: %+v", data)
	}
}

func TestReportMonthlyBadPeriod(t *testing.T) {
	db := setupTestDB(t)
	h := NewReportHandler(db)
	for _, q := range []string{"month=13", "month=0", "year=1800", "month=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/reports/monthly?"+q, nil)
		w := httptest.NewRecorder()
		h.Monthly(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", q, w.Code)
		}
	}
}

func TestReportMonthlyPDF(t *testing.T) {
	db := setupTestDB(t)
	h := NewReportHandler(db)
	req := httptest.NewRequest(http.MethodGet, "/reports/monthly/pdf?month=8&year=2026", nil)
	w := httptest.NewRecorder()
	h.MonthlyPDF(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatal("body is not a PDF")
	}
}
