package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/detailops/backoffice/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func twoItems() []models.LineItem {
	return []models.LineItem{
		{Description: "Exterior wash", Quantity: dec("2"), UnitPrice: dec("500"), TotalPrice: dec("1000")},
		{Description: "Ceramic coat", Quantity: dec("1"), UnitPrice: dec("800"), TotalPrice: dec("800")},
	}
}

func TestCalculateTotals(t *testing.T) {
	svc := NewInvoiceService()
	tot := svc.CalculateTotals(twoItems(), dec("100"))
	if !tot.Subtotal.Equal(dec("1800")) {
		t.Fatalf("subtotal = %s, want 1800", tot.Subtotal)
	}
	if !tot.TaxAmount.Equal(dec("180")) {
		t.Fatalf("tax = %s, want 180", tot.TaxAmount)
	}
	if !tot.TotalAmount.Equal(dec("1880")) {
		t.Fatalf("total = %s, want 1880", tot.TotalAmount)
	}
}

func TestTotalsReactToQuantityEdit(t *testing.T) {
	svc := NewInvoiceService()
	items, err := svc.UpdateItem(twoItems(), 0, FieldQuantity, "3")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	tot := svc.CalculateTotals(items, dec("100"))
	if !tot.Subtotal.Equal(dec("2300")) || !tot.TaxAmount.Equal(dec("230")) || !tot.TotalAmount.Equal(dec("2430")) {
		t.Fatalf("got %s/%s/%s, want 2300/230/2430", tot.Subtotal, tot.TaxAmount, tot.TotalAmount)
	}
}

func TestUpdateItemCopyOnWrite(t *testing.T) {
	svc := NewInvoiceService()
	orig := twoItems()
	updated, err := svc.UpdateItem(orig, 1, FieldUnitPrice, "900")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !orig[1].UnitPrice.Equal(dec("800")) {
		t.Fatalf("input slice mutated: %s", orig[1].UnitPrice)
	}
	if !updated[1].TotalPrice.Equal(dec("900")) {
		t.Fatalf("total not recomputed: %s", updated[1].TotalPrice)
	}
	if !updated[0].Quantity.Equal(orig[0].Quantity) {
		t.Fatalf("untouched item changed")
	}
}

func TestUpdateItemGarbageAndNegativeCollapseToZero(t *testing.T) {
	svc := NewInvoiceService()
	for _, raw := range []string{"abc", "-5", ""} {
		items, err := svc.UpdateItem(twoItems(), 0, FieldQuantity, raw)
		if err != nil {
			t.Fatalf("update(%q): %v", raw, err)
		}
		if !items[0].Quantity.IsZero() || !items[0].TotalPrice.IsZero() {
			t.Fatalf("raw %q: quantity=%s total=%s, want zeros", raw, items[0].Quantity, items[0].TotalPrice)
		}
	}
}

func TestUpdateItemErrors(t *testing.T) {
	svc := NewInvoiceService()
	if _, err := svc.UpdateItem(twoItems(), 5, FieldQuantity, "1"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected index error, got %v", err)
	}
	if _, err := svc.UpdateItem(twoItems(), 0, "bogus", "1"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected field error, got %v", err)
	}
}

func TestAddOrIncrementVariantDedup(t *testing.T) {
	svc := NewInvoiceService()
	v := models.ProductVariant{ID: 7, VariantName: "Wax - SUV", Price: dec("35")}
	items := svc.AddOrIncrementVariant(nil, v)
	if len(items) != 1 || !items[0].Quantity.Equal(dec("1")) {
		t.Fatalf("first add: %+v", items)
	}
	items = svc.AddOrIncrementVariant(items, v)
	if len(items) != 1 {
		t.Fatalf("variant duplicated into %d rows", len(items))
	}
	if !items[0].Quantity.Equal(dec("2")) || !items[0].TotalPrice.Equal(dec("70")) {
		t.Fatalf("increment wrong: qty=%s total=%s", items[0].Quantity, items[0].TotalPrice)
	}
}

func TestRemoveItemKeepsAtLeastOne(t *testing.T) {
	svc := NewInvoiceService()
	items, err := svc.RemoveItem(twoItems(), 0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(items) != 1 || items[0].Description != "Ceramic coat" {
		t.Fatalf("wrong item removed: %+v", items)
	}
	if _, err := svc.RemoveItem(items, 0); !errors.Is(err, ErrLastItem) {
		t.Fatalf("expected last-item error, got %v", err)
	}
}

func TestValidateItems(t *testing.T) {
	svc := NewInvoiceService()
	items := []models.LineItem{
		{Description: "", Quantity: dec("0"), UnitPrice: dec("-1")},
		{Description: "ok", Quantity: dec("1"), UnitPrice: dec("10")},
	}
	v := svc.ValidateItems(items)
	for _, key := range []string{"items.0.description", "items.0.quantity", "items.0.unit_price"} {
		if _, ok := v[key]; !ok {
			t.Fatalf("missing violation %s: %v", key, v)
		}
	}
	if _, ok := v["items.1.description"]; ok {
		t.Fatalf("valid item flagged: %v", v)
	}
	if svc.ValidateItems(nil).Empty() {
		t.Fatalf("empty list must be invalid")
	}
}

func TestNegativeDiscountTreatedAsZero(t *testing.T) {
	svc := NewInvoiceService()
	tot := svc.CalculateTotals(twoItems(), dec("-50"))
	if !tot.TotalAmount.Equal(dec("1980")) {
		t.Fatalf("total = %s, want 1980", tot.TotalAmount)
	}
}

func TestTotalMayGoNegative(t *testing.T) {
	svc := NewInvoiceService()
	tot := svc.CalculateTotals(twoItems(), dec("5000"))
	if !tot.TotalAmount.Equal(dec("-3020")) {
		t.Fatalf("total = %s, want -3020 (not clamped)", tot.TotalAmount)
	}
}

func TestApplyTotalsRoundsOnlyAtBoundary(t *testing.T) {
	svc := NewInvoiceService()
	inv := &models.Invoice{Items: []models.LineItem{
		{Description: "partial hour", Quantity: dec("0.333"), UnitPrice: dec("99.99"), TotalPrice: dec("0.333").Mul(dec("99.99"))},
	}}
	svc.ApplyTotals(inv, dec("1.005"))
	// Stored invariant holds exactly on the rounded components.
	if !inv.TotalAmount.Equal(inv.Subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount)) {
		t.Fatalf("stored invariant broken: %s != %s + %s - %s", inv.TotalAmount, inv.Subtotal, inv.TaxAmount, inv.DiscountAmount)
	}
	if inv.Subtotal.Exponent() < -2 || inv.TaxAmount.Exponent() < -2 {
		t.Fatalf("components not rounded to 2dp: %s %s", inv.Subtotal, inv.TaxAmount)
	}
}
