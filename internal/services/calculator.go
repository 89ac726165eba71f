package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/validation"
	"github.com/shopspring/decimal"
)

// taxRate is the flat 10% applied to every invoice subtotal. A fixed business
// rule, deliberately not configurable.
var taxRate = decimal.New(1, -1)

// Editable line item fields.
const (
	FieldQuantity    = "quantity"
	FieldUnitPrice   = "unit_price"
	FieldDescription = "description"
)

var (
	ErrIndexOutOfRange = errors.New("line_item_index_out_of_range")
	ErrUnknownField    = errors.New("unknown_line_item_field")
	ErrLastItem        = errors.New("invoice_requires_one_item")
)

// InvoiceService encapsulates invoice-related business logic: line item
// editing, totals computation, and the status workflow. The add-invoice,
// edit-invoice, and booking-to-invoice paths all go through this one service
// so the tax/discount formulas cannot drift apart.
type InvoiceService struct{}

func NewInvoiceService() *InvoiceService { return &InvoiceService{} }

// parseAmount reads a non-negative amount from a raw input string. Blank,
// unparseable, and negative values all collapse to zero; per-item validation
// catches them at submit time.
func parseAmount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// UpdateItem sets one field on the item at index and returns a new slice.
// Items other than the targeted one are not touched — callers may hold
// references to the input across the call. Editing quantity or unit price
// recomputes that item's total.
func (s *InvoiceService) UpdateItem(items []models.LineItem, index int, field, raw string) ([]models.LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]models.LineItem, len(items))
	copy(out, items)
	it := out[index]
	switch field {
	case FieldDescription:
		it.Description = strings.TrimSpace(raw)
	case FieldQuantity:
		it.Quantity = parseAmount(raw)
		it.TotalPrice = it.Quantity.Mul(it.UnitPrice)
	case FieldUnitPrice:
		it.UnitPrice = parseAmount(raw)
		it.TotalPrice = it.Quantity.Mul(it.UnitPrice)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	out[index] = it
	return out, nil
}

// AddOrIncrementVariant adds a catalog variant to the item list. If a row for
// the same variant already exists its quantity is bumped by one; a variant
// never produces two rows.
func (s *InvoiceService) AddOrIncrementVariant(items []models.LineItem, v models.ProductVariant) []models.LineItem {
	out := make([]models.LineItem, len(items), len(items)+1)
	copy(out, items)
	for i := range out {
		if out[i].VariantID != nil && *out[i].VariantID == v.ID {
			out[i].Quantity = out[i].Quantity.Add(decimal.NewFromInt(1))
			out[i].TotalPrice = out[i].Quantity.Mul(out[i].UnitPrice)
			return out
		}
	}
	id := v.ID
	return append(out, models.LineItem{
		Description: v.VariantName,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   v.Price,
		TotalPrice:  v.Price,
		VariantID:   &id,
	})
}

// RemoveItem drops the item at index. An in-progress invoice keeps at least
// one line, so removing the last remaining item is rejected.
func (s *InvoiceService) RemoveItem(items []models.LineItem, index int) ([]models.LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	if len(items) <= 1 {
		return nil, ErrLastItem
	}
	out := make([]models.LineItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}

// ValidateItems returns per-item violations keyed items.<index>.<field>.
// Transient blank quantities are tolerated while editing; they fail here.
func (s *InvoiceService) ValidateItems(items []models.LineItem) validation.Violations {
	v := validation.Violations{}
	if len(items) == 0 {
		v["items"] = "required"
		return v
	}
	for i, it := range items {
		prefix := fmt.Sprintf("items.%d.", i)
		if strings.TrimSpace(it.Description) == "" {
			v[prefix+"description"] = "required"
		}
		if !it.Quantity.IsPositive() {
			v[prefix+"quantity"] = "must_be_positive"
		}
		if it.UnitPrice.IsNegative() {
			v[prefix+"unit_price"] = "must_not_be_negative"
		}
	}
	return v
}

// Totals carries the computed invoice amounts, unrounded. Rounding to 2dp
// happens only when amounts are persisted or displayed, never in between.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// CalculateTotals sums item totals, applies the flat tax, and subtracts the
// discount. A negative discount is treated as zero. The grand total may go
// negative when the discount exceeds subtotal plus tax; it is not clamped.
func (s *InvoiceService) CalculateTotals(items []models.LineItem, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax).Sub(discount),
	}
}

// ApplyTotals recomputes and writes the rounded amounts onto the invoice.
// This is the persistence boundary: each component rounds to 2dp and the
// grand total is derived from the rounded components so the stored invariant
// total == subtotal + tax - discount holds exactly.
func (s *InvoiceService) ApplyTotals(inv *models.Invoice, discount decimal.Decimal) {
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	t := s.CalculateTotals(inv.Items, discount)
	inv.Subtotal = t.Subtotal.Round(2)
	inv.TaxAmount = t.TaxAmount.Round(2)
	inv.DiscountAmount = discount.Round(2)
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount)
}
