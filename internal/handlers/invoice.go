package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/httpx"
	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/reports"
	"github.com/detailops/backoffice/internal/services"
)

type InvoiceHandler struct {
	DB       *gorm.DB
	Svc      *services.InvoiceService
	Settings *services.SettingsService
}

func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: services.NewInvoiceService(), Settings: services.NewSettingsService(db)}
}

// itemInput is one incoming line item. The SPA historically sent both
// snake_case and camelCase spellings; normalize() folds them together right
// after decode so everything downstream sees one shape.
type itemInput struct {
	Description string  `json:"description"`
	Quantity    string  `json:"quantity"`
	UnitPrice   string  `json:"unit_price"`
	UnitPriceCC string  `json:"unitPrice"`
	VariantID   *uint   `json:"variant_id"`
	VariantIDCC *uint   `json:"variantId"`
	QuantityNum float64 `json:"qty"`
}

func (in *itemInput) normalize() {
	if in.UnitPrice == "" && in.UnitPriceCC != "" {
		in.UnitPrice = in.UnitPriceCC
	}
	if in.VariantID == nil && in.VariantIDCC != nil {
		in.VariantID = in.VariantIDCC
	}
	if in.Quantity == "" && in.QuantityNum != 0 {
		in.Quantity = strconv.FormatFloat(in.QuantityNum, 'f', -1, 64)
	}
}

// buildItems turns raw inputs into line items. A variant-backed input is
// resolved against the catalog; free-form inputs are taken as submitted.
func (h *InvoiceHandler) buildItems(inputs []itemInput) ([]models.LineItem, error) {
	var items []models.LineItem
	for _, in := range inputs {
		in.normalize()
		if in.VariantID != nil {
			var v models.ProductVariant
			if err := h.DB.First(&v, *in.VariantID).Error; err != nil {
				return nil, fmt.Errorf("variant %d not found", *in.VariantID)
			}
			items = h.Svc.AddOrIncrementVariant(items, v)
			// A variant row may carry an explicit quantity override. Dedup may
			// have merged into an earlier row, so locate it by variant id.
			if in.Quantity != "" {
				for i := range items {
					if items[i].VariantID != nil && *items[i].VariantID == v.ID {
						var err error
						if items, err = h.Svc.UpdateItem(items, i, services.FieldQuantity, in.Quantity); err != nil {
							return nil, err
						}
						break
					}
				}
			}
			continue
		}
		qty := decimal.Zero
		if in.Quantity != "" {
			if d, err := decimal.NewFromString(strings.TrimSpace(in.Quantity)); err == nil && !d.IsNegative() {
				qty = d
			}
		}
		price := decimal.Zero
		if in.UnitPrice != "" {
			if d, err := decimal.NewFromString(strings.TrimSpace(in.UnitPrice)); err == nil && !d.IsNegative() {
				price = d
			}
		}
		items = append(items, models.LineItem{
			Description: strings.TrimSpace(in.Description),
			Quantity:    qty,
			UnitPrice:   price,
			TotalPrice:  qty.Mul(price),
		})
	}
	return items, nil
}

func (h *InvoiceHandler) nextNumber(bump int64) string {
	var count int64
	h.DB.Model(&models.Invoice{}).Count(&count)
	return fmt.Sprintf("INV-%s-%04d", time.Now().Format("200601"), count+1+bump)
}

// ListCreate serves GET /invoices and POST /invoices.
func (h *InvoiceHandler) ListCreate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	pageSize := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}
	dbq := h.DB.Model(&models.Invoice{})
	if s := r.URL.Query().Get("status"); s != "" {
		canonical, ok := models.ParseInvoiceStatus(s)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		dbq = dbq.Where("status = ?", canonical)
	}
	if cid, _ := strconv.Atoi(r.URL.Query().Get("customer_id")); cid > 0 {
		dbq = dbq.Where("customer_id = ?", cid)
	}
	var total int64
	dbq.Count(&total)
	var invoices []models.Invoice
	if err := dbq.Preload("Customer").Order("id desc").Limit(pageSize).Offset(offset).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": total, "limit": pageSize, "offset": offset})
}

type invoicePayload struct {
	CustomerID   uint        `json:"customer_id"`
	CustomerIDCC uint        `json:"customerId"`
	BookingID    *uint       `json:"booking_id"`
	BookingIDCC  *uint       `json:"bookingId"`
	Items        []itemInput `json:"items"`
	Discount     *string     `json:"discount"`
	DueDate      string      `json:"due_date"`
	DueDateCC    string      `json:"dueDate"`
	Currency     string      `json:"currency"`
	Notes        *string     `json:"notes"`
}

func (p *invoicePayload) normalize() {
	if p.CustomerID == 0 && p.CustomerIDCC != 0 {
		p.CustomerID = p.CustomerIDCC
	}
	if p.BookingID == nil && p.BookingIDCC != nil {
		p.BookingID = p.BookingIDCC
	}
	if p.DueDate == "" && p.DueDateCC != "" {
		p.DueDate = p.DueDateCC
	}
}

func parseDiscount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func (h *InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	var input invoicePayload
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	input.normalize()
	if input.CustomerID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "customer_required", nil)
		return
	}
	var customer models.Customer
	if err := h.DB.First(&customer, input.CustomerID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "customer_not_found", nil)
		return
	}
	if input.BookingID != nil {
		var count int64
		if err := h.DB.Model(&models.Booking{}).Where("id = ? AND customer_id = ?", *input.BookingID, input.CustomerID).Count(&count).Error; err != nil || count == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "booking_not_found", nil)
			return
		}
	}
	items, err := h.buildItems(input.Items)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_items", err.Error())
		return
	}
	if v := h.Svc.ValidateItems(items); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	due := time.Now().AddDate(0, 0, 14)
	if input.DueDate != "" {
		d, perr := time.Parse("2006-01-02", input.DueDate)
		if perr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_due_date", nil)
			return
		}
		due = d
	}
	currency := input.Currency
	if currency == "" {
		if cs, _ := h.Settings.Get(); cs != nil {
			currency = cs.Currency
		} else {
			currency = "USD"
		}
	}
	inv := models.Invoice{
		CustomerID: input.CustomerID,
		BookingID:  input.BookingID,
		Items:      items,
		Status:     models.StatusDraft,
		DueDate:    due,
		Currency:   currency,
	}
	if input.Notes != nil {
		inv.Notes = *input.Notes
	}
	discount := decimal.Zero
	if input.Discount != nil {
		discount = parseDiscount(*input.Discount)
	}
	h.Svc.ApplyTotals(&inv, discount)

	// invoice numbers are unique-indexed; a concurrent create can take the
	// candidate first, so bump the sequence and retry
	var createErr error
	for bump := int64(0); bump < 5; bump++ {
		inv.ID = 0
		inv.Number = h.nextNumber(bump)
		createErr = h.DB.Create(&inv).Error
		if createErr == nil || !strings.Contains(strings.ToLower(createErr.Error()), "unique") {
			break
		}
	}
	if createErr != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "invoice_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var inv models.Invoice
	if err := h.DB.Preload("Items").Preload("Customer").First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, "load_failed", nil)
		}
		return nil, false
	}
	return &inv, true
}

// Get serves GET /invoices/get?id=.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Update re-submits the full item list, discount, due date, and notes for the
// invoice at ?id=. Totals are always recomputed server-side; client-sent
// amounts are ignored. Paid and cancelled invoices are immutable.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if inv.Status == models.StatusPaid || inv.Status == models.StatusCancelled {
		httpx.JSONError(w, http.StatusConflict, "invoice_not_editable", nil)
		return
	}
	var input invoicePayload
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	input.normalize()
	items, err := h.buildItems(input.Items)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_items", err.Error())
		return
	}
	if v := h.Svc.ValidateItems(items); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if input.DueDate != "" {
		d, perr := time.Parse("2006-01-02", input.DueDate)
		if perr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_due_date", nil)
			return
		}
		inv.DueDate = d
	}
	// nil means the field was omitted: keep what is stored. An explicit empty
	// string clears the notes.
	if input.Notes != nil {
		inv.Notes = *input.Notes
	}
	discount := inv.DiscountAmount
	if input.Discount != nil {
		discount = parseDiscount(*input.Discount)
	}
	inv.Items = items
	h.Svc.ApplyTotals(inv, discount)

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		for i := range inv.Items {
			inv.Items[i].ID = 0
			inv.Items[i].InvoiceID = inv.ID
		}
		if err := tx.Create(&inv.Items).Error; err != nil {
			return err
		}
		return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(map[string]any{
			"subtotal":        inv.Subtotal,
			"tax_amount":      inv.TaxAmount,
			"discount_amount": inv.DiscountAmount,
			"total_amount":    inv.TotalAmount,
			"due_date":        inv.DueDate,
			"notes":           inv.Notes,
		}).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// UpdateStatus serves POST /invoices/status?id=. Accepts snake_case or
// camelCase payment method keys. A successful move into paid or
// partially_paid also records a Payment row.
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	var input struct {
		Status          string `json:"status"`
		PaymentMethod   string `json:"payment_method"`
		PaymentMethodCC string `json:"paymentMethod"`
		Amount          string `json:"amount"`
	}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	method := input.PaymentMethod
	if method == "" {
		method = input.PaymentMethodCC
	}
	prevStatus := inv.Status
	if err := h.Svc.Transition(inv, input.Status, method, time.Now()); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownStatus):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
		case errors.Is(err, services.ErrTerminalStatus):
			httpx.JSONError(w, http.StatusConflict, "invoice_cancelled", nil)
		case errors.Is(err, services.ErrPaymentMethodRequired):
			httpx.JSONError(w, http.StatusBadRequest, "payment_method_required", nil)
		case errors.Is(err, services.ErrInvalidPaymentMethod):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_payment_method", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "transition_failed", nil)
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
			Updates(map[string]any{"status": inv.Status, "due_date": inv.DueDate, "payment_method": inv.PaymentMethod}).Error; err != nil {
			return err
		}
		if inv.Status == models.StatusPaid || inv.Status == models.StatusPartiallyPaid {
			amount := inv.TotalAmount
			if inv.Status == models.StatusPartiallyPaid && input.Amount != "" {
				if d, derr := decimal.NewFromString(strings.TrimSpace(input.Amount)); derr == nil && d.IsPositive() {
					amount = d.Round(2)
				}
			}
			p := models.Payment{
				InvoiceID: inv.ID,
				Reference: uuid.NewString(),
				Amount:    amount,
				Method:    method,
				Date:      time.Now(),
			}
			return tx.Create(&p).Error
		}
		return nil
	})
	if err != nil {
		// Persistence failed: report it and leave the stored status alone.
		inv.Status = prevStatus
		httpx.JSONError(w, http.StatusInternalServerError, "transition_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// PDF serves GET /invoices/pdf?id=.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	shop, _ := h.Settings.Get()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inv.Number))
	if err := reports.RenderInvoicePDF(w, inv, shop); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_failed", nil)
		return
	}
}
