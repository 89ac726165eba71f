package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/httpx"
	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/validation"
)

type ExpenseHandler struct{ DB *gorm.DB }

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler { return &ExpenseHandler{DB: db} }

// ListCreate serves GET /expenses?month=&year= and POST /expenses.
func (h *ExpenseHandler) ListCreate(w http.ResponseWriter, r *http.Request) {
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

func (h *ExpenseHandler) list(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.Expense{})
	monthStr := r.URL.Query().Get("month")
	yearStr := r.URL.Query().Get("year")
	if monthStr != "" || yearStr != "" {
		month, _ := strconv.Atoi(monthStr)
		year, _ := strconv.Atoi(yearStr)
		if month < 1 || month > 12 || year < 2000 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_month", nil)
			return
		}
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		dbq = dbq.Where("incurred_at >= ? AND incurred_at < ?", start, start.AddDate(0, 1, 0))
	}
	if c := r.URL.Query().Get("category"); c != "" {
		dbq = dbq.Where("category = ?", c)
	}
	var expenses []models.Expense
	if err := dbq.Order("incurred_at desc").Find(&expenses).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_expenses", nil)
		return
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": expenses, "total": total.Round(2)})
}

func (h *ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Category   string `json:"category"`
		Label      string `json:"label"`
		Amount     string `json:"amount"`
		IncurredAt string `json:"incurred_at"`
	}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("category", input.Category, v)
	validation.Required("label", input.Label, v)
	amount, aerr := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if aerr != nil || !amount.IsPositive() {
		v["amount"] = "must_be_positive"
	}
	incurred := time.Now()
	if input.IncurredAt != "" {
		d, derr := time.Parse("2006-01-02", input.IncurredAt)
		if derr != nil {
			v["incurred_at"] = "invalid_date"
		} else {
			incurred = d
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	e := models.Expense{
		Category:   strings.TrimSpace(input.Category),
		Label:      strings.TrimSpace(input.Label),
		Amount:     amount.Round(2),
		IncurredAt: incurred,
	}
	if err := h.DB.Create(&e).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "expense_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}
