package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/httpx"
	"github.com/detailops/backoffice/internal/reports"
	"github.com/detailops/backoffice/internal/services"
)

type ReportHandler struct {
	DB       *gorm.DB
	Settings *services.SettingsService
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db, Settings: services.NewSettingsService(db)}
}

func reportPeriod(r *http.Request) (time.Month, int, error) {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = n
	}
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2000 || n > 2100 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = n
	}
	return time.Month(month), year, nil
}

// Monthly serves GET /reports/monthly?month=&year= as JSON.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	month, year, err := reportPeriod(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_period", nil)
		return
	}
	data, err := reports.BuildMonthly(h.DB, month, year)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

// MonthlyPDF serves GET /reports/monthly/pdf?month=&year=.
func (h *ReportHandler) MonthlyPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	month, year, err := reportPeriod(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_period", nil)
		return
	}
	data, err := reports.BuildMonthly(h.DB, month, year)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "report_failed", nil)
		return
	}
	shop, _ := h.Settings.Get()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report-%04d-%02d.pdf", year, month))
	if err := reports.RenderMonthlyPDF(w, data, shop); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_failed", nil)
		return
	}
}
