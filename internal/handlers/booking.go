package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/httpx"
	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/validation"
)

type BookingHandler struct{ DB *gorm.DB }

func NewBookingHandler(db *gorm.DB) *BookingHandler { return &BookingHandler{DB: db} }

// ListCreate serves GET /bookings (optionally filtered by ?status= and ?date=)
// and POST /bookings.
func (h *BookingHandler) ListCreate(w http.ResponseWriter, r *http.Request) {
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

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.Booking{})
	if s := r.URL.Query().Get("status"); s != "" {
		if !models.ValidBookingStatus(s) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		dbq = dbq.Where("status = ?", s)
	}
	if d := r.URL.Query().Get("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		dbq = dbq.Where("scheduled_at >= ? AND scheduled_at < ?", day, day.AddDate(0, 0, 1))
	}
	var bookings []models.Booking
	if err := dbq.Preload("Customer").Preload("Vehicle").Order("scheduled_at asc").Find(&bookings).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_bookings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": bookings})
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CustomerID  uint      `json:"customer_id"`
		VehicleID   uint      `json:"vehicle_id"`
		Service     string    `json:"service"`
		ScheduledAt time.Time `json:"scheduled_at"`
		Notes       string    `json:"notes"`
	}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("service", input.Service, v)
	if input.CustomerID == 0 {
		v["customer_id"] = "required"
	}
	if input.VehicleID == 0 {
		v["vehicle_id"] = "required"
	}
	if input.ScheduledAt.IsZero() {
		v["scheduled_at"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var vehicle models.Vehicle
	if err := h.DB.First(&vehicle, input.VehicleID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "vehicle_not_found", nil)
		return
	}
	if vehicle.CustomerID != input.CustomerID {
		httpx.JSONError(w, http.StatusBadRequest, "vehicle_customer_mismatch", nil)
		return
	}
	b := models.Booking{
		CustomerID:  input.CustomerID,
		VehicleID:   input.VehicleID,
		Service:     strings.TrimSpace(input.Service),
		ScheduledAt: input.ScheduledAt,
		Status:      models.BookingScheduled,
		Notes:       input.Notes,
	}
	if err := h.DB.Create(&b).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "booking_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

// UpdateStatus moves the booking at ?id= to a new state.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if !models.ValidBookingStatus(input.Status) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
		return
	}
	var b models.Booking
	if err := h.DB.First(&b, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	// Cancelled and completed bookings stay put.
	if b.Status == models.BookingCancelled || b.Status == models.BookingCompleted {
		if b.Status != input.Status {
			httpx.JSONError(w, http.StatusConflict, "booking_finalized", nil)
			return
		}
	}
	b.Status = input.Status
	if err := h.DB.Save(&b).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}
