package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/httpx"
	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/validation"
)

type CustomerHandler struct{ DB *gorm.DB }

func NewCustomerHandler(db *gorm.DB) *CustomerHandler { return &CustomerHandler{DB: db} }

var searchSafe = regexp.MustCompile(`[^a-zA-Z0-9 \-_@.]`)

// ListCreate serves GET /customers (list with optional ?q= search) and
// POST /customers (create).
func (h *CustomerHandler) ListCreate(w http.ResponseWriter, r *http.Request) {
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

func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
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
	dbq := h.DB.Model(&models.Customer{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(searchSafe.ReplaceAllString(q, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(phone) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}
	var total int64
	dbq.Count(&total)
	var customers []models.Customer
	if err := dbq.Preload("Vehicles").Order("id desc").Limit(pageSize).Offset(offset).Find(&customers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": total, "limit": pageSize, "offset": offset})
}

func (h *CustomerHandler) create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Address string `json:"address"`
		Notes   string `json:"notes"`
	}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Customer{Name: strings.TrimSpace(input.Name), Phone: strings.TrimSpace(input.Phone), Email: strings.TrimSpace(input.Email), Address: input.Address, Notes: input.Notes}
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "customer_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Update edits the customer identified by ?id=.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var body struct {
		Name    *string `json:"name"`
		Phone   *string `json:"phone"`
		Email   *string `json:"email"`
		Address *string `json:"address"`
		Notes   *string `json:"notes"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if body.Name != nil {
		if strings.TrimSpace(*body.Name) == "" {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"name": "required"})
			return
		}
		c.Name = strings.TrimSpace(*body.Name)
	}
	if body.Phone != nil {
		c.Phone = strings.TrimSpace(*body.Phone)
	}
	if body.Email != nil {
		c.Email = strings.TrimSpace(*body.Email)
	}
	if body.Address != nil {
		c.Address = *body.Address
	}
	if body.Notes != nil {
		c.Notes = *body.Notes
	}
	if err := h.DB.Save(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Vehicles serves GET /customers/vehicles?customer_id= (list) and POST (add).
func (h *CustomerHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cid, _ := strconv.Atoi(r.URL.Query().Get("customer_id"))
		if cid <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_customer_id", nil)
			return
		}
		var vehicles []models.Vehicle
		if err := h.DB.Where("customer_id = ?", cid).Order("id asc").Find(&vehicles).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_vehicles", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": vehicles})
	case http.MethodPost:
		var input struct {
			CustomerID uint   `json:"customer_id"`
			Make       string `json:"make"`
			Model      string `json:"model"`
			Plate      string `json:"plate"`
			Year       int    `json:"year"`
			Color      string `json:"color"`
		}
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		v := validation.Violations{}
		validation.Required("make", input.Make, v)
		validation.Required("model", input.Model, v)
		if input.CustomerID == 0 {
			v["customer_id"] = "required"
		}
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		var count int64
		if err := h.DB.Model(&models.Customer{}).Where("id = ?", input.CustomerID).Count(&count).Error; err != nil || count == 0 {
			httpx.JSONError(w, http.StatusNotFound, "customer_not_found", nil)
			return
		}
		veh := models.Vehicle{CustomerID: input.CustomerID, Make: strings.TrimSpace(input.Make), Model: strings.TrimSpace(input.Model), Plate: strings.ToUpper(strings.TrimSpace(input.Plate)), Year: input.Year, Color: input.Color}
		if err := h.DB.Create(&veh).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "vehicle_create_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusCreated, veh)
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}
