package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/httpx"
	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/validation"
)

type ProductHandler struct{ DB *gorm.DB }

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

// ListCreate serves GET /products (search + pagination) and POST /products.
func (h *ProductHandler) ListCreate(w http.ResponseWriter, r *http.Request) {
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

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
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
	dbq := h.DB.Model(&models.Product{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(searchSafe.ReplaceAllString(q, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(category) LIKE ?", like, like)
	}
	if c := r.URL.Query().Get("category"); c != "" {
		dbq = dbq.Where("category = ?", c)
	}
	var total int64
	dbq.Count(&total)
	var products []models.Product
	if err := dbq.Preload("Variants").Order("id desc").Limit(pageSize).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": pageSize, "offset": offset})
}

type variantInput struct {
	SKU         string  `json:"sku"`
	VariantName string  `json:"variant_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string         `json:"name"`
		Category    string         `json:"category"`
		Description string         `json:"description"`
		Variants    []variantInput `json:"variants"`
	}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	for i, vi := range input.Variants {
		prefix := "variants." + strconv.Itoa(i) + "."
		if strings.TrimSpace(vi.SKU) == "" {
			v[prefix+"sku"] = "required"
		}
		validation.Required(prefix+"variant_name", vi.VariantName, v)
		validation.NonNegativeFloat(prefix+"price", vi.Price, v)
		if vi.Quantity < 0 {
			v[prefix+"quantity"] = "must_not_be_negative"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Product{Name: strings.TrimSpace(input.Name), Category: strings.TrimSpace(input.Category), Description: input.Description}
	for _, vi := range input.Variants {
		p.Variants = append(p.Variants, models.ProductVariant{
			SKU:         strings.ToUpper(strings.TrimSpace(vi.SKU)),
			VariantName: strings.TrimSpace(vi.VariantName),
			Price:       decimal.NewFromFloat(vi.Price),
			Quantity:    vi.Quantity,
		})
	}
	if err := h.DB.Create(&p).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			httpx.JSONError(w, http.StatusConflict, "sku_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "product_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update edits name, category, description of the product at ?id=.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var body struct {
		Name        *string `json:"name"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if body.Name != nil {
		p.Name = strings.TrimSpace(*body.Name)
	}
	if body.Category != nil {
		p.Category = strings.TrimSpace(*body.Category)
	}
	if body.Description != nil {
		p.Description = *body.Description
	}
	if err := h.DB.Save(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete soft deletes the product at ?id=. Variants stay on record so old
// invoices keep resolving.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.DB.Where("id = ?", id).Delete(&models.Product{}).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Variants serves POST /products/variants (add a variant to a product) and
// PATCH-style stock/price edits via ?id= on the same route.
func (h *ProductHandler) Variants(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if idStr := r.URL.Query().Get("id"); idStr != "" {
			h.updateVariant(w, r, idStr)
			return
		}
		h.createVariant(w, r)
	default:
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *ProductHandler) createVariant(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID uint `json:"product_id"`
		variantInput
	}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if input.ProductID == 0 {
		v["product_id"] = "required"
	}
	validation.Required("sku", input.SKU, v)
	validation.Required("variant_name", input.VariantName, v)
	validation.NonNegativeFloat("price", input.Price, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var count int64
	if err := h.DB.Model(&models.Product{}).Where("id = ?", input.ProductID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
		return
	}
	pv := models.ProductVariant{
		ProductID:   input.ProductID,
		SKU:         strings.ToUpper(strings.TrimSpace(input.SKU)),
		VariantName: strings.TrimSpace(input.VariantName),
		Price:       decimal.NewFromFloat(input.Price),
		Quantity:    input.Quantity,
	}
	if err := h.DB.Create(&pv).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			httpx.JSONError(w, http.StatusConflict, "sku_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "variant_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, pv)
}

func (h *ProductHandler) updateVariant(w http.ResponseWriter, r *http.Request, idStr string) {
	id, _ := strconv.Atoi(idStr)
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var pv models.ProductVariant
	if err := h.DB.First(&pv, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var body struct {
		VariantName *string  `json:"variant_name"`
		Price       *float64 `json:"price"`
		Quantity    *int     `json:"quantity"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if body.VariantName != nil {
		pv.VariantName = strings.TrimSpace(*body.VariantName)
	}
	if body.Price != nil {
		if *body.Price < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"price": "must_not_be_negative"})
			return
		}
		pv.Price = decimal.NewFromFloat(*body.Price)
	}
	if body.Quantity != nil {
		if *body.Quantity < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"quantity": "must_not_be_negative"})
			return
		}
		pv.Quantity = *body.Quantity
	}
	if err := h.DB.Save(&pv).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, pv)
}
