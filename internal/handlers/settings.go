package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/httpx"
	"github.com/detailops/backoffice/internal/services"
)

type SettingsHandler struct{ Svc *services.SettingsService }

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{Svc: services.NewSettingsService(db)}
}

// Handle serves GET /settings (current shop profile) and POST /settings
// (first-run setup, or update once configured).
func (h *SettingsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cs, err := h.Svc.Get()
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "settings_load_failed", nil)
			return
		}
		if cs == nil {
			httpx.JSON(w, http.StatusOK, map[string]any{"configured": false})
			return
		}
		httpx.JSON(w, http.StatusOK, cs)
	case http.MethodPost:
		var input struct {
			Name     string `json:"name"`
			Phone    string `json:"phone"`
			Email    string `json:"email"`
			Address  string `json:"address"`
			TaxID    string `json:"tax_id"`
			Currency string `json:"currency"`
		}
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		in := services.SettingsInput{Name: input.Name, Phone: input.Phone, Email: input.Email, Address: input.Address, TaxID: input.TaxID, Currency: input.Currency}
		configured, err := h.Svc.IsConfigured()
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "settings_load_failed", nil)
			return
		}
		var cs any
		if configured {
			cs, err = h.Svc.Update(in)
		} else {
			cs, err = h.Svc.Run(in)
		}
		if err != nil {
			if errors.Is(err, services.ErrAlreadyConfigured) {
				httpx.JSONError(w, http.StatusConflict, "shop_already_configured", nil)
				return
			}
			httpx.JSONError(w, http.StatusBadRequest, "settings_save_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, cs)
	default:
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}
