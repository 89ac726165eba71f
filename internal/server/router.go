package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/auth"
	"github.com/detailops/backoffice/internal/handlers"
	"github.com/detailops/backoffice/internal/httpx"
	"github.com/detailops/backoffice/internal/middleware"
	"github.com/detailops/backoffice/internal/models"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// protected wraps a handler func with session auth.
	protected := func(fn http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(fn))
	}

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1) - detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)
	profile := handlers.NewProfileHandler(db)
	mux.Handle("/profile/password", protected(profile.ChangePassword))

	// Shop settings
	sh := handlers.NewSettingsHandler(db)
	mux.Handle("/settings", protected(sh.Handle))

	// Customer directory
	ch := handlers.NewCustomerHandler(db)
	mux.Handle("/customers", protected(ch.ListCreate))
	mux.Handle("/customers/update", protected(ch.Update))
	mux.Handle("/customers/vehicles", protected(ch.Vehicles))

	// Bookings
	bh := handlers.NewBookingHandler(db)
	mux.Handle("/bookings", protected(bh.ListCreate))
	mux.Handle("/bookings/status", protected(bh.UpdateStatus))

	// Product catalog
	ph := handlers.NewProductHandler(db)
	mux.Handle("/products", protected(ph.ListCreate))
	mux.Handle("/products/update", protected(ph.Update))
	mux.Handle("/products/delete", protected(ph.Delete))
	mux.Handle("/products/variants", protected(ph.Variants))

	// Invoices
	ih := handlers.NewInvoiceHandler(db)
	mux.Handle("/invoices", protected(ih.ListCreate))
	mux.Handle("/invoices/get", protected(ih.Get))
	mux.Handle("/invoices/update", protected(ih.Update))
	mux.Handle("/invoices/status", protected(ih.UpdateStatus))
	mux.Handle("/invoices/pdf", protected(ih.PDF))

	// Expenses
	eh := handlers.NewExpenseHandler(db)
	mux.Handle("/expenses", protected(eh.ListCreate))

	// Reports
	rh := handlers.NewReportHandler(db)
	mux.Handle("/reports/monthly", protected(rh.Monthly))
	mux.Handle("/reports/monthly/pdf", protected(rh.MonthlyPDF))

	return middleware.RequestID(withRecover(withLogging(mux)))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s rid=%s", r.Method, r.URL.Path, time.Since(start), middleware.RequestIDFrom(r))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
