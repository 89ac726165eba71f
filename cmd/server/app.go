package main

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/money"
	"github.com/detailops/backoffice/internal/server"
	"github.com/detailops/backoffice/internal/services"
)

// NewApp wires the shop currency into the formatter before building the API
// handler, so a freshly booted process formats amounts the way the stored
// settings say it should.
func NewApp(dbConn *gorm.DB) http.Handler {
	svc := services.NewSettingsService(dbConn)
	if cs, err := svc.Get(); err == nil && cs != nil && cs.Currency != "" {
		money.SetDefaultCurrency(cs.Currency)
	}
	return server.New(dbConn)
}
