package services

import (
	"errors"

	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/money"
	"gorm.io/gorm"
)

type SettingsInput struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	TaxID    string
	Currency string
}

// SettingsService manages the single shop profile record.
type SettingsService struct{ DB *gorm.DB }

func NewSettingsService(db *gorm.DB) *SettingsService { return &SettingsService{DB: db} }

var ErrAlreadyConfigured = errors.New("shop_already_configured")

func (s *SettingsService) IsConfigured() (bool, error) {
	var count int64
	if err := s.DB.Model(&models.ShopSettings{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SettingsService) Run(in SettingsInput) (*models.ShopSettings, error) {
	configured, err := s.IsConfigured()
	if err != nil {
		return nil, err
	}
	if configured {
		return nil, ErrAlreadyConfigured
	}
	if in.Name == "" {
		return nil, errors.New("missing_shop_name")
	}
	cur := in.Currency
	if cur == "" {
		cur = money.DefaultCurrency()
	}
	cs := models.ShopSettings{Name: in.Name, Phone: in.Phone, Email: in.Email, Address: in.Address, TaxID: in.TaxID, Currency: cur}
	if err := s.DB.Create(&cs).Error; err != nil {
		return nil, err
	}
	money.SetDefaultCurrency(cs.Currency)
	return &cs, nil
}

// Get returns the shop settings record if present, otherwise nil.
func (s *SettingsService) Get() (*models.ShopSettings, error) {
	var cs models.ShopSettings
	err := s.DB.First(&cs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// Update modifies the existing shop settings with new input values.
func (s *SettingsService) Update(in SettingsInput) (*models.ShopSettings, error) {
	var cs models.ShopSettings
	if err := s.DB.First(&cs).Error; err != nil {
		return nil, err
	}
	cs.Name = in.Name
	cs.Phone = in.Phone
	cs.Email = in.Email
	cs.Address = in.Address
	cs.TaxID = in.TaxID
	if in.Currency != "" {
		cs.Currency = in.Currency
	}
	if err := s.DB.Save(&cs).Error; err != nil {
		return nil, err
	}
	money.SetDefaultCurrency(cs.Currency)
	return &cs, nil
}
