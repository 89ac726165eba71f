package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/detailops/backoffice/internal/models"
)

// CategoryTotal is one slice of a breakdown: a label, its summed amount, and
// its share of the breakdown total.
type CategoryTotal struct {
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

// MonthlyData aggregates one calendar month of activity. Invoiced covers
// non-draft, non-cancelled invoices created during the month; Collected sums
// the payments actually received in it. Net is collected minus expenses.
type MonthlyData struct {
	Month             time.Month      `json:"month"`
	Year              int             `json:"year"`
	Invoiced          decimal.Decimal `json:"invoiced"`
	Collected         decimal.Decimal `json:"collected"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	TaxTotal          decimal.Decimal `json:"tax_total"`
	DiscountTotal     decimal.Decimal `json:"discount_total"`
	Expenses          decimal.Decimal `json:"expenses"`
	Net               decimal.Decimal `json:"net"`
	InvoiceCount      int             `json:"invoice_count"`
	PaidCount         int             `json:"paid_count"`
	BookingCount      int             `json:"booking_count"`
	CompletedCount    int             `json:"completed_count"`
	NewCustomers      int             `json:"new_customers"`
	RevenueByMethod   []CategoryTotal `json:"revenue_by_method"`
	ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
	TopServices       []CategoryTotal `json:"top_services"`
}

// PercentOf returns part as a percentage of total, rounded to one decimal.
// A zero or negative total yields zero rather than a division error.
func PercentOf(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(decimal.NewFromInt(100)).Div(total).Round(1)
}

func monthBounds(month time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// BuildMonthly loads the month's invoices, payments, bookings, expenses, and
// customers and folds them into a MonthlyData. Sums run in Go because the
// amount columns are stored as numeric strings under sqlite in tests.
func BuildMonthly(db *gorm.DB, month time.Month, year int) (*MonthlyData, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	start, end := monthBounds(month, year)
	data := &MonthlyData{Month: month, Year: year}

	var invoices []models.Invoice
	if err := db.Preload("Items").Where("created_at >= ? AND created_at < ?", start, end).Find(&invoices).Error; err != nil {
		return nil, err
	}
	data.InvoiceCount = len(invoices)
	byService := map[string]decimal.Decimal{}
	serviceTotal := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == models.StatusPaid {
			data.PaidCount++
		}
		if inv.Status == models.StatusDraft || inv.Status == models.StatusCancelled {
			continue
		}
		data.Invoiced = data.Invoiced.Add(inv.TotalAmount)
		data.TaxTotal = data.TaxTotal.Add(inv.TaxAmount)
		data.DiscountTotal = data.DiscountTotal.Add(inv.DiscountAmount)
		for _, it := range inv.Items {
			byService[it.Description] = byService[it.Description].Add(it.TotalPrice)
			serviceTotal = serviceTotal.Add(it.TotalPrice)
		}
	}
	data.TopServices = breakdown(byService, serviceTotal)
	if len(data.TopServices) > 10 {
		data.TopServices = data.TopServices[:10]
	}

	var payments []models.Payment
	if err := db.Where("date >= ? AND date < ?", start, end).Find(&payments).Error; err != nil {
		return nil, err
	}
	byMethod := map[string]decimal.Decimal{}
	for _, p := range payments {
		data.Collected = data.Collected.Add(p.Amount)
		byMethod[p.Method] = byMethod[p.Method].Add(p.Amount)
	}
	data.RevenueByMethod = breakdown(byMethod, data.Collected)

	var expenses []models.Expense
	if err := db.Where("incurred_at >= ? AND incurred_at < ?", start, end).Find(&expenses).Error; err != nil {
		return nil, err
	}
	byCategory := map[string]decimal.Decimal{}
	for _, e := range expenses {
		data.Expenses = data.Expenses.Add(e.Amount)
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}
	data.ExpenseByCategory = breakdown(byCategory, data.Expenses)

	var bookings []models.Booking
	if err := db.Where("scheduled_at >= ? AND scheduled_at < ?", start, end).Find(&bookings).Error; err != nil {
		return nil, err
	}
	data.BookingCount = len(bookings)
	for _, b := range bookings {
		if b.Status == models.BookingCompleted {
			data.CompletedCount++
		}
	}

	var newCustomers int64
	if err := db.Model(&models.Customer{}).Where("created_at >= ? AND created_at < ?", start, end).Count(&newCustomers).Error; err != nil {
		return nil, err
	}
	data.NewCustomers = int(newCustomers)

	data.Invoiced = data.Invoiced.Round(2)
	data.Collected = data.Collected.Round(2)
	data.Outstanding = data.Invoiced.Sub(data.Collected)
	data.TaxTotal = data.TaxTotal.Round(2)
	data.DiscountTotal = data.DiscountTotal.Round(2)
	data.Expenses = data.Expenses.Round(2)
	data.Net = data.Collected.Sub(data.Expenses)
	return data, nil
}

func breakdown(sums map[string]decimal.Decimal, total decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(sums))
	for label, amount := range sums {
		out = append(out, CategoryTotal{
			Label:   label,
			Amount:  amount.Round(2),
			Percent: PercentOf(amount, total),
		})
	}
	// Deterministic order: biggest slice first, ties by label.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Label < out[j].Label
	})
	return out
}
