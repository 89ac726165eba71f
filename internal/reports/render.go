package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/detailops/backoffice/internal/models"
	"github.com/detailops/backoffice/internal/money"
)

// newDoc starts a page with the shop letterhead. The returned translator maps
// UTF-8 to cp1252 for the core fonts; currency symbols and x/text's no-break
// group separators come out as mojibake without it.
func newDoc(title string, shop *models.ShopSettings) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	if shop != nil && shop.Name != "" {
		pdf.Cell(0, 10, tr(shop.Name))
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		if shop.Address != "" {
			pdf.Cell(0, 6, tr(shop.Address))
			pdf.Ln(5)
		}
		if shop.Phone != "" || shop.Email != "" {
			pdf.Cell(0, 6, tr(shop.Phone+"  "+shop.Email))
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)
	return pdf, tr
}

// RenderMonthlyPDF writes the monthly report as a PDF document.
func RenderMonthlyPDF(w io.Writer, data *MonthlyData, shop *models.ShopSettings) error {
	title := fmt.Sprintf("Monthly Report - %s %d", data.Month.String(), data.Year)
	pdf, tr := newDoc(title, shop)

	row := func(label, value string) {
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(70, 8, label)
		pdf.Cell(0, 8, tr(value))
		pdf.Ln(7)
	}
	row("Invoiced", money.Format(data.Invoiced))
	row("Collected", money.Format(data.Collected))
	row("Outstanding", money.Format(data.Outstanding))
	row("Tax collected", money.Format(data.TaxTotal))
	row("Discounts given", money.Format(data.DiscountTotal))
	row("Expenses", money.Format(data.Expenses))
	row("Net", money.Format(data.Net))
	row("Invoices", fmt.Sprintf("%d (%d paid)", data.InvoiceCount, data.PaidCount))
	row("Bookings", fmt.Sprintf("%d (%d completed)", data.BookingCount, data.CompletedCount))
	row("New customers", fmt.Sprintf("%d", data.NewCustomers))

	section := func(name string, totals []CategoryTotal) {
		if len(totals) == 0 {
			return
		}
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 9, name)
		pdf.Ln(9)
		for _, ct := range totals {
			pdf.SetFont("Arial", "", 11)
			pdf.Cell(70, 7, tr(ct.Label))
			pdf.Cell(50, 7, tr(money.Format(ct.Amount)))
			pdf.Cell(0, 7, ct.Percent.String()+"%")
			pdf.Ln(6)
		}
	}
	section("Revenue by payment method", data.RevenueByMethod)
	section("Top services", data.TopServices)
	section("Expenses by category", data.ExpenseByCategory)

	return pdf.Output(w)
}

// RenderInvoicePDF writes a printable invoice.
func RenderInvoicePDF(w io.Writer, inv *models.Invoice, shop *models.ShopSettings) error {
	pdf, tr := newDoc("Invoice "+inv.Number, shop)
	cur := money.WithCurrency(inv.Currency)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, tr("Billed to: "+inv.Customer.Name))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Due: "+inv.DueDate.Format("2006-01-02"))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Status: "+inv.Status)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(80, 8, "Description")
	pdf.Cell(30, 8, "Qty")
	pdf.Cell(40, 8, "Unit price")
	pdf.Cell(0, 8, "Total")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	for _, it := range inv.Items {
		pdf.Cell(80, 7, tr(it.Description))
		pdf.Cell(30, 7, it.Quantity.String())
		pdf.Cell(40, 7, tr(money.Format(it.UnitPrice, cur)))
		pdf.Cell(0, 7, tr(money.Format(it.TotalPrice, cur)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	totalRow := func(label string, v string) {
		pdf.Cell(110, 7, "")
		pdf.Cell(40, 7, label)
		pdf.Cell(0, 7, tr(v))
		pdf.Ln(6)
	}
	totalRow("Subtotal", money.Format(inv.Subtotal, cur))
	totalRow("Tax (10%)", money.Format(inv.TaxAmount, cur))
	if inv.DiscountAmount.IsPositive() {
		totalRow("Discount", "-"+money.Format(inv.DiscountAmount, cur))
	}
	pdf.SetFont("Arial", "B", 11)
	totalRow("Total", money.Format(inv.TotalAmount, cur))

	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 5, tr(inv.Notes), "", "L", false)
	}
	return pdf.Output(w)
}
