// Package pdf renders invoices and company reports as PDF documents.
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"ledgerdesk/internal/models"
	"ledgerdesk/internal/services"
)

var (
	colorPrimary = &props.Color{Red: 33, Green: 64, Blue: 112}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

func newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

func money(symbol string, amount float64) string {
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

// GenerateInvoicePDF renders a single invoice with its line items and
// totals block.
func GenerateInvoicePDF(invoice *models.Invoice, company *models.Company) ([]byte, error) {
	m := newDocument("Invoice "+invoice.InvID, company.Name)
	symbol := company.CurrencySymbol

	m.AddRows(invoiceHeaderRow(invoice, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(invoiceCustomerRow(&invoice.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(invoiceTableHeader())
	for _, item := range invoice.Items {
		m.AddRows(invoiceItemRow(item, symbol))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(invoiceTotalsRow(invoice, symbol))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate invoice: %w", err)
	}
	return doc.GetBytes(), nil
}

func invoiceHeaderRow(invoice *models.Invoice, company *models.Company) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(company.Address, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.InvID, props.Text{
				Size: 8, Align: align.Right, Top: 8,
			}),
			text.New("Date: "+invoice.Date.Format("02 Jan 2006"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func invoiceCustomerRow(customer *models.Customer) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(customer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s   %s   %s", customer.Email, customer.Phone, customer.Address), props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
	)
}

func invoiceTableHeader() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Details", 6, align.Left),
		h("Qty", 2, align.Center),
		h("Rate", 2, align.Right),
		h("Amount", 2, align.Right),
	)
}

func invoiceItemRow(item models.InvoiceItem, symbol string) core.Row {
	return row.New(7).Add(
		col.New(6).Add(text.New(item.Details, props.Text{
			Size: 8, Align: align.Left, Top: 1, Left: 1,
		})),
		col.New(2).Add(text.New(fmt.Sprintf("%g", item.Quantity), props.Text{
			Size: 8, Align: align.Center, Top: 1,
		})),
		col.New(2).Add(text.New(money(symbol, item.Rate), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1,
		})),
		col.New(2).Add(text.New(money(symbol, item.Amount), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1,
		})),
	)
}

func invoiceTotalsRow(invoice *models.Invoice, symbol string) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	discount := invoice.Discount
	if invoice.DiscountType == models.DiscountTypePercent {
		discount = invoice.Subtotal() * invoice.Discount / 100
	}

	return row.New(32).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:"),
			label("Tax:"),
			label("Discount:"),
			label("Partial payment:"),
			text.New("TOTAL DUE:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 2,
			}),
		),
		col.New(3).Add(
			value(money(symbol, invoice.Subtotal())),
			value(money(symbol, invoice.Tax)),
			value(money(symbol, discount)),
			value(money(symbol, invoice.PartialPayment)),
			text.New(money(symbol, invoice.Amount), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 1,
			}),
		),
	)
}

// GenerateReportPDF renders a per-category report with method
// subtotals and a grand total.
func GenerateReportPDF(report *services.Report, company *models.Company) ([]byte, error) {
	title := fmt.Sprintf("%s report %s to %s",
		report.Type,
		report.From.Format("02 Jan 2006"),
		report.To.Format("02 Jan 2006"),
	)
	m := newDocument(title, company.Name)
	symbol := company.CurrencySymbol

	m.AddRows(reportHeaderRow(report, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, category := range report.Categories {
		m.AddRows(reportCategoryHeader(category, symbol))
		for _, tx := range category.Transactions {
			m.AddRows(reportTransactionRow(tx, symbol))
		}
		m.AddRows(reportMethodTotalsRow(category, report.MethodNames, symbol))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	}

	m.AddRows(row.New(10).Add(
		col.New(8).Add(text.New("GRAND TOTAL", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(4).Add(text.New(money(symbol, report.GrandTotal), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 1,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate report: %w", err)
	}
	return doc.GetBytes(), nil
}

func reportHeaderRow(report *services.Report, company *models.Company) core.Row {
	period := fmt.Sprintf("%s to %s",
		report.From.Format("02 Jan 2006"),
		report.To.Format("02 Jan 2006"),
	)
	return row.New(16).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s report", report.Type), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(period, props.Text{
				Size: 9, Align: align.Right, Top: 2,
			}),
			text.New("Generated "+time.Now().Format("02 Jan 2006"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func reportCategoryHeader(category services.CategoryReport, symbol string) core.Row {
	return row.New(9).Add(
		col.New(8).Add(text.New(category.CategoryName, props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New(money(symbol, category.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

func reportTransactionRow(tx models.Transaction, symbol string) core.Row {
	return row.New(6).Add(
		col.New(2).Add(text.New(tx.Date.Format("02 Jan 2006"), props.Text{
			Size: 8, Top: 1, Left: 2,
		})),
		col.New(5).Add(text.New(tx.Description, props.Text{
			Size: 8, Top: 1,
		})),
		col.New(3).Add(text.New(tx.Method.Name, props.Text{
			Size: 8, Top: 1, Color: colorGray,
		})),
		col.New(2).Add(text.New(money(symbol, tx.Amount), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1,
		})),
	)
}

func reportMethodTotalsRow(category services.CategoryReport, methodNames []string, symbol string) core.Row {
	parts := ""
	for _, name := range methodNames {
		total, ok := category.MethodTotals[name]
		if !ok {
			continue
		}
		if parts != "" {
			parts += "   "
		}
		parts += fmt.Sprintf("%s: %s", name, money(symbol, total))
	}
	return row.New(6).Add(
		col.New(12).Add(text.New(parts, props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorGray,
		})),
	)
}
