package models

import "time"

// Frequency represents how often a scheduled invoice recurs
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ScheduledInvoice is an invoice template that the worker turns into a
// due Invoice each time it comes due. LastRunDate records the most
// recent generation and gates the next one.
type ScheduledInvoice struct {
	Base
	CompanyID      uint            `gorm:"not null;index" json:"company_id"`
	CustomerID     uint            `gorm:"not null" json:"customer_id"`
	Tax            float64         `gorm:"not null;default:0" json:"tax"`
	Discount       float64         `gorm:"not null;default:0" json:"discount"`
	DiscountType   DiscountType    `gorm:"not null;default:'flat'" json:"discount_type"`
	Type           TransactionType `gorm:"not null" json:"transaction_type"`
	Frequency      Frequency       `gorm:"not null" json:"frequency"`
	ScheduledDay   int             `gorm:"not null" json:"scheduled_day"`
	ScheduledMonth int             `json:"scheduled_month,omitempty"`
	// FrequencyDueDate is the next date the schedule comes due; the
	// worker advances it after each generation.
	FrequencyDueDate *time.Time `json:"frequency_due_date,omitempty"`
	LastRunDate      *time.Time `json:"last_run_date,omitempty"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Customer Customer               `gorm:"foreignKey:CustomerID" json:"customer"`
	Items    []ScheduledInvoiceItem `gorm:"foreignKey:ScheduledInvoiceID" json:"items"`
}

// ScheduledInvoiceItem mirrors InvoiceItem for the recurring template.
type ScheduledInvoiceItem struct {
	Base
	ScheduledInvoiceID uint    `gorm:"not null;index" json:"scheduled_invoice_id"`
	Details            string  `gorm:"not null" json:"details"`
	Quantity           float64 `gorm:"not null" json:"quantity"`
	Rate               float64 `gorm:"not null" json:"rate"`
	Amount             float64 `gorm:"not null" json:"amount"`
}
