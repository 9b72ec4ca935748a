package models

import (
	"time"

	"ledgerdesk/internal/uuid"

	"gorm.io/gorm"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDue  InvoiceStatus = "due"
	InvoiceStatusPaid InvoiceStatus = "paid"
)

// DiscountType determines how an invoice discount is applied
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFlat    DiscountType = "flat"
)

// InvoiceItem is a single line on an invoice. Amount is Quantity * Rate,
// computed at write time.
type InvoiceItem struct {
	Base
	InvoiceID uint    `gorm:"not null;index" json:"invoice_id"`
	Details   string  `gorm:"not null" json:"details"`
	Quantity  float64 `gorm:"not null" json:"quantity"`
	Rate      float64 `gorm:"not null" json:"rate"`
	Amount    float64 `gorm:"not null" json:"amount"`
}

// Invoice represents a customer invoice. Amount is derived from the
// items plus tax, minus discount and partial payment.
type Invoice struct {
	Base
	InvID          string          `gorm:"size:36;uniqueIndex;not null" json:"inv_id"`
	CompanyID      uint            `gorm:"not null;index" json:"company_id"`
	CustomerID     uint            `gorm:"not null" json:"customer_id"`
	Date           time.Time       `gorm:"not null" json:"date"`
	Tax            float64         `gorm:"not null;default:0" json:"tax"`
	Discount       float64         `gorm:"not null;default:0" json:"discount"`
	DiscountType   DiscountType    `gorm:"not null;default:'flat'" json:"discount_type"`
	PartialPayment float64         `gorm:"not null;default:0" json:"partial_payment"`
	Status         InvoiceStatus   `gorm:"not null;default:'due'" json:"status"`
	Type           TransactionType `gorm:"not null" json:"transaction_type"`
	Amount         float64         `gorm:"not null" json:"amount"`
	BankID         *uint           `json:"bank_id,omitempty"`

	// Relationships
	Customer Customer      `gorm:"foreignKey:CustomerID" json:"customer"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Bank     *Storage      `gorm:"foreignKey:BankID" json:"bank,omitempty"`
}

// BeforeCreate assigns a UUIDv7 invoice identifier when not supplied.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.InvID == "" {
		i.InvID = uuid.New()
	}
	return nil
}

// Subtotal returns the sum of all item amounts.
func (i *Invoice) Subtotal() float64 {
	var sum float64
	for idx := range i.Items {
		sum += i.Items[idx].Amount
	}
	return sum
}

// ComputeAmount recalculates the invoice total from its items, tax,
// discount, and partial payment. Percent discounts apply to the item
// subtotal; flat discounts subtract directly.
func (i *Invoice) ComputeAmount() {
	subtotal := i.Subtotal()
	discount := i.Discount
	if i.DiscountType == DiscountTypePercent {
		discount = subtotal * i.Discount / 100
	}
	i.Amount = subtotal + i.Tax - discount - i.PartialPayment
}
