package models

// PendingTransaction is an imported candidate transaction awaiting
// categorization. RawDate keeps the source CSV value verbatim when it
// could not be parsed; Type may be empty for rows where neither Paid In
// nor Paid Out was positive, and promotion rejects such rows until the
// type is corrected.
type PendingTransaction struct {
	Base
	CompanyID   uint            `gorm:"not null;index" json:"company_id"`
	RawDate     string          `gorm:"not null" json:"raw_date"`
	Description string          `json:"description"`
	Amount      float64         `gorm:"not null" json:"amount"`
	Type        TransactionType `json:"transaction_type"`
	CategoryID  *uint           `json:"category_id,omitempty"`
	MethodID    *uint           `json:"method_id,omitempty"`
	StorageID   *uint           `json:"storage_id,omitempty"`
	SourceFile  string          `json:"source_file,omitempty"`
}
