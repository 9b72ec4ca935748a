package models

import "encoding/json"

// Module names permissions can be granted on.
const (
	ModuleTransactions        = "transactions"
	ModuleCategories          = "categories"
	ModuleMethods             = "methods"
	ModuleStorages            = "storages"
	ModuleInvoices            = "invoices"
	ModuleScheduledInvoices   = "scheduled-invoices"
	ModuleCustomers           = "customers"
	ModulePendingTransactions = "pending-transactions"
	ModuleReports             = "reports"
)

// ValidModule reports whether name is a known permission module.
func ValidModule(name string) bool {
	switch name {
	case ModuleTransactions, ModuleCategories, ModuleMethods, ModuleStorages,
		ModuleInvoices, ModuleScheduledInvoices, ModuleCustomers,
		ModulePendingTransactions, ModuleReports:
		return true
	}
	return false
}

// Permission grants CRUD access on a module to a role within a company.
// Managers bypass permission checks entirely.
type Permission struct {
	Base
	CompanyID uint   `gorm:"not null;uniqueIndex:idx_perm_company_role_module" json:"company_id"`
	Role      Role   `gorm:"not null;uniqueIndex:idx_perm_company_role_module" json:"role"`
	Module    string `gorm:"not null;uniqueIndex:idx_perm_company_role_module" json:"module"`
	CanCreate bool   `gorm:"default:false" json:"create"`
	CanView   bool   `gorm:"default:false" json:"view"`
	CanEdit   bool   `gorm:"default:false" json:"edit"`
	CanDelete bool   `gorm:"default:false" json:"delete"`
}

// AuditScope restricts what the audit role can see: only transactions
// and report rows whose storage and method fall inside the scope.
// The id sets are stored as JSON arrays in text columns.
type AuditScope struct {
	Base
	CompanyID  uint   `gorm:"not null;uniqueIndex" json:"company_id"`
	StorageIDs string `gorm:"type:text" json:"-"`
	MethodIDs  string `gorm:"type:text" json:"-"`
}

// Storages decodes the storage id set. An empty column yields nil.
func (a *AuditScope) Storages() []uint { return decodeIDs(a.StorageIDs) }

// Methods decodes the method id set. An empty column yields nil.
func (a *AuditScope) Methods() []uint { return decodeIDs(a.MethodIDs) }

// SetStorages encodes the storage id set.
func (a *AuditScope) SetStorages(ids []uint) { a.StorageIDs = encodeIDs(ids) }

// SetMethods encodes the method id set.
func (a *AuditScope) SetMethods(ids []uint) { a.MethodIDs = encodeIDs(ids) }

func decodeIDs(raw string) []uint {
	if raw == "" {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

func encodeIDs(ids []uint) string {
	if ids == nil {
		ids = []uint{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(data)
}
