// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("discount_type", validateDiscountType)
		_ = v.RegisterValidation("invoice_status", validateInvoiceStatus)
		_ = v.RegisterValidation("frequency", validateFrequency)
		_ = v.RegisterValidation("role", validateRole)
		_ = v.RegisterValidation("audit_status", validateAuditStatus)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "inflow", "outflow":
		return true
	}
	return false
}

func validateDiscountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "percent", "flat":
		return true
	}
	return false
}

func validateInvoiceStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "due", "paid":
		return true
	}
	return false
}

func validateFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "yearly":
		return true
	}
	return false
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "manager", "user", "audit":
		return true
	}
	return false
}

func validateAuditStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "auditable", "hidden":
		return true
	}
	return false
}
