package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/logger"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// scheduleService handles scheduled-invoice business logic and the
// periodic promotion of due schedules into invoices.
type scheduleService struct {
	db              *gorm.DB
	customerService CustomerServicer
	invoiceService  InvoiceServicer
}

// NewScheduleService creates a new ScheduleServicer.
func NewScheduleService(db *gorm.DB, customerService CustomerServicer, invoiceService InvoiceServicer) ScheduleServicer {
	return &scheduleService{
		db:              db,
		customerService: customerService,
		invoiceService:  invoiceService,
	}
}

func buildScheduleItems(inputs []InvoiceItemInput) []models.ScheduledInvoiceItem {
	items := make([]models.ScheduledInvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.ScheduledInvoiceItem{
			Details:  in.Details,
			Quantity: in.Quantity,
			Rate:     in.Rate,
			Amount:   in.Quantity * in.Rate,
		})
	}
	return items
}

func validateScheduleInput(input CreateScheduleInput) error {
	if len(input.Items) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "schedule needs at least one item")
	}
	if input.ScheduledDay < 1 || input.ScheduledDay > 28 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "scheduled day must be between 1 and 28")
	}
	if input.Frequency == models.FrequencyYearly && (input.ScheduledMonth < 1 || input.ScheduledMonth > 12) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "yearly schedules need a month between 1 and 12")
	}
	return nil
}

// CreateSchedule creates a new scheduled invoice template.
func (s *scheduleService) CreateSchedule(companyID uint, input CreateScheduleInput) (*models.ScheduledInvoice, error) {
	if err := validateScheduleInput(input); err != nil {
		return nil, err
	}
	if _, err := s.customerService.GetCustomerByID(companyID, input.CustomerID); err != nil {
		return nil, err
	}
	if input.DiscountType == "" {
		input.DiscountType = models.DiscountTypeFlat
	}

	schedule := &models.ScheduledInvoice{
		CompanyID:      companyID,
		CustomerID:     input.CustomerID,
		Items:          buildScheduleItems(input.Items),
		Tax:            input.Tax,
		Discount:       input.Discount,
		DiscountType:   input.DiscountType,
		Type:           input.Type,
		Frequency:      input.Frequency,
		ScheduledDay:   input.ScheduledDay,
		ScheduledMonth: input.ScheduledMonth,
		IsActive:       true,
	}

	if err := s.db.Create(schedule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return schedule, nil
}

// GetCompanySchedules retrieves a paginated list of scheduled invoices.
func (s *scheduleService) GetCompanySchedules(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.ScheduledInvoice], error) {
	page.Defaults()

	base := s.db.Model(&models.ScheduledInvoice{}).Where("company_id = ?", companyID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var schedules []models.ScheduledInvoice
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Customer").Preload("Items").
		Order("id").
		Find(&schedules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(schedules, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetScheduleByID retrieves a scheduled invoice by ID for a company.
func (s *scheduleService) GetScheduleByID(companyID, scheduleID uint) (*models.ScheduledInvoice, error) {
	var schedule models.ScheduledInvoice
	if err := s.db.Where("id = ? AND company_id = ?", scheduleID, companyID).
		Preload("Customer").Preload("Items").
		First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrScheduleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &schedule, nil
}

// UpdateSchedule replaces a schedule's writable fields and items.
func (s *scheduleService) UpdateSchedule(companyID, scheduleID uint, input CreateScheduleInput) (*models.ScheduledInvoice, error) {
	schedule, err := s.GetScheduleByID(companyID, scheduleID)
	if err != nil {
		return nil, err
	}
	if err := validateScheduleInput(input); err != nil {
		return nil, err
	}
	if _, err := s.customerService.GetCustomerByID(companyID, input.CustomerID); err != nil {
		return nil, err
	}
	if input.DiscountType == "" {
		input.DiscountType = schedule.DiscountType
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scheduled_invoice_id = ?", schedule.ID).Delete(&models.ScheduledInvoiceItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		schedule.CustomerID = input.CustomerID
		schedule.Items = buildScheduleItems(input.Items)
		for i := range schedule.Items {
			schedule.Items[i].ScheduledInvoiceID = schedule.ID
		}
		schedule.Tax = input.Tax
		schedule.Discount = input.Discount
		schedule.DiscountType = input.DiscountType
		if input.Type != "" {
			schedule.Type = input.Type
		}
		schedule.Frequency = input.Frequency
		schedule.ScheduledDay = input.ScheduledDay
		schedule.ScheduledMonth = input.ScheduledMonth

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(schedule).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// DeleteSchedule soft-deletes a scheduled invoice and its items.
func (s *scheduleService) DeleteSchedule(companyID, scheduleID uint) error {
	schedule, err := s.GetScheduleByID(companyID, scheduleID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scheduled_invoice_id = ?", schedule.ID).Delete(&models.ScheduledInvoiceItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(schedule).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ProcessDue promotes every active schedule that is due at now into a
// due invoice. A failure on one schedule is logged and skipped so a
// bad template cannot stall the rest; the next tick retries it.
func (s *scheduleService) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	var schedules []models.ScheduledInvoice
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Preload("Items").
		Find(&schedules).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log := logger.Get()
	log.Infow("processing scheduled invoices",
		"total_active", len(schedules),
		"processing_date", now.Format("2006-01-02"),
	)

	generated := 0
	for i := range schedules {
		schedule := &schedules[i]

		if !scheduleIsDue(schedule, now) {
			continue
		}

		items := make([]InvoiceItemInput, 0, len(schedule.Items))
		for _, it := range schedule.Items {
			items = append(items, InvoiceItemInput{Details: it.Details, Quantity: it.Quantity, Rate: it.Rate})
		}

		_, err := s.invoiceService.CreateInvoice(schedule.CompanyID, CreateInvoiceInput{
			CustomerID:   schedule.CustomerID,
			Date:         now,
			Items:        items,
			Tax:          schedule.Tax,
			Discount:     schedule.Discount,
			DiscountType: schedule.DiscountType,
			Type:         schedule.Type,
		})
		if err != nil {
			log.Errorw("failed to generate invoice from schedule",
				"schedule_id", schedule.ID,
				"company_id", schedule.CompanyID,
				"error", err,
			)
			continue
		}

		next := nextDueDate(schedule, now)
		if err := s.db.Model(schedule).Updates(map[string]interface{}{
			"last_run_date":      now,
			"frequency_due_date": next,
		}).Error; err != nil {
			// The invoice was created; only the bookkeeping lagged.
			log.Errorw("failed to advance schedule run date",
				"schedule_id", schedule.ID,
				"error", err,
			)
			continue
		}

		generated++
		log.Infow("generated invoice from schedule",
			"schedule_id", schedule.ID,
			"company_id", schedule.CompanyID,
			"frequency", schedule.Frequency,
		)
	}

	return generated, nil
}

// scheduleIsDue reports whether a schedule should generate an invoice
// at now. Monthly schedules fire once per month when the scheduled day
// is reached; yearly schedules once per year when month and day are
// reached. A zero LastRunDate means the schedule has never fired.
func scheduleIsDue(schedule *models.ScheduledInvoice, now time.Time) bool {
	switch schedule.Frequency {
	case models.FrequencyMonthly:
		if now.Day() < schedule.ScheduledDay {
			return false
		}
		last := schedule.LastRunDate
		if last == nil {
			return true
		}
		return last.Year() != now.Year() || last.Month() != now.Month()
	case models.FrequencyYearly:
		if int(now.Month()) < schedule.ScheduledMonth {
			return false
		}
		if int(now.Month()) == schedule.ScheduledMonth && now.Day() < schedule.ScheduledDay {
			return false
		}
		last := schedule.LastRunDate
		if last == nil {
			return true
		}
		return last.Year() != now.Year()
	default:
		return false
	}
}

// nextDueDate computes when the schedule will fire again.
func nextDueDate(schedule *models.ScheduledInvoice, now time.Time) time.Time {
	switch schedule.Frequency {
	case models.FrequencyMonthly:
		return time.Date(now.Year(), now.Month()+1, schedule.ScheduledDay, 0, 0, 0, 0, now.Location())
	case models.FrequencyYearly:
		return time.Date(now.Year()+1, time.Month(schedule.ScheduledMonth), schedule.ScheduledDay, 0, 0, 0, 0, now.Location())
	default:
		return now
	}
}
