package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/export"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pdf"
	"ledgerdesk/internal/services"
)

// ReportHandler handles report building and export requests
type ReportHandler struct {
	reportService  services.ReportServicer
	companyService services.CompanyServicer
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService services.ReportServicer, companyService services.CompanyServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService, companyService: companyService}
}

func (h *ReportHandler) buildReport(c *gin.Context) (*services.Report, error) {
	companyID, err := getCompanyID(c)
	if err != nil {
		return nil, err
	}

	transactionType := models.TransactionType(c.Query("transaction_type"))

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid from date")
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid to date")
	}
	// Make the range inclusive of the final day.
	to = to.Add(24*time.Hour - time.Second)

	var filter services.ReportFilter
	if filter.CategoryID, err = parseFilterID(c, "category_id"); err != nil {
		return nil, err
	}
	if filter.MethodID, err = parseFilterID(c, "method_id"); err != nil {
		return nil, err
	}
	if filter.StorageID, err = parseFilterID(c, "storage_id"); err != nil {
		return nil, err
	}

	report, err := h.reportService.BuildReport(c.Request.Context(), companyID, transactionType, from, to, getAuditScope(c))
	if err != nil {
		return nil, err
	}

	if filter != (services.ReportFilter{}) {
		report.Categories = services.FilterData(report.Categories, report.MethodNames, filter)
		report.GrandTotal = 0
		for _, category := range report.Categories {
			report.GrandTotal += category.Total
		}
	}
	return report, nil
}

// parseFilterID reads an optional numeric query param; absent means no
// restriction on that axis.
func parseFilterID(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+name)
	}
	return uint(id), nil
}

// GetReport builds a report
// @Summary     Build report
// @Description Build a per-category report with method subtotals for a date range
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       transaction_type query string true "inflow or outflow"
// @Param       from             query string true "Start date (YYYY-MM-DD)"
// @Param       to               query string true "End date (YYYY-MM-DD)"
// @Param       category_id      query int    false "Restrict to one category"
// @Param       method_id        query int    false "Restrict to one method"
// @Param       storage_id       query int    false "Restrict to one storage"
// @Success     200 {object} services.Report "Report"
// @Failure     400 {object} ErrorResponse "Invalid parameters"
// @Router      /reports [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.buildReport(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondData(c, http.StatusOK, report)
}

// GetReportPDF exports a report as PDF
// @Summary     Download report PDF
// @Description Build a report and render it as a PDF document
// @Tags        reports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       transaction_type query string true "inflow or outflow"
// @Param       from             query string true "Start date (YYYY-MM-DD)"
// @Param       to               query string true "End date (YYYY-MM-DD)"
// @Param       category_id      query int    false "Restrict to one category"
// @Param       method_id        query int    false "Restrict to one method"
// @Param       storage_id       query int    false "Restrict to one storage"
// @Success     200 {file} binary "PDF document"
// @Failure     400 {object} ErrorResponse "Invalid parameters"
// @Router      /reports/pdf [get]
func (h *ReportHandler) GetReportPDF(c *gin.Context) {
	report, err := h.buildReport(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	company, err := h.companyService.GetCompanyByID(report.CompanyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := pdf.GenerateReportPDF(report, company)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	filename := fmt.Sprintf("report-%s-%s.pdf", report.Type, report.From.Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

// GetReportCSV exports a report as CSV
// @Summary     Download report CSV
// @Description Build a report and stream it as CSV
// @Tags        reports
// @Produce     text/csv
// @Security    BearerAuth
// @Param       transaction_type query string true "inflow or outflow"
// @Param       from             query string true "Start date (YYYY-MM-DD)"
// @Param       to               query string true "End date (YYYY-MM-DD)"
// @Param       category_id      query int    false "Restrict to one category"
// @Param       method_id        query int    false "Restrict to one method"
// @Param       storage_id       query int    false "Restrict to one storage"
// @Success     200 {file} binary "CSV document"
// @Failure     400 {object} ErrorResponse "Invalid parameters"
// @Router      /reports/csv [get]
func (h *ReportHandler) GetReportCSV(c *gin.Context) {
	report, err := h.buildReport(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("report-%s-%s.csv", report.Type, report.From.Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	if err := export.WriteReportCSV(c.Writer, report); err != nil {
		// Headers are already out; log and stop.
		_ = c.Error(err)
	}
}
