package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/aqlhr/aqlhr-backend-go/internal/handler/http/middleware"
	"github.com/aqlhr/aqlhr-backend-go/internal/handler/http/response"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/export"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/validator"
)

type HolidayHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Upcoming(w http.ResponseWriter, r *http.Request)
	Check(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)

	// Admin
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Reseed(w http.ResponseWriter, r *http.Request)
}

type holidayHandlerImpl struct {
	holidayService holiday.HolidayService
	loc            *time.Location
	now            func() time.Time
}

// NewHolidayHandler creates a holiday handler. loc decides what "today" is
// for upcoming and export defaults.
func NewHolidayHandler(holidayService holiday.HolidayService, loc *time.Location) HolidayHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &holidayHandlerImpl{
		holidayService: holidayService,
		loc:            loc,
		now:            time.Now,
	}
}

func (h *holidayHandlerImpl) today() time.Time {
	return h.now().In(h.loc)
}

// requireCompanyID returns the caller's company, writing a 401 when it is missing.
func requireCompanyID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.CompanyID == "" {
		response.Unauthorized(w, "Unauthorized")
		return "", false
	}
	return claims.CompanyID, true
}

func (h *holidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	req := holiday.ListHolidaysRequest{
		Year:     getIntQueryParam(r, "year", 0),
		Category: holiday.Category(r.URL.Query().Get("category")),
	}

	holidays, err := h.holidayService.List(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, holidays, &response.Meta{Year: req.Year, TotalItems: len(holidays)})
}

func (h *holidayHandlerImpl) Upcoming(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	holidays, err := h.holidayService.Upcoming(r.Context(), companyID, h.today(), getIntQueryParam(r, "limit", 0))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, holidays)
}

// Check reports whether a day is a holiday or weekend. Defaults to today.
func (h *holidayHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	date := h.today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, valid := validator.IsValidDate(raw)
		if !valid {
			response.HandleError(w, validator.ValidationErrors{{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			}})
			return
		}
		date = parsed
	}

	resp, err := h.holidayService.IsHoliday(r.Context(), companyID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// Export downloads the year's holidays as an xlsx workbook.
func (h *holidayHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	year := getIntQueryParam(r, "year", h.today().Year())

	// Buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.holidayService.Export(r.Context(), companyID, year, &buf); err != nil {
		slog.Error("Failed to export holidays", "company_id", companyID, "year", year, "error", err)
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="`+holiday.ExportFilename(year)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("Holiday export write interrupted", "error", err)
	}
}

func (h *holidayHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	resp, err := h.holidayService.Get(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

func (h *holidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	var req holiday.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.holidayService.Create(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Holiday created successfully", resp)
}

func (h *holidayHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	var req holiday.UpdateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.holidayService.Update(r.Context(), companyID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	resp, err := h.holidayService.Get(r.Context(), companyID, req.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Holiday updated successfully", resp)
}

func (h *holidayHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	if err := h.holidayService.Delete(r.Context(), companyID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}

// Reseed restores the built-in Saudi holidays for the caller's company.
func (h *holidayHandlerImpl) Reseed(w http.ResponseWriter, r *http.Request) {
	companyID, ok := requireCompanyID(w, r)
	if !ok {
		return
	}

	resp, err := h.holidayService.Reseed(r.Context(), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Built-in holidays restored", resp)
}
