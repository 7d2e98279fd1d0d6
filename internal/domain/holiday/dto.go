package holiday

import (
	"fmt"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/validator"
)

type HolidayResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	NameAr    string    `json:"name_ar"`
	Date      string    `json:"date"`
	HijriDate string    `json:"hijri_date"`
	Category  Category  `json:"type"`
	Recurring bool      `json:"recurring"`
	BuiltIn   bool      `json:"built_in"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse maps an entity to its API shape
func ToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID,
		CompanyID: h.CompanyID,
		Name:      h.Name,
		NameAr:    h.NameAr,
		Date:      h.Date.Format(validator.DateLayout),
		HijriDate: h.HijriDate,
		Category:  h.Category,
		Recurring: h.Recurring,
		BuiltIn:   h.BuiltIn,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

type ListHolidaysRequest struct {
	Year     int      `json:"year,omitempty"`
	Category Category `json:"type,omitempty"`
}

func (r *ListHolidaysRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year != 0 && (r.Year < 1900 || r.Year > 2200) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 1900 and 2200",
		})
	}
	if r.Category != "" && !r.Category.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of national, religious, cultural, company",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CreateHolidayRequest struct {
	Name      string   `json:"name"`
	NameAr    string   `json:"name_ar"`
	Date      string   `json:"date"`
	HijriDate *string  `json:"hijri_date,omitempty"`
	Category  Category `json:"type"`
	Recurring bool     `json:"recurring"`

	ParsedDate time.Time `json:"-"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	// Name
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 150 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 150 characters",
		})
	}
	if len(r.NameAr) > 300 {
		errs = append(errs, validator.ValidationError{
			Field:   "name_ar",
			Message: "name_ar must not exceed 300 characters",
		})
	}

	// Date
	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if parsed, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	} else {
		r.ParsedDate = parsed
	}

	// Hijri date
	if r.HijriDate != nil && !validator.IsValidHijriDateString(*r.HijriDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "hijri_date",
			Message: "hijri_date must look like '1 Shawwal 1446' or '1446-10-01'",
		})
	}

	// Category
	if r.Category == "" {
		r.Category = CategoryCompany
	}
	if !r.Category.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of national, religious, cultural, company",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateHolidayRequest struct {
	ID        string    `json:"-"`
	Name      *string   `json:"name,omitempty"`
	NameAr    *string   `json:"name_ar,omitempty"`
	Date      *string   `json:"date,omitempty"`
	HijriDate *string   `json:"hijri_date,omitempty"`
	Category  *Category `json:"type,omitempty"`
	Recurring *bool     `json:"recurring,omitempty"`

	ParsedDate *time.Time `json:"-"`
}

func (r *UpdateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 150 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 150 characters",
			})
		}
	}

	if r.Date != nil {
		parsed, ok := validator.IsValidDate(*r.Date)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		} else {
			r.ParsedDate = &parsed
		}
	}

	if r.HijriDate != nil && !validator.IsValidHijriDateString(*r.HijriDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "hijri_date",
			Message: "hijri_date must look like '1 Shawwal 1446' or '1446-10-01'",
		})
	}

	if r.Category != nil && !r.Category.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of national, religious, cultural, company",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Apply copies the set fields onto h.
func (r *UpdateHolidayRequest) Apply(h *Holiday) {
	if r.Name != nil {
		h.Name = *r.Name
	}
	if r.NameAr != nil {
		h.NameAr = *r.NameAr
	}
	if r.ParsedDate != nil {
		h.Date = *r.ParsedDate
	}
	if r.HijriDate != nil {
		h.HijriDate = *r.HijriDate
	}
	if r.Category != nil {
		h.Category = *r.Category
	}
	if r.Recurring != nil {
		h.Recurring = *r.Recurring
	}
}

type CheckHolidayResponse struct {
	Date      string            `json:"date"`
	IsHoliday bool              `json:"is_holiday"`
	IsWeekend bool              `json:"is_weekend"`
	Holidays  []HolidayResponse `json:"holidays"`
}

type ReseedResponse struct {
	CompanyID string `json:"company_id"`
	Seeded    int    `json:"seeded"`
}

// ExportFilename returns the download name for a company's holiday workbook.
func ExportFilename(year int) string {
	return fmt.Sprintf("holidays-%d.xlsx", year)
}
