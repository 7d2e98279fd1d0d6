package holiday

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/calendar"
	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/aqlhr/aqlhr-backend-go/internal/fixtures"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/cache"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/export"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/hijri"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/sse"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/validator"
)

const (
	defaultUpcomingLimit = 5
	maxUpcomingLimit     = 50
	seedKeyPrefix        = "holidays:"
)

type holidayServiceImpl struct {
	repo      holiday.HolidayRepository
	flags     cache.FlagStore
	converter calendar.Converter
	hub       *sse.Hub
}

// NewHolidayService wires the holiday service. hub may be nil.
func NewHolidayService(repo holiday.HolidayRepository, flags cache.FlagStore, converter calendar.Converter, hub *sse.Hub) holiday.HolidayService {
	return &holidayServiceImpl{
		repo:      repo,
		flags:     flags,
		converter: converter,
		hub:       hub,
	}
}

// ensureSeeded copies the built-in Saudi holidays into a company's calendar
// the first time it is read. Seeding is idempotent, so a flag store failure
// only costs a redundant insert.
func (s *holidayServiceImpl) ensureSeeded(ctx context.Context, companyID string) error {
	key := seedKeyPrefix + companyID

	seeded, err := s.flags.IsSet(ctx, key)
	if err != nil {
		slog.Warn("seed flag lookup failed", "company_id", companyID, "error", err)
	}
	if seeded {
		return nil
	}

	n, err := s.repo.CreateMany(ctx, fixtures.DefaultHolidaysFor(companyID))
	if err != nil {
		return fmt.Errorf("seed holidays: %w", err)
	}
	if n > 0 {
		slog.Info("seeded built-in holidays", "company_id", companyID, "count", n)
	}

	if err := s.flags.Set(ctx, key); err != nil {
		slog.Warn("seed flag update failed", "company_id", companyID, "error", err)
	}
	return nil
}

func (s *holidayServiceImpl) publish(companyID string, data any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(companyID, sse.Event{Event: calendar.EventHolidaysChanged, Data: data})
}

// hijriLabel renders the Hijri date of a Gregorian day, e.g. "1 Shawwal 1446".
func (s *holidayServiceImpl) hijriLabel(t time.Time) string {
	d := s.converter.FromTime(t)
	return fmt.Sprintf("%d %s %d", d.Day, hijri.MonthName(d.Month, hijri.LangEnglish), d.Year)
}

// List implements holiday.HolidayService.
func (s *holidayServiceImpl) List(ctx context.Context, companyID string, req holiday.ListHolidaysRequest) ([]holiday.HolidayResponse, error) {
	if validator.IsEmpty(companyID) {
		return nil, holiday.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureSeeded(ctx, companyID); err != nil {
		return nil, err
	}

	holidays, err := s.repo.List(ctx, companyID, req)
	if err != nil {
		return nil, err
	}

	if req.Year != 0 {
		for i := range holidays {
			holidays[i].Date = holidays[i].InYear(req.Year)
		}
		sortByDate(holidays)
	}

	return toResponses(holidays), nil
}

// Upcoming returns the next holidays on or after from, within one year.
func (s *holidayServiceImpl) Upcoming(ctx context.Context, companyID string, from time.Time, limit int) ([]holiday.HolidayResponse, error) {
	if validator.IsEmpty(companyID) {
		return nil, holiday.ErrCompanyIDRequired
	}
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}
	if err := s.ensureSeeded(ctx, companyID); err != nil {
		return nil, err
	}

	start := truncateDay(from)
	end := start.AddDate(1, 0, 0)

	candidates, err := s.repo.GetByDateRange(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}

	upcoming := make([]holiday.Holiday, 0, len(candidates))
	for _, h := range candidates {
		if h.Recurring {
			next := h.InYear(start.Year())
			if next.Before(start) {
				next = h.InYear(start.Year() + 1)
			}
			h.Date = next
		}
		if h.Date.Before(start) || h.Date.After(end) {
			continue
		}
		upcoming = append(upcoming, h)
	}
	sortByDate(upcoming)

	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return toResponses(upcoming), nil
}

// Get implements holiday.HolidayService.
func (s *holidayServiceImpl) Get(ctx context.Context, companyID string, id string) (holiday.HolidayResponse, error) {
	if validator.IsEmpty(companyID) {
		return holiday.HolidayResponse{}, holiday.ErrCompanyIDRequired
	}
	if !validator.IsValidUUID(id) {
		return holiday.HolidayResponse{}, holiday.ErrHolidayNotFound
	}

	h, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return holiday.ToResponse(h), nil
}

// Create implements holiday.HolidayService.
func (s *holidayServiceImpl) Create(ctx context.Context, companyID string, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if validator.IsEmpty(companyID) {
		return holiday.HolidayResponse{}, holiday.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}
	if err := s.ensureSeeded(ctx, companyID); err != nil {
		return holiday.HolidayResponse{}, err
	}

	h := holiday.Holiday{
		CompanyID: companyID,
		Name:      req.Name,
		NameAr:    req.NameAr,
		Date:      req.ParsedDate,
		Category:  req.Category,
		Recurring: req.Recurring,
	}
	if req.HijriDate != nil {
		h.HijriDate = *req.HijriDate
	} else {
		h.HijriDate = s.hijriLabel(req.ParsedDate)
	}

	created, err := s.repo.Create(ctx, h)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	resp := holiday.ToResponse(created)
	s.publish(companyID, resp)
	return resp, nil
}

// Update implements holiday.HolidayService. Built-in holidays are read-only.
func (s *holidayServiceImpl) Update(ctx context.Context, companyID string, req holiday.UpdateHolidayRequest) error {
	if validator.IsEmpty(companyID) {
		return holiday.ErrCompanyIDRequired
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if !validator.IsValidUUID(req.ID) {
		return holiday.ErrHolidayNotFound
	}

	existing, err := s.repo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return err
	}
	if existing.BuiltIn {
		return holiday.ErrBuiltInReadOnly
	}

	req.Apply(&existing)
	if req.ParsedDate != nil && req.HijriDate == nil {
		existing.HijriDate = s.hijriLabel(existing.Date)
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return err
	}

	s.publish(companyID, holiday.ToResponse(existing))
	return nil
}

// Delete implements holiday.HolidayService. Built-in holidays are read-only;
// Reseed restores them.
func (s *holidayServiceImpl) Delete(ctx context.Context, companyID string, id string) error {
	if validator.IsEmpty(companyID) {
		return holiday.ErrCompanyIDRequired
	}
	if !validator.IsValidUUID(id) {
		return holiday.ErrHolidayNotFound
	}

	existing, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return err
	}
	if existing.BuiltIn {
		return holiday.ErrBuiltInReadOnly
	}

	if err := s.repo.Delete(ctx, id, companyID); err != nil {
		return err
	}

	s.publish(companyID, map[string]string{"deleted_id": id})
	return nil
}

// IsHoliday implements holiday.HolidayService. Friday and Saturday are the
// weekend in Saudi Arabia.
func (s *holidayServiceImpl) IsHoliday(ctx context.Context, companyID string, date time.Time) (holiday.CheckHolidayResponse, error) {
	if validator.IsEmpty(companyID) {
		return holiday.CheckHolidayResponse{}, holiday.ErrCompanyIDRequired
	}
	if err := s.ensureSeeded(ctx, companyID); err != nil {
		return holiday.CheckHolidayResponse{}, err
	}

	day := truncateDay(date)
	candidates, err := s.repo.GetByDateRange(ctx, companyID, day, day)
	if err != nil {
		return holiday.CheckHolidayResponse{}, err
	}

	matches := make([]holiday.Holiday, 0, len(candidates))
	for _, h := range candidates {
		if h.OccursOn(day) {
			h.Date = h.InYear(day.Year())
			matches = append(matches, h)
		}
	}

	weekday := day.Weekday()
	return holiday.CheckHolidayResponse{
		Date:      day.Format(validator.DateLayout),
		IsHoliday: len(matches) > 0,
		IsWeekend: weekday == time.Friday || weekday == time.Saturday,
		Holidays:  toResponses(matches),
	}, nil
}

// Reseed drops the company's built-in holidays and seeds them again.
func (s *holidayServiceImpl) Reseed(ctx context.Context, companyID string) (holiday.ReseedResponse, error) {
	if validator.IsEmpty(companyID) {
		return holiday.ReseedResponse{}, holiday.ErrCompanyIDRequired
	}

	key := seedKeyPrefix + companyID
	if err := s.flags.Reset(ctx, key); err != nil {
		return holiday.ReseedResponse{}, fmt.Errorf("reset seed flag: %w", err)
	}
	if err := s.repo.DeleteBuiltIn(ctx, companyID); err != nil {
		return holiday.ReseedResponse{}, err
	}

	n, err := s.repo.CreateMany(ctx, fixtures.DefaultHolidaysFor(companyID))
	if err != nil {
		return holiday.ReseedResponse{}, fmt.Errorf("seed holidays: %w", err)
	}
	if err := s.flags.Set(ctx, key); err != nil {
		slog.Warn("seed flag update failed", "company_id", companyID, "error", err)
	}

	slog.Info("reseeded built-in holidays", "company_id", companyID, "count", n)
	s.publish(companyID, map[string]int{"seeded": n})

	return holiday.ReseedResponse{CompanyID: companyID, Seeded: n}, nil
}

// Export writes the company's holidays of year as an xlsx workbook.
func (s *holidayServiceImpl) Export(ctx context.Context, companyID string, year int, w io.Writer) error {
	holidays, err := s.List(ctx, companyID, holiday.ListHolidaysRequest{Year: year})
	if err != nil {
		return err
	}

	rows := make([]export.HolidayRow, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, export.HolidayRow{
			Name:      h.Name,
			NameAr:    h.NameAr,
			Date:      h.Date,
			HijriDate: h.HijriDate,
			Category:  string(h.Category),
		})
	}

	return export.WriteHolidayWorkbook(w, year, rows)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortByDate(holidays []holiday.Holiday) {
	sort.SliceStable(holidays, func(i, j int) bool {
		if holidays[i].Date.Equal(holidays[j].Date) {
			return holidays[i].Name < holidays[j].Name
		}
		return holidays[i].Date.Before(holidays[j].Date)
	})
}

func toResponses(holidays []holiday.Holiday) []holiday.HolidayResponse {
	out := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, holiday.ToResponse(h))
	}
	return out
}
