package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/calendar"
	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/aqlhr/aqlhr-backend-go/internal/fixtures"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/hijri"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/metrics"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/sse"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/ummalqura"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/validator"
)

const (
	DefaultTimezone = "Asia/Riyadh"
	todayHolidays   = 10
)

// Placeholder is served when no source produced a date and nothing is
// remembered yet.
var Placeholder = hijri.Date{
	Day:       15,
	Month:     1,
	MonthName: hijri.ArabicMonthNames[0],
	Year:      1446,
	RawYear:   1446,
}

// LoadLocation loads name, falling back to a fixed UTC+3 zone when the
// system has no tz database.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("timezone not found, using fixed UTC+3", "timezone", name, "error", err)
		return time.FixedZone(name, 3*60*60)
	}
	return loc
}

// knownDate is the most recent successfully resolved date.
type knownDate struct {
	date      hijri.Date
	source    calendar.Source
	gregorian string
}

type calendarServiceImpl struct {
	converter calendar.Converter
	source    calendar.AuthoritativeSource
	holidays  holiday.HolidayService
	hub       *sse.Hub
	metrics   *metrics.Metrics
	loc       *time.Location
	now       func() time.Time

	mu       sync.RWMutex
	last     *knownDate
	lastSync time.Time

	// lastBroadcast is the date last sent as hijri_date_changed. Only
	// Refresh reads or writes it.
	lastBroadcast string
}

// Option configures the calendar service.
type Option func(*calendarServiceImpl)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *calendarServiceImpl) {
		s.now = now
	}
}

// WithLocation sets the timezone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *calendarServiceImpl) {
		s.loc = loc
	}
}

// WithSource enables the authoritative Hijri source.
func WithSource(src calendar.AuthoritativeSource) Option {
	return func(s *calendarServiceImpl) {
		s.source = src
	}
}

// WithHolidayService adds company holidays to the today bundle.
func WithHolidayService(h holiday.HolidayService) Option {
	return func(s *calendarServiceImpl) {
		s.holidays = h
	}
}

func WithHub(hub *sse.Hub) Option {
	return func(s *calendarServiceImpl) {
		s.hub = hub
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *calendarServiceImpl) {
		s.metrics = m
	}
}

func NewCalendarService(converter calendar.Converter, opts ...Option) calendar.CalendarService {
	s := &calendarServiceImpl{
		converter: converter,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loc == nil {
		s.loc = LoadLocation(DefaultTimezone)
	}
	if s.hub == nil {
		s.hub = sse.NewHub()
	}
	return s
}

// Today implements calendar.CalendarService.
func (s *calendarServiceImpl) Today(ctx context.Context, req calendar.TodayRequest) calendar.CalendarResponse {
	now := s.now().In(s.loc)

	date, source := s.resolve(ctx, now, false)
	s.countConversion(source)

	resp := calendar.CalendarResponse{
		GregorianDate:    now.Format(validator.DateLayout),
		HijriDate:        calendar.NewHijriDateResponse(date, req.Lang, source),
		Timezone:         s.loc.String(),
		Holidays:         []holiday.HolidayResponse{},
		SaudiHolidays:    saudiHolidays(),
		CurrentHijriYear: date.Year,
	}
	resp.HijriDate.Gregorian = resp.GregorianDate

	if s.holidays != nil && req.CompanyID != "" {
		upcoming, err := s.holidays.Upcoming(ctx, req.CompanyID, now, todayHolidays)
		if err != nil {
			slog.Warn("failed to load company holidays for today", "company_id", req.CompanyID, "error", err)
		} else {
			resp.Holidays = upcoming
		}
	}
	resp.HolidayCount = len(resp.Holidays)

	return resp
}

// resolve walks the fallback chain: authoritative source, local converter,
// last known date, placeholder. An authoritative date already fetched for
// the same day is reused unless force is set.
func (s *calendarServiceImpl) resolve(ctx context.Context, now time.Time, force bool) (hijri.Date, calendar.Source) {
	today := now.Format(validator.DateLayout)

	if s.source != nil {
		if !force {
			if last := s.lastKnown(); last != nil && last.source == calendar.SourceAuthoritative && last.gregorian == today {
				return last.date, calendar.SourceAuthoritative
			}
		}

		d, err := s.fetchAuthoritative(ctx, now)
		if err == nil {
			s.remember(d, calendar.SourceAuthoritative, today)
			return d, calendar.SourceAuthoritative
		}
		slog.Warn("authoritative hijri source failed, using local converter", "error", err)
	}

	d, err := s.computeSafely(now)
	if err == nil {
		s.remember(d, calendar.SourceComputed, today)
		return d, calendar.SourceComputed
	}
	slog.Error("local hijri conversion failed", "error", err)

	if last := s.lastKnown(); last != nil {
		return last.date, calendar.SourceLastKnown
	}
	return Placeholder, calendar.SourcePlaceholder
}

func (s *calendarServiceImpl) fetchAuthoritative(ctx context.Context, now time.Time) (hijri.Date, error) {
	start := time.Now()
	d, err := s.source.HijriFor(ctx, now)
	if s.metrics != nil {
		s.metrics.AuthoritativeLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.AuthoritativeFailure.WithLabelValues(failureReason(err)).Inc()
		}
		return hijri.Date{}, err
	}
	return d, nil
}

func failureReason(err error) string {
	var apiErr *ummalqura.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &apiErr):
		return "status"
	case errors.Is(err, ummalqura.ErrMalformedResponse):
		return "malformed"
	default:
		return "network"
	}
}

// computeSafely runs the local converter, turning a panic into an error.
func (s *calendarServiceImpl) computeSafely(t time.Time) (d hijri.Date, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("local hijri conversion panicked: %v", r)
		}
	}()

	d = s.converter.FromTime(t)
	s.warnIfApproximate(t, d)
	return d, nil
}

func (s *calendarServiceImpl) warnIfApproximate(t time.Time, d hijri.Date) {
	if d.Corrected() {
		slog.Warn("hijri year adjusted by drift correction",
			"gregorian", t.Format(validator.DateLayout),
			"correction", d.Correction,
			"raw_year", d.RawYear,
			"year", d.Year,
		)
		if s.metrics != nil {
			s.metrics.DriftCorrections.Inc()
		}
	}
	if d.OutsideWindow {
		slog.Warn("hijri date outside the umm al-qura validity window",
			"gregorian", t.Format(validator.DateLayout),
			"raw_year", d.RawYear,
		)
	}
	if d.Clamped {
		slog.Warn("hijri date components clamped", "gregorian", t.Format(validator.DateLayout), "date", d.String())
	}
}

func (s *calendarServiceImpl) countConversion(source calendar.Source) {
	if s.metrics != nil {
		s.metrics.Conversions.WithLabelValues(string(source)).Inc()
	}
}

func (s *calendarServiceImpl) lastKnown() *knownDate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *calendarServiceImpl) remember(d hijri.Date, source calendar.Source, gregorian string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = &knownDate{date: d, source: source, gregorian: gregorian}
	if source == calendar.SourceAuthoritative {
		s.lastSync = s.now()
	}
}

// Convert implements calendar.CalendarService.
func (s *calendarServiceImpl) Convert(ctx context.Context, req calendar.ConvertRequest) (calendar.HijriDateResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.HijriDateResponse{}, err
	}

	d, err := s.computeSafely(req.ParsedDate)
	if err != nil {
		return calendar.HijriDateResponse{}, err
	}
	s.countConversion(calendar.SourceComputed)

	resp := calendar.NewHijriDateResponse(d, req.Lang, calendar.SourceComputed)
	resp.Gregorian = req.ParsedDate.Format(validator.DateLayout)
	return resp, nil
}

// ConvertBatch implements calendar.CalendarService.
func (s *calendarServiceImpl) ConvertBatch(ctx context.Context, req calendar.BatchConvertRequest) ([]calendar.HijriDateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out := make([]calendar.HijriDateResponse, 0, len(req.ParsedDates))
	for _, t := range req.ParsedDates {
		d, err := s.computeSafely(t)
		if err != nil {
			return nil, err
		}
		resp := calendar.NewHijriDateResponse(d, req.Lang, calendar.SourceComputed)
		resp.Gregorian = t.Format(validator.DateLayout)
		out = append(out, resp)
	}
	if s.metrics != nil {
		s.metrics.Conversions.WithLabelValues(string(calendar.SourceComputed)).Add(float64(len(out)))
	}

	return out, nil
}

// ToGregorian implements calendar.CalendarService.
func (s *calendarServiceImpl) ToGregorian(ctx context.Context, req calendar.ToGregorianRequest) (calendar.GregorianDateResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.GregorianDateResponse{}, err
	}

	t, err := hijri.ToGregorian(req.Year, req.Month, req.Day)
	if err != nil {
		return calendar.GregorianDateResponse{}, fmt.Errorf("%w: %v", calendar.ErrInvalidHijriDate, err)
	}

	return calendar.GregorianDateResponse{
		Date:      t.Format(validator.DateLayout),
		Weekday:   t.Weekday().String(),
		HijriDate: fmt.Sprintf("%d %s %d", req.Day, hijri.MonthName(req.Month, hijri.LangEnglish), req.Year),
	}, nil
}

// Refresh re-resolves today's date, bypassing the per-day cache, and
// broadcasts hijri_date_changed when the date differs from the last one
// broadcast. It fails only when neither the authoritative source nor the
// local converter answered.
func (s *calendarServiceImpl) Refresh(ctx context.Context) (calendar.RefreshResponse, error) {
	now := s.now().In(s.loc)

	d, source := s.resolve(ctx, now, true)
	resp := calendar.RefreshResponse{
		HijriDate: calendar.NewHijriDateResponse(d, hijri.LangArabic, source),
	}
	resp.HijriDate.Gregorian = now.Format(validator.DateLayout)

	s.mu.Lock()
	resp.Changed = s.lastBroadcast != d.String()
	unavailable := source == calendar.SourceLastKnown || source == calendar.SourcePlaceholder
	if resp.Changed && !unavailable {
		s.lastBroadcast = d.String()
	}
	s.mu.Unlock()

	if unavailable {
		return resp, calendar.ErrSourceUnavailable
	}

	if resp.Changed {
		slog.Info("hijri date changed", "hijri_date", d.String(), "source", source)
		s.hub.Broadcast(sse.Event{Event: calendar.EventHijriDateChanged, Data: resp.HijriDate})
	}

	return resp, nil
}

// SourceStatus pings the authoritative source.
func (s *calendarServiceImpl) SourceStatus(ctx context.Context) calendar.SourceStatusResponse {
	resp := calendar.SourceStatusResponse{
		Enabled:   s.source != nil,
		CheckedAt: s.now(),
	}

	s.mu.RLock()
	if s.last != nil {
		lk := s.last.date.Format(hijri.LangArabic)
		resp.LastKnown = &lk
	}
	if !s.lastSync.IsZero() {
		ls := s.lastSync
		resp.LastSync = &ls
	}
	s.mu.RUnlock()

	if s.source == nil {
		resp.Error = calendar.ErrSourceDisabled.Error()
		return resp
	}

	latency, err := s.source.Ping(ctx)
	resp.LatencyMs = latency.Milliseconds()
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Reachable = true
	return resp
}

// Subscribe implements calendar.CalendarService.
func (s *calendarServiceImpl) Subscribe(companyID string) (chan sse.Event, func()) {
	return s.hub.Subscribe(companyID)
}

func saudiHolidays() []calendar.SaudiHolidayResponse {
	list := fixtures.SaudiHolidays()
	out := make([]calendar.SaudiHolidayResponse, 0, len(list))
	for _, h := range list {
		out = append(out, calendar.SaudiHolidayResponse{
			Name:      h.Name,
			NameAr:    h.NameAr,
			Date:      h.Date,
			HijriDate: h.HijriDate,
			Category:  h.Category,
		})
	}
	return out
}
