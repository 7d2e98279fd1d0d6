package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/calendar"
	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/aqlhr/aqlhr-backend-go/internal/fixtures"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/hijri"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/metrics"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/sse"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/ummalqura"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var riyadh = time.FixedZone("Asia/Riyadh", 3*60*60)

// fixedClock returns a clock frozen at the given UTC instant.
func fixedClock(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

type fakeSource struct {
	mu      sync.Mutex
	date    hijri.Date
	err     error
	pingErr error
	calls   int
}

func (f *fakeSource) HijriFor(ctx context.Context, t time.Time) (hijri.Date, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.date, f.err
}

func (f *fakeSource) Ping(ctx context.Context) (time.Duration, error) {
	return 42 * time.Millisecond, f.pingErr
}

func (f *fakeSource) set(d hijri.Date, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.date, f.err = d, err
}

// switchConverter panics when broken is set.
type switchConverter struct {
	broken bool
}

func (c *switchConverter) FromTime(t time.Time) hijri.Date {
	if c.broken {
		panic("converter exploded")
	}
	return hijri.NewConverter().FromTime(t)
}

type stubHolidays struct {
	holiday.HolidayService
	upcoming []holiday.HolidayResponse
	err      error
}

func (s *stubHolidays) Upcoming(ctx context.Context, companyID string, from time.Time, limit int) ([]holiday.HolidayResponse, error) {
	return s.upcoming, s.err
}

var shawwal1 = hijri.Date{Day: 1, Month: 10, MonthName: "شوال", Year: 1446, RawYear: 1446}

func TestToday_Authoritative(t *testing.T) {
	src := &fakeSource{date: shawwal1}
	svc := NewCalendarService(hijri.NewConverter(),
		WithSource(src),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-30T10:00:00Z")),
	)

	resp := svc.Today(context.Background(), calendar.TodayRequest{Lang: hijri.LangEnglish})

	assert.Equal(t, "2025-03-30", resp.GregorianDate)
	assert.Equal(t, "Asia/Riyadh", resp.Timezone)
	assert.Equal(t, calendar.SourceAuthoritative, resp.HijriDate.Source)
	assert.Equal(t, 1, resp.HijriDate.Day)
	assert.Equal(t, "شوال", resp.HijriDate.Month)
	assert.Equal(t, "Shawwal", resp.HijriDate.MonthEn)
	assert.Equal(t, "1 Shawwal 1446 AH", resp.HijriDate.Formatted)
	assert.Equal(t, 1446, resp.CurrentHijriYear)
	assert.Len(t, resp.SaudiHolidays, len(fixtures.SaudiHolidays()))
	assert.Empty(t, resp.Holidays)
	assert.NotNil(t, resp.Holidays)
}

func TestToday_ReusesAuthoritativeDateForSameDay(t *testing.T) {
	src := &fakeSource{date: shawwal1}
	svc := NewCalendarService(hijri.NewConverter(),
		WithSource(src),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-30T10:00:00Z")),
	)

	svc.Today(context.Background(), calendar.TodayRequest{})
	svc.Today(context.Background(), calendar.TodayRequest{})

	assert.Equal(t, 1, src.calls)
}

func TestToday_FallsBackToLocalConverter(t *testing.T) {
	src := &fakeSource{err: &ummalqura.APIError{StatusCode: 503, Status: "Service Unavailable"}}
	svc := NewCalendarService(hijri.NewConverter(),
		WithSource(src),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-30T10:00:00Z")),
	)

	resp := svc.Today(context.Background(), calendar.TodayRequest{Lang: hijri.LangArabic})

	assert.Equal(t, calendar.SourceComputed, resp.HijriDate.Source)
	assert.Equal(t, 30, resp.HijriDate.Day)
	assert.Equal(t, "رمضان", resp.HijriDate.Month)
	assert.Equal(t, 1446, resp.HijriDate.Year)
	assert.Equal(t, "30 رمضان 1446هـ", resp.HijriDate.Formatted)
}

func TestToday_SourceTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := ummalqura.NewClient(server.URL, 20*time.Millisecond)
	svc := NewCalendarService(hijri.NewConverter(),
		WithSource(client),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-06-05T12:00:00Z")),
	)

	start := time.Now()
	resp := svc.Today(context.Background(), calendar.TodayRequest{})

	assert.Less(t, time.Since(start), 900*time.Millisecond)
	assert.Equal(t, calendar.SourceComputed, resp.HijriDate.Source)
	assert.Equal(t, 12, resp.HijriDate.MonthNumber)
}

func TestToday_UsesRiyadhDate(t *testing.T) {
	// 22:30 UTC on the 29th is already the 30th in Riyadh.
	svc := NewCalendarService(hijri.NewConverter(),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-29T22:30:00Z")),
	)

	resp := svc.Today(context.Background(), calendar.TodayRequest{})

	assert.Equal(t, "2025-03-30", resp.GregorianDate)
	assert.Equal(t, 30, resp.HijriDate.Day)
	assert.Equal(t, 9, resp.HijriDate.MonthNumber)
}

func TestToday_PlaceholderWhenEverythingFails(t *testing.T) {
	svc := NewCalendarService(&switchConverter{broken: true},
		WithSource(&fakeSource{err: errors.New("dial tcp: refused")}),
		WithLocation(riyadh),
	)

	resp := svc.Today(context.Background(), calendar.TodayRequest{})

	assert.Equal(t, calendar.SourcePlaceholder, resp.HijriDate.Source)
	assert.Equal(t, 15, resp.HijriDate.Day)
	assert.Equal(t, "محرم", resp.HijriDate.Month)
	assert.Equal(t, 1, resp.HijriDate.MonthNumber)
	assert.Equal(t, 1446, resp.HijriDate.Year)
}

func TestToday_LastKnownWhenConverterBreaks(t *testing.T) {
	conv := &switchConverter{}
	svc := NewCalendarService(conv,
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-30T10:00:00Z")),
	)

	first := svc.Today(context.Background(), calendar.TodayRequest{})
	require.Equal(t, calendar.SourceComputed, first.HijriDate.Source)

	conv.broken = true
	second := svc.Today(context.Background(), calendar.TodayRequest{})

	assert.Equal(t, calendar.SourceLastKnown, second.HijriDate.Source)
	assert.Equal(t, first.HijriDate.Day, second.HijriDate.Day)
	assert.Equal(t, first.HijriDate.Year, second.HijriDate.Year)
}

func TestToday_CompanyHolidays(t *testing.T) {
	stub := &stubHolidays{upcoming: []holiday.HolidayResponse{{Name: "Eid al-Fitr", Date: "2025-03-30"}}}
	svc := NewCalendarService(hijri.NewConverter(),
		WithHolidayService(stub),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-30T10:00:00Z")),
	)

	resp := svc.Today(context.Background(), calendar.TodayRequest{CompanyID: "company-1"})
	assert.Equal(t, 1, resp.HolidayCount)
	assert.Equal(t, "Eid al-Fitr", resp.Holidays[0].Name)

	// no company, no lookup
	resp = svc.Today(context.Background(), calendar.TodayRequest{})
	assert.Zero(t, resp.HolidayCount)

	// lookup failure still answers
	stub.err = errors.New("db down")
	resp = svc.Today(context.Background(), calendar.TodayRequest{CompanyID: "company-1"})
	assert.Zero(t, resp.HolidayCount)
	assert.Equal(t, calendar.SourceComputed, resp.HijriDate.Source)
}

func TestConvert(t *testing.T) {
	svc := NewCalendarService(hijri.NewConverter(), WithLocation(riyadh))

	tests := []struct {
		date          string
		lang          hijri.Lang
		wantDay       int
		wantMonth     int
		wantYear      int
		wantCorrected bool
		wantFormatted string
	}{
		{"2024-09-23", hijri.LangEnglish, 19, 3, 1446, false, "19 Rabi' al-awwal 1446 AH"},
		{"2025-03-30", hijri.LangArabic, 30, 9, 1446, false, "30 رمضان 1446هـ"},
		{"2019-09-01", hijri.LangEnglish, 1, 1, 1441, false, "1 Muharram 1441 AH"},
		{"2018-09-10", hijri.LangEnglish, 0, 0, 1445, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := svc.Convert(context.Background(), calendar.ConvertRequest{Date: tt.date, Lang: tt.lang})
			require.NoError(t, err)

			assert.Equal(t, tt.date, got.Gregorian)
			assert.Equal(t, calendar.SourceComputed, got.Source)
			assert.Equal(t, tt.wantYear, got.Year)
			assert.Equal(t, tt.wantCorrected, got.Corrected)
			if tt.wantDay != 0 {
				assert.Equal(t, tt.wantDay, got.Day)
				assert.Equal(t, tt.wantMonth, got.MonthNumber)
				assert.Equal(t, hijri.ArabicMonthNames[tt.wantMonth-1], got.Month)
				assert.Equal(t, tt.wantFormatted, got.Formatted)
			}
		})
	}
}

func TestConvert_Invalid(t *testing.T) {
	svc := NewCalendarService(hijri.NewConverter(), WithLocation(riyadh))

	_, err := svc.Convert(context.Background(), calendar.ConvertRequest{Date: "2025-02-30"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "date", verrs[0].Field)
}

func TestConvertBatch(t *testing.T) {
	svc := NewCalendarService(hijri.NewConverter(), WithLocation(riyadh))
	ctx := context.Background()

	got, err := svc.ConvertBatch(ctx, calendar.BatchConvertRequest{
		Dates: []string{"2024-02-22", "2024-04-10", "2026-10-19"},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-02-22", got[0].Gregorian)
	assert.Equal(t, 8, got[0].MonthNumber)
	assert.Equal(t, 10, got[1].MonthNumber)
	assert.Equal(t, 1, got[1].Day)
	assert.Equal(t, 1448, got[2].Year)

	_, err = svc.ConvertBatch(ctx, calendar.BatchConvertRequest{Dates: []string{"2024-02-22", "yesterday"}})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "dates[1]", verrs[0].Field)

	tooMany := make([]string, calendar.MaxBatchDates+1)
	for i := range tooMany {
		tooMany[i] = "2025-01-01"
	}
	_, err = svc.ConvertBatch(ctx, calendar.BatchConvertRequest{Dates: tooMany})
	require.ErrorAs(t, err, &verrs)

	_, err = svc.ConvertBatch(ctx, calendar.BatchConvertRequest{})
	require.ErrorAs(t, err, &verrs)
}

func TestToGregorian(t *testing.T) {
	svc := NewCalendarService(hijri.NewConverter(), WithLocation(riyadh))
	ctx := context.Background()

	got, err := svc.ToGregorian(ctx, calendar.ToGregorianRequest{Year: 1446, Month: 10, Day: 1})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-31", got.Date)
	assert.Equal(t, "Monday", got.Weekday)
	assert.Equal(t, "1 Shawwal 1446", got.HijriDate)

	// Shawwal has 29 days in the tabular calendar
	_, err = svc.ToGregorian(ctx, calendar.ToGregorianRequest{Year: 1446, Month: 10, Day: 30})
	assert.ErrorIs(t, err, calendar.ErrInvalidHijriDate)

	_, err = svc.ToGregorian(ctx, calendar.ToGregorianRequest{Year: 1446, Month: 13, Day: 1})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestRefresh_BroadcastsOnChange(t *testing.T) {
	hub := sse.NewHub()
	events, cleanup := hub.Subscribe("company-1")
	defer cleanup()

	src := &fakeSource{date: shawwal1}
	svc := NewCalendarService(hijri.NewConverter(),
		WithSource(src),
		WithHub(hub),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-30T10:00:00Z")),
	)
	ctx := context.Background()

	resp, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, calendar.SourceAuthoritative, resp.HijriDate.Source)

	ev := <-events
	assert.Equal(t, calendar.EventHijriDateChanged, ev.Event)
	assert.Equal(t, "company-1", ev.CompanyID)

	resp, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	src.set(hijri.Date{Day: 2, Month: 10, MonthName: "شوال", Year: 1446, RawYear: 1446}, nil)
	resp, err = svc.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, 2, resp.HijriDate.Day)
	assert.Equal(t, 3, src.calls)
}

func TestRefresh_BroadcastsAfterTodaySawNewDay(t *testing.T) {
	hub := sse.NewHub()
	events, cleanup := hub.Subscribe("company-1")
	defer cleanup()

	var mu sync.Mutex
	now := time.Date(2025, 3, 29, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	svc := NewCalendarService(hijri.NewConverter(),
		WithHub(hub),
		WithLocation(riyadh),
		WithClock(clock),
	)
	ctx := context.Background()

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)
	<-events

	mu.Lock()
	now = now.AddDate(0, 0, 1)
	mu.Unlock()

	today := svc.Today(ctx, calendar.TodayRequest{})
	assert.Equal(t, 30, today.HijriDate.Day)

	resp, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Changed)

	select {
	case ev := <-events:
		assert.Equal(t, calendar.EventHijriDateChanged, ev.Event)
		data, ok := ev.Data.(calendar.HijriDateResponse)
		require.True(t, ok)
		assert.Equal(t, 30, data.Day)
	default:
		t.Fatal("expected hijri_date_changed after the day rolled over")
	}
}

func TestRefresh_NoBroadcastWhenUnavailable(t *testing.T) {
	hub := sse.NewHub()
	events, cleanup := hub.Subscribe("company-1")
	defer cleanup()

	svc := NewCalendarService(&switchConverter{broken: true},
		WithHub(hub),
		WithLocation(riyadh),
	)

	resp, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, calendar.ErrSourceUnavailable)
	assert.True(t, resp.Changed)
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestRefresh_FallsBackWhenSourceFails(t *testing.T) {
	svc := NewCalendarService(hijri.NewConverter(),
		WithSource(&fakeSource{err: context.DeadlineExceeded}),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-30T10:00:00Z")),
	)

	resp, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, calendar.SourceComputed, resp.HijriDate.Source)
}

func TestRefresh_FailsWhenNothingAnswers(t *testing.T) {
	svc := NewCalendarService(&switchConverter{broken: true},
		WithSource(&fakeSource{err: errors.New("refused")}),
		WithLocation(riyadh),
	)

	resp, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, calendar.ErrSourceUnavailable)
	assert.Equal(t, calendar.SourcePlaceholder, resp.HijriDate.Source)
}

func TestSourceStatus(t *testing.T) {
	ctx := context.Background()

	disabled := NewCalendarService(hijri.NewConverter(), WithLocation(riyadh)).SourceStatus(ctx)
	assert.False(t, disabled.Enabled)
	assert.False(t, disabled.Reachable)
	assert.Equal(t, calendar.ErrSourceDisabled.Error(), disabled.Error)

	src := &fakeSource{date: shawwal1}
	svc := NewCalendarService(hijri.NewConverter(), WithSource(src), WithLocation(riyadh))
	svc.Today(ctx, calendar.TodayRequest{})

	up := svc.SourceStatus(ctx)
	assert.True(t, up.Enabled)
	assert.True(t, up.Reachable)
	assert.EqualValues(t, 42, up.LatencyMs)
	require.NotNil(t, up.LastKnown)
	assert.Equal(t, "1 شوال 1446هـ", *up.LastKnown)
	assert.NotNil(t, up.LastSync)

	src.pingErr = errors.New("no route to host")
	down := svc.SourceStatus(ctx)
	assert.False(t, down.Reachable)
	assert.Equal(t, "no route to host", down.Error)
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	src := &fakeSource{err: &ummalqura.APIError{StatusCode: 500}}
	svc := NewCalendarService(hijri.NewConverter(),
		WithSource(src),
		WithMetrics(m),
		WithLocation(riyadh),
		WithClock(fixedClock("2025-03-30T10:00:00Z")),
	)
	ctx := context.Background()

	svc.Today(ctx, calendar.TodayRequest{})
	_, err := svc.Convert(ctx, calendar.ConvertRequest{Date: "2018-09-10"})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, label := range metric.GetLabel() {
				key += "," + label.GetName() + "=" + label.GetValue()
			}
			if c := metric.GetCounter(); c != nil {
				values[key] = c.GetValue()
			}
		}
	}

	assert.Equal(t, 2.0, values["aqlhr_calendar_conversions_total,source=computed"])
	assert.Equal(t, 1.0, values["aqlhr_calendar_authoritative_failures_total,reason=status"])
	assert.Equal(t, 1.0, values["aqlhr_calendar_drift_corrections_total"])
}

func TestLoadLocation(t *testing.T) {
	loc := LoadLocation("Mars/Olympus_Mons")
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 3*60*60, offset)

	utc := LoadLocation("UTC")
	assert.Equal(t, "UTC", utc.String())
}
