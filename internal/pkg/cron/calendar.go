package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/calendar"
)

const refreshTimeout = 30 * time.Second

type CalendarJobs struct {
	calendarSvc calendar.CalendarService
	interval    time.Duration
}

func NewCalendarJobs(calendarSvc calendar.CalendarService, interval time.Duration) *CalendarJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CalendarJobs{
		calendarSvc: calendarSvc,
		interval:    interval,
	}
}

func (j *CalendarJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.Add(Job{
		Name:     "refresh_hijri_date",
		Interval: j.interval,
		Timeout:  refreshTimeout,
		Fn:       j.RefreshHijriDate,
	})
}

// RefreshHijriDate re-resolves today's Hijri date so subscribers hear about
// day changes. A source outage that fell back to the local converter is not
// a job failure.
func (j *CalendarJobs) RefreshHijriDate(ctx context.Context) error {
	resp, err := j.calendarSvc.Refresh(ctx)
	if err != nil {
		if errors.Is(err, calendar.ErrSourceUnavailable) {
			slog.Warn("Cron: no hijri source answered, serving last known date",
				"source", resp.HijriDate.Source)
		}
		return err
	}

	slog.Info("Cron: hijri date refreshed",
		"hijri_date", resp.HijriDate.Formatted,
		"source", resp.HijriDate.Source,
		"changed", resp.Changed,
	)
	return nil
}
