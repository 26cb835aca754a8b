// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/report"
)

// ReportSource produces sales reports for a day range.
type ReportSource interface {
	SalesReport(ctx context.Context, from, to time.Time) report.SalesReport
}

// Rollup logs the previous day's sales once a day.
type Rollup struct {
	Reports ReportSource
	Loc     *time.Location
	Now     func() time.Time
	Log     *logrus.Entry
}

// NewRollup returns a rollup job bound to the given report zone.
func NewRollup(src ReportSource, loc *time.Location) *Rollup {
	if loc == nil {
		loc = time.UTC
	}
	return &Rollup{
		Reports: src,
		Loc:     loc,
		Now:     time.Now,
		Log:     logrus.WithField("component", "sales-rollup"),
	}
}

// RunOnce builds and logs the report for the day before now.
func (r *Rollup) RunOnce(ctx context.Context) report.SalesReport {
	now := r.Now().In(r.Loc)
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, r.Loc)
	rep := r.Reports.SalesReport(ctx, yesterday, yesterday)
	r.Log.WithFields(logrus.Fields{
		"date":          rep.From,
		"bookings":      rep.TotalBookings,
		"revenue_cents": int64(rep.TotalRevenue),
		"seats_sold":    rep.SeatsSold,
		"snacks_sold":   rep.SnacksSold,
	}).Info("daily sales rollup")
	return rep
}

// Start registers the rollup as a daily job at the given HH:MM and starts
// the scheduler.  The scheduler shuts down when ctx is cancelled.
func (r *Rollup) Start(ctx context.Context, at string) (gocron.Scheduler, error) {
	hour, minute, err := config.ParseClock(at)
	if err != nil {
		return nil, err
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(r.Loc))
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(func() { r.RunOnce(ctx) }),
		gocron.WithName("sales-rollup"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule rollup: %w", err)
	}
	s.Start()
	r.Log.Infof("sales rollup scheduled daily at %s %s", at, r.Loc)

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			r.Log.WithError(err).Warn("scheduler shutdown")
		}
	}()
	return s, nil
}
