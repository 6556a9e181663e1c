package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentacar/internal/metrics"
	"rentacar/internal/models"
	"rentacar/internal/notify"
)

// Job names.
const (
	JobBackup         = "backup"
	JobSessionCleanup = "session_cleanup"
	JobMonthlyExport  = "monthly_export"
	JobPickupReminder = "pickup_reminder"
)

type Backuper interface {
	Run(ctx context.Context) error
}

type SessionCleaner interface {
	Cleanup() int
	Len() int
}

type MonthExporter interface {
	ExportToDir(ctx context.Context, month time.Time, dir string) (string, error)
}

type PickupLister interface {
	ListReservationsStartingOn(ctx context.Context, day string, statuses ...string) ([]models.Reservation, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, msg notify.Message) error
}

// BackupJob snapshots the database.
func BackupJob(b Backuper) JobFunc {
	return b.Run
}

// SessionCleanupJob drops expired selection sessions and updates the gauge.
func SessionCleanupJob(store SessionCleaner) JobFunc {
	return func(ctx context.Context) error {
		store.Cleanup()
		metrics.SetActiveSessions(store.Len())
		return nil
	}
}

// MonthlyExportJob writes the previous month's reservation workbook to dir.
func MonthlyExportJob(e MonthExporter, dir string, now func() time.Time) JobFunc {
	return func(ctx context.Context) error {
		t := now().UTC()
		prev := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		_, err := e.ExportToDir(ctx, prev, dir)
		return err
	}
}

// PickupReminderJob reminds renters of pending and confirmed reservations
// picked up the next day. Reservations without an email are skipped.
func PickupReminderJob(l PickupLister, d Deliverer, now func() time.Time) JobFunc {
	return func(ctx context.Context) error {
		day := now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
		list, err := l.ListReservationsStartingOn(ctx, day, models.StatusPending, models.StatusConfirmed)
		if err != nil {
			return err
		}

		var errs []error
		for _, r := range list {
			if r.Email == "" {
				continue
			}
			if err := d.Deliver(ctx, notify.PickupReminderMessage(r)); err != nil {
				errs = append(errs, fmt.Errorf("reservation %s: %w", r.ID, err))
			}
		}
		return errors.Join(errs...)
	}
}
