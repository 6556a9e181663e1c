// Package audit builds the monthly reservation report workbook.
package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"rentacar/internal/models"
)

// ReservationLister returns the reservations starting in a month.
type ReservationLister interface {
	ListReservationsByMonth(ctx context.Context, month time.Time) ([]models.Reservation, error)
}

// ExcelWriter writes tabular data to a workbook.
type ExcelWriter interface {
	AddSheet(name string) error
	WriteHeader(columns []string) error
	WriteRow(row []interface{}) error
	Save(w io.Writer) error
	SaveToFile(path string) error
	Close() error
}

// MonthNames in French for sheet and file names.
var MonthNames = map[time.Month]string{
	time.January:   "Janvier",
	time.February:  "Fevrier",
	time.March:     "Mars",
	time.April:     "Avril",
	time.May:       "Mai",
	time.June:      "Juin",
	time.July:      "Juillet",
	time.August:    "Aout",
	time.September: "Septembre",
	time.October:   "Octobre",
	time.November:  "Novembre",
	time.December:  "Decembre",
}

// Columns of the reservation sheet.
var Columns = []string{
	"Référence", "Véhicule", "Début", "Fin", "Jours", "Total (MAD)", "Caution (MAD)",
	"Client", "Téléphone", "Email", "Livraison", "Paiement", "Statut", "Créée le",
}

// GenerateFilename creates a filename like "Reservations_Fevrier_2026.xlsx".
func GenerateFilename(month time.Time) string {
	return fmt.Sprintf("Reservations_%s_%d.xlsx", MonthNames[month.Month()], month.Year())
}

// Exporter writes one row per reservation of a month.
type Exporter struct {
	repo      ReservationLister
	newWriter func() ExcelWriter
	logger    *zerolog.Logger
}

func NewExporter(repo ReservationLister, writerFactory func() ExcelWriter, logger *zerolog.Logger) *Exporter {
	if writerFactory == nil {
		writerFactory = NewExcelizeWriter
	}
	return &Exporter{repo: repo, newWriter: writerFactory, logger: logger}
}

// Export writes the month's workbook to w and returns the row count.
func (e *Exporter) Export(ctx context.Context, month time.Time, w io.Writer) (int, error) {
	excel, n, err := e.build(ctx, month)
	if err != nil {
		return 0, err
	}
	defer excel.Close()

	if err := excel.Save(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}

// ExportToDir saves the month's workbook under dir and returns its path.
func (e *Exporter) ExportToDir(ctx context.Context, month time.Time, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	excel, n, err := e.build(ctx, month)
	if err != nil {
		return "", err
	}
	defer excel.Close()

	path := filepath.Join(dir, GenerateFilename(month))
	if err := excel.SaveToFile(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info().Str("path", path).Int("rows", n).Msg("Reservation export written")
	return path, nil
}

func (e *Exporter) build(ctx context.Context, month time.Time) (ExcelWriter, int, error) {
	reservations, err := e.repo.ListReservationsByMonth(ctx, month)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	excel := e.newWriter()
	sheet := fmt.Sprintf("%s %d", MonthNames[month.Month()], month.Year())
	if err := excel.AddSheet(sheet); err != nil {
		excel.Close()
		return nil, 0, err
	}
	if err := excel.WriteHeader(Columns); err != nil {
		excel.Close()
		return nil, 0, fmt.Errorf("write header: %w", err)
	}
	for i := range reservations {
		if err := excel.WriteRow(reservationRow(&reservations[i])); err != nil {
			excel.Close()
			return nil, 0, fmt.Errorf("write row %s: %w", reservations[i].ID, err)
		}
	}
	return excel, len(reservations), nil
}

func reservationRow(r *models.Reservation) []interface{} {
	return []interface{}{
		r.ID,
		r.CarID,
		r.StartDate + " " + r.StartTime,
		r.EndDate + " " + r.EndTime,
		r.Days,
		r.TotalPrice,
		r.Deposit,
		r.FullName(),
		r.Phone,
		r.Email,
		r.DeliveryType,
		r.PaymentType,
		r.Status,
		r.CreatedAt.Format("2006-01-02 15:04"),
	}
}
