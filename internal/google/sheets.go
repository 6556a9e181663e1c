// Package google mirrors reservations into a Google Sheets log.
package google

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"rentacar/internal/events"
	"rentacar/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// Appender appends rows after the last filled row of a range.
type Appender interface {
	Append(ctx context.Context, spreadsheetID, rangeA1 string, rows [][]interface{}) error
}

type valuesAppender struct {
	srv *sheets.Service
}

func (a *valuesAppender) Append(ctx context.Context, spreadsheetID, rangeA1 string, rows [][]interface{}) error {
	_, err := a.srv.Spreadsheets.Values.
		Append(spreadsheetID, rangeA1, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// SheetsService writes one row per reservation event.
type SheetsService struct {
	appender      Appender
	spreadsheetID string
	sheetName     string
	logger        *zerolog.Logger
}

// NewSheetsService authenticates with a service account credentials file.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger *zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets client: %w", err)
	}
	return NewSheetsServiceWithAppender(&valuesAppender{srv: srv}, spreadsheetID, sheetName, logger), nil
}

func NewSheetsServiceWithAppender(appender Appender, spreadsheetID, sheetName string, logger *zerolog.Logger) *SheetsService {
	return &SheetsService{appender: appender, spreadsheetID: spreadsheetID, sheetName: sheetName, logger: logger}
}

// Subscribe mirrors reservation events from bus.
func (s *SheetsService) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.ReservationCreated, "sheets", s.handle)
	bus.Subscribe(events.ReservationStatusChanged, "sheets", s.handle)
}

func (s *SheetsService) handle(ctx context.Context, e events.Event) error {
	var p events.ReservationPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	return s.AppendReservation(ctx, e.Type, &p.Reservation, p.CarTitle)
}

// AppendReservation appends a row describing r after eventType.
func (s *SheetsService) AppendReservation(ctx context.Context, eventType string, r *models.Reservation, carTitle string) error {
	row := append([]interface{}{eventType}, reservationRowValues(r, carTitle)...)
	rangeA1 := fmt.Sprintf("%s!A:Q", s.sheetName)
	if err := s.appender.Append(ctx, s.spreadsheetID, rangeA1, [][]interface{}{row}); err != nil {
		return fmt.Errorf("append reservation %s: %w", r.ID, err)
	}
	s.logger.Debug().Str("reservation_id", r.ID).Str("event", eventType).Msg("Reservation mirrored to sheet")
	return nil
}

func reservationRowValues(r *models.Reservation, carTitle string) []interface{} {
	return []interface{}{
		r.ID,
		r.CarID,
		carTitle,
		r.StartDate + " " + r.StartTime,
		r.EndDate + " " + r.EndTime,
		int64(r.Days),
		r.TotalPrice,
		r.Deposit,
		r.FullName(),
		r.Phone,
		r.Email,
		r.DeliveryType,
		r.PaymentType,
		r.Status,
		r.CreatedAt.Format(timeLayout),
		r.UpdatedAt.Format(timeLayout),
	}
}
