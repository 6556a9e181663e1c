package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"rentacar/internal/events"
	"rentacar/internal/models"
)

var statusLabels = map[string]string{
	models.StatusPending:   "en attente",
	models.StatusConfirmed: "confirmée",
	models.StatusCancelled: "annulée",
}

var paymentLabels = map[string]string{
	models.PaymentPickup: "au retrait",
	models.PaymentOnline: "en ligne",
}

var deliveryLabels = map[string]string{
	models.DeliveryPickup:   "retrait en agence",
	models.DeliveryDelivery: "livraison",
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f MAD", v)
}

func formatPeriod(r models.Reservation) string {
	return fmt.Sprintf("%s %s → %s %s (%d jour(s))", r.StartDate, r.StartTime, r.EndDate, r.EndTime, r.Days)
}

// OpsReservationMessage is the notice sent to the operations team.
func OpsReservationMessage(p events.ReservationPayload) Message {
	r := p.Reservation
	var b strings.Builder
	fmt.Fprintf(&b, "Véhicule: %s (%s)\n", p.CarTitle, r.CarID)
	fmt.Fprintf(&b, "Période: %s\n", formatPeriod(r))
	fmt.Fprintf(&b, "Total: %s, caution %s\n", formatPrice(r.TotalPrice), formatPrice(r.Deposit))
	fmt.Fprintf(&b, "Client: %s, %s, %s\n", r.FullName(), r.Phone, r.Email)
	fmt.Fprintf(&b, "Livraison: %s, paiement %s\n", deliveryLabels[r.DeliveryType], paymentLabels[r.PaymentType])
	fmt.Fprintf(&b, "Référence: %s", r.ID)

	return Message{
		Audience: AudienceOps,
		Subject:  "Nouvelle réservation",
		Text:     b.String(),
		HTML:     "<pre>" + html.EscapeString(b.String()) + "</pre>",
	}
}

// RenterConfirmationMessage acknowledges a submitted reservation to the renter.
func RenterConfirmationMessage(p events.ReservationPayload) Message {
	r := p.Reservation
	text := fmt.Sprintf(
		"Bonjour %s,\n\nNous avons bien reçu votre demande de réservation pour %s.\n"+
			"Période: %s\nTotal: %s\nStatut: %s\nRéférence: %s\n",
		r.FirstName, p.CarTitle, formatPeriod(r), formatPrice(r.TotalPrice), statusLabels[r.Status], r.ID,
	)
	return Message{
		Audience: AudienceRenter,
		To:       r.Email,
		ToName:   r.FullName(),
		Subject:  "Votre demande de réservation",
		Text:     text,
		HTML:     "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>",
	}
}

// StatusChangedMessage tells the renter their reservation changed status.
func StatusChangedMessage(p events.ReservationPayload) Message {
	r := p.Reservation
	text := fmt.Sprintf("Bonjour %s,\n\nVotre réservation %s est désormais %s.\nPériode: %s\n",
		r.FirstName, r.ID, statusLabels[r.Status], formatPeriod(r))
	return Message{
		Audience: AudienceRenter,
		To:       r.Email,
		ToName:   r.FullName(),
		Subject:  "Mise à jour de votre réservation",
		Text:     text,
		HTML:     "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>",
	}
}

// PartnerMessage is the ops notice for a partner application.
func PartnerMessage(p events.PartnerPayload) Message {
	a := p.Application
	text := fmt.Sprintf("Agence: %s\nVille: %s\nContact: %s, %s, %s",
		a.AgencyName, a.City, a.ContactName, a.Phone, a.Email)
	return Message{
		Audience: AudienceOps,
		Subject:  "Nouvelle demande partenaire",
		Text:     text,
		HTML:     "<pre>" + html.EscapeString(text) + "</pre>",
	}
}

// Subscribe registers the notifier's event handlers on bus.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.ReservationCreated, "notify", n.handleReservationCreated)
	bus.Subscribe(events.ReservationStatusChanged, "notify", n.handleStatusChanged)
	bus.Subscribe(events.PartnerApplied, "notify", n.handlePartnerApplied)
}

func (n *Notifier) handleReservationCreated(ctx context.Context, e events.Event) error {
	var p events.ReservationPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	opsErr := n.Deliver(ctx, OpsReservationMessage(p))
	renterErr := n.Deliver(ctx, RenterConfirmationMessage(p))
	if opsErr != nil {
		return opsErr
	}
	return renterErr
}

func (n *Notifier) handleStatusChanged(ctx context.Context, e events.Event) error {
	var p events.ReservationPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	return n.Deliver(ctx, StatusChangedMessage(p))
}

func (n *Notifier) handlePartnerApplied(ctx context.Context, e events.Event) error {
	var p events.PartnerPayload
	if err := e.Decode(&p); err != nil {
		return err
	}
	return n.Deliver(ctx, PartnerMessage(p))
}

// PickupReminderMessage reminds the renter of the next pickup.
func PickupReminderMessage(r models.Reservation) Message {
	car := r.CarID
	if r.Car != nil {
		car = r.Car.Title()
	}
	text := fmt.Sprintf("Bonjour %s,\n\nRappel: retrait de %s le %s à %s.\nRetour prévu le %s à %s.\nRéférence: %s\n",
		r.FirstName, car, r.StartDate, r.StartTime, r.EndDate, r.EndTime, r.ID)
	return Message{
		Audience: AudienceRenter,
		To:       r.Email,
		ToName:   r.FullName(),
		Subject:  "Rappel: retrait de votre véhicule demain",
		Text:     text,
		HTML:     "<p>" + strings.ReplaceAll(html.EscapeString(text), "\n", "<br>") + "</p>",
	}
}
