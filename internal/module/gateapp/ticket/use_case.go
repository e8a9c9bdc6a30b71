package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/notification"
	"github.com/tsel-ticketmaster/tm-ticket/internal/pkg/session"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/pubsub"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

const ticketScannedTopic = "ticket-scanned"

type TicketUseCase interface {
	ScanTicket(ctx context.Context, req ScanTicketRequest) (ScanTicketResponse, error)
	GetTicketDetails(ctx context.Context, eventID int64, code string) (ScanTicketResponse, error)
}

type ticketUseCase struct {
	logger                 *logrus.Logger
	timeout                time.Duration
	ticketRepository       TicketRepository
	notificationRepository notification.NotificationRepository
	publisher              pubsub.Publisher
}

type TicketUseCaseProperty struct {
	Logger                 *logrus.Logger
	Timeout                time.Duration
	TicketRepository       TicketRepository
	NotificationRepository notification.NotificationRepository
	Publisher              pubsub.Publisher
}

func NewTicketUseCase(props TicketUseCaseProperty) TicketUseCase {
	return &ticketUseCase{
		logger:                 props.Logger,
		timeout:                props.Timeout,
		ticketRepository:       props.TicketRepository,
		notificationRepository: props.NotificationRepository,
		publisher:              props.Publisher,
	}
}

// ScanTicket implements TicketUseCase. At most one caller wins the scan
// transition for a code; every other caller, including later retries by the
// winner, observes the winner's actor and timestamp.
func (u *ticketUseCase) ScanTicket(ctx context.Context, req ScanTicketRequest) (ScanTicketResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	acc, err := session.GetAccountFromCtx(ctx)
	if err != nil {
		return ScanTicketResponse{}, err
	}

	t, err := u.ticketRepository.FindByEventIDAndCode(ctx, req.EventID, req.Code)
	if err != nil {
		return ScanTicketResponse{}, err
	}

	if t.ScannedAt != nil {
		return ScanTicketResponse{}, u.alreadyScanned(t)
	}

	now := time.Now()
	won, err := u.ticketRepository.Scan(ctx, req.EventID, req.Code, now, acc.Email)
	if err != nil {
		return ScanTicketResponse{}, err
	}

	if !won {
		// Lost the race; report the winner's scan.
		t, err = u.ticketRepository.FindByEventIDAndCode(ctx, req.EventID, req.Code)
		if err != nil {
			return ScanTicketResponse{}, err
		}

		return ScanTicketResponse{}, u.alreadyScanned(t)
	}

	t.Status = StatusScanned
	t.ScannedAt = &now
	scannedBy := acc.Email
	t.ScannedBy = &scannedBy

	scannedEvent := TicketScannedEvent{
		TicketID:  t.ID,
		Code:      t.Code,
		EventID:   t.EventID,
		ScannedAt: now,
		ScannedBy: scannedBy,
	}
	eventBuff, _ := json.Marshal(scannedEvent)
	u.publisher.Publish(ctx, ticketScannedTopic, t.Code, nil, eventBuff)

	// Best effort; a failed confirmation never unwinds the scan.
	if _, err := u.notificationRepository.SendScanConfirmation(ctx, notification.SendScanConfirmationRequest{
		Recipient: t.AttendeePhone,
		Channel:   notification.ChannelSMS,
		Body:      fmt.Sprintf("Hi %s, your ticket %s has been scanned at the gate.", t.AttendeeName, t.Code),
	}); err != nil {
		u.logger.WithContext(ctx).WithError(err).Warn()
	}

	resp := ScanTicketResponse{}
	resp.PopulateFromEntity(t)

	return resp, nil
}

func (u *ticketUseCase) alreadyScanned(t Ticket) error {
	return errors.NewWithData(
		http.StatusConflict,
		status.CONFLICT,
		fmt.Sprintf("ticket with code '%s' has already been scanned", t.Code),
		AlreadyScannedData{
			ScannedAt: t.ScannedAt,
			ScannedBy: t.ScannedBy,
		},
	)
}

// GetTicketDetails implements TicketUseCase.
func (u *ticketUseCase) GetTicketDetails(ctx context.Context, eventID int64, code string) (ScanTicketResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	t, err := u.ticketRepository.FindByEventIDAndCode(ctx, eventID, code)
	if err != nil {
		return ScanTicketResponse{}, err
	}

	resp := ScanTicketResponse{}
	resp.PopulateFromEntity(t)

	return resp, nil
}
