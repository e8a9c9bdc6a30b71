package ticket

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/notification"
	"github.com/tsel-ticketmaster/tm-ticket/internal/pkg/session"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
)

// memoryTicketRepository guards the scanned fields with a mutex so the
// conditional update behaves like the single-statement database update.
type memoryTicketRepository struct {
	mu      sync.Mutex
	tickets map[string]*Ticket
}

func newMemoryTicketRepository(tickets ...Ticket) *memoryTicketRepository {
	repo := &memoryTicketRepository{tickets: map[string]*Ticket{}}
	for i := range tickets {
		t := tickets[i]
		repo.tickets[fmt.Sprintf("%d:%s", t.EventID, t.Code)] = &t
	}
	return repo
}

func (r *memoryTicketRepository) FindByEventIDAndCode(ctx context.Context, eventID int64, code string) (Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[fmt.Sprintf("%d:%s", eventID, code)]
	if !ok {
		return Ticket{}, errors.New(404, "NOT_FOUND", fmt.Sprintf("ticket with code '%s' is not found for this event", code))
	}

	return *t, nil
}

func (r *memoryTicketRepository) Scan(ctx context.Context, eventID int64, code string, scannedAt time.Time, scannedBy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[fmt.Sprintf("%d:%s", eventID, code)]
	if !ok || t.ScannedAt != nil {
		return false, nil
	}

	t.Status = StatusScanned
	t.ScannedAt = &scannedAt
	t.ScannedBy = &scannedBy

	return true, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturingPublisher) Publish(ctx context.Context, topic string, key string, headers map[string]string, message []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}

func (p *capturingPublisher) Close() {}

type capturingNotificationRepository struct {
	mu            sync.Mutex
	confirmations []notification.SendScanConfirmationRequest
}

func (r *capturingNotificationRepository) SendArtifact(ctx context.Context, req notification.SendArtifactRequest) (notification.SendResponse, error) {
	return notification.SendResponse{}, nil
}

func (r *capturingNotificationRepository) SendScanConfirmation(ctx context.Context, req notification.SendScanConfirmationRequest) (notification.SendResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmations = append(r.confirmations, req)
	return notification.SendResponse{MessageID: "msg-1", Status: "QUEUED"}, nil
}

func gateCtx(actor string) context.Context {
	return session.SetAccountToCtx(context.Background(), session.Account{
		ID:    1,
		Name:  actor,
		Email: actor,
		Role:  session.RoleStaff,
	})
}

func sentTicket() Ticket {
	sentAt := time.Date(2023, time.June, 1, 9, 0, 0, 0, time.UTC)
	return Ticket{
		ID:            11,
		Code:          "AB12CD",
		EventID:       21,
		AttendeeID:    5,
		AttendeeName:  "Jane Doe",
		AttendeeEmail: "jane@example.com",
		AttendeePhone: "+254700000001",
		Price:         7000,
		Status:        StatusSent,
		SentAt:        &sentAt,
	}
}

func newScanFixture(tickets ...Ticket) (TicketUseCase, *memoryTicketRepository, *capturingPublisher, *capturingNotificationRepository) {
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))

	repo := newMemoryTicketRepository(tickets...)
	publisher := &capturingPublisher{}
	notifications := &capturingNotificationRepository{}

	useCase := NewTicketUseCase(TicketUseCaseProperty{
		Logger:                 logger,
		Timeout:                5 * time.Second,
		TicketRepository:       repo,
		NotificationRepository: notifications,
		Publisher:              publisher,
	})

	return useCase, repo, publisher, notifications
}

func TestScanTicket(t *testing.T) {
	t.Run("first scan wins and records the actor", func(t *testing.T) {
		useCase, repo, publisher, notifications := newScanFixture(sentTicket())

		resp, err := useCase.ScanTicket(gateCtx("gate-1"), ScanTicketRequest{EventID: 21, Code: "AB12CD"})
		require.NoError(t, err)

		assert.Equal(t, StatusScanned, resp.Status)
		require.NotNil(t, resp.ScannedAt)
		require.NotNil(t, resp.ScannedBy)
		assert.Equal(t, "gate-1", *resp.ScannedBy)

		stored, _ := repo.FindByEventIDAndCode(context.Background(), 21, "AB12CD")
		assert.Equal(t, StatusScanned, stored.Status)

		assert.Equal(t, []string{"ticket-scanned"}, publisher.topics)
		require.Len(t, notifications.confirmations, 1)
		assert.Equal(t, "+254700000001", notifications.confirmations[0].Recipient)
	})

	t.Run("second scan reports the winner's identity", func(t *testing.T) {
		useCase, _, _, _ := newScanFixture(sentTicket())

		_, err := useCase.ScanTicket(gateCtx("gate-1"), ScanTicketRequest{EventID: 21, Code: "AB12CD"})
		require.NoError(t, err)

		_, err = useCase.ScanTicket(gateCtx("gate-2"), ScanTicketRequest{EventID: 21, Code: "AB12CD"})
		require.Error(t, err)

		ae := errors.Destruct(err)
		assert.Equal(t, 409, ae.HTTPStatusCode)

		data, ok := ae.Data.(AlreadyScannedData)
		require.True(t, ok)
		require.NotNil(t, data.ScannedBy)
		assert.Equal(t, "gate-1", *data.ScannedBy)
		require.NotNil(t, data.ScannedAt)
	})

	t.Run("repeated scans return identical conflict data", func(t *testing.T) {
		useCase, _, _, _ := newScanFixture(sentTicket())

		_, err := useCase.ScanTicket(gateCtx("gate-1"), ScanTicketRequest{EventID: 21, Code: "AB12CD"})
		require.NoError(t, err)

		var previous AlreadyScannedData
		for i := 0; i < 3; i++ {
			_, err := useCase.ScanTicket(gateCtx(fmt.Sprintf("gate-%d", i+2)), ScanTicketRequest{EventID: 21, Code: "AB12CD"})
			require.Error(t, err)

			data, ok := errors.Destruct(err).Data.(AlreadyScannedData)
			require.True(t, ok)

			if i > 0 {
				assert.Equal(t, *previous.ScannedAt, *data.ScannedAt)
				assert.Equal(t, *previous.ScannedBy, *data.ScannedBy)
			}
			previous = data
		}

		assert.Equal(t, "gate-1", *previous.ScannedBy)
	})

	t.Run("exactly one of many concurrent scans wins", func(t *testing.T) {
		useCase, _, publisher, _ := newScanFixture(sentTicket())

		const attempts = 16

		var wg sync.WaitGroup
		results := make([]error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := useCase.ScanTicket(gateCtx(fmt.Sprintf("gate-%d", i)), ScanTicketRequest{EventID: 21, Code: "AB12CD"})
				results[i] = err
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range results {
			if err == nil {
				winners++
				continue
			}
			assert.Equal(t, 409, errors.Destruct(err).HTTPStatusCode)
		}

		assert.Equal(t, 1, winners)
		assert.Equal(t, []string{"ticket-scanned"}, publisher.topics)
	})

	t.Run("unknown code reports not found", func(t *testing.T) {
		useCase, _, _, _ := newScanFixture(sentTicket())

		_, err := useCase.ScanTicket(gateCtx("gate-1"), ScanTicketRequest{EventID: 21, Code: "ZZ99ZZ"})
		require.Error(t, err)
		assert.Equal(t, 404, errors.Destruct(err).HTTPStatusCode)
	})

	t.Run("missing session is rejected", func(t *testing.T) {
		useCase, _, _, _ := newScanFixture(sentTicket())

		_, err := useCase.ScanTicket(context.Background(), ScanTicketRequest{EventID: 21, Code: "AB12CD"})
		require.Error(t, err)
		assert.Equal(t, 401, errors.Destruct(err).HTTPStatusCode)
	})
}

func TestGetTicketDetails(t *testing.T) {
	useCase, _, _, _ := newScanFixture(sentTicket())

	resp, err := useCase.GetTicketDetails(context.Background(), 21, "AB12CD")
	require.NoError(t, err)

	assert.Equal(t, "AB12CD", resp.Code)
	assert.Equal(t, "Jane Doe", resp.AttendeeName)
	assert.Equal(t, StatusSent, resp.Status)
	assert.Nil(t, resp.ScannedAt)
}
