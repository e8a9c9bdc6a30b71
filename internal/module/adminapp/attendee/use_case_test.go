package attendee

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/company"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/event"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/notification"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/gctasks"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/ticketpdf"
)

type fakeAttendeeRepository struct {
	attendees  map[int64]Attendee
	nextID     int64
	inTx       []Attendee
	committed  bool
	rolledBack bool
}

func newFakeAttendeeRepository() *fakeAttendeeRepository {
	return &fakeAttendeeRepository{attendees: map[int64]Attendee{}, nextID: 1}
}

func (f *fakeAttendeeRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return &sql.Tx{}, nil
}

func (f *fakeAttendeeRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	f.committed = true
	for _, a := range f.inTx {
		f.attendees[a.ID] = a
	}
	f.inTx = nil
	return nil
}

func (f *fakeAttendeeRepository) Rollback(ctx context.Context, tx *sql.Tx) error {
	f.rolledBack = true
	f.inTx = nil
	return nil
}

func (f *fakeAttendeeRepository) Save(ctx context.Context, a Attendee, tx *sql.Tx) (int64, error) {
	a.ID = f.nextID
	f.nextID++
	f.inTx = append(f.inTx, a)
	return a.ID, nil
}

func (f *fakeAttendeeRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Attendee, error) {
	a, ok := f.attendees[ID]
	if !ok {
		return Attendee{}, errors.New(404, "NOT_FOUND", "attendee is not found")
	}
	return a, nil
}

type fakeTicketRepository struct {
	tickets   map[int64]Ticket
	nextID    int64
	inTx      []Ticket
	existing  map[string]bool
	sentAt    map[int64]time.Time
	committed *fakeAttendeeRepository
}

func newFakeTicketRepository(attendees *fakeAttendeeRepository) *fakeTicketRepository {
	return &fakeTicketRepository{
		tickets:   map[int64]Ticket{},
		nextID:    1,
		existing:  map[string]bool{},
		sentAt:    map[int64]time.Time{},
		committed: attendees,
	}
}

func (f *fakeTicketRepository) Save(ctx context.Context, t Ticket, tx *sql.Tx) (int64, error) {
	t.ID = f.nextID
	f.nextID++
	f.inTx = append(f.inTx, t)
	return t.ID, nil
}

func (f *fakeTicketRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Ticket, error) {
	t, ok := f.tickets[ID]
	if !ok {
		return Ticket{}, errors.New(404, "NOT_FOUND", "ticket is not found")
	}
	return t, nil
}

func (f *fakeTicketRepository) ExistsByEventIDAndCode(ctx context.Context, eventID int64, code string) (bool, error) {
	return f.existing[fmt.Sprintf("%d:%s", eventID, code)], nil
}

func (f *fakeTicketRepository) UpdateSentAt(ctx context.Context, ID int64, sentAt time.Time, tx *sql.Tx) error {
	t := f.tickets[ID]
	if t.Status != StatusIssued {
		return nil
	}
	t.Status = StatusSent
	t.SentAt = &sentAt
	f.tickets[ID] = t
	f.sentAt[ID] = sentAt
	return nil
}

// flush moves transactional writes into the committed view when the attendee
// repository, which owns the shared transaction, commits.
func (f *fakeTicketRepository) flush() {
	if f.committed.committed {
		for _, t := range f.inTx {
			f.tickets[t.ID] = t
		}
		f.inTx = nil
	}
}

type fakeEventRepository struct {
	events map[int64]event.Event
}

func (f *fakeEventRepository) BeginTx(ctx context.Context) (*sql.Tx, error) { return &sql.Tx{}, nil }
func (f *fakeEventRepository) CommitTx(ctx context.Context, tx *sql.Tx) error { return nil }
func (f *fakeEventRepository) Rollback(ctx context.Context, tx *sql.Tx) error { return nil }
func (f *fakeEventRepository) Save(ctx context.Context, e event.Event, tx *sql.Tx) (int64, error) {
	return 0, nil
}

func (f *fakeEventRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (event.Event, error) {
	e, ok := f.events[ID]
	if !ok {
		return event.Event{}, errors.New(404, "NOT_FOUND", "event is not found")
	}
	return e, nil
}

func (f *fakeEventRepository) FindManyByCompanyID(ctx context.Context, companyID int64, offset, limit int64, tx *sql.Tx) ([]event.Event, error) {
	return nil, nil
}

func (f *fakeEventRepository) CountByCompanyID(ctx context.Context, companyID int64, tx *sql.Tx) (int64, error) {
	return 0, nil
}

type fakeTableRepository struct {
	tables map[int64]event.Table
}

func (f *fakeTableRepository) Save(ctx context.Context, t event.Table, tx *sql.Tx) (int64, error) {
	return 0, nil
}

func (f *fakeTableRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (event.Table, error) {
	t, ok := f.tables[ID]
	if !ok {
		return event.Table{}, errors.New(404, "NOT_FOUND", "event table is not found")
	}
	return t, nil
}

func (f *fakeTableRepository) FindManyByEventID(ctx context.Context, eventID int64, tx *sql.Tx) ([]event.Table, error) {
	return nil, nil
}

type fakeCompanyRepository struct {
	companies map[int64]company.Company
}

func (f *fakeCompanyRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (company.Company, error) {
	c, ok := f.companies[ID]
	if !ok {
		return company.Company{}, errors.New(404, "NOT_FOUND", "company is not found")
	}
	return c, nil
}

type fakeStorage struct {
	blobs map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: map[string][]byte{}}
}

func (f *fakeStorage) Upload(ctx context.Context, path string, data []byte) (string, error) {
	f.blobs[path] = data
	return path, nil
}

func (f *fakeStorage) Get(ctx context.Context, path string) ([]byte, error) {
	b, ok := f.blobs[path]
	if !ok {
		return nil, fmt.Errorf("storage: object not found")
	}
	return b, nil
}

func (f *fakeStorage) URL(path string) string {
	return "http://blobs.local/" + path
}

type fakePublisher struct {
	topics []string
	keys   []string
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, key string, headers map[string]string, message []byte) {
	f.topics = append(f.topics, topic)
	f.keys = append(f.keys, key)
}

func (f *fakePublisher) Close() {}

type fakeTasks struct {
	requests []gctasks.Request
}

func (f *fakeTasks) CreateTask(queueID string, request gctasks.Request) error {
	f.requests = append(f.requests, request)
	return nil
}

func (f *fakeTasks) DeferCreateTaskInDuration(queueID string, request gctasks.Request, duration time.Duration) error {
	f.requests = append(f.requests, request)
	return nil
}

func (f *fakeTasks) Close() error { return nil }

type fakeNotificationRepository struct {
	artifacts     []notification.SendArtifactRequest
	confirmations []notification.SendScanConfirmationRequest
	fail          bool
}

func (f *fakeNotificationRepository) SendArtifact(ctx context.Context, req notification.SendArtifactRequest) (notification.SendResponse, error) {
	if f.fail {
		return notification.SendResponse{}, errors.New(500, "INTERNAL_SERVER_ERROR", "an error occurred while sending notification")
	}
	f.artifacts = append(f.artifacts, req)
	return notification.SendResponse{MessageID: "msg-1", Status: "QUEUED"}, nil
}

func (f *fakeNotificationRepository) SendScanConfirmation(ctx context.Context, req notification.SendScanConfirmationRequest) (notification.SendResponse, error) {
	f.confirmations = append(f.confirmations, req)
	return notification.SendResponse{MessageID: "msg-2", Status: "QUEUED"}, nil
}

func pngLogo(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 30, B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

type fixture struct {
	useCase       AttendeeUseCase
	attendeeRepo  *fakeAttendeeRepository
	ticketRepo    *fakeTicketRepository
	storage       *fakeStorage
	publisher     *fakePublisher
	tasks         *fakeTasks
	notifications *fakeNotificationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))

	attendeeRepo := newFakeAttendeeRepository()
	ticketRepo := newFakeTicketRepository(attendeeRepo)
	blobStorage := newFakeStorage()
	blobStorage.blobs["assets/default-logo.png"] = pngLogo(t, 240, 80)
	publisher := &fakePublisher{}
	tasks := &fakeTasks{}
	notifications := &fakeNotificationRepository{}

	logoPath := "companies/7/logo.png"
	blobStorage.blobs[logoPath] = pngLogo(t, 300, 100)

	useCase := NewAttendeeUseCase(AttendeeUseCaseProperty{
		Logger:             logger,
		Timeout:            5 * time.Second,
		BaseURL:            "http://tm-ticket.local",
		DefaultLogoPath:    "assets/default-logo.png",
		AttendeeRepository: attendeeRepo,
		TicketRepository:   ticketRepo,
		EventRepository: &fakeEventRepository{events: map[int64]event.Event{
			21: {
				ID:        21,
				Name:      "OSS Charity Gala 2023",
				Venue:     "Emara Ole Sereni",
				DateFrom:  time.Date(2023, time.June, 3, 19, 30, 0, 0, time.UTC),
				Status:    event.StatusActive,
				CompanyID: 7,
			},
			22: {
				ID:        22,
				Name:      "Cancelled Meetup",
				Venue:     "Nowhere",
				DateFrom:  time.Date(2023, time.July, 1, 10, 0, 0, 0, time.UTC),
				Status:    event.StatusCancelled,
				CompanyID: 7,
			},
		}},
		TableRepository: &fakeTableRepository{tables: map[int64]event.Table{
			3: {ID: 3, Name: "Table 3", EventID: 21},
		}},
		CompanyRepository: &fakeCompanyRepository{companies: map[int64]company.Company{
			7: {ID: 7, Name: "Acme Events", LogoPath: &logoPath},
		}},
		NotificationRepository: notifications,
		BlobStorage:            blobStorage,
		Renderer:               ticketpdf.NewRenderer(),
		Publisher:              publisher,
		Tasks:                  tasks,
	})

	return &fixture{
		useCase:       useCase,
		attendeeRepo:  attendeeRepo,
		ticketRepo:    ticketRepo,
		storage:       blobStorage,
		publisher:     publisher,
		tasks:         tasks,
		notifications: notifications,
	}
}

func TestIssueTicket(t *testing.T) {
	tableID := int64(3)

	t.Run("issues a ticket and stores the artifact under the event and code", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.useCase.IssueTicket(context.Background(), IssueTicketRequest{
			EventID: 21,
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Phone:   "+254700000001",
			Price:   7000,
			TableID: &tableID,
		})
		require.NoError(t, err)
		f.ticketRepo.flush()

		assert.Len(t, resp.Code, 6)
		assert.Equal(t, StatusIssued, resp.Status)
		assert.Equal(t, "Jane Doe", resp.Attendee.Name)

		expectedPath := fmt.Sprintf("companies/7/tickets/21/ticket_21_%s.pdf", resp.Code)
		assert.Contains(t, f.storage.blobs, expectedPath)
		assert.True(t, strings.HasSuffix(resp.ArtifactURL, expectedPath))

		assert.True(t, f.attendeeRepo.committed)
		assert.Equal(t, []string{"ticket-issued"}, f.publisher.topics)
		assert.Equal(t, []string{resp.Code}, f.publisher.keys)
		require.Len(t, f.tasks.requests, 1)
		assert.Contains(t, f.tasks.requests[0].URL, "/tm-ticket/v1/internal/tickets/send")
	})

	t.Run("refuses a ticket for an inactive event", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.useCase.IssueTicket(context.Background(), IssueTicketRequest{
			EventID: 22,
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Phone:   "+254700000001",
			Price:   7000,
		})
		require.Error(t, err)
		assert.Equal(t, 409, errors.Destruct(err).HTTPStatusCode)
		assert.False(t, f.attendeeRepo.committed)
	})

	t.Run("surfaces a conflict when the code pool is exhausted", func(t *testing.T) {
		f := newFixture(t)

		// Every candidate code is already taken.
		uc := f.useCase.(*attendeeUseCase)
		uc.ticketRepository = alwaysExistsTicketRepository{f.ticketRepo}

		_, err := f.useCase.IssueTicket(context.Background(), IssueTicketRequest{
			EventID: 21,
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Phone:   "+254700000001",
			Price:   7000,
		})
		require.Error(t, err)

		ae := errors.Destruct(err)
		assert.Equal(t, 409, ae.HTTPStatusCode)
		assert.False(t, f.attendeeRepo.committed)
		assert.Empty(t, f.publisher.topics)
	})

	t.Run("rejects a table that belongs to another event", func(t *testing.T) {
		f := newFixture(t)
		wrongTable := int64(3)

		uc := f.useCase.(*attendeeUseCase)
		uc.tableRepository = &fakeTableRepository{tables: map[int64]event.Table{
			3: {ID: 3, Name: "Table 3", EventID: 99},
		}}

		_, err := f.useCase.IssueTicket(context.Background(), IssueTicketRequest{
			EventID: 21,
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Phone:   "+254700000001",
			Price:   7000,
			TableID: &wrongTable,
		})
		require.Error(t, err)
		assert.Equal(t, 400, errors.Destruct(err).HTTPStatusCode)
	})

	t.Run("render failure leaves nothing persisted", func(t *testing.T) {
		f := newFixture(t)

		// Both the company logo and the fallback are undecodable.
		f.storage.blobs["companies/7/logo.png"] = []byte("not an image")
		f.storage.blobs["assets/default-logo.png"] = []byte("also not an image")

		_, err := f.useCase.IssueTicket(context.Background(), IssueTicketRequest{
			EventID: 21,
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Phone:   "+254700000001",
			Price:   7000,
		})
		require.Error(t, err)

		ae := errors.Destruct(err)
		assert.Equal(t, 422, ae.HTTPStatusCode)
		assert.False(t, f.attendeeRepo.committed)
		assert.Empty(t, f.attendeeRepo.attendees)
		f.ticketRepo.flush()
		assert.Empty(t, f.ticketRepo.tickets)
		assert.Empty(t, f.publisher.topics)
	})
}

type alwaysExistsTicketRepository struct {
	*fakeTicketRepository
}

func (alwaysExistsTicketRepository) ExistsByEventIDAndCode(ctx context.Context, eventID int64, code string) (bool, error) {
	return true, nil
}

type staleReadTicketRepository struct {
	*fakeTicketRepository
	snapshot Ticket
}

func (r staleReadTicketRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Ticket, error) {
	return r.snapshot, nil
}

func TestOnSendTicket(t *testing.T) {
	issue := func(t *testing.T, f *fixture) TicketDetailsResponse {
		t.Helper()

		resp, err := f.useCase.IssueTicket(context.Background(), IssueTicketRequest{
			EventID: 21,
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Phone:   "+254700000001",
			Price:   7000,
		})
		require.NoError(t, err)
		f.ticketRepo.flush()

		return resp
	}

	t.Run("sends the artifact and marks the ticket sent", func(t *testing.T) {
		f := newFixture(t)
		resp := issue(t, f)

		err := f.useCase.OnSendTicket(context.Background(), SendTicketRequest{TicketID: resp.ID})
		require.NoError(t, err)

		require.Len(t, f.notifications.artifacts, 1)
		sent := f.notifications.artifacts[0]
		assert.Equal(t, "jane@example.com", sent.Recipient)
		assert.Equal(t, notification.ChannelEmail, sent.Channel)
		require.Len(t, sent.Attachments, 1)
		assert.Equal(t, "application/pdf", sent.Attachments[0].ContentType)

		stored := f.ticketRepo.tickets[resp.ID]
		assert.Equal(t, StatusSent, stored.Status)
		require.NotNil(t, stored.SentAt)
		assert.False(t, stored.SentAt.IsZero())
	})

	t.Run("a ticket past the issued state is left alone", func(t *testing.T) {
		f := newFixture(t)
		resp := issue(t, f)

		require.NoError(t, f.useCase.OnSendTicket(context.Background(), SendTicketRequest{TicketID: resp.ID}))
		require.NoError(t, f.useCase.OnSendTicket(context.Background(), SendTicketRequest{TicketID: resp.ID}))

		assert.Len(t, f.notifications.artifacts, 1)
	})

	t.Run("a scan landing between the read and the write is not overwritten", func(t *testing.T) {
		f := newFixture(t)
		resp := issue(t, f)

		// The callback reads the ticket while it is still ISSUED, then a
		// gate scan wins before the sent transition is written.
		uc := f.useCase.(*attendeeUseCase)
		uc.ticketRepository = staleReadTicketRepository{
			fakeTicketRepository: f.ticketRepo,
			snapshot:             f.ticketRepo.tickets[resp.ID],
		}

		scannedAt := time.Now()
		scannedBy := "gate-1"
		scanned := f.ticketRepo.tickets[resp.ID]
		scanned.Status = StatusScanned
		scanned.ScannedAt = &scannedAt
		scanned.ScannedBy = &scannedBy
		f.ticketRepo.tickets[resp.ID] = scanned

		err := f.useCase.OnSendTicket(context.Background(), SendTicketRequest{TicketID: resp.ID})
		require.NoError(t, err)

		stored := f.ticketRepo.tickets[resp.ID]
		assert.Equal(t, StatusScanned, stored.Status)
		require.NotNil(t, stored.ScannedAt)
		require.NotNil(t, stored.ScannedBy)
		assert.Equal(t, "gate-1", *stored.ScannedBy)
	})

	t.Run("dispatch failure keeps the ticket issued for the retrying queue", func(t *testing.T) {
		f := newFixture(t)
		resp := issue(t, f)

		f.notifications.fail = true

		err := f.useCase.OnSendTicket(context.Background(), SendTicketRequest{TicketID: resp.ID})
		require.Error(t, err)

		stored := f.ticketRepo.tickets[resp.ID]
		assert.Equal(t, StatusIssued, stored.Status)
		assert.Nil(t, stored.SentAt)
	})

	t.Run("unknown ticket reports not found", func(t *testing.T) {
		f := newFixture(t)

		err := f.useCase.OnSendTicket(context.Background(), SendTicketRequest{TicketID: 404})
		require.Error(t, err)
		assert.Equal(t, 404, errors.Destruct(err).HTTPStatusCode)
	})
}
