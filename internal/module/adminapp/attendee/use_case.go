package attendee

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/sirupsen/logrus"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/company"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/event"
	"github.com/tsel-ticketmaster/tm-ticket/internal/module/adminapp/notification"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/codes"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/gctasks"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/pubsub"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/storage"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/ticketpdf"
)

const (
	ticketIssuedTopic = "ticket-issued"
	sendTicketQueue   = "send-ticket"
)

type AttendeeUseCase interface {
	IssueTicket(ctx context.Context, req IssueTicketRequest) (IssueTicketResponse, error)
	OnSendTicket(ctx context.Context, req SendTicketRequest) error
	GetTicketDetails(ctx context.Context, ticketID int64) (TicketDetailsResponse, error)
}

type attendeeUseCase struct {
	logger                 *logrus.Logger
	timeout                time.Duration
	baseURL                string
	defaultLogoPath        string
	attendeeRepository     AttendeeRepository
	ticketRepository       TicketRepository
	eventRepository        event.EventRepository
	tableRepository        event.TableRepository
	companyRepository      company.CompanyRepository
	notificationRepository notification.NotificationRepository
	blobStorage            storage.Storage
	renderer               *ticketpdf.Renderer
	publisher              pubsub.Publisher
	tasks                  gctasks.Client
}

type AttendeeUseCaseProperty struct {
	Logger                 *logrus.Logger
	Timeout                time.Duration
	BaseURL                string
	DefaultLogoPath        string
	AttendeeRepository     AttendeeRepository
	TicketRepository       TicketRepository
	EventRepository        event.EventRepository
	TableRepository        event.TableRepository
	CompanyRepository      company.CompanyRepository
	NotificationRepository notification.NotificationRepository
	BlobStorage            storage.Storage
	Renderer               *ticketpdf.Renderer
	Publisher              pubsub.Publisher
	Tasks                  gctasks.Client
}

func NewAttendeeUseCase(props AttendeeUseCaseProperty) AttendeeUseCase {
	return &attendeeUseCase{
		logger:                 props.Logger,
		timeout:                props.Timeout,
		baseURL:                props.BaseURL,
		defaultLogoPath:        props.DefaultLogoPath,
		attendeeRepository:     props.AttendeeRepository,
		ticketRepository:       props.TicketRepository,
		eventRepository:        props.EventRepository,
		tableRepository:        props.TableRepository,
		companyRepository:      props.CompanyRepository,
		notificationRepository: props.NotificationRepository,
		blobStorage:            props.BlobStorage,
		renderer:               props.Renderer,
		publisher:              props.Publisher,
		tasks:                  props.Tasks,
	}
}

// IssueTicket implements AttendeeUseCase. It mints a collision-checked code,
// renders and uploads the ticket artifact, then creates the attendee and
// ticket in one transaction. A blob uploaded for a transaction that rolls
// back is left as unreferenced garbage.
func (u *attendeeUseCase) IssueTicket(ctx context.Context, req IssueTicketRequest) (IssueTicketResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	e, err := u.eventRepository.FindByID(ctx, req.EventID, nil)
	if err != nil {
		return IssueTicketResponse{}, err
	}

	if e.Status != event.StatusActive {
		return IssueTicketResponse{}, errors.New(http.StatusConflict, status.CONFLICT, fmt.Sprintf("event with id '%d' is no longer active", e.ID))
	}

	c, err := u.companyRepository.FindByID(ctx, e.CompanyID, nil)
	if err != nil {
		return IssueTicketResponse{}, err
	}

	var tableName string
	if req.TableID != nil {
		t, err := u.tableRepository.FindByID(ctx, *req.TableID, nil)
		if err != nil {
			return IssueTicketResponse{}, err
		}
		if t.EventID != e.ID {
			return IssueTicketResponse{}, errors.New(http.StatusBadRequest, status.BAD_REQUEST, fmt.Sprintf("event table with id '%d' does not belong to event '%d'", t.ID, e.ID))
		}
		tableName = t.Name
	}

	code, err := codes.IssueUnique(ctx, func(ctx context.Context, candidate string) (bool, error) {
		return u.ticketRepository.ExistsByEventIDAndCode(ctx, e.ID, candidate)
	}, codes.DefaultMaxAttempts)
	if err != nil {
		if goerrors.Is(err, codes.ErrSpaceExhausted) {
			return IssueTicketResponse{}, errors.New(http.StatusConflict, status.CONFLICT, "an unused ticket code could not be issued for this event")
		}
		return IssueTicketResponse{}, err
	}

	logo := u.companyLogo(ctx, c)

	var artifact bytes.Buffer
	renderErr := u.renderer.Render(&artifact, ticketpdf.RenderInput{
		Code:       code,
		Logo:       logo,
		EventName:  e.Name,
		EventVenue: e.Venue,
		EventDate:  e.DateFrom,
		Items: []ticketpdf.LineItem{
			{Name: req.Name, Table: tableName, Price: req.Price},
		},
	})
	if renderErr != nil {
		if goerrors.Is(renderErr, ticketpdf.ErrBadImage) {
			return IssueTicketResponse{}, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, "the company's logo is not a decodable image")
		}
		u.logger.WithContext(ctx).WithError(renderErr).Error()
		return IssueTicketResponse{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while rendering ticket's artifact")
	}

	artifactPath := fmt.Sprintf("companies/%d/tickets/%d/ticket_%d_%s.pdf", c.ID, e.ID, e.ID, code)
	if _, err := u.blobStorage.Upload(ctx, artifactPath, artifact.Bytes()); err != nil {
		u.logger.WithContext(ctx).WithError(err).Error()
		return IssueTicketResponse{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while storing ticket's artifact")
	}

	now := time.Now()

	tx, err := u.attendeeRepository.BeginTx(ctx)
	if err != nil {
		return IssueTicketResponse{}, err
	}

	a := Attendee{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		EventID:   e.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	attendeeID, err := u.attendeeRepository.Save(ctx, a, tx)
	if err != nil {
		u.attendeeRepository.Rollback(ctx, tx)
		return IssueTicketResponse{}, err
	}
	a.ID = attendeeID

	t := Ticket{
		Code:         code,
		EventID:      e.ID,
		AttendeeID:   attendeeID,
		TableID:      req.TableID,
		Price:        req.Price,
		ArtifactPath: artifactPath,
		Status:       StatusIssued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ticketID, err := u.ticketRepository.Save(ctx, t, tx)
	if err != nil {
		u.attendeeRepository.Rollback(ctx, tx)
		return IssueTicketResponse{}, err
	}
	t.ID = ticketID

	if err := u.attendeeRepository.CommitTx(ctx, tx); err != nil {
		return IssueTicketResponse{}, err
	}

	issuedEvent := TicketIssuedEvent{
		TicketID:     t.ID,
		Code:         t.Code,
		EventID:      t.EventID,
		AttendeeID:   t.AttendeeID,
		ArtifactPath: t.ArtifactPath,
		IssuedAt:     now,
	}
	eventBuff, _ := json.Marshal(issuedEvent)
	u.publisher.Publish(ctx, ticketIssuedTopic, t.Code, nil, eventBuff)

	u.scheduleSend(ctx, t.ID)

	resp := IssueTicketResponse{}
	resp.PopulateFromEntity(a, t, u.blobStorage.URL(t.ArtifactPath))

	return resp, nil
}

func (u *attendeeUseCase) companyLogo(ctx context.Context, c company.Company) []byte {
	if c.LogoPath != nil {
		logo, err := u.blobStorage.Get(ctx, *c.LogoPath)
		if err == nil {
			return logo
		}
		u.logger.WithContext(ctx).WithError(err).Warn()
	}

	logo, err := u.blobStorage.Get(ctx, u.defaultLogoPath)
	if err != nil {
		u.logger.WithContext(ctx).WithError(err).Warn()
		return nil
	}

	return logo
}

func (u *attendeeUseCase) scheduleSend(ctx context.Context, ticketID int64) {
	body, _ := json.Marshal(SendTicketRequest{TicketID: ticketID})

	err := u.tasks.DeferCreateTaskInDuration(sendTicketQueue, gctasks.Request{
		URL:    fmt.Sprintf("%s/tm-ticket/v1/internal/tickets/send", u.baseURL),
		Method: cloudtaskspb.HttpMethod_POST,
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   body,
	}, 10*time.Second)
	if err != nil {
		u.logger.WithContext(ctx).WithError(err).Error()
	}
}

// OnSendTicket implements AttendeeUseCase. It is driven by the deferred task
// queue at least once; a ticket past the issued state is treated as already
// handled.
func (u *attendeeUseCase) OnSendTicket(ctx context.Context, req SendTicketRequest) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	t, err := u.ticketRepository.FindByID(ctx, req.TicketID, nil)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := t.MarkSent(now); err != nil {
		return nil
	}

	a, err := u.attendeeRepository.FindByID(ctx, t.AttendeeID, nil)
	if err != nil {
		return err
	}

	e, err := u.eventRepository.FindByID(ctx, t.EventID, nil)
	if err != nil {
		return err
	}

	artifact, err := u.blobStorage.Get(ctx, t.ArtifactPath)
	if err != nil {
		u.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while fetching ticket's artifact")
	}

	_, err = u.notificationRepository.SendArtifact(ctx, notification.SendArtifactRequest{
		Recipient: a.Email,
		Channel:   notification.ChannelEmail,
		Subject:   fmt.Sprintf("Your ticket for %s", e.Name),
		Body:      fmt.Sprintf("Hi %s, your ticket code for %s is %s. The ticket document is attached.", a.Name, e.Name, t.Code),
		Attachments: []notification.Attachment{
			{
				Filename:    fmt.Sprintf("ticket_%d_%s.pdf", t.EventID, t.Code),
				ContentType: "application/pdf",
				Content:     base64.StdEncoding.EncodeToString(artifact),
			},
		},
	})
	if err != nil {
		return err
	}

	return u.ticketRepository.UpdateSentAt(ctx, t.ID, now, nil)
}

// GetTicketDetails implements AttendeeUseCase.
func (u *attendeeUseCase) GetTicketDetails(ctx context.Context, ticketID int64) (TicketDetailsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	t, err := u.ticketRepository.FindByID(ctx, ticketID, nil)
	if err != nil {
		return TicketDetailsResponse{}, err
	}

	a, err := u.attendeeRepository.FindByID(ctx, t.AttendeeID, nil)
	if err != nil {
		return TicketDetailsResponse{}, err
	}

	resp := TicketDetailsResponse{}
	resp.PopulateFromEntity(a, t, u.blobStorage.URL(t.ArtifactPath))

	return resp, nil
}
