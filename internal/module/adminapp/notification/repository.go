package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

const (
	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"
)

type NotificationRepository interface {
	SendArtifact(ctx context.Context, req SendArtifactRequest) (SendResponse, error)
	SendScanConfirmation(ctx context.Context, req SendScanConfirmationRequest) (SendResponse, error)
}

type notificationRepository struct {
	baseURL string
	apiKey  string
	logger  *logrus.Logger
	hc      *http.Client
}

func NewNotificationRepository(baseURL string, apiKey string, logger *logrus.Logger, hc *http.Client) NotificationRepository {
	return &notificationRepository{
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
		hc:      hc,
	}
}

// SendArtifact implements NotificationRepository.
func (r *notificationRepository) SendArtifact(ctx context.Context, req SendArtifactRequest) (SendResponse, error) {
	return r.send(ctx, fmt.Sprintf("%s/v1/messages/artifact", r.baseURL), req)
}

// SendScanConfirmation implements NotificationRepository.
func (r *notificationRepository) SendScanConfirmation(ctx context.Context, req SendScanConfirmationRequest) (SendResponse, error) {
	return r.send(ctx, fmt.Sprintf("%s/v1/messages", r.baseURL), req)
}

func (r *notificationRepository) send(ctx context.Context, url string, payload interface{}) (SendResponse, error) {
	reqBuff, _ := json.Marshal(payload)
	body := bytes.NewBuffer(reqBuff)

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return SendResponse{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while sending notification")
	}

	hr.Header.Add("Content-Type", "application/json")
	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("Authorization", fmt.Sprintf("Bearer %s", r.apiKey))

	hresp, err := r.hc.Do(hr)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return SendResponse{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while sending notification")
	}

	defer hresp.Body.Close()

	respBody, err := io.ReadAll(hresp.Body)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return SendResponse{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while sending notification")
	}

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		err := fmt.Errorf(string(respBody))
		r.logger.WithContext(ctx).WithError(err).Error()
		return SendResponse{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while sending notification")
	}

	var resp SendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return SendResponse{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while sending notification")
	}

	return resp, nil
}
