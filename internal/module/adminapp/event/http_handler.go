package event

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/tsel-ticketmaster/tm-ticket/internal/pkg/middleware"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	publicMiddleware "github.com/tsel-ticketmaster/tm-ticket/pkg/middleware"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/response"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

type HTTPHandler struct {
	SessionMiddleware *middleware.StaffSession
	Validate          *validator.Validate
	EventUseCase      EventUseCase
}

func InitHTTPHandler(router *mux.Router, adminSession *middleware.StaffSession, validate *validator.Validate, eventUsecase EventUseCase) {
	handler := &HTTPHandler{
		Validate:     validate,
		EventUseCase: eventUsecase,
	}

	router.HandleFunc("/tm-ticket/v1/adminapp/events", publicMiddleware.SetRouteChain(handler.CreateEvent, adminSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/tm-ticket/v1/adminapp/events", publicMiddleware.SetRouteChain(handler.GetManyEvent, adminSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/tm-ticket/v1/adminapp/events/{eventID}", publicMiddleware.SetRouteChain(handler.GetEventDetails, adminSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/tm-ticket/v1/adminapp/events/{eventID}/tables", publicMiddleware.SetRouteChain(handler.GetEventTables, adminSession.Verify)).Methods(http.MethodGet)
}

func (handler HTTPHandler) validate(ctx context.Context, payload interface{}) error {
	err := handler.Validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	errorFields := err.(validator.ValidationErrors)

	errMessages := make([]string, len(errorFields))

	for k, errorField := range errorFields {
		errMessages[k] = fmt.Sprintf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())
	}

	return fmt.Errorf(strings.Join(errMessages, ", "))
}

func (handler HTTPHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := CreateEventRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.EventUseCase.CreateEvent(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusCreated, response.RESTEnvelope{
		Status:  status.CREATED,
		Message: "event has been successfully created",
		Data:    resp,
		Meta:    nil,
	})
}

func (handler HTTPHandler) GetManyEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "invalid 'company_id'",
		})

		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size < 1 {
		size = 10
	}

	resp, err := handler.EventUseCase.GetManyEvent(ctx, GetManyEventRequest{
		CompanyID: companyID,
		Page:      page,
		Size:      size,
	})
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "list of events",
		Data:    resp.Events,
		Meta: map[string]interface{}{
			"page":  page,
			"size":  size,
			"total": resp.Total,
		},
	})
}

func (handler HTTPHandler) GetEventDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := strconv.ParseInt(mux.Vars(r)["eventID"], 10, 64)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "invalid 'eventID'",
		})

		return
	}

	resp, err := handler.EventUseCase.GetEventDetails(ctx, eventID)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "event details",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetEventTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := strconv.ParseInt(mux.Vars(r)["eventID"], 10, 64)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "invalid 'eventID'",
		})

		return
	}

	resp, err := handler.EventUseCase.GetEventTables(ctx, eventID)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "list of event tables",
		Data:    resp,
	})
}
