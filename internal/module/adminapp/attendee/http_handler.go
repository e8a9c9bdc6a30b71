package attendee

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
	AttendeeUseCase   AttendeeUseCase
}

func InitHTTPHandler(router *mux.Router, adminSession *middleware.StaffSession, validate *validator.Validate, attendeeUsecase AttendeeUseCase) {
	handler := &HTTPHandler{
		Validate:        validate,
		AttendeeUseCase: attendeeUsecase,
	}

	router.HandleFunc("/tm-ticket/v1/adminapp/tickets", publicMiddleware.SetRouteChain(handler.IssueTicket, adminSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/tm-ticket/v1/adminapp/tickets/{ticketID}", publicMiddleware.SetRouteChain(handler.GetTicketDetails, adminSession.Verify)).Methods(http.MethodGet)

	// Invoked by the deferred task queue, not by interactive clients.
	router.HandleFunc("/tm-ticket/v1/internal/tickets/send", publicMiddleware.SetRouteChain(handler.SendTicket)).Methods(http.MethodPost)
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

func (handler HTTPHandler) IssueTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := IssueTicketRequest{}
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

	resp, err := handler.AttendeeUseCase.IssueTicket(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
			Data:    ae.Data,
		})

		return
	}

	response.JSON(w, http.StatusCreated, response.RESTEnvelope{
		Status:  status.CREATED,
		Message: "ticket has been successfully issued",
		Data:    resp,
		Meta:    nil,
	})
}

func (handler HTTPHandler) GetTicketDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticketID, err := strconv.ParseInt(mux.Vars(r)["ticketID"], 10, 64)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "invalid 'ticketID'",
		})

		return
	}

	resp, err := handler.AttendeeUseCase.GetTicketDetails(ctx, ticketID)
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
		Message: "ticket details",
		Data:    resp,
	})
}

func (handler HTTPHandler) SendTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := SendTicketRequest{}
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

	if err := handler.AttendeeUseCase.OnSendTicket(ctx, req); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "ticket has been sent",
	})
}
