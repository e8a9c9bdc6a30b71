package ticket

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
	TicketUseCase     TicketUseCase
}

func InitHTTPHandler(router *mux.Router, gateSession *middleware.StaffSession, validate *validator.Validate, ticketUsecase TicketUseCase) {
	handler := &HTTPHandler{
		Validate:      validate,
		TicketUseCase: ticketUsecase,
	}

	router.HandleFunc("/tm-ticket/v1/gateapp/tickets/scan", publicMiddleware.SetRouteChain(handler.ScanTicket, gateSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/tm-ticket/v1/gateapp/events/{eventID}/tickets/{code}", publicMiddleware.SetRouteChain(handler.GetTicketDetails, gateSession.Verify)).Methods(http.MethodGet)
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

func (handler HTTPHandler) ScanTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := ScanTicketRequest{}
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

	resp, err := handler.TicketUseCase.ScanTicket(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
			Data:    ae.Data,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "ticket has been successfully scanned",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetTicketDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)

	eventID, err := strconv.ParseInt(vars["eventID"], 10, 64)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "invalid 'eventID'",
		})

		return
	}

	resp, err := handler.TicketUseCase.GetTicketDetails(ctx, eventID, vars["code"])
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
