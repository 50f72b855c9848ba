package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/banking-ledger/internal/commons"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/api-sage/banking-ledger/internal/logger"
	"github.com/api-sage/banking-ledger/internal/usecase/service_interfaces"
	"github.com/gorilla/mux"
)

type TransferService interface {
	CreateTransfer(ctx context.Context, input service_interfaces.CreateTransferInput) (domain.Transfer, error)
	GetTransfer(ctx context.Context, id string) (domain.Transfer, error)
	ListAccountHistory(ctx context.Context, accountID string, cursor string, limit int) ([]domain.Transfer, string, error)
}

type TransferController struct {
	service TransferService
}

func NewTransferController(service TransferService) *TransferController {
	return &TransferController{service: service}
}

func (c *TransferController) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/transfers", c.create).Methods(http.MethodPost)
	r.HandleFunc("/transfers/{id}", c.get).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id}/transfers", c.history).Methods(http.MethodGet)
}

func (c *TransferController) create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/transfers"

	var req models.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransferResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, endpoint, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		response := commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, endpoint, http.StatusBadRequest, response, start)
		return
	}

	transfer, err := c.service.CreateTransfer(r.Context(), req.ToInput())
	if err != nil {
		logError(r, err, logger.Fields{"idempotencyKey": req.IdempotencyKey})
		status := statusForError(err)

		// A claimed transfer that ended FAILED still has a terminal record
		// worth returning alongside the error.
		if transfer.ID != "" && transfer.Status.IsTerminal() {
			response := commons.ErrorResponse[models.TransferResponse](err.Error())
			data := models.NewTransferResponse(transfer)
			response.Data = &data
			writeJSON(w, status, response)
			logResponse(r, endpoint, status, response, start)
			return
		}

		response := commons.ErrorResponse[models.TransferResponse](err.Error())
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	status := http.StatusCreated
	response := commons.SuccessResponse("Transfer processed", models.NewTransferResponse(transfer))
	writeJSON(w, status, response)
	logResponse(r, endpoint, status, response, start)
}

func (c *TransferController) get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/transfers/{id}"
	logRequest(r, nil)

	transfer, err := c.service.GetTransfer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[models.TransferResponse]("Transfer not found")
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.SuccessResponse("Transfer retrieved", models.NewTransferResponse(transfer))
	writeJSON(w, http.StatusOK, response)
	logResponse(r, endpoint, http.StatusOK, response, start)
}

func (c *TransferController) history(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/accounts/{id}/transfers"
	logRequest(r, nil)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response := commons.ErrorResponse[[]models.TransferResponse]("validation failed", "limit must be an integer")
			writeJSON(w, http.StatusBadRequest, response)
			logResponse(r, endpoint, http.StatusBadRequest, response, start)
			return
		}
		limit = parsed
	}

	transfers, nextCursor, err := c.service.ListAccountHistory(
		r.Context(),
		mux.Vars(r)["id"],
		r.URL.Query().Get("cursor"),
		limit,
	)
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[[]models.TransferResponse](err.Error())
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.PagedResponse("Transfer history retrieved", models.NewTransferResponses(transfers), nextCursor)
	writeJSON(w, http.StatusOK, response)
	logResponse(r, endpoint, http.StatusOK, response, start)
}
