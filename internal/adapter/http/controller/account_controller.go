package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/banking-ledger/internal/commons"
	"github.com/api-sage/banking-ledger/internal/domain"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type AccountService interface {
	OpenAccount(ctx context.Context, customerID string, initialDeposit decimal.Decimal) (domain.Account, error)
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	ListCustomerAccounts(ctx context.Context, customerID string) ([]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/accounts", c.open).Methods(http.MethodPost)
	r.HandleFunc("/accounts", c.list).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id}", c.get).Methods(http.MethodGet)
	r.HandleFunc("/customers/{id}/accounts", c.listByCustomer).Methods(http.MethodGet)
}

func (c *AccountController) open(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/accounts"

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, endpoint, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		response := commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, endpoint, http.StatusBadRequest, response, start)
		return
	}

	account, err := c.service.OpenAccount(r.Context(), req.CustomerID, req.InitialDeposit)
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[models.AccountResponse](err.Error())
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.SuccessResponse("Account opened", models.NewAccountResponse(account))
	writeJSON(w, http.StatusCreated, response)
	logResponse(r, endpoint, http.StatusCreated, response, start)
}

func (c *AccountController) get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/accounts/{id}"
	logRequest(r, nil)

	account, err := c.service.GetAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[models.AccountResponse]("Account not found")
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.SuccessResponse("Account retrieved", models.NewAccountResponse(account))
	writeJSON(w, http.StatusOK, response)
	logResponse(r, endpoint, http.StatusOK, response, start)
}

func (c *AccountController) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/accounts"
	logRequest(r, nil)

	accounts, err := c.service.ListAccounts(r.Context())
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[[]models.AccountResponse](err.Error())
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.SuccessResponse("Accounts retrieved", models.NewAccountResponses(accounts))
	writeJSON(w, http.StatusOK, response)
	logResponse(r, endpoint, http.StatusOK, response, start)
}

func (c *AccountController) listByCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/customers/{id}/accounts"
	logRequest(r, nil)

	accounts, err := c.service.ListCustomerAccounts(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[[]models.AccountResponse](err.Error())
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.SuccessResponse("Accounts retrieved", models.NewAccountResponses(accounts))
	writeJSON(w, http.StatusOK, response)
	logResponse(r, endpoint, http.StatusOK, response, start)
}
