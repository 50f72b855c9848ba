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
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, name string) (domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

type CustomerController struct {
	service CustomerService
}

func NewCustomerController(service CustomerService) *CustomerController {
	return &CustomerController{service: service}
}

func (c *CustomerController) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/customers", c.create).Methods(http.MethodPost)
	r.HandleFunc("/customers", c.list).Methods(http.MethodGet)
	r.HandleFunc("/customers/{id}", c.get).Methods(http.MethodGet)
}

func (c *CustomerController) create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/customers"

	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.CustomerResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, endpoint, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		response := commons.ErrorResponse[models.CustomerResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, endpoint, http.StatusBadRequest, response, start)
		return
	}

	customer, err := c.service.CreateCustomer(r.Context(), req.Name)
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[models.CustomerResponse](err.Error())
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.SuccessResponse("Customer created", models.NewCustomerResponse(customer))
	writeJSON(w, http.StatusCreated, response)
	logResponse(r, endpoint, http.StatusCreated, response, start)
}

func (c *CustomerController) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/customers"
	logRequest(r, nil)

	customers, err := c.service.ListCustomers(r.Context())
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[[]models.CustomerResponse](err.Error())
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.SuccessResponse("Customers retrieved", models.NewCustomerResponses(customers))
	writeJSON(w, http.StatusOK, response)
	logResponse(r, endpoint, http.StatusOK, response, start)
}

func (c *CustomerController) get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/customers/{id}"
	logRequest(r, nil)

	customer, err := c.service.GetCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		logError(r, err, nil)
		status := statusForError(err)
		response := commons.ErrorResponse[models.CustomerResponse]("Customer not found")
		writeJSON(w, status, response)
		logResponse(r, endpoint, status, response, start)
		return
	}

	response := commons.SuccessResponse("Customer retrieved", models.NewCustomerResponse(customer))
	writeJSON(w, http.StatusOK, response)
	logResponse(r, endpoint, http.StatusOK, response, start)
}
