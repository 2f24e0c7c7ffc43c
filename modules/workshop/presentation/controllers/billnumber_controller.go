package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iota-uz/garage/modules/workshop/services"
	"github.com/iota-uz/garage/pkg/composables"
	"github.com/iota-uz/garage/pkg/httpapi"
	"github.com/iota-uz/garage/pkg/server"
)

// BillNumberController exposes read-only bill number diagnostics for
// operators. It never assigns a number.
type BillNumberController struct {
	service  *services.BillNumberService
	basePath string
}

func NewBillNumberController(service *services.BillNumberService) server.Controller {
	return &BillNumberController{service: service, basePath: "/ops/billno"}
}

func (c *BillNumberController) Key() string {
	return c.basePath
}

func (c *BillNumberController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/{year:[0-9]{4}}", c.Audit).Methods(http.MethodGet)
	router.HandleFunc("/{year:[0-9]{4}}/next", c.Next).Methods(http.MethodGet)
}

type auditResponse struct {
	Prefix    string   `json:"prefix"`
	Partition string   `json:"partition"`
	Total     int      `json:"total"`
	Greatest  string   `json:"greatest,omitempty"`
	Malformed []string `json:"malformed"`
	Next      string   `json:"next"`
}

type nextResponse struct {
	Next string `json:"next"`
}

func (c *BillNumberController) Audit(w http.ResponseWriter, r *http.Request) {
	year, ok := c.year(w, r)
	if !ok {
		return
	}
	report, err := c.service.Audit(r.Context(), year)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	malformed := report.Malformed
	if malformed == nil {
		malformed = []string{}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &auditResponse{
		Prefix:    report.Key.Prefix,
		Partition: report.Key.Partition,
		Total:     report.Total,
		Greatest:  report.Greatest,
		Malformed: malformed,
		Next:      report.Next,
	})
}

func (c *BillNumberController) Next(w http.ResponseWriter, r *http.Request) {
	year, ok := c.year(w, r)
	if !ok {
		return
	}
	next, err := c.service.Peek(r.Context(), year)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &nextResponse{Next: next})
}

func (c *BillNumberController) year(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil || year < 1900 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeBadRequest, "invalid year", nil)
		return 0, false
	}
	return year, true
}

func (c *BillNumberController) fail(w http.ResponseWriter, r *http.Request, err error) {
	composables.UseLogger(r.Context()).WithError(err).Error("bill number diagnostics failed")
	_ = httpapi.WriteFailure(w, err)
}
