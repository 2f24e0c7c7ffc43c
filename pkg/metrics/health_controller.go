package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/garage/pkg/httpapi"
	"github.com/iota-uz/garage/pkg/server"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	path    string
	pinger  Pinger
	timeout time.Duration
}

func NewHealthController(path string, pinger Pinger) server.Controller {
	if path == "" {
		path = "/health"
	}
	return &HealthController{path: path, pinger: pinger, timeout: 2 * time.Second}
}

func (c *HealthController) Key() string {
	return c.path
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(c.path, c.Health).Methods(http.MethodGet)
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if c.pinger == nil {
		resp.Database = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		defer cancel()
		if err := c.pinger.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unavailable"
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	_ = httpapi.WriteJSON(w, status, &resp)
}
