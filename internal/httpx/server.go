package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/logging"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
	"github.com/Jeffzycode/LittleLemonAPI/internal/tracking"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

// Idempotency is backed by Redis in production; nil disables the
// Idempotency-Key header.
type Idempotency interface {
	Begin(ctx context.Context, userID int64, key string) (replay []byte, started bool, err error)
	Complete(ctx context.Context, userID int64, key string, body []byte) error
	Abort(ctx context.Context, userID int64, key string) error
}

// StatusTracker caches the last known status per order; nil disables the
// cache and the status endpoint reads the store.
type StatusTracker interface {
	Record(ctx context.Context, st tracking.Status) error
	Lookup(ctx context.Context, orderID int64) (tracking.Status, bool, error)
}

type Deps struct {
	Menu      *menu.Service
	Cart      *cart.Service
	Placer    *orders.Placer
	Lifecycle *orders.Lifecycle
	Orders    *orders.Reader
	Users     *users.Service

	Idempotency Idempotency
	Tracker     StatusTracker

	// Authenticate attaches the caller identity to the request context.
	Authenticate func(http.Handler) http.Handler
	// Ready reports backing store health for /readyz.
	Ready func(ctx context.Context) error

	Log         logrus.FieldLogger
	PageSize    int
	MaxPageSize int
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				writeText(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		writeText(w, http.StatusOK, "ok")
	})

	h := &handlers{Deps: d}
	r.Group(func(r chi.Router) {
		if d.Authenticate != nil {
			r.Use(d.Authenticate)
		}
		(&catalogHandler{h}).Register(r)
		(&cartHandler{h}).Register(r)
		(&ordersHandler{h}).Register(r)
		(&assignHandler{h}).Register(r)
	})
	return r
}

type handlers struct {
	Deps
}

func (h *handlers) page(r *http.Request) (page.Request, error) {
	return page.Parse(r.URL.Query(), h.PageSize, h.MaxPageSize)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.Log, err)
}

func paged[T any](w http.ResponseWriter, r *http.Request, p page.Request, n int, results []T) {
	writeJSON(w, http.StatusOK, page.NewEnvelope(r.URL, p, n, results))
}
