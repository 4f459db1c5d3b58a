package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
	"github.com/Jeffzycode/LittleLemonAPI/internal/policy"
	"github.com/Jeffzycode/LittleLemonAPI/internal/tracking"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderIdempotentHit  = "Idempotent-Replayed"

	emptyCartMessage = "Cart is Empty!"
)

type ordersHandler struct{ *handlers }

type placeResp struct {
	Order orders.Order       `json:"order"`
	Items []orders.OrderItem `json:"items"`
}

// stored is what a completed Idempotency-Key maps to.
type stored struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

func (h *ordersHandler) Register(r chi.Router) {
	r.Get("/order", h.list)
	r.Post("/order", h.place)
	r.Patch("/order", h.update)
	r.Get("/order/{id}/status", h.status)
	r.Get("/order-items", h.listItems)
}

func (h *ordersHandler) list(w http.ResponseWriter, r *http.Request) {
	p, err := h.page(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, n, err := h.Orders.ListOrders(r.Context(), auth.FromContext(r.Context()), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paged(w, r, p, n, list)
}

func (h *ordersHandler) place(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	b, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lineID, err := b.Int64("cart_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := r.Header.Get(HeaderIdempotencyKey)
	idem := h.Idempotency != nil && key != "" && id.Authenticated()
	if idem {
		replay, started, err := h.Idempotency.Begin(ctx, id.UserID, key)
		if err != nil {
			// Redis is a shortcut; the store stays authoritative.
			h.Log.WithError(err).Warn("idempotency begin")
			idem = false
		} else if !started {
			h.replay(w, replay)
			return
		}
	}

	var res orders.Result
	if lineID != nil {
		res, err = h.Placer.PlaceLine(ctx, id, *lineID)
	} else {
		res, err = h.Placer.PlaceCart(ctx, id)
	}
	if err != nil {
		if idem {
			fctx, fcancel := finishCtx(ctx)
			defer fcancel()
			if aerr := h.Idempotency.Abort(fctx, id.UserID, key); aerr != nil {
				h.Log.WithError(aerr).Warn("idempotency abort")
			}
		}
		h.fail(w, r, err)
		return
	}

	code, out := http.StatusCreated, any(placeResp{Order: res.Order, Items: res.Items})
	if res.Empty {
		code, out = http.StatusOK, emptyCartMessage
	} else {
		h.track(ctx, res.Order)
	}

	body, err := json.Marshal(out)
	if err != nil {
		h.fail(w, r, apperr.Internal("encode placement", err))
		return
	}
	if idem {
		rec, _ := json.Marshal(stored{Status: code, Body: body})
		fctx, fcancel := finishCtx(ctx)
		defer fcancel()
		if err := h.Idempotency.Complete(fctx, id.UserID, key, rec); err != nil {
			h.Log.WithError(err).Warn("idempotency complete")
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// finishCtx outlives the request so a reserved key is always released or
// filled, even after the client went away or the placement timed out.
func finishCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
}

// replay answers a repeated Idempotency-Key. A nil record means the first
// request with that key has not finished yet.
func (h *ordersHandler) replay(w http.ResponseWriter, rec []byte) {
	var s stored
	if rec == nil || json.Unmarshal(rec, &s) != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"detail": "A request with this Idempotency-Key is still in progress."})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderIdempotentHit, "true")
	w.WriteHeader(s.Status)
	_, _ = w.Write(s.Body)
}

func (h *ordersHandler) update(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req orders.UpdateRequest
	if req.OrderID, err = b.Int64("order_id"); err != nil {
		h.fail(w, r, err)
		return
	}
	st, err := b.Int("status")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if st != nil {
		s := orders.Status(*st)
		req.Status = &s
	}
	req.DeliveryCrew = b.String("delivery_crew")

	o, err := h.Lifecycle.Update(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.track(r.Context(), o)
	writeJSON(w, http.StatusAccepted, o)
}

// status serves the tracked view of one order. Readers with full scope are
// answered from the cache when it has the order.
func (h *ordersHandler) status(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.fail(w, r, apperr.BadRequest("Please Provide a valid Order ID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Tracker != nil && policy.OrderReadScope(id) == policy.ScopeAll {
		st, ok, err := h.Tracker.Lookup(ctx, orderID)
		if err != nil {
			h.Log.WithError(err).WithField("order_id", orderID).Warn("status cache lookup")
		}
		if ok {
			writeJSON(w, http.StatusOK, st)
			return
		}
	}

	o, err := h.Orders.GetOrder(ctx, id, orderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st := tracking.FromOrder(o, time.Now())
	h.record(ctx, st)
	writeJSON(w, http.StatusOK, st)
}

func (h *ordersHandler) listItems(w http.ResponseWriter, r *http.Request) {
	p, err := h.page(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	var f orders.OrderItemFilter
	if v := q.Get("isdelivered"); v != "" {
		s, err := orders.ParseStatus(v)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		f.IsDelivered = &s
	}
	if f.Ordering, err = page.ParseOrdering(q.Get("ordering"), orders.OrderItemOrderFields...); err != nil {
		h.fail(w, r, err)
		return
	}
	items, n, err := h.Orders.ListOrderItems(r.Context(), auth.FromContext(r.Context()), f, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paged(w, r, p, n, items)
}

func (h *ordersHandler) track(ctx context.Context, o orders.Order) {
	h.record(ctx, tracking.FromOrder(o, time.Now()))
}

func (h *ordersHandler) record(ctx context.Context, st tracking.Status) {
	if h.Tracker == nil {
		return
	}
	if err := h.Tracker.Record(ctx, st); err != nil {
		h.Log.WithError(err).WithFields(logrus.Fields{"order_id": st.OrderID}).Warn("status cache write")
	}
}
