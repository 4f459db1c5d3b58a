package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
)

type cartHandler struct{ *handlers }

func (h *cartHandler) Register(r chi.Router) {
	r.Get("/cart", h.list)
	r.Post("/cart", h.add)
	r.Patch("/cart", h.updateQuantity)
	r.Delete("/cart", h.remove)
}

func (h *cartHandler) list(w http.ResponseWriter, r *http.Request) {
	p, err := h.page(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lines, n, err := h.Cart.List(r.Context(), auth.FromContext(r.Context()), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paged(w, r, p, n, lines)
}

func (h *cartHandler) add(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in cart.AddRequest
	item, err := b.Int64("menuitem_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if item != nil {
		in.MenuItemID = *item
	}
	qty, err := b.Int("quantity")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if qty != nil {
		in.Quantity = *qty
	}

	line, err := h.Cart.Add(r.Context(), auth.FromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *cartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
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
	qty, err := b.Int("new_quantity")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	line, err := h.Cart.UpdateQuantity(r.Context(), auth.FromContext(r.Context()), lineID, qty)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, line)
}

func (h *cartHandler) remove(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Cart.Remove(r.Context(), auth.FromContext(r.Context()), lineID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": *lineID, "deleted": true})
}
