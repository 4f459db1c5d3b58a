package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

type assignHandler struct{ *handlers }

func (h *assignHandler) Register(r chi.Router) {
	r.Patch("/assign", h.assign)
}

func (h *assignHandler) assign(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req := users.AssignRequest{IsDeliveryCrew: b.Any("is_delivery_crew")}
	if s := b.String("username"); s != nil {
		req.Username = *s
	}
	u, err := h.Users.SetDeliveryCrew(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, u.Public())
}
