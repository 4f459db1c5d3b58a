package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

type catalogHandler struct{ *handlers }

func (h *catalogHandler) Register(r chi.Router) {
	r.Get("/menu-items", h.listMenuItems)
	r.Post("/menu-items", h.createMenuItem)
	r.Patch("/menu-items", h.setFeatured)
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
}

func (h *catalogHandler) listMenuItems(w http.ResponseWriter, r *http.Request) {
	p, err := h.page(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	f := menu.MenuFilter{Category: q.Get("category")}
	if v := q.Get("to_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			h.fail(w, r, apperr.BadRequest("to_price must be a number"))
			return
		}
		f.ToPrice = &d
	}
	if v := q.Get("featured"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			h.fail(w, r, apperr.BadRequest("featured must be true or false"))
			return
		}
		f.Featured = &b
	}
	if f.Ordering, err = page.ParseOrdering(q.Get("ordering"), menu.MenuOrderFields...); err != nil {
		h.fail(w, r, err)
		return
	}

	items, n, err := h.Menu.ListMenuItems(r.Context(), auth.FromContext(r.Context()), f, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paged(w, r, p, n, items)
}

func (h *catalogHandler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in menu.NewMenuItem
	if s := b.String("title"); s != nil {
		in.Title = *s
	}
	price, err := b.Decimal("price")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if price != nil {
		in.Price = *price
	}
	featured, err := b.Bool("featured")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in.Featured = featured != nil && *featured
	cat, err := b.Int64("category_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if cat != nil {
		in.CategoryID = *cat
	}

	item, err := h.Menu.CreateMenuItem(r.Context(), auth.FromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *catalogHandler) setFeatured(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	b, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemID, err := b.Int64("id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	featured, err := b.Bool("featured")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.Menu.SetFeatured(r.Context(), id, itemID, featured)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, item)
}

func (h *catalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	p, err := h.page(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	f := menu.CategoryFilter{Title: r.URL.Query().Get("category")}
	cats, n, err := h.Menu.ListCategories(r.Context(), auth.FromContext(r.Context()), f, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paged(w, r, p, n, cats)
}

func (h *catalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in menu.NewCategory
	if s := b.String("title"); s != nil {
		in.Title = *s
	}
	c, err := h.Menu.CreateCategory(r.Context(), auth.FromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
