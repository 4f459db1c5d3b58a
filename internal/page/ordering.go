package page

import (
	"strings"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
)

// OrderField is one entry of an `ordering` query parameter. A leading "-"
// selects descending order.
type OrderField struct {
	Name string
	Desc bool
}

// ParseOrdering splits a comma-separated field list and rejects names not in
// allowed.
func ParseOrdering(raw string, allowed ...string) ([]OrderField, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	var out []OrderField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := OrderField{Name: part}
		if strings.HasPrefix(part, "-") {
			f = OrderField{Name: part[1:], Desc: true}
		}
		if !ok[f.Name] {
			return nil, apperr.BadRequest("cannot order by " + f.Name)
		}
		out = append(out, f)
	}
	return out, nil
}
