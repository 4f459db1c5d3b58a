package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
)

const maxBody = 1 << 20

// body is a request payload read from either a JSON object or a form. Field
// getters return nil for absent or null fields.
type body map[string]any

func readBody(r *http.Request) (body, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBody)
		if err := r.ParseMultipartForm(maxBody); err != nil && err != http.ErrNotMultipart {
			return nil, apperr.BadRequest("invalid form body")
		}
		b := body{}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				b[k] = vs[0]
			}
		}
		return b, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, apperr.BadRequest("unreadable body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var b body
	if err := dec.Decode(&b); err != nil {
		return nil, apperr.BadRequest("invalid json")
	}
	return b, nil
}

func (b body) raw(name string) (string, bool) {
	v, ok := b[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

func (b body) String(name string) *string {
	s, ok := b.raw(name)
	if !ok {
		return nil
	}
	return &s
}

// Int64 parses an identifier. A present but malformed value is a field error.
func (b body) Int64(name string) (*int64, error) {
	s, ok := b.raw(name)
	if !ok || s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, apperr.Validation(map[string]string{name: "A valid integer is required."})
	}
	return &n, nil
}

func (b body) Int(name string) (*int, error) {
	n, err := b.Int64(name)
	if n == nil || err != nil {
		return nil, err
	}
	v := int(*n)
	return &v, nil
}

func (b body) Bool(name string) (*bool, error) {
	s, ok := b.raw(name)
	if !ok || s == "" {
		return nil, nil
	}
	v, err := parseBool(s)
	if err != nil {
		return nil, apperr.Validation(map[string]string{name: "Must be a valid boolean."})
	}
	return &v, nil
}

func (b body) Decimal(name string) (*decimal.Decimal, error) {
	s, ok := b.raw(name)
	if !ok || s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperr.Validation(map[string]string{name: "A valid number is required."})
	}
	return &d, nil
}

// Any returns the field as decoded, for values whose type carries meaning.
func (b body) Any(name string) any {
	return b[name]
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "on":
		return true, nil
	case "0", "false", "f", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
