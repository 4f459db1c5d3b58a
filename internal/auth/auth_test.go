package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory map[int64]Identity

func (d fakeDirectory) Identity(_ context.Context, id int64) (Identity, error) {
	if u, ok := d[id]; ok {
		return u, nil
	}
	return Identity{}, ErrUnknownUser
}

func TestGroupSet(t *testing.T) {
	s := NewGroupSet(GroupManager)
	assert.True(t, s.Has(GroupManager))
	assert.False(t, s.Has(GroupDeliveryCrew))

	s = s.Add(GroupDeliveryCrew).Remove(GroupManager)
	assert.Equal(t, []string{"Delivery Crew"}, s.Names())
	assert.False(t, s.Has(0))
}

func TestParseGroup(t *testing.T) {
	g, err := ParseGroup(" delivery crew ")
	require.NoError(t, err)
	assert.Equal(t, GroupDeliveryCrew, g)

	_, err = ParseGroup("chef")
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestAnonymousIdentityHasNoGroups(t *testing.T) {
	id := Identity{Groups: NewGroupSet(GroupManager)}
	assert.False(t, id.Authenticated())
	assert.False(t, id.IsManager())
}

func TestIssuerRoundTrip(t *testing.T) {
	iss := NewIssuer("secret")
	tok, err := iss.Mint(42, time.Hour)
	require.NoError(t, err)

	id, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = NewIssuer("other").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret")
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := iss.Mint(7, time.Hour)
	require.NoError(t, err)

	_, err = NewIssuer("secret").Verify(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("secret")
	dir := fakeDirectory{5: {UserID: 5, Username: "mario", Groups: NewGroupSet(GroupDeliveryCrew)}}
	log, _ := test.NewNullLogger()

	var seen Identity
	h := Middleware(iss, dir, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	valid, _ := iss.Mint(5, time.Hour)
	unknown, _ := iss.Mint(9, time.Hour)

	tests := []struct {
		name   string
		header string
		status int
		want   Identity
	}{
		{"anonymous", "", http.StatusOK, Identity{}},
		{"valid token", "Bearer " + valid, http.StatusOK, dir[5]},
		{"bad format", "Token " + valid, http.StatusUnauthorized, Identity{}},
		{"bad token", "Bearer nope", http.StatusUnauthorized, Identity{}},
		{"unknown user", "Bearer " + unknown, http.StatusUnauthorized, Identity{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = Identity{}
			req := httptest.NewRequest(http.MethodGet, "/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, seen)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="api"`, rec.Header().Get("WWW-Authenticate"))
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["detail"])
			}
		})
	}
}

type failingDirectory struct{}

func (failingDirectory) Identity(context.Context, int64) (Identity, error) {
	return Identity{}, errors.New("db down")
}

func TestMiddleware_LookupFailureIsJSON(t *testing.T) {
	iss := NewIssuer("secret")
	log, hook := test.NewNullLogger()
	h := Middleware(iss, failingDirectory{}, log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	tok, _ := iss.Mint(5, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"internal error"}`, rec.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "identity lookup failed", hook.LastEntry().Message)
}
