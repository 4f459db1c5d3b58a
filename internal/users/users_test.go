package users_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/memstore"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

func setup(t *testing.T) (*users.Service, users.User) {
	t.Helper()
	log, _ := test.NewNullLogger()
	svc := &users.Service{Store: memstore.New(), Log: log}
	u, err := svc.Create(context.Background(), users.NewUser{Username: " mario ", Email: "mario@example.com"})
	require.NoError(t, err)
	return svc, u
}

func TestCreate(t *testing.T) {
	svc, u := setup(t)
	assert.Equal(t, "mario", u.Username)

	_, err := svc.Create(context.Background(), users.NewUser{Username: "x", Email: "not-an-email"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(context.Background(), users.NewUser{Username: "mario"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSetDeliveryCrew(t *testing.T) {
	svc, u := setup(t)
	ctx := context.Background()
	manager := auth.Identity{UserID: 50, Groups: auth.NewGroupSet(auth.GroupManager)}

	got, err := svc.SetDeliveryCrew(ctx, manager, users.AssignRequest{Username: "mario", IsDeliveryCrew: "True"})
	require.NoError(t, err)
	assert.True(t, got.Groups.Has(auth.GroupDeliveryCrew))

	id, err := svc.Identity(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, id.IsDeliveryCrew(), "membership is visible on the next lookup")

	got, err = svc.SetDeliveryCrew(ctx, manager, users.AssignRequest{Username: "mario", IsDeliveryCrew: "False"})
	require.NoError(t, err)
	assert.False(t, got.Groups.Has(auth.GroupDeliveryCrew))

	_, err = svc.SetDeliveryCrew(ctx, manager, users.AssignRequest{Username: "luigi", IsDeliveryCrew: "True"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.SetDeliveryCrew(ctx, manager, users.AssignRequest{IsDeliveryCrew: "True"})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = svc.SetDeliveryCrew(ctx, auth.Identity{UserID: 60}, users.AssignRequest{Username: "mario"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestAssignRequest_Membership(t *testing.T) {
	svc, _ := setup(t)
	admin := auth.Identity{UserID: 1, Superuser: true}

	cases := map[string]bool{
		`{"username":"mario","is_delivery_crew":"False"}`: false,
		`{"username":"mario","is_delivery_crew":false}`:   false,
		`{"username":"mario","is_delivery_crew":0}`:       false,
		`{"username":"mario","is_delivery_crew":"True"}`:  true,
		`{"username":"mario","is_delivery_crew":true}`:    true,
		`{"username":"mario","is_delivery_crew":"yes"}`:   true,
		`{"username":"mario"}`:                            true,
	}
	for body, want := range cases {
		var req users.AssignRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		got, err := svc.SetDeliveryCrew(context.Background(), admin, req)
		require.NoError(t, err)
		assert.Equal(t, want, got.Groups.Has(auth.GroupDeliveryCrew), body)
	}
}

func TestIdentity_Unknown(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Identity(context.Background(), 999)
	assert.ErrorIs(t, err, auth.ErrUnknownUser)
}
