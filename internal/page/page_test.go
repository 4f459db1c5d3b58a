package page

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Request
		wantErr bool
	}{
		{"defaults", "", Request{Page: 1, PerPage: 2}, false},
		{"explicit", "page=3&perpage=5", Request{Page: 3, PerPage: 5}, false},
		{"capped", "perpage=1000", Request{Page: 1, PerPage: 50}, false},
		{"bad page", "page=zero", Request{}, true},
		{"negative perpage", "perpage=-1", Request{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := Parse(q, 2, 50)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSliceOutOfRangeIsEmpty(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Equal(t, []int{3}, Slice(items, Request{Page: 2, PerPage: 2}))
	got := Slice(items, Request{Page: 9, PerPage: 2})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewEnvelopeLinks(t *testing.T) {
	u, _ := url.Parse("http://lemon.test/menu-items?category=Mains&page=2&perpage=2")
	env := NewEnvelope(u, Request{Page: 2, PerPage: 2}, 5, []string{"c", "d"})

	require.NotNil(t, env.Next)
	require.NotNil(t, env.Previous)
	assert.Contains(t, *env.Next, "page=3")
	assert.Contains(t, *env.Previous, "page=1")
	assert.Contains(t, *env.Next, "category=Mains")

	last := NewEnvelope[string](u, Request{Page: 3, PerPage: 2}, 5, nil)
	assert.Nil(t, last.Next)
	assert.NotNil(t, last.Results)
}

func TestHugePageDoesNotOverflow(t *testing.T) {
	q, _ := url.ParseQuery("page=9223372036854775807&perpage=2")
	r, err := Parse(q, 2, 50)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, r.Offset())

	got := Slice([]int{1, 2, 3}, r)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	env := NewEnvelope[int](nil, r, 3, got)
	assert.Equal(t, 3, env.Count)
	assert.Nil(t, env.Next)

	assert.Equal(t, math.MaxInt, Request{Page: 4611686018427387905, PerPage: 2}.Offset())
	assert.Zero(t, Request{}.Offset())
}
