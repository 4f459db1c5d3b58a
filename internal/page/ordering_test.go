package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrdering(t *testing.T) {
	got, err := ParseOrdering("price, -title,,", "id", "title", "price")
	require.NoError(t, err)
	assert.Equal(t, []OrderField{{Name: "price"}, {Name: "title", Desc: true}}, got)

	got, err = ParseOrdering("  ", "id")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseOrdering("password", "id")
	assert.Error(t, err)
}
