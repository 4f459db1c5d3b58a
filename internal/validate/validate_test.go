package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
)

type payload struct {
	Title    string `json:"title" validate:"required,max=5"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(payload{Title: "Soup", Quantity: 1}, nil))

	err := Struct(payload{Title: "", Quantity: 0}, map[string]string{"price": "must be positive"})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "title")
	assert.Contains(t, ae.Fields, "quantity")
	assert.Equal(t, "must be positive", ae.Fields["price"])
}
