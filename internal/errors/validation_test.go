package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())

	one := ValidationErrors{{Field: "title", Message: "is required"}}
	assert.Equal(t, "validation failed: title is required", one.Error())

	two := ValidationErrors{
		{Field: "title", Message: "is required"},
		{Field: "points", Message: "must be a number"},
	}
	assert.Equal(t, "validation failed: 2 field errors", two.Error())
}

func TestToValidationErrors(t *testing.T) {
	type payload struct {
		Title  string `validate:"required,max=200"`
		Points int    `validate:"gte=0"`
	}

	validate := validator.New()
	err := validate.Struct(payload{Points: -1})
	require.Error(t, err)

	verrs := ToValidationErrors(err)
	require.Len(t, verrs, 2)
	assert.Equal(t, "Title", verrs[0].Field)
	assert.Equal(t, "is required", verrs[0].Message)
	assert.Equal(t, "required", verrs[0].Rule)
	assert.Equal(t, "must be at least 0", verrs[1].Message)
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	verrs := ToValidationErrors(assert.AnError)
	assert.Empty(t, verrs)
}
