package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortCodeTag(t *testing.T) {
	validate := New()

	tests := []struct {
		code  string
		valid bool
	}{
		{code: "abc", valid: true},
		{code: "my-link-10", valid: true},
		{code: "ABC123", valid: true},
		{code: "ab", valid: false},
		{code: "abcdefghijk", valid: false},
		{code: "abc_123", valid: false},
		{code: "abc 12", valid: false},
		{code: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := validate.Var(tt.code, ShortCodeTag)

			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestJSONFieldNames(t *testing.T) {
	validate := New()

	req := struct {
		OriginalURL string `json:"originalUrl" validate:"required"`
	}{}

	err := validate.Struct(req)
	require.Error(t, err)

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "originalUrl", errs[0].Field())
}
