package validate_test

import (
	"testing"

	"github.com/Astemirdum/bookhub/pkg/validate"
	"github.com/stretchr/testify/require"
)

func TestCustomValidator_Validate(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Quantity int    `validate:"gte=0"`
	}
	v := validate.NewCustomValidator()

	require.NoError(t, v.Validate(req{Email: "ann@example.com", Quantity: 2}))
	require.Error(t, v.Validate(req{Email: "not-an-email"}))
	require.Error(t, v.Validate(req{Email: "ann@example.com", Quantity: -1}))
}
