// AngelaMos | 2026
// validation_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationSample struct {
	FullName string `json:"full_name" validate:"required,min=2,max=50,alphaname"`
	Phone    string `json:"phone" validate:"required,uzphone"`
	Password string `json:"password" validate:"required,min=8,alnumpass"`
	Role     string `json:"role" validate:"omitempty,role"`
}

func TestNewValidator(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		input   validationSample
		invalid []string
	}{
		{
			name: "valid",
			input: validationSample{
				FullName: "John Doe",
				Phone:    "+998901234567",
				Password: "Secret123",
				Role:     "Seller",
			},
		},
		{
			name: "bad phone prefix",
			input: validationSample{
				FullName: "John Doe",
				Phone:    "+799012345678",
				Password: "Secret123",
			},
			invalid: []string{"phone"},
		},
		{
			name: "phone too short",
			input: validationSample{
				FullName: "John Doe",
				Phone:    "+99890123456",
				Password: "Secret123",
			},
			invalid: []string{"phone"},
		},
		{
			name: "name with digits and double space",
			input: validationSample{
				FullName: "John  D0e",
				Phone:    "+998901234567",
				Password: "Secret123",
			},
			invalid: []string{"full_name"},
		},
		{
			name: "password with symbols and unknown role",
			input: validationSample{
				FullName: "John",
				Phone:    "+998901234567",
				Password: "Secret12!",
				Role:     "Owner",
			},
			invalid: []string{"password", "role"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if len(tt.invalid) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			details := FormatValidationError(err)
			assert.Len(t, details, len(tt.invalid))
			for _, field := range tt.invalid {
				assert.Contains(t, details, field)
			}
		})
	}
}

func TestFormatValidationErrorMessages(t *testing.T) {
	v := NewValidator()

	err := v.Struct(validationSample{Phone: "123", Password: "Secret123"})
	require.Error(t, err)

	details := FormatValidationError(err)
	assert.Equal(t, "is required", details["full_name"])
	assert.Equal(t, "must be in the format +998XXXXXXXXX", details["phone"])
}
