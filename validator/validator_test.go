package validator

import (
	"errors"
	"testing"
	"time"

	apperr "rentspace/errors"

	playground "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stayForm struct {
	CheckIn string `json:"check_in" validate:"required,date"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Guests  int    `json:"guests" validate:"gte=1"`
	Secret  string `json:"-" validate:"required"`
}

func TestConfigureAndFieldErrors(t *testing.T) {
	v := playground.New()
	require.NoError(t, Configure(v))

	err := v.Struct(stayForm{CheckIn: "2025-13-01", Phone: "12", Guests: 0})
	fields := FieldErrors(err)
	assert.Equal(t, "must be a date in YYYY-MM-DD format", fields["check_in"])
	assert.Equal(t, "must be a valid phone number", fields["phone"])
	assert.Equal(t, "must be greater than or equal to 1", fields["guests"])
	assert.Equal(t, "this field is required", fields["Secret"])

	assert.NoError(t, v.Struct(stayForm{CheckIn: "2025-06-01", Phone: "+963933111222", Guests: 2, Secret: "x"}))
	assert.Nil(t, FieldErrors(errors.New("not a validation error")))
}

func TestValidateStay(t *testing.T) {
	today := time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC)

	in, out, err := ValidateStay("2025-05-20", "2025-05-21", today)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), in)
	assert.Equal(t, time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), out)

	tests := []struct {
		name     string
		in, out  string
		wantCode apperr.ErrorCode
	}{
		{"bad check in", "20-05-2025", "2025-05-21", apperr.ErrCodeInvalidFormat},
		{"bad check out", "2025-05-21", "tomorrow", apperr.ErrCodeInvalidFormat},
		{"past", "2025-05-19", "2025-05-21", apperr.ErrCodeValidation},
		{"same day", "2025-05-21", "2025-05-21", apperr.ErrCodeValidation},
		{"reversed", "2025-05-23", "2025-05-21", apperr.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidateStay(tt.in, tt.out, today)
			assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestSimpleValidators(t *testing.T) {
	assert.NoError(t, ValidateRating(1))
	assert.NoError(t, ValidateRating(5))
	assert.Error(t, ValidateRating(0))
	assert.Error(t, ValidateRating(6))

	assert.NoError(t, ValidatePrice(100000))
	assert.Error(t, ValidatePrice(0))
	assert.Error(t, ValidatePrice(100000.5))

	assert.NoError(t, ValidatePhone("0933111222"))
	assert.Error(t, ValidatePhone("0933-111"))

	assert.NoError(t, ValidatePassword("longenough"))
	assert.Error(t, ValidatePassword("short"))

	assert.NoError(t, ValidateRole("tenant"))
	assert.NoError(t, ValidateRole("landlord"))
	assert.Error(t, ValidateRole("admin"))
}
