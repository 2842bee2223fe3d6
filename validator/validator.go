package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"rentspace/constants"
	apperr "rentspace/errors"
	"rentspace/utils"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// RegisterBindings installs the custom tags used by dto request structs on
// gin's validator and makes field errors report json names.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return Configure(v)
}

// Configure registers custom tags on v.
func Configure(v *playground.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("date", func(fl playground.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("phone", func(fl playground.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// FieldErrors flattens validator errors into field -> message. It returns
// nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "phone":
		return "must be a valid phone number"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}

// ValidateStay parses a stay and checks check_in >= today and
// check_out > check_in.
func ValidateStay(checkIn, checkOut string, today time.Time) (time.Time, time.Time, error) {
	in, err := utils.ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.NewAppError(apperr.ErrCodeInvalidFormat, "check_in must be a date in YYYY-MM-DD format", err)
	}
	out, err := utils.ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.NewAppError(apperr.ErrCodeInvalidFormat, "check_out must be a date in YYYY-MM-DD format", err)
	}
	if in.Before(utils.Day(today)) {
		return time.Time{}, time.Time{}, apperr.Validation("check_in cannot be in the past")
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, apperr.Validation("check_out must be after check_in")
	}
	return in, out, nil
}

// ValidatePrice checks a nightly price in USD.
func ValidatePrice(usd float64) error {
	if usd <= 0 || usd > constants.MaxPricePerNightUSD {
		return apperr.Validation(fmt.Sprintf("price_per_night must be greater than 0 and at most %d", constants.MaxPricePerNightUSD))
	}
	return nil
}

// ValidateRating checks a 1..5 star rating.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperr.Validation("rating must be between 1 and 5")
	}
	return nil
}

// ValidatePhone checks the phone format.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return apperr.Validation("phone number is invalid")
	}
	return nil
}

// ValidatePassword enforces the minimum length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}
	return nil
}

// ValidateRole restricts self-registration to tenants and landlords.
func ValidateRole(role string) error {
	if role != constants.RoleTenant && role != constants.RoleLandlord {
		return apperr.Validation("role must be tenant or landlord")
	}
	return nil
}
