package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeArgs turns a raw argument payload into T. A payload that is not a JSON
// object is a schema violation (Go error); a well-formed payload that fails field
// validation is reported as argErr so it can go back to the model.
func decodeArgs[T any](raw string) (args T, argErr string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return args, fmt.Sprintf("argument %s must be a %s", typeErr.Field, typeErr.Type), nil
		}
		return args, "", fmt.Errorf("%w: arguments are not a JSON object: %v", contractx.ErrSchemaViolation, err)
	}

	if err := validate.Struct(args); err != nil {
		return args, describeValidation(err), nil
	}
	return args, "", nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "datetime":
			parts = append(parts, field+" must be a date in YYYY-MM-DD format")
		case "email":
			parts = append(parts, field+" must be a valid email address")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// stayDates parses a validated check-in/check-out pair.
func stayDates(checkIn, checkOut string) (hotel.Date, hotel.Date, string) {
	in, err := hotel.ParseDate(checkIn)
	if err != nil {
		return hotel.Date{}, hotel.Date{}, "check_in " + err.Error()
	}
	out, err := hotel.ParseDate(checkOut)
	if err != nil {
		return hotel.Date{}, hotel.Date{}, "check_out " + err.Error()
	}
	if !out.After(in) {
		return hotel.Date{}, hotel.Date{}, "check_out must be after check_in"
	}
	return in, out, ""
}
