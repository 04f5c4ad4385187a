// Package validate applies `default:` tags and then `validate:` tags to a struct.
package validate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report json/yaml names instead of Go field names
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return val
}

// FieldError is a transport-neutral description of one failed rule.
type FieldError struct {
	Code    string
	Field   string
	Message string
	Params  map[string]interface{}
}

// Errors is returned when one or more rules fail.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Struct validates s without touching defaults.
func Struct(ctx context.Context, s interface{}) error {
	if err := v.StructCtx(ctx, s); err != nil {
		return convert(err)
	}
	return nil
}

// DefaultsAndStruct sets defaults on s (a pointer) and validates it.
func DefaultsAndStruct(ctx context.Context, s interface{}) error {
	if err := defaults.Set(s); err != nil {
		return fmt.Errorf("set defaults: %w", err)
	}
	return Struct(ctx, s)
}

func convert(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}

	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fieldPath(fe),
			Message: message(fe),
			Params:  params(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "ForecastRequest.ai_analysis.data_quality" -> "ai_analysis.data_quality".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func params(fe validator.FieldError) map[string]interface{} {
	p := make(map[string]interface{})
	switch fe.Tag() {
	case "min", "gte":
		p["min"] = fe.Param()
	case "max", "lte":
		p["max"] = fe.Param()
	case "gt", "lt":
		p["value"] = fe.Param()
	case "oneof":
		p["options"] = strings.Split(fe.Param(), " ")
	}
	return p
}
