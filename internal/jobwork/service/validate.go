package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
)

// inputValidator checks the binding tags of service inputs for callers that
// do not come through gin (seeding, CSV import, tests).
var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations installs json field naming and the phone, gstin and
// pan rules on v. The handler layer calls it on gin's binding engine.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(JSONFieldName)
	rules := map[string]validator.Func{
		"phone": patternRule(phonePattern, false),
		"gstin": patternRule(gstinPattern, true),
		"pan":   patternRule(panPattern, true),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s rule: %w", tag, err)
		}
	}
	return nil
}

// patternRule matches the trimmed value, upper-cased when the stored form is.
func patternRule(re *regexp.Regexp, upper bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if upper {
			s = strings.ToUpper(s)
		}
		return re.MatchString(s)
	}
}

// JSONFieldName reports fields by their json name.
func JSONFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// validateInput runs the binding rules of in and turns failures into a
// validation error.
func validateInput(in interface{}) error {
	err := inputValidator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return invalid("%s", ValidationMessage(verrs))
	}
	return err
}

// ValidationMessage renders failed rules as one user-facing sentence per field.
func ValidationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		if p := strings.Fields(fe.Param()); len(p) == 2 {
			return fmt.Sprintf("%s is required when %s is %s", field, strings.ToLower(p[0]), p[1])
		}
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %v", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s cannot be greater than %s", field, fe.Param())
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be %s %s characters", field, bound, fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must have %s %s entries", field, bound, fe.Param())
		}
		return fmt.Sprintf("%s must be %s %s", field, bound, fe.Param())
	case "unique":
		return field + " must not contain duplicate entries"
	case "email":
		return field + " must be a valid email address"
	case "phone":
		return field + " must be a valid phone number"
	case "gstin":
		return field + " must be a valid GSTIN"
	case "pan":
		return field + " must be a valid PAN"
	}
	return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
}
