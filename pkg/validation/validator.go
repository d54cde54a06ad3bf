package validation

import (
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/foodgram/backend/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// usernameRegex accepts Unicode letters and digits as well as _ . @ + -
var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// reservedUsernames collide with static routes under /api/users/
var reservedUsernames = map[string]struct{}{
	"me":            {},
	"subscriptions": {},
	"set_password":  {},
}

// Validator validates request structs and strips markup from free text
type Validator struct {
	validator *validator.Validate
	sanitizer *bluemonday.Policy
}

// NewValidator creates a validator reporting fields by their JSON names
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if _, reserved := reservedUsernames[strings.ToLower(value)]; reserved {
			return false
		}
		return usernameRegex.MatchString(value)
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})

	return &Validator{
		validator: v,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ValidateStruct validates s and returns errors.Invalid carrying one entry per failed field
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldsErr validator.ValidationErrors
	if !errors.As(err, &fieldsErr) {
		return errors.Invalid.Explain("invalid request").Wrap(err)
	}

	validationErr := errors.Invalid.Explain("validation error")
	for _, fieldErr := range fieldsErr {
		validationErr = validationErr.WithField(fieldErr.Tag(), fieldPath(fieldErr), message(fieldErr))
	}
	return validationErr
}

// Sanitize removes any HTML from user supplied text. Entities escaped by the
// policy are decoded again since responses are JSON, not markup.
func (v *Validator) Sanitize(input string) string {
	return strings.TrimSpace(html.UnescapeString(v.sanitizer.Sanitize(input)))
}

// fieldPath drops the top-level struct name from the namespace,
// e.g. "CreateRecipeRequest.ingredients[0].amount" -> "ingredients[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "unique":
		return "Duplicate values are not allowed."
	case "max":
		if isString {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Ensure this field has no more than %s elements.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return "This list may not be empty."
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "hexcolor":
		return "Enter a valid hex color."
	case "len":
		return fmt.Sprintf("Ensure this field has exactly %s characters.", fe.Param())
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
