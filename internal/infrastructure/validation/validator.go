package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shortenhub/shorten/internal/processing/links"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Get returns the singleton validator instance
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
			return fld.Name
		})

		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return false
			}
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		// http_url mirrors the synchronous input validation of the create
		// flow: well-formed, http/https scheme, non-empty host.
		_ = validate.RegisterValidation("http_url", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return false
			}
			return links.ValidateURL(fl.Field().String()).IsValid
		})

		// alias accepts only already-sanitized aliases: [a-z0-9-], may be
		// empty (empty means "generate one").
		_ = validate.RegisterValidation("alias", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return false
			}
			raw := fl.Field().String()
			return links.SanitizeAlias(raw) == raw
		})

		// provider accepts the closed provider set, or empty for the default.
		_ = validate.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return false
			}
			raw := fl.Field().String()
			if raw == "" {
				return true
			}
			return links.Provider(raw).Valid()
		})
	})
	return validate
}

// Validate validates a struct and returns an error if invalid
func Validate(s any) error {
	return Get().Struct(s)
}
