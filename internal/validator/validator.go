package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/lms-admin-mock/internal/model"
)

// ErrNotObject is returned by BindPayload when the body is not a JSON object.
var ErrNotObject = errors.New("request body must be a JSON object")

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("role", validateRole)

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		_ = v.RegisterTranslation("role", trans,
			func(ut ut.Translator) error {
				return ut.Add("role", "{0} must be one of admin, sub_admin, instructor, parent, student, affiliate", true)
			},
			func(ut ut.Translator, fe govalidator.FieldError) string {
				msg, _ := ut.T("role", fe.Field())
				return msg
			},
		)
	}
}

func validateRole(fl govalidator.FieldLevel) bool {
	_, ok := model.ParseRole(fl.Field().String())
	return ok
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindPayload decodes a free-form record body. Any JSON object is accepted,
// including an empty one; arrays, scalars and null are not. A "status" key
// must hold a non-empty string.
func BindPayload(c *gin.Context) (model.Payload, map[string]string) {
	var payload model.Payload
	if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil, map[string]string{"detail": ErrNotObject.Error()}
		case errors.As(err, &tooLarge):
			return nil, map[string]string{"detail": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return nil, TranslateErrors(err)
	}
	if payload == nil {
		return nil, map[string]string{"detail": ErrNotObject.Error()}
	}
	if err := model.CheckStatus(payload); err != nil {
		return nil, map[string]string{model.FieldStatus: model.ErrInvalidStatus.Error()}
	}
	return payload, nil
}
