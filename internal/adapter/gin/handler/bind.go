package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	pkgerrors "user-service/pkg/errors"
)

var configureOnce sync.Once

// ConfigureBinding makes gin reject unknown JSON fields and report
// validation errors under the json/form names clients use.
func ConfigureBinding() {
	configureOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(sf reflect.StructField) string {
				for _, key := range []string{"json", "form"} {
					if name, _, _ := strings.Cut(sf.Tag.Get(key), ","); name != "" && name != "-" {
						return name
					}
				}
				return sf.Name
			})
		}
	})
}

// bindJSON decodes and validates the request body into out. An empty body
// is validated as an empty object.
func bindJSON(c *gin.Context, out any) error {
	err := c.ShouldBindJSON(out)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(out)
	}
	if err != nil {
		return bindError(err)
	}
	return nil
}

// bindQuery binds and validates query parameters into out.
func bindQuery(c *gin.Context, out any) error {
	if err := c.ShouldBindQuery(out); err != nil {
		return bindError(err)
	}
	return nil
}

// bindError converts binding failures into a ValidationError carrying one
// message per problem.
func bindError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, validationMessage(fe))
		}
		return pkgerrors.NewValidationErrors(messages...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return pkgerrors.NewValidationErrors(fmt.Sprintf("%s must be a %s", typeErr.Field, typeName(typeErr.Type)))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return pkgerrors.NewValidationErrors("Request body must be valid JSON")
	}

	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return pkgerrors.NewValidationErrors(fmt.Sprintf("property %s should not exist", strings.Trim(field, `"`)))
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return pkgerrors.NewValidationErrors(fmt.Sprintf("'%s' is not an integer number", numErr.Num))
	}

	return pkgerrors.NewValidationErrors(err.Error())
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer number"
	case reflect.Bool:
		return "boolean value"
	default:
		return t.String()
	}
}

func validationMessage(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return field + " should not be empty"
	case "email":
		return field + " must be an email"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be longer than or equal to %s characters", field, param)
		}
		return fmt.Sprintf("%s must not be less than %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be shorter than or equal to %s characters", field, param)
		}
		return fmt.Sprintf("%s must not be greater than %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", field, strings.ReplaceAll(param, " ", ", "))
	default:
		if param != "" {
			return fmt.Sprintf("%s failed %s validation (%s)", field, fe.Tag(), param)
		}
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
