package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report json/form names instead of Go struct field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ValidationError is one entry of a 422 response.
type ValidationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ParseValidationErrors converts binding errors to ValidationErrors located
// under source ("body" or "query").
func ParseValidationErrors(err error, source string) []ValidationError {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		out := make([]ValidationError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			out = append(out, ValidationError{
				Loc:  fieldLocation(source, fe),
				Msg:  getErrorMessage(fe),
				Type: "value_error." + fe.Tag(),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationError{{
			Loc:  append([]string{source}, strings.Split(typeErr.Field, ".")...),
			Msg:  "value is not a valid " + typeErr.Type.String(),
			Type: "type_error",
		}}
	}

	return []ValidationError{{
		Loc:  []string{source},
		Msg:  err.Error(),
		Type: "value_error.jsondecode",
	}}
}

// fieldLocation drops struct names (the root and embedded ones) from the
// validator namespace, keeping the wire names.
func fieldLocation(source string, fe validator.FieldError) []string {
	loc := []string{source}
	for _, part := range strings.Split(fe.Namespace(), ".") {
		if part == "" || unicode.IsUpper(rune(part[0])) {
			continue
		}
		loc = append(loc, part)
	}
	return loc
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "uuid":
		return "value is not a valid uuid"
	case "min":
		if fe.Kind() == reflect.String {
			return "ensure this value has at least " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "ensure this value has at least " + fe.Param() + " items"
		}
		return "ensure this value is greater than or equal to " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "ensure this value has at most " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "ensure this value has at most " + fe.Param() + " items"
		}
		return "ensure this value is less than or equal to " + fe.Param()
	case "gte":
		return "ensure this value is greater than or equal to " + fe.Param()
	case "lte":
		return "ensure this value is less than or equal to " + fe.Param()
	case "oneof":
		return "value is not a valid enumeration member; permitted: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// bindJSON binds the body into req, writing a 422 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidation(c, err, "body")
		return false
	}
	return true
}

// bindQuery binds query parameters into req, writing a 422 on failure.
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondValidation(c, err, "query")
		return false
	}
	return true
}

func respondValidation(c *gin.Context, err error, source string) {
	attachError(c, err)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": ParseValidationErrors(err, source)})
}
