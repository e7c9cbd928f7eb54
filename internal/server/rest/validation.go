package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
)

// Validation error codes.
const (
	codeInvalidType   = "invalid_type"
	codeTooSmall      = "too_small"
	codeTooBig        = "too_big"
	codeInvalidFormat = "invalid_format"
	codeInvalidValue  = "invalid_value"
)

// Field prefixes identify the request part a field error refers to.
const (
	partBody   = "body"
	partParams = "params"
	partQuery  = "query"
)

// keepEmpty lists body fields whose empty string is kept so that
// validation reports it.
var keepEmpty = map[string]bool{
	"first_name": true,
	"email":      true,
	"password":   true,
	"gender":     true,
}

var errInvalidAddressJSON = errors.New(msgInvalidAddressJSON)

type fieldError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Received any    `json:"received"`
}

type validationPayload struct {
	Errors      []fieldError `json:"errors"`
	TotalErrors int          `json:"totalErrors"`
	Details     string       `json:"details"`
}

// fieldErrors accumulates errors across the body, params and query of a
// request.
type fieldErrors []fieldError

func (fe *fieldErrors) add(part, field, code, message string, received any) {
	*fe = append(*fe, fieldError{Field: part + "." + field, Message: message, Code: code, Received: received})
}

func (fe fieldErrors) payload() validationPayload {
	return validationPayload{Errors: fe, TotalErrors: len(fe), Details: msgDetailsFieldErrors}
}

// normalizeEmptyStrings drops empty string values except for keepEmpty
// fields.
func normalizeEmptyStrings(raw map[string]any) {
	for k, v := range raw {
		if s, ok := v.(string); ok && s == "" && !keepEmpty[k] {
			delete(raw, k)
		}
	}
}

// coerceBool turns a string value of key into a bool: "true" and "1" are
// true, any other string is false.
func coerceBool(raw map[string]any, key string) {
	if s, ok := raw[key].(string); ok {
		raw[key] = s == "true" || s == "1"
	}
}

// decodeAddress replaces a string address with the JSON object it holds.
// A string that is not a JSON object is rejected.
func decodeAddress(raw map[string]any) error {
	s, ok := raw["address"].(string)
	if !ok {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return errInvalidAddressJSON
	}
	raw["address"] = obj
	return nil
}

// defaultPagination drops empty query values and defaults page and limit
// when nothing is left.
func defaultPagination(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		if len(vs) > 0 && vs[0] != "" {
			out[k] = vs
		}
	}
	if len(out) == 0 {
		out.Set("page", "1")
		out.Set("limit", "10")
	}
	return out
}

type validation struct {
	validate *validator.Validate
	query    *schema.Decoder
}

func newValidation() *validation {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "schema"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	v.RegisterValidation("jsonmax", validateJSONMax)

	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return &validation{validate: v, query: dec}
}

// validateJSONMax bounds the length of a value's JSON encoding.
func validateJSONMax(fl validator.FieldLevel) bool {
	var limit int
	if _, err := fmt.Sscanf(fl.Param(), "%d", &limit); err != nil {
		return false
	}
	b, err := json.Marshal(fl.Field().Interface())
	return err == nil && len(b) <= limit
}

// bindBody normalizes raw and decodes it into dst, then validates dst.
// Errors are appended to errs. A non-nil return is a request-level failure.
func (v *validation) bindBody(raw map[string]any, dst any, errs *fieldErrors) error {
	normalizeEmptyStrings(raw)
	coerceBool(raw, "is_admin")
	if err := decodeAddress(raw); err != nil {
		return err
	}

	// json.Unmarshal reports only the first type mismatch, so each
	// mismatched field is recorded, dropped and the decode retried.
	for {
		b, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		reflect.ValueOf(dst).Elem().SetZero()
		err = json.Unmarshal(b, dst)
		if err == nil {
			break
		}
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			return err
		}
		got, ok := removeField(raw, typeErr.Field)
		if !ok {
			return err
		}
		errs.add(partBody, typeErr.Field, codeInvalidType,
			fmt.Sprintf("Expected %s, received %s", jsonKind(typeErr.Type), typeErr.Value), got)
	}
	v.collect(partBody, dst, errs)
	return nil
}

// removeField deletes the value at a dotted path from raw and returns it.
func removeField(raw map[string]any, path string) (any, bool) {
	keys := strings.Split(path, ".")
	m := raw
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			return nil, false
		}
		m = next
	}
	last := keys[len(keys)-1]
	val, ok := m[last]
	if !ok {
		return nil, false
	}
	delete(m, last)
	return val, true
}

// bindQuery decodes q into dst with gorilla/schema and validates it.
func (v *validation) bindQuery(q url.Values, dst any, errs *fieldErrors) {
	if err := v.query.Decode(dst, q); err != nil {
		var multi schema.MultiError
		if errors.As(err, &multi) {
			for key := range multi {
				errs.add(partQuery, key, codeInvalidType, "Expected number, received string", q.Get(key))
			}
			return
		}
		errs.add(partQuery, "", codeInvalidType, err.Error(), nil)
		return
	}
	v.collect(partQuery, dst, errs)
}

// checkID validates a path id.
func checkID(name, id string, errs *fieldErrors) {
	if _, err := uuid.Parse(id); err != nil {
		errs.add(partParams, name, codeInvalidFormat, "Invalid id format", id)
	}
}

func (v *validation) collect(part string, dst any, errs *fieldErrors) {
	err := v.validate.Struct(dst)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.add(part, "", codeInvalidType, err.Error(), nil)
		return
	}
	reported := make(map[string]bool, len(*errs))
	for _, e := range *errs {
		reported[e.Field] = true
	}
	for _, fe := range verrs {
		if reported[part+"."+fieldPath(fe)] {
			continue
		}
		code, msg := describe(fe)
		errs.add(part, fieldPath(fe), code, msg, received(fe))
	}
}

// fieldPath strips the struct name from a validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func received(fe validator.FieldError) any {
	v := fe.Value()
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return nil
	}
	if rv.Kind() == reflect.Pointer {
		return rv.Elem().Interface()
	}
	return v
}

func describe(fe validator.FieldError) (code, message string) {
	label := humanize(fe.Field())
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	switch fe.Tag() {
	case "required":
		return codeInvalidType, label + " is required"
	case "min":
		if isList {
			return codeTooSmall, fmt.Sprintf("%s must contain at least %s item(s)", label, fe.Param())
		}
		return codeTooSmall, fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max", "jsonmax":
		if isList {
			return codeTooBig, fmt.Sprintf("%s must contain at most %s item(s)", label, fe.Param())
		}
		return codeTooBig, fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
	case "gte":
		return codeTooSmall, fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
	case "lte":
		return codeTooBig, fmt.Sprintf("%s must be less than or equal to %s", label, fe.Param())
	case "email":
		return codeInvalidFormat, "Invalid email address"
	case "uuid":
		return codeInvalidFormat, fmt.Sprintf("Invalid %s format", label)
	case "datetime":
		return codeInvalidFormat, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", label)
	case "oneof":
		opts := strings.Fields(fe.Param())
		return codeInvalidValue, fmt.Sprintf("%s must be one of '%s'", label, strings.Join(opts, "', '"))
	}
	return codeInvalidValue, fmt.Sprintf("%s is invalid", label)
}

// humanize turns "first_name" into "First name".
func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Pointer:
		return jsonKind(t.Elem())
	}
	return t.String()
}
