package rest

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyStrings(t *testing.T) {
	raw := map[string]any{
		"first_name": "",
		"email":      "",
		"password":   "",
		"gender":     "",
		"last_name":  "",
		"about":      "",
		"title":      "kept",
		"count":      0,
	}
	normalizeEmptyStrings(raw)

	want := map[string]any{
		"first_name": "",
		"email":      "",
		"password":   "",
		"gender":     "",
		"title":      "kept",
		"count":      0,
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("normalizeEmptyStrings mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"yes", false},
		{"", false},
		{true, true},
		{nil, nil},
	}
	for _, tt := range tests {
		raw := map[string]any{"is_admin": tt.in}
		coerceBool(raw, "is_admin")
		assert.Equal(t, tt.want, raw["is_admin"], "input %v", tt.in)
	}
}

func TestDecodeAddress(t *testing.T) {
	raw := map[string]any{"address": `{"street":"1 Main St","zip":"123"}`}
	require.NoError(t, decodeAddress(raw))
	assert.Equal(t, map[string]any{"street": "1 Main St", "zip": "123"}, raw["address"])

	obj := map[string]any{"city": "Paris"}
	raw = map[string]any{"address": obj}
	require.NoError(t, decodeAddress(raw))
	assert.Equal(t, obj, raw["address"])

	for _, bad := range []string{"Main St", "[1,2]", "null", `"x"`} {
		err := decodeAddress(map[string]any{"address": bad})
		assert.ErrorIs(t, err, errInvalidAddressJSON, bad)
	}
}

func TestDefaultPagination(t *testing.T) {
	got := defaultPagination(url.Values{})
	assert.Equal(t, url.Values{"page": {"1"}, "limit": {"10"}}, got)

	got = defaultPagination(url.Values{"page": {"3"}, "limit": {""}})
	assert.Equal(t, url.Values{"page": {"3"}}, got)
}

func TestBindBody_TypeMismatch(t *testing.T) {
	v := newValidation()
	var errs fieldErrors
	var req createPostRequest
	require.NoError(t, v.bindBody(map[string]any{"title": 42.0}, &req, &errs))

	require.Len(t, errs, 1)
	assert.Equal(t, fieldError{
		Field:    "body.title",
		Message:  "Expected string, received number",
		Code:     codeInvalidType,
		Received: 42.0,
	}, errs[0])
}

func TestBindBody_TypeMismatchKeepsOtherErrors(t *testing.T) {
	v := newValidation()
	var errs fieldErrors
	var req registerRequest
	raw := map[string]any{"first_name": 5.0, "last_name": true, "email": "not-an-email"}
	require.NoError(t, v.bindBody(raw, &req, &errs))

	byField := make(map[string]fieldError, len(errs))
	for _, e := range errs {
		_, dup := byField[e.Field]
		assert.False(t, dup, "duplicate error for %s", e.Field)
		byField[e.Field] = e
	}
	assert.Len(t, errs, 5)
	assert.Equal(t, fieldError{
		Field:    "body.first_name",
		Message:  "Expected string, received number",
		Code:     codeInvalidType,
		Received: 5.0,
	}, byField["body.first_name"])
	assert.Equal(t, codeInvalidType, byField["body.last_name"].Code)
	assert.Equal(t, true, byField["body.last_name"].Received)
	for _, f := range []string{"body.email", "body.password", "body.gender"} {
		assert.Contains(t, byField, f)
	}
}

func TestBindBody_Messages(t *testing.T) {
	v := newValidation()
	var errs fieldErrors
	var req createRoleRequest
	require.NoError(t, v.bindBody(map[string]any{"name": "owner", "permissions": []any{}}, &req, &errs))

	want := fieldErrors{
		{Field: "body.name", Code: codeInvalidValue, Message: "Name must be one of 'admin', 'editor', 'viewer', 'super_admin'", Received: "owner"},
		{Field: "body.permissions", Code: codeTooSmall, Message: "Permissions must contain at least 1 item(s)", Received: []string{}},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestBindBody_AddressTooLong(t *testing.T) {
	v := newValidation()
	var errs fieldErrors
	var req updateUserRequest
	long := make([]byte, 250)
	for i := range long {
		long[i] = 'a'
	}
	require.NoError(t, v.bindBody(map[string]any{"address": map[string]any{"street": string(long)}}, &req, &errs))

	require.Len(t, errs, 1)
	assert.Equal(t, "body.address", errs[0].Field)
	assert.Equal(t, codeTooBig, errs[0].Code)
}

func TestBindQuery(t *testing.T) {
	v := newValidation()

	var errs fieldErrors
	q := pageQuery{Page: 1, Limit: 10}
	v.bindQuery(url.Values{"page": {"4"}, "limit": {"25"}}, &q, &errs)
	assert.Empty(t, errs)
	assert.Equal(t, pageQuery{Page: 4, Limit: 25}, q)

	errs = nil
	var md masterDataQuery
	v.bindQuery(url.Values{"is_active": {"true"}, "unknown": {"x"}}, &md, &errs)
	assert.Empty(t, errs)
	require.NotNil(t, md.IsActive)
	assert.True(t, *md.IsActive)
	assert.Nil(t, md.Type)
}

func TestCheckID(t *testing.T) {
	var errs fieldErrors
	checkID("id", "7c9e6679-7425-40de-944b-e07fc1f90ae7", &errs)
	assert.Empty(t, errs)

	checkID("id", "42", &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "params.id", errs[0].Field)
	assert.Equal(t, codeInvalidFormat, errs[0].Code)
}

func TestPayload(t *testing.T) {
	var errs fieldErrors
	errs.add(partBody, "email", codeInvalidFormat, "Invalid email address", "x")
	p := errs.payload()
	assert.Equal(t, 1, p.TotalErrors)
	assert.Equal(t, msgDetailsFieldErrors, p.Details)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "First name", humanize("first_name"))
	assert.Equal(t, "", humanize(""))
}
