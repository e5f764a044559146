package validator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Title     string `json:"title" validate:"required,max=255"`
	Email     string `json:"email" validate:"omitempty,email"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	StartDate string `json:"start_date" validate:"required,datetime_any"`
	Role      string `json:"role" validate:"omitempty,oneof=admin moderator user"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestTranslate_UsesJSONNames(t *testing.T) {
	v := newValidate()
	err := v.Struct(sampleRequest{Email: "not-an-email", Rating: 9, StartDate: "tomorrow", Role: "root"})
	require.Error(t, err)

	fields := Translate(err)
	assert.Equal(t, []string{"The title field is required."}, fields["title"])
	assert.Equal(t, []string{"The email must be a valid email address."}, fields["email"])
	assert.Equal(t, []string{"The rating must not be greater than 5."}, fields["rating"])
	assert.Equal(t, []string{"The start date is not a valid date."}, fields["start_date"])
	assert.Equal(t, []string{"The selected role is invalid."}, fields["role"])
}

func TestTranslate_StringLength(t *testing.T) {
	v := newValidate()
	err := v.Struct(sampleRequest{Title: strings.Repeat("x", 300), Rating: 3, StartDate: "2025-01-01"})
	require.Error(t, err)
	assert.Equal(t, []string{"The title must not be greater than 255 characters."}, Translate(err)["title"])
}

func TestTranslate_JSONErrors(t *testing.T) {
	var target sampleRequest
	err := json.Unmarshal([]byte(`{"rating":"five"}`), &target)
	require.Error(t, err)
	fields := Translate(err)
	assert.Contains(t, fields, "rating")

	err = json.Unmarshal([]byte(`{broken`), &target)
	require.Error(t, err)
	assert.Equal(t, []string{"The request body is not valid JSON."}, Translate(err)["body"])
}

func TestParseDateTime(t *testing.T) {
	for _, s := range []string{"2025-03-01", "2025-03-01 18:30:00", "2025-03-01T18:30:00Z", "2025-03-01 18:30"} {
		_, err := ParseDateTime(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseDateTime("01/03/2025")
	assert.Error(t, err)
}
