package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() CreateAdvocateRequest {
	return CreateAdvocateRequest{
		FirstName:         "John",
		LastName:          "Smith",
		City:              "Chicago",
		Degree:            "PhD",
		Specialties:       []string{"Bipolar"},
		YearsOfExperience: json.RawMessage(`12`),
		PhoneNumber:       json.RawMessage(`5551234567`),
	}
}

func TestCreateAdvocateRequest_ToAdvocate(t *testing.T) {
	advocate, err := validRequest().ToAdvocate()
	require.NoError(t, err)
	assert.Equal(t, "John", advocate.FirstName)
	assert.Equal(t, []string{"Bipolar"}, advocate.Specialties)
	assert.Equal(t, 12, advocate.YearsOfExperience)
	assert.Equal(t, int64(5551234567), advocate.PhoneNumber)
	assert.Zero(t, advocate.ID)
}

func TestCreateAdvocateRequest_NumericStrings(t *testing.T) {
	req := validRequest()
	req.YearsOfExperience = json.RawMessage(`"0"`)
	req.PhoneNumber = json.RawMessage(`" 5551234567 "`)

	advocate, err := req.ToAdvocate()
	require.NoError(t, err)
	assert.Equal(t, 0, advocate.YearsOfExperience)
	assert.Equal(t, int64(5551234567), advocate.PhoneNumber)
}

func TestCreateAdvocateRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateAdvocateRequest)
		want   error
	}{
		{name: "empty first name", mutate: func(r *CreateAdvocateRequest) { r.FirstName = "" }, want: ErrMissingFields},
		{name: "blank city", mutate: func(r *CreateAdvocateRequest) { r.City = "   " }, want: ErrMissingFields},
		{name: "no specialties", mutate: func(r *CreateAdvocateRequest) { r.Specialties = nil }, want: ErrMissingFields},
		{name: "blank specialties", mutate: func(r *CreateAdvocateRequest) { r.Specialties = []string{" "} }, want: ErrMissingFields},
		{name: "missing years", mutate: func(r *CreateAdvocateRequest) { r.YearsOfExperience = nil }, want: ErrMissingFields},
		{name: "null phone", mutate: func(r *CreateAdvocateRequest) { r.PhoneNumber = json.RawMessage(`null`) }, want: ErrMissingFields},
		{name: "empty phone string", mutate: func(r *CreateAdvocateRequest) { r.PhoneNumber = json.RawMessage(`""`) }, want: ErrMissingFields},
		{name: "non numeric phone", mutate: func(r *CreateAdvocateRequest) { r.PhoneNumber = json.RawMessage(`"555-CALL"`) }, want: ErrInvalidPhoneNumber},
		{name: "boolean phone", mutate: func(r *CreateAdvocateRequest) { r.PhoneNumber = json.RawMessage(`true`) }, want: ErrInvalidPhoneNumber},
		{name: "fractional phone", mutate: func(r *CreateAdvocateRequest) { r.PhoneNumber = json.RawMessage(`555.5`) }, want: ErrInvalidPhoneNumber},
		{name: "negative years", mutate: func(r *CreateAdvocateRequest) { r.YearsOfExperience = json.RawMessage(`-1`) }, want: ErrInvalidYearsOfExperience},
		{name: "fractional years", mutate: func(r *CreateAdvocateRequest) { r.YearsOfExperience = json.RawMessage(`2.5`) }, want: ErrInvalidYearsOfExperience},
		{name: "non numeric years", mutate: func(r *CreateAdvocateRequest) { r.YearsOfExperience = json.RawMessage(`"ten"`) }, want: ErrInvalidYearsOfExperience},
		{
			name: "phone checked before years",
			mutate: func(r *CreateAdvocateRequest) {
				r.PhoneNumber = json.RawMessage(`"abc"`)
				r.YearsOfExperience = json.RawMessage(`-1`)
			},
			want: ErrInvalidPhoneNumber,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			advocate, err := req.ToAdvocate()
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, advocate)
			assert.True(t, IsValidationError(err))
		})
	}
}
