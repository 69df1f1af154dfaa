package validator

import (
	"testing"

	"go-medical-booking/internal/delivery/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomValidator_CreateAppointmentRequest(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		req     dto.CreateAppointmentRequest
		invalid map[string]string
	}{
		{
			name: "valid",
			req:  dto.CreateAppointmentRequest{PatientID: uuid.New(), DoctorID: uuid.New(), Date: "2030-03-04", Time: "09:15"},
		},
		{
			name:    "time outside vocabulary",
			req:     dto.CreateAppointmentRequest{PatientID: uuid.New(), DoctorID: uuid.New(), Date: "2030-03-04", Time: "12:00"},
			invalid: map[string]string{"Time": "Time must be a bookable time such as 09:00 or 13:15"},
		},
		{
			name:    "malformed date",
			req:     dto.CreateAppointmentRequest{PatientID: uuid.New(), DoctorID: uuid.New(), Date: "04/03/2030", Time: "09:00"},
			invalid: map[string]string{"Date": "Date must be a date in YYYY-MM-DD format"},
		},
		{
			name: "missing ids",
			req:  dto.CreateAppointmentRequest{Date: "2030-03-04", Time: "09:00"},
			invalid: map[string]string{
				"PatientID": "PatientID is required",
				"DoctorID":  "DoctorID is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.invalid == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.invalid, v.FormatValidationErrors(err))
		})
	}
}

func TestCustomValidator_OptionalFields(t *testing.T) {
	v := NewValidator()
	bad := "17:45"
	good := "2030-03-06"

	assert.NoError(t, v.Validate(dto.RescheduleAppointmentRequest{}))
	assert.NoError(t, v.Validate(dto.RescheduleAppointmentRequest{Date: &good}))

	err := v.Validate(dto.RescheduleAppointmentRequest{Time: &bad})
	require.Error(t, err)
	assert.Contains(t, v.FormatValidationErrors(err), "Time")

	err = v.Validate(dto.SearchDoctorsRequest{SortBy: "rating", MaxFee: "abc"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"SortBy": "SortBy must be one of: fee experience",
		"MaxFee": "MaxFee must be a number",
	}, v.FormatValidationErrors(err))
}
