package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	FullName string `json:"fullName" validate:"required"`
	NIK      string `json:"nik" validate:"required,len=16,digits"`
	Phone    string `json:"phone" validate:"required,min=10,digits"`
	Religion string `json:"religion" validate:"required,oneof=Islam Christian Buddhism"`
	Birth    string `json:"birthDate" validate:"required,datetime=2006-01-02"`
}

func validRegistration() registration {
	return registration{
		FullName: "Alice",
		NIK:      "3201010101010001",
		Phone:    "081234567890",
		Religion: "Islam",
		Birth:    "1990-01-02",
	}
}

func TestValidate_Accepts(t *testing.T) {
	v := NewValidator()
	r := validRegistration()
	assert.NoError(t, v.Validate(&r))
}

func TestFormatValidationErrors(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		mutate  func(r *registration)
		field   string
		message string
	}{
		{"missing name", func(r *registration) { r.FullName = "" }, "fullName", "fullName is required"},
		{"short nik", func(r *registration) { r.NIK = "320101010101000" }, "nik", "nik must be exactly 16 characters"},
		{"signed nik", func(r *registration) { r.NIK = "-320101010101000" }, "nik", "nik must contain digits only"},
		{"short phone", func(r *registration) { r.Phone = "08123" }, "phone", "phone must be at least 10 characters"},
		{"alpha phone", func(r *registration) { r.Phone = "0812345678a" }, "phone", "phone must contain digits only"},
		{"unknown religion", func(r *registration) { r.Religion = "Jedi" }, "religion", "religion must be one of: Islam, Christian, Buddhism"},
		{"bad date", func(r *registration) { r.Birth = "02/01/1990" }, "birthDate", "birthDate must be a date in YYYY-MM-DD format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)

			err := v.Validate(&r)
			require.Error(t, err)

			errs := v.FormatValidationErrors(err)
			assert.Equal(t, tt.message, errs[tt.field])
		})
	}
}
