package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() Form {
	return Form{
		Name:       "Ana",
		Email:      "ana@tienda.es",
		Phone:      "600000000",
		Address:    "Calle Mayor 1",
		City:       "Madrid",
		PostalCode: "28013",
	}
}

func TestValidate_Valid(t *testing.T) {
	f := validForm()
	assert.Empty(t, f.Validate())
}

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"", "El email es requerido"},
		{"   ", "El email es requerido"},
		{"ana", "El email no es válido"},
		{"ana@tienda", "El email no es válido"},
		{"@tienda.es", "El email no es válido"},
		{"ana@tienda.es", ""},
		{"a@b.c", ""},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			f := validForm()
			f.Email = tt.email
			errs := f.Validate()
			assert.Equal(t, tt.want, errs[FieldEmail])
		})
	}
}

func TestValidate_BlankFields(t *testing.T) {
	for _, field := range Fields {
		t.Run(field.String(), func(t *testing.T) {
			f := validForm()
			f.Set(field, " \t")
			errs := f.Validate()
			assert.Len(t, errs, 1)
			assert.Equal(t, requiredMessages[field], errs[field])
		})
	}
}

func TestShippingAddress(t *testing.T) {
	f := validForm()
	assert.Equal(t, "Calle Mayor 1, Madrid, 28013", f.ShippingAddress())
}

func TestParseField(t *testing.T) {
	for _, field := range Fields {
		got, ok := ParseField(field.String())
		assert.True(t, ok)
		assert.Equal(t, field, got)
	}
	_, ok := ParseField("apellido")
	assert.False(t, ok)
}

func TestFieldErrorsMessage(t *testing.T) {
	errs := FieldErrors{FieldCity: "La ciudad es requerida", FieldName: "El nombre es requerido"}
	assert.Equal(t, "checkout form invalid: nombre: El nombre es requerido; ciudad: La ciudad es requerida", errs.Error())
}
