package checkout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Field is one of the fixed customer fields of the checkout form.
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldPhone
	FieldAddress
	FieldCity
	FieldPostalCode
)

// Fields lists every form field in display order.
var Fields = []Field{FieldName, FieldEmail, FieldPhone, FieldAddress, FieldCity, FieldPostalCode}

var fieldNames = map[Field]string{
	FieldName:       "nombre",
	FieldEmail:      "email",
	FieldPhone:      "telefono",
	FieldAddress:    "direccion",
	FieldCity:       "ciudad",
	FieldPostalCode: "codigoPostal",
}

var requiredMessages = map[Field]string{
	FieldName:       "El nombre es requerido",
	FieldEmail:      "El email es requerido",
	FieldPhone:      "El teléfono es requerido",
	FieldAddress:    "La dirección es requerida",
	FieldCity:       "La ciudad es requerida",
	FieldPostalCode: "El código postal es requerido",
}

const msgInvalidEmail = "El email no es válido"

var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField maps a form field name ("codigoPostal", ...) back to its Field.
func ParseField(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Form holds the customer information entered at checkout.
type Form struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

func (f *Form) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldAddress:
		return f.Address
	case FieldCity:
		return f.City
	case FieldPostalCode:
		return f.PostalCode
	}
	return ""
}

func (f *Form) Set(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldAddress:
		f.Address = value
	case FieldCity:
		f.City = value
	case FieldPostalCode:
		f.PostalCode = value
	}
}

// ShippingAddress joins address, city and postal code as the order expects them.
func (f *Form) ShippingAddress() string {
	return fmt.Sprintf("%s, %s, %s", f.Address, f.City, f.PostalCode)
}

// Validate checks every field; the result is empty when the form is valid.
func (f *Form) Validate() FieldErrors {
	errs := FieldErrors{}
	for _, field := range Fields {
		if strings.TrimSpace(f.Get(field)) == "" {
			errs[field] = requiredMessages[field]
		}
	}
	if _, missing := errs[FieldEmail]; !missing && !emailShape.MatchString(f.Email) {
		errs[FieldEmail] = msgInvalidEmail
	}
	return errs
}

// FieldErrors maps a form field to its validation message.
type FieldErrors map[Field]string

func (e FieldErrors) Error() string {
	fields := make([]Field, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.String()+": "+e[f])
	}
	return "checkout form invalid: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}
