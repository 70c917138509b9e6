package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type NameInput struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	MiddleName string `json:"middle_name" validate:"max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Suffix     string `json:"suffix" validate:"max=20"`
}

func (n NameInput) Build() (model.FullName, error) {
	return model.NewFullName(n.FirstName, n.MiddleName, n.LastName, n.Suffix)
}

type AddressInput struct {
	Street   string `json:"street" validate:"required,max=200"`
	Barangay string `json:"barangay" validate:"required,max=100"`
	City     string `json:"city" validate:"required,max=100"`
	Province string `json:"province" validate:"required,max=100"`
	ZipCode  string `json:"zip_code" validate:"omitempty,len=4,numeric"`
}

func (a AddressInput) Build() (model.Address, error) {
	return model.NewAddress(a.Street, a.Barangay, a.City, a.Province, a.ZipCode)
}

// Contact holds parsed contact value objects
type Contact struct {
	Email model.Email
	Phone model.PhoneNumber
}

// ParseContact validates an email and phone pair, recording failures in f
func ParseContact(f *Fields, email, phone string) Contact {
	var c Contact
	var err error
	c.Email, err = model.NewEmail(email)
	f.Check("email", err)
	c.Phone, err = model.NewPhoneNumber(phone)
	f.Check("phone", err)
	return c
}

// Date accepts "2006-01-02" or RFC 3339 in JSON and query strings
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}
