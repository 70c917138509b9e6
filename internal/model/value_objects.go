package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrInvalidPhone   = errors.New("invalid Philippine phone number")
	ErrInvalidName    = errors.New("first and last name are required")
	ErrInvalidAddress = errors.New("street, barangay, city and province are required")
	ErrInvalidZipCode = errors.New("zip code must be 4 digits")
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	mobilePattern   = regexp.MustCompile(`^(?:\+?63|0)(9\d{9})$`)
	landlinePattern = regexp.MustCompile(`^(?:\+?63|0)(2\d{8})$`)
	zipPattern      = regexp.MustCompile(`^\d{4}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// Email is a validated, lower-cased address
type Email string

func NewEmail(s string) (Email, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !emailPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return Email(s), nil
}

func (e Email) String() string {
	return string(e)
}

// PhoneNumber is stored in E.164 form, e.g. +639171234567
type PhoneNumber string

// NewPhoneNumber accepts 09XXXXXXXXX, +639XXXXXXXXX, 639XXXXXXXXX and Metro Manila
// landlines such as (02) 8123-4567.
func NewPhoneNumber(s string) (PhoneNumber, error) {
	digits := phoneSeparators.Replace(strings.TrimSpace(s))
	if m := mobilePattern.FindStringSubmatch(digits); m != nil {
		return PhoneNumber("+63" + m[1]), nil
	}
	if m := landlinePattern.FindStringSubmatch(digits); m != nil {
		return PhoneNumber("+63" + m[1]), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPhone, s)
}

func (p PhoneNumber) String() string {
	return string(p)
}

// IsMobile reports whether the number can receive SMS
func (p PhoneNumber) IsMobile() bool {
	return strings.HasPrefix(string(p), "+639")
}

// FullName of a person. Embedded in entities so sqlx maps the columns directly.
type FullName struct {
	FirstName  string `json:"first_name" db:"first_name"`
	MiddleName string `json:"middle_name,omitempty" db:"middle_name"`
	LastName   string `json:"last_name" db:"last_name"`
	Suffix     string `json:"suffix,omitempty" db:"suffix"`
}

func NewFullName(first, middle, last, suffix string) (FullName, error) {
	n := FullName{
		FirstName:  strings.TrimSpace(first),
		MiddleName: strings.TrimSpace(middle),
		LastName:   strings.TrimSpace(last),
		Suffix:     strings.TrimSpace(suffix),
	}
	if n.FirstName == "" || n.LastName == "" {
		return FullName{}, ErrInvalidName
	}
	return n, nil
}

// Display renders "First M. Last Suffix"
func (n FullName) Display() string {
	parts := []string{n.FirstName}
	if n.MiddleName != "" {
		parts = append(parts, string([]rune(n.MiddleName)[0])+".")
	}
	parts = append(parts, n.LastName)
	if n.Suffix != "" {
		parts = append(parts, n.Suffix)
	}
	return strings.Join(parts, " ")
}

// Address follows the Philippine barangay / city / province hierarchy
type Address struct {
	Street   string `json:"street" db:"street"`
	Barangay string `json:"barangay" db:"barangay"`
	City     string `json:"city" db:"city"`
	Province string `json:"province" db:"province"`
	ZipCode  string `json:"zip_code,omitempty" db:"zip_code"`
}

func NewAddress(street, barangay, city, province, zip string) (Address, error) {
	a := Address{
		Street:   strings.TrimSpace(street),
		Barangay: strings.TrimSpace(barangay),
		City:     strings.TrimSpace(city),
		Province: strings.TrimSpace(province),
		ZipCode:  strings.TrimSpace(zip),
	}
	if a.Street == "" || a.Barangay == "" || a.City == "" || a.Province == "" {
		return Address{}, ErrInvalidAddress
	}
	if a.ZipCode != "" && !zipPattern.MatchString(a.ZipCode) {
		return Address{}, ErrInvalidZipCode
	}
	return a, nil
}

func (a Address) Line() string {
	line := fmt.Sprintf("%s, %s, %s, %s", a.Street, a.Barangay, a.City, a.Province)
	if a.ZipCode != "" {
		line += " " + a.ZipCode
	}
	return line
}
