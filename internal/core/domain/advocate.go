package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxSafeInteger is the largest integer a JSON number carries without loss.
const maxSafeInteger = 1<<53 - 1

// Advocate is a directory record. Records are immutable after creation.
type Advocate struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	City              string    `json:"city"`
	Degree            string    `json:"degree"`
	Specialties       []string  `json:"specialties"`
	YearsOfExperience int       `json:"yearsOfExperience"`
	PhoneNumber       int64     `json:"phoneNumber"`
	CreatedAt         time.Time `json:"createdAt"`
}

// SpecialtiesText renders the specialties list the way PostgreSQL renders a
// jsonb array as text, e.g. ["Bipolar", "LGBTQ"].
func (a Advocate) SpecialtiesText() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range a.Specialties {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteJSON(s))
	}
	b.WriteByte(']')
	return b.String()
}

// quoteJSON quotes s like PostgreSQL's jsonb output: only the quote, the
// backslash and control characters are escaped, every other rune is written
// as is. Invalid UTF-8 cannot reach PostgreSQL, so it is replaced here too.
func quoteJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range strings.ToValidUTF8(s, "\uFFFD") {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// CreateAdvocateRequest is the create payload. The numeric fields are kept raw
// so that numbers and numeric strings are both accepted and so a non-numeric
// value can be told apart from a missing one.
type CreateAdvocateRequest struct {
	FirstName         string          `json:"firstName"`
	LastName          string          `json:"lastName"`
	City              string          `json:"city"`
	Degree            string          `json:"degree"`
	Specialties       []string        `json:"specialties"`
	YearsOfExperience json.RawMessage `json:"yearsOfExperience"`
	PhoneNumber       json.RawMessage `json:"phoneNumber"`
}

// ToAdvocate validates the request and returns the record to store.
// Checks run in a fixed order: presence, phone number, years of experience.
func (r CreateAdvocateRequest) ToAdvocate() (*Advocate, error) {
	advocate := &Advocate{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		City:      strings.TrimSpace(r.City),
		Degree:    strings.TrimSpace(r.Degree),
	}
	for _, s := range r.Specialties {
		if s = strings.TrimSpace(s); s != "" {
			advocate.Specialties = append(advocate.Specialties, s)
		}
	}

	phone, phonePresent, phoneErr := parseNumber(r.PhoneNumber)
	years, yearsPresent, yearsErr := parseNumber(r.YearsOfExperience)

	if advocate.FirstName == "" || advocate.LastName == "" || advocate.City == "" ||
		advocate.Degree == "" || len(advocate.Specialties) == 0 || !phonePresent || !yearsPresent {
		return nil, ErrMissingFields
	}

	if phoneErr != nil || phone != math.Trunc(phone) || math.Abs(phone) > maxSafeInteger {
		return nil, fmt.Errorf("phone number %s: %w", string(r.PhoneNumber), ErrInvalidPhoneNumber)
	}
	if yearsErr != nil || years < 0 || years != math.Trunc(years) || years > math.MaxInt32 {
		return nil, fmt.Errorf("years of experience %s: %w", string(r.YearsOfExperience), ErrInvalidYearsOfExperience)
	}

	advocate.PhoneNumber = int64(phone)
	advocate.YearsOfExperience = int(years)
	return advocate, nil
}

// parseNumber decodes a JSON number or numeric string. present is false for
// an absent, null or blank value.
func parseNumber(raw json.RawMessage) (value float64, present bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, false, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, true, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, nil
		}
		value, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, true, err
		}
	} else if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, true, err
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, true, fmt.Errorf("not a finite number: %s", string(trimmed))
	}
	return value, true, nil
}
