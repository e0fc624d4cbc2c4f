package domain

import "strings"

type Address struct {
	FullName     string `bson:"full_name" json:"full_name"`
	Phone        string `bson:"phone" json:"phone"`
	AddressLine1 string `bson:"address_line1" json:"address_line1"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	PostalCode   string `bson:"postal_code" json:"postal_code"`
	Country      string `bson:"country" json:"country"`
}

// FieldErrors maps an address field name to a human-readable problem.
// Empty map means the address is valid.
type FieldErrors map[string]string

// Validate checks every field and reports all problems at once, so the
// caller can surface per-field errors without losing the other values.
func (a Address) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(a.FullName) == "" {
		errs["full_name"] = "full name is required"
	}
	if !digitsExactly(a.Phone, 10) {
		errs["phone"] = "phone must be exactly 10 digits"
	}
	if strings.TrimSpace(a.AddressLine1) == "" {
		errs["address_line1"] = "address line is required"
	}
	if strings.TrimSpace(a.City) == "" {
		errs["city"] = "city is required"
	}
	if strings.TrimSpace(a.State) == "" {
		errs["state"] = "state is required"
	}
	if !digitsExactly(a.PostalCode, 6) {
		errs["postal_code"] = "postal code must be exactly 6 digits"
	}
	if strings.TrimSpace(a.Country) == "" {
		errs["country"] = "country is required"
	}
	return errs
}

// Display renders the delivery address as a single line for notifications.
func (a Address) Display() string {
	parts := []string{a.AddressLine1, a.City, a.State, a.PostalCode, a.Country}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

func digitsExactly(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
