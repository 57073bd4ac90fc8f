package services

import (
	"regexp"
	"strings"

	"luxebites/internal/models"
)

var (
	nonDigit    = regexp.MustCompile(`\D`)
	phoneDigits = regexp.MustCompile(`^[0-9]{10}$`)
)

// ValidateCustomerDetails runs the checkout form checks in order and returns the
// first one that fails as a *ValidationError.
func ValidateCustomerDetails(d models.CustomerDetails) error {
	required := []struct {
		field   string
		value   string
		message string
	}{
		{"fullName", d.FullName, "Please enter your full name"},
		{"phone", d.Phone, "Please enter your phone number"},
		{"address", d.Address, "Please enter your delivery address"},
		{"city", d.City, "Please enter your city"},
		{"area", d.Area, "Please enter your area/district"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: r.message}
		}
	}

	if !phoneDigits.MatchString(nonDigit.ReplaceAllString(d.Phone, "")) {
		return &ValidationError{Field: "phone", Message: "Please enter a valid 10-digit phone number"}
	}

	if d.DeliveryType.RequiresScheduledTime() && d.ScheduledTime == "" {
		return &ValidationError{Field: "scheduledTime", Message: "Please select a delivery time"}
	}

	return nil
}
