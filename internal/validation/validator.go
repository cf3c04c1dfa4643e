// Package validation checks booking drafts against the booking form rules.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tazabekov/tour-booking-room-2/internal/models"
)

const (
	MsgNameRequired     = "Enter your name"
	MsgEmailRequired    = "Enter your email"
	MsgEmailInvalid     = "Enter a valid email"
	MsgPhoneRequired    = "Enter your phone number"
	MsgTravelersMinimum = "At least 1 traveler"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// MsgTravelersMaximum is the error for a traveler count above capacity.
func MsgTravelersMaximum(capacity int) string {
	return fmt.Sprintf("At most %d travelers", capacity)
}

// Validate runs every rule against the draft and reports all failing fields
// at once. A capacity of zero or less means the capacity is unknown and the
// maximum check is skipped.
func Validate(draft models.BookingDraft, capacity int) models.ValidationResult {
	result := models.ValidationResult{}

	if strings.TrimSpace(draft.CustomerName) == "" {
		result[models.FieldName] = MsgNameRequired
	}

	email := strings.TrimSpace(draft.CustomerEmail)
	switch {
	case email == "":
		result[models.FieldEmail] = MsgEmailRequired
	case !emailPattern.MatchString(email):
		result[models.FieldEmail] = MsgEmailInvalid
	}

	if strings.TrimSpace(draft.CustomerPhone) == "" {
		result[models.FieldPhone] = MsgPhoneRequired
	}

	switch {
	case draft.Travelers < 1:
		result[models.FieldTravelers] = MsgTravelersMinimum
	case capacity > 0 && draft.Travelers > capacity:
		result[models.FieldTravelers] = MsgTravelersMaximum(capacity)
	}

	return result
}
