package validate

import (
	"fmt"
	"regexp"
)

// UserID must be lowercase letters, digits, hyphen or underscore, 1-40 chars.
var userIDRx = regexp.MustCompile(`^[a-z0-9_-]{1,40}$`)

// Org follows the same shape as user identifiers.
var orgRx = regexp.MustCompile(`^[a-z0-9_-]{1,40}$`)

// maxMessageLen bounds chat messages; prompts embed history on top of this.
const maxMessageLen = 4000

// UserID validates a path or body user identifier.
func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIDRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIDRx.String())
	}
	return nil
}

// Org validates an organization identifier.
func Org(v string) error {
	if v == "" {
		return fmt.Errorf("org is required")
	}
	if !orgRx.MatchString(v) {
		return fmt.Errorf("org must match %s", orgRx.String())
	}
	return nil
}

// Message validates a chat message body.
func Message(v string) error {
	if v == "" {
		return fmt.Errorf("message is required")
	}
	if len(v) > maxMessageLen {
		return fmt.Errorf("message exceeds %d characters", maxMessageLen)
	}
	return nil
}

// NonEmpty rejects empty required fields.
func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Amount rejects non-positive ledger amounts.
func Amount(v float64) error {
	if v <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}
