package tinkoff

import (
	"fmt"
	"strings"
)

// validateStringLength checks that len(value) is within [min, max].
func validateStringLength(name, value string, min, max int) error {
	if len(value) < min || len(value) > max {
		return &ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%s length should be between %d and %d.", name, min, max),
		}
	}
	return nil
}

// validateIntLength checks that the digit length of value is within
// [min, max]. Zero has digit length 1; a minus sign does not count, which
// matches the gateway's documented bounds for non-negative identifiers.
func validateIntLength(name string, value int64, min, max int) error {
	if length := digitLength(value); length < min || length > max {
		return &ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%s length should be between %d and %d.", name, min, max),
		}
	}
	return nil
}

// validateInEnum checks that value is one of the allowed values.
func validateInEnum(name, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   name,
		Message: fmt.Sprintf("%s should be in list (%s).", name, strings.Join(allowed, ", ")),
	}
}

// digitLength returns the number of decimal digits in value, ignoring sign.
func digitLength(value int64) int {
	if value == 0 {
		return 1
	}
	if value < 0 {
		value = -value
	}
	length := 0
	for value > 0 {
		value /= 10
		length++
	}
	return length
}
