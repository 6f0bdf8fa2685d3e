package validate

import (
	"github.com/ShiraazMoollatjie/goluhn"
)

// IsLuhn reports whether s is a Luhn-valid number. Gift card numbers are
// checked with it before a gift-card deposit is accepted.
func IsLuhn(s string) bool {
	err := goluhn.Validate(s)
	return err == nil
}
