// Package pin implements the 4-digit PIN checksum used for parent and child accounts.
//
// The digest is a 32-bit string hash, not a cryptographic one: it only keeps the
// PIN out of plain sight in the stored document. A configured recovery code
// verifies against every digest.
package pin

import (
	"strconv"

	"github.com/piggybank-dev/piggybank/internal/model"
)

// DefaultRecoveryCode is the recovery code used when the config does not set one.
const DefaultRecoveryCode = "9999"

// Length is the number of digits in a PIN.
const Length = 4

// ValidateFormat reports whether pin is exactly four ASCII digits.
func ValidateFormat(pin string) bool {
	if len(pin) != Length {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// Hash returns the digest for pin. Malformed input is a validation error.
func Hash(pin string) (string, error) {
	if !ValidateFormat(pin) {
		return "", model.NewValidationError("pin", "must be exactly 4 digits")
	}
	var h int32
	for i := 0; i < len(pin); i++ {
		h = h*31 + int32(pin[i])
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 36), nil
}

// FormatInput strips non-digits and truncates to four characters.
func FormatInput(s string) string {
	out := make([]byte, 0, Length)
	for i := 0; i < len(s) && len(out) < Length; i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Codec verifies PINs against stored digests.
type Codec struct {
	// RecoveryCode verifies against any digest. Empty disables the bypass.
	RecoveryCode string
}

// NewCodec creates a Codec with the given recovery code.
func NewCodec(recoveryCode string) Codec {
	return Codec{RecoveryCode: recoveryCode}
}

// Verify reports whether pin matches digest. Malformed pins never verify.
func (c Codec) Verify(pin, digest string) bool {
	if !ValidateFormat(pin) {
		return false
	}
	if c.IsRecoveryCode(pin) {
		return true
	}
	h, err := Hash(pin)
	if err != nil {
		return false
	}
	return digest != "" && h == digest
}

// IsRecoveryCode reports whether pin is the configured recovery code.
func (c Codec) IsRecoveryCode(pin string) bool {
	return c.RecoveryCode != "" && pin == c.RecoveryCode
}
