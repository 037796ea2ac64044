package snapshot

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid address")

var addressPattern = regexp.MustCompile(`^[iI][nN][jJ][A-Za-z0-9]{20,80}$`)

// ValidateAddress trims raw and checks it against the inj-prefixed address
// pattern. Only ASCII letters and digits pass; case is preserved.
func ValidateAddress(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if !addressPattern.MatchString(addr) {
		return "", ErrInvalidAddress
	}
	return addr, nil
}
