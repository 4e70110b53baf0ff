package pattern

import "strings"

// luhnValidator rejects candidate credit-card numbers that fail the Luhn
// checksum.
type luhnValidator struct{}

// LuhnValidator is the shared Validator instance for card-number patterns.
var LuhnValidator Validator = luhnValidator{}

func (luhnValidator) Name() string { return "luhn" }

func (luhnValidator) Validate(match string) bool {
	var digits []byte
	for i := 0; i < len(match); i++ {
		c := match[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) < 12 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// keyFenceValidator requires a matched private-key candidate to carry the
// expected PEM/OpenSSH header and footer fencing rather than matching on
// an isolated fragment of key material.
type keyFenceValidator struct{}

// KeyFenceValidator is the shared Validator instance for private-key patterns.
var KeyFenceValidator Validator = keyFenceValidator{}

func (keyFenceValidator) Name() string { return "key_fence" }

func (keyFenceValidator) Validate(match string) bool {
	trimmed := strings.TrimSpace(match)
	hasBegin := strings.Contains(trimmed, "-----BEGIN ") && strings.Contains(trimmed, "PRIVATE KEY-----")
	hasEnd := strings.Contains(trimmed, "-----END ") && strings.HasSuffix(strings.TrimRight(trimmed, "\r\n \t"), "KEY-----")
	return hasBegin && hasEnd
}

// byName resolves the validator string used in pattern YAML files to a
// Validator instance. Returns (nil, true) for the explicit "none" value and
// (nil, false) for an unrecognized name.
func byName(name string) (Validator, bool) {
	switch name {
	case "", "none":
		return nil, true
	case "luhn":
		return LuhnValidator, true
	case "key_fence":
		return KeyFenceValidator, true
	default:
		return nil, false
	}
}
