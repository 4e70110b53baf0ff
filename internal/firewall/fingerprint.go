package firewall

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Fingerprint identifies a (policy_id, policy_version, prompt text) triple
// for cache keying: SHA-256 over the three fields joined by NUL separators,
// lowercase hex. Because the version participates, a policy edit changes
// every fingerprint under that policy and stale cached verdicts can never
// be served.
func Fingerprint(policyID string, policyVersion int64, text string) string {
	h := sha256.New()
	h.Write([]byte(policyID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(policyVersion, 10)))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
