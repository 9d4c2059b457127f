// Package anonymize turns a textual client IP into a stable, irreversible
// identifier plus an address family, so downstream code never has to see
// (and can never recover) the original IP.
package anonymize

import (
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Family is the address family of an anonymized IP.
type Family string

const (
	FamilyV4 Family = "v4"
	FamilyV6 Family = "v6"
)

// IP hashes ip with SHA3-512 and base64-encodes the digest, and classifies
// its family by the presence of a colon. The hash is stable across runs
// and hosts, which is what lets unique-visitor sets merge correctly across
// nodes (§4.1, §4.8).
func IP(ip string) (hash string, family Family) {
	sum := sha3.Sum512([]byte(ip))
	hash = base64.StdEncoding.EncodeToString(sum[:])
	family = FamilyV4
	if strings.Contains(ip, ":") {
		family = FamilyV6
	}
	return hash, family
}
