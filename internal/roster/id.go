package roster

import (
	"math/big"
	"regexp"
	"strings"
)

var (
	numericID  = regexp.MustCompile(`^[0-9]+$`)
	suffixedID = regexp.MustCompile(`^(.*?)([0-9]+)$`)
)

// NewID derives the next ID from the existing ones.
//
// The lexicographically greatest existing ID (plain string comparison) is
// taken as the base:
//   - purely numeric: incremented as an integer ("7" -> "8", "007" -> "8")
//   - prefix followed by digits: the digits are incremented, keeping the
//     prefix and the digit width ("E002" -> "E003", "E099" -> "E100")
//   - anything else: "1" is appended ("X" -> "X1")
//
// An empty list yields "1".
func NewID(existing []string) string {
	if len(existing) == 0 {
		return "1"
	}
	maxID := existing[0]
	for _, id := range existing[1:] {
		if id > maxID {
			maxID = id
		}
	}

	if numericID.MatchString(maxID) {
		n, _ := new(big.Int).SetString(maxID, 10)
		return n.Add(n, big.NewInt(1)).String()
	}

	if m := suffixedID.FindStringSubmatch(maxID); m != nil {
		prefix, digits := m[1], m[2]
		n, _ := new(big.Int).SetString(digits, 10)
		next := n.Add(n, big.NewInt(1)).String()
		if pad := len(digits) - len(next); pad > 0 {
			next = strings.Repeat("0", pad) + next
		}
		return prefix + next
	}

	return maxID + "1"
}
