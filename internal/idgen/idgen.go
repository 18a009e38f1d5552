// Package idgen generates opaque short tokens for agents and tasks
// (spec.md §3: "id (opaque short token, unique)"). The algorithm is the
// teacher's hash-based issue ID scheme (internal/idgen/hash.go): hash a
// content string (what's being created, a timestamp, and a collision
// nonce) and base36-encode a prefix of the digest for information density
// better than hex.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// base36Alphabet is the character set for base36 encoding (0-9, a-z).
const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// EncodeBase36 converts a byte slice to a base36 string of the given
// length, left-padding with zeros or truncating to the least-significant
// digits as needed.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)

	var result strings.Builder
	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}
	for i := len(chars) - 1; i >= 0; i-- {
		result.WriteByte(chars[i])
	}

	str := result.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	if len(str) > length {
		str = str[len(str)-length:]
	}
	return str
}

// tokenLength is the base36 digit count used for generated IDs: 6 digits
// is ~31 bits, enough entropy to make collisions within one project's
// lifetime vanishingly unlikely without needing a sequence counter.
const tokenLength = 6

// New generates an opaque token of the form "<prefix>-<base36>". content
// is a stable description of what's being created (e.g. an agent name or
// task title); it, the current time, and a random nonce are hashed
// together so two calls with identical content never collide.
func New(prefix string, content string) string {
	nonce := uuid.NewString()
	combined := fmt.Sprintf("%s|%d|%s", content, time.Now().UnixNano(), nonce)
	hash := sha256.Sum256([]byte(combined))
	return fmt.Sprintf("%s-%s", prefix, EncodeBase36(hash[:4], tokenLength))
}

// NewAgentID generates an agent id from the agent's chosen name.
func NewAgentID(name string) string { return New("ag", name) }

// NewTaskID generates a task id from its title.
func NewTaskID(title string) string { return New("t", title) }
