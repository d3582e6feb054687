// Package checksum verifies the integrity suffix ACT appends to every log line.
//
// The suffix is a hash over the line body (everything before the suffix,
// including the trailing delimiter) followed by the line's index in decimal.
// Folding the index in means a body copied to another position in the log
// no longer validates.
package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedChecksum is returned when the suffix is too short or not hex.
// A well-formed suffix that does not match is not an error.
var ErrMalformedChecksum = errors.New("malformed checksum")

// Algorithm selects how the integrity suffix was produced.
type Algorithm uint8

const (
	// Primary is a full MD5 digest, 32 hex characters. Older plugin versions.
	Primary Algorithm = iota
	// Fallback is a SHA-256 digest truncated to 8 bytes, 16 hex characters.
	Fallback
)

// fallbackDigestLen is the number of SHA-256 bytes kept by Fallback.
const fallbackDigestLen = 8

// HexLen is the length of the suffix in hex characters.
func (a Algorithm) HexLen() int {
	switch a {
	case Primary:
		return md5.Size * 2
	case Fallback:
		return fallbackDigestLen * 2
	default:
		return 0
	}
}

func (a Algorithm) String() string {
	switch a {
	case Primary:
		return "md5"
	case Fallback:
		return "sha256"
	default:
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm translates the representations used by callers and older
// tooling: the integer codes "0"/"1", the hash names, or "primary"/"fallback".
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "md5", "primary":
		return Primary, nil
	case "1", "sha256", "fallback":
		return Fallback, nil
	default:
		return 0, fmt.Errorf("unknown checksum algorithm: %q", s)
	}
}

// Detect picks the algorithm from the length of the last "|" segment of line.
func Detect(line string) (Algorithm, bool) {
	suffix := line[strings.LastIndexByte(line, '|')+1:]
	switch len(suffix) {
	case Primary.HexLen():
		return Primary, true
	case Fallback.HexLen():
		return Fallback, true
	default:
		return 0, false
	}
}

func digest(body string, index int, alg Algorithm) ([]byte, error) {
	idx := strconv.Itoa(index)
	switch alg {
	case Primary:
		h := md5.New()
		h.Write([]byte(body))
		h.Write([]byte(idx))
		return h.Sum(nil), nil
	case Fallback:
		h := sha256.New()
		h.Write([]byte(body))
		h.Write([]byte(idx))
		return h.Sum(nil)[:fallbackDigestLen], nil
	default:
		return nil, fmt.Errorf("unknown checksum algorithm: %s", alg)
	}
}

// Sum returns the hex suffix for body at the given line index.
func Sum(body string, index int, alg Algorithm) (string, error) {
	d, err := digest(body, index, alg)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(d), nil
}

// Validate reports whether the trailing suffix of line matches the hash of
// the rest of the line and index. Only an unreadable suffix is an error.
func Validate(line string, index int, alg Algorithm) (bool, error) {
	n := alg.HexLen()
	if n == 0 {
		return false, fmt.Errorf("unknown checksum algorithm: %s", alg)
	}
	if len(line) < n {
		return false, fmt.Errorf("%w: line is %d bytes, %s suffix needs %d",
			ErrMalformedChecksum, len(line), alg, n)
	}

	body, suffix := line[:len(line)-n], line[len(line)-n:]
	want, err := hex.DecodeString(suffix)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedChecksum, err)
	}

	got, err := digest(body, index, alg)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
