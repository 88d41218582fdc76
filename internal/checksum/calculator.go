// Package checksum provides schema file content hashing.
//
// Two digests are computed per file:
//
//   - Raw: hash of the exact bytes, detects any change.
//   - Normalized: hash after stripping XML comments and collapsing
//     whitespace, so reformatting a schema does not invalidate cached or
//     previously generated output.
//
// SHA256 is a zero-size type and safe for concurrent use.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Calculator computes file checksums. The abstraction keeps the scanner
// testable with a fake and leaves room for other digest strategies.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of normalized content,
	// resilient to comment and whitespace changes.
	CalculateNormalized(content []byte) string
}

// SHA256 implements Calculator with SHA-256 digests.
type SHA256 struct{}

// New creates a new SHA-256 based calculator. Returned by value; SHA256
// carries no state.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	normalized := c.normalize(string(content))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// normalize strips XML comments and collapses whitespace runs to single
// spaces. Case is preserved; XML names are case-sensitive.
func (c SHA256) normalize(content string) string {
	cleaned := removeComments(content)

	var b strings.Builder
	b.Grow(len(cleaned))

	lastWasSpace := false
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}

// removeComments removes <!-- --> comments. XML comments do not nest.
func removeComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	for {
		start := strings.Index(content, "<!--")
		if start < 0 {
			b.WriteString(content)
			break
		}
		b.WriteString(content[:start])

		end := strings.Index(content[start+4:], "-->")
		if end < 0 {
			// Unterminated comment swallows the rest of the file.
			break
		}
		content = content[start+4+end+3:]
	}

	return b.String()
}
