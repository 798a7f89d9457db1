package chunker

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// DefaultBudget is the token budget a single response chunk should stay within.
const DefaultBudget = 800

// charsPerToken is the coarse characters-to-token ratio used for budgeting.
const charsPerToken = 4

// Chunk splits items into consecutive groups whose estimated token size stays
// within budget. Items are never split or reordered: an item larger than the
// budget on its own becomes a single-item chunk.
func Chunk[T any](items []T, budget int) [][]T {
	if len(items) == 0 {
		return nil
	}

	var chunks [][]T
	var current []T
	currentSize := 0

	for _, item := range items {
		size := EstimateTokens(item)

		// Close the running chunk when this item would push it over budget.
		if len(current) > 0 && currentSize+size > budget {
			chunks = append(chunks, current)
			current = nil
			currentSize = 0
		}

		current = append(current, item)
		currentSize += size
	}

	// Flush remaining.
	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}

// EstimateTokens approximates the token size of v as a quarter of the length
// of its compact JSON encoding, rounded up. Length is counted in UTF-16 code
// units, and U+2028/U+2029 count as one unit even though encoding/json writes
// them as \u escapes, so lengths agree with JavaScript's JSON.stringify.
// Values that cannot be encoded count as zero.
func EstimateTokens(v any) int {
	n, err := encodedLength(v)
	if err != nil {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}

func encodedLength(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	b := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	n := 0
	for len(b) > 0 {
		if b[0] == '\\' && len(b) > 1 {
			if isLineSeparatorEscape(b) {
				n++
				b = b[6:]
				continue
			}
			// Two-character escape, or the head of a \uXXXX escape.
			n += 2
			b = b[2:]
			continue
		}
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r >= 0x10000 {
			n += 2 // surrogate pair
		} else {
			n++
		}
	}
	return n, nil
}

func isLineSeparatorEscape(b []byte) bool {
	if len(b) < 6 || b[1] != 'u' {
		return false
	}
	code := string(b[2:6])
	return code == "2028" || code == "2029"
}
