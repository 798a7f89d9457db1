package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestChunk_Empty(t *testing.T) {
	chunks := Chunk[map[string]string](nil, DefaultBudget)
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for nil input, got %d", len(chunks))
	}
}

func TestChunk_UnderBudget(t *testing.T) {
	recs := makeRecords(5, 8)
	chunks := Chunk(recs, DefaultBudget)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0]) != 5 {
		t.Errorf("expected 5 records in chunk, got %d", len(chunks[0]))
	}
}

func TestChunk_ExactBoundary(t *testing.T) {
	// {"k":"xxxxxxxx"} is 16 chars = 4 tokens, so two records fill a budget of 8.
	recs := makeRecords(5, 8)
	chunks := Chunk(recs, 8)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, want := range []int{2, 2, 1} {
		if len(chunks[i]) != want {
			t.Errorf("chunk %d: expected %d records, got %d", i, want, len(chunks[i]))
		}
	}
}

func TestChunk_OversizedRecordAlone(t *testing.T) {
	big := map[string]string{"k": strings.Repeat("x", 5000)}
	chunks := Chunk([]map[string]string{big}, DefaultBudget)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0]) != 1 {
		t.Errorf("expected oversized record alone, got %d records", len(chunks[0]))
	}
}

func TestChunk_OversizedRecordInMiddle(t *testing.T) {
	small := map[string]string{"k": "a"}
	big := map[string]string{"k": strings.Repeat("x", 5000)}
	chunks := Chunk([]map[string]string{small, big, small}, DefaultBudget)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1][0]["k"] != big["k"] {
		t.Error("expected oversized record to occupy the middle chunk")
	}
}

func TestChunk_PreservesOrderAndContent(t *testing.T) {
	var recs []map[string]string
	for i := 0; i < 300; i++ {
		recs = append(recs, map[string]string{
			"id":   fmt.Sprintf("%d", i),
			"text": strings.Repeat("y", (i*37)%211),
		})
	}

	chunks := Chunk(recs, 120)

	var flat []map[string]string
	for i, c := range chunks {
		if len(c) == 0 {
			t.Fatalf("chunk %d is empty", i)
		}
		flat = append(flat, c...)
	}
	if !reflect.DeepEqual(flat, recs) {
		t.Error("concatenated chunks do not reproduce the input")
	}
}

func TestChunk_MultiRecordChunksStayWithinBudget(t *testing.T) {
	var recs []map[string]string
	for i := 0; i < 200; i++ {
		recs = append(recs, map[string]string{"v": strings.Repeat("z", (i*53)%400)})
	}
	const budget = 150

	for i, c := range Chunk(recs, budget) {
		if len(c) < 2 {
			continue
		}
		sum := 0
		for _, r := range c {
			sum += EstimateTokens(r)
			if sum > budget {
				t.Errorf("chunk %d exceeds budget: prefix sum %d > %d", i, sum, budget)
				break
			}
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	recs := makeRecords(50, 40)
	a := Chunk(recs, 100)
	b := Chunk(recs, 100)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical output for identical input")
	}
}

func TestEstimateTokens(t *testing.T) {
	// Expected values are ceil(len/4) of the compact encoding:
	// {"name":"x"} is 12 chars, {"k":"<>&"} is 11, four emoji add 8 UTF-16
	// units to the 8-char frame, and [{"a":"1"},{"b":"2"}] is 21. Eight line
	// separators add 8 to the frame; three literal \u2028 texts encode to 21
	// chars plus the frame (29); two control characters encode as \u0001\u0002
	// (12) plus the frame (20).
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"simple", map[string]string{"name": "x"}, 3},
		{"html not escaped", map[string]string{"k": "<>&"}, 3},
		{"surrogate pairs", map[string]string{"k": "😀😀😀😀"}, 4},
		{"empty slice", []map[string]string{}, 1},
		{"array", []map[string]string{{"a": "1"}, {"b": "2"}}, 6},
		{"line separators as one unit", map[string]string{"k": strings.Repeat("\u2028\u2029", 4)}, 4},
		{"escaped backslash before u2028 text", map[string]string{"k": `\u2028\u2028\u2028`}, 8},
		{"control characters stay escaped", map[string]string{"k": "\x01\x02"}, 5},
		{"unencodable", map[string]any{"f": func() {}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.in); got != tt.want {
				t.Errorf("EstimateTokens() = %d, want %d", got, tt.want)
			}
		})
	}
}

// makeRecords builds n records of the form {"k":"<width x's>"}.
func makeRecords(n, width int) []map[string]string {
	recs := make([]map[string]string, n)
	for i := range recs {
		recs[i] = map[string]string{"k": strings.Repeat("x", width)}
	}
	return recs
}
