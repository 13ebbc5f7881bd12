package embedding

import (
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types := tok.Tokenize("hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths = %d/%d/%d, want 10", len(ids), len(attn), len(types))
	}
	if ids[0] != 101 {
		t.Errorf("expected CLS 101, got %d", ids[0])
	}
	if ids[3] != 102 {
		t.Errorf("expected SEP 102 after two words, got %d", ids[3])
	}
	for i := 0; i < 4; i++ {
		if attn[i] != 1 {
			t.Errorf("attention[%d] should be 1", i)
		}
	}
	if attn[4] != 0 {
		t.Error("padding should not be attended")
	}
}

func TestSimpleTokenizer_truncates(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize("a b c d e f g h", 4)
	if len(ids) != 4 {
		t.Fatalf("len(ids)=%d", len(ids))
	}
	if ids[3] != 102 || attn[3] != 1 {
		t.Errorf("last slot should hold SEP, got %d", ids[3])
	}
}

func TestSimpleTokenizer_caseInsensitive(t *testing.T) {
	tok := &SimpleTokenizer{}
	a, _, _ := tok.Tokenize("Attention", 4)
	b, _, _ := tok.Tokenize("attention", 4)
	if a[1] != b[1] {
		t.Errorf("token ids differ by case: %d vs %d", a[1], b[1])
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  a  b\n\tc  ")
	if len(words) != 3 || words[0] != "a" || words[1] != "b" || words[2] != "c" {
		t.Errorf("expected [a b c], got %q", words)
	}
	if SplitWords("") != nil {
		t.Error("empty string should return nil")
	}
	if SplitWords(" \n ") != nil {
		t.Error("whitespace-only string should return nil")
	}
}

func TestHashString(t *testing.T) {
	h := HashString("abc")
	if h == 0 {
		t.Error("hash should be non-zero")
	}
	if HashString("abc") != HashString("abc") {
		t.Error("hash should be deterministic")
	}
	long := "a very long string that would overflow a naive signed accumulator many times over"
	if HashString(long) < 0 {
		t.Error("hash should be non-negative")
	}
}
