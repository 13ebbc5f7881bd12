package keyword

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		// Identical strings
		{"identical empty", "", "", 0},
		{"identical word", "hello", "hello", 0},
		{"identical unicode", "こんにちは", "こんにちは", 0},

		// Empty string cases
		{"empty a", "", "hello", 5},
		{"empty b", "hello", "", 5},

		// Single character differences
		{"one substitution", "cat", "bat", 1},
		{"one insertion", "cat", "cart", 1},
		{"one deletion", "cart", "cat", 1},

		// Multiple differences
		{"two substitutions", "cat", "dog", 3},
		{"kitten to sitting", "kitten", "sitting", 3},
		{"saturday to sunday", "saturday", "sunday", 3},

		// Common typos
		{"proposal to propodal", "proposal", "propodal", 1},
		{"documentation to documantation", "documentation", "documantation", 1},
		{"machine to machne", "machine", "machne", 1},
		{"learning to lerning", "learning", "lerning", 1},

		// Case sensitivity
		{"case difference", "Hello", "hello", 1},
		{"all caps", "HELLO", "hello", 5},

		// Unicode
		{"unicode substitution", "café", "cafe", 1},
		{"unicode insertion", "naïve", "naive", 1},

		// Longer strings
		{"longer strings", "algorithm", "altruistic", 6},

		// Transposition (not counted as single edit in Levenshtein)
		{"transposition ab-ba", "ab", "ba", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LevenshteinDistance(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
			// Test symmetry: distance(a,b) should equal distance(b,a)
			resultReverse := LevenshteinDistance(tt.b, tt.a)
			if result != resultReverse {
				t.Errorf("LevenshteinDistance is not symmetric: (%q,%q)=%d, (%q,%q)=%d",
					tt.a, tt.b, result, tt.b, tt.a, resultReverse)
			}
		})
	}
}
