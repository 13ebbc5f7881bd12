package search

import "github.com/hyperjump/scholar/internal/models"

// Merge concatenates semantic hits followed by lexical hits, keeps the first
// occurrence of each distinct content and truncates to topK. A chunk found by
// both indexes therefore sits at its semantic rank.
func Merge(semantic, lexical []models.ScoredChunk, topK int) []models.Chunk {
	if topK <= 0 {
		return []models.Chunk{}
	}
	out := make([]models.Chunk, 0, min(topK, len(semantic)+len(lexical)))
	seen := make(map[string]struct{}, len(semantic)+len(lexical))
	for _, list := range [][]models.ScoredChunk{semantic, lexical} {
		for _, sc := range list {
			if _, ok := seen[sc.Content]; ok {
				continue
			}
			seen[sc.Content] = struct{}{}
			out = append(out, sc.Chunk)
			if len(out) == topK {
				return out
			}
		}
	}
	return out
}
