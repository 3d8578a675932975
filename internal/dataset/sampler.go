package dataset

import (
	"math/rand"

	"github.com/povarna/generative-ai-agents/rag-agent/internal/models"
)

// Sample picks n samples without replacement, reproducibly for a fixed
// seed. When n covers the whole set, the input order is kept.
func Sample(samples []models.QuestionSample, n int, seed int64) []models.QuestionSample {
	if n >= len(samples) {
		out := make([]models.QuestionSample, len(samples))
		copy(out, samples)
		return out
	}
	if n <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(len(samples))[:n]

	out := make([]models.QuestionSample, 0, n)
	for _, idx := range picked {
		out = append(out, samples[idx])
	}
	return out
}
