package knapsack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedSource 依次返回预设的值（对 n 取模），用于构造确定性的场景
type scriptedSource struct {
	values []int
	pos    int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v % n
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func scenarioCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Item{{Value: 10, Weight: 2}, {Value: 6, Weight: 3}, {Value: 9, Weight: 5}})
	require.NoError(t, err)
	return c
}

func defaultParameters() Parameters {
	return Parameters{
		PopulationSize: 16,
		TournamentSize: 3,
		MaxParents:     4,
		MutationCount:  1,
		Capacity:       64,
		ScoreScale:     2,
		FitnessPolicy:  PolicySoftPenalty,
	}
}

func randomCatalog(t *testing.T, seed int64) *Catalog {
	t.Helper()
	c, err := GenerateCatalog(16, 32, 2, newRand(seed))
	require.NoError(t, err)
	return c
}
