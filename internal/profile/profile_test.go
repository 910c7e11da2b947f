package profile

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedEndpointSelection(t *testing.T) {
	// With weights 3:1 over a large sample, the empirical ratio must
	// converge to roughly 3:1.
	p := &Profile{
		Name:            "test",
		SessionDuration: DurationRange{Min: time.Second, Max: time.Second},
		PagesPerSession: IntRange{Min: 1, Max: 1},
		Endpoints: []WeightedEndpoint{
			{Endpoint: Literal("/a"), Weight: 3},
			{Endpoint: Literal("/b"), Weight: 1},
		},
	}

	rng := rand.New(rand.NewSource(42))
	const draws = 10000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		counts[p.PickEndpoint(rng)]++
	}

	assert.Equal(t, draws, counts["/a"]+counts["/b"], "every draw must resolve to a known endpoint")
	fractionA := float64(counts["/a"]) / draws
	assert.InDelta(t, 0.75, fractionA, 0.05, "weight 3 of 4 should win about 75 percent of draws")
}

func TestParameterizedEndpoints(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("product ids stay in range", func(t *testing.T) {
		ep := ProductPage()
		for i := 0; i < 1000; i++ {
			path := ep.Resolve(rng)
			require.True(t, strings.HasPrefix(path, "/product/item"), "got %q", path)
			id, err := strconv.Atoi(strings.TrimPrefix(path, "/product/item"))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, id, 1)
			assert.LessOrEqual(t, id, 1000)
		}
	})

	t.Run("search terms come from the vocabulary", func(t *testing.T) {
		ep := SearchPage()
		vocabulary := map[string]bool{}
		for _, term := range searchTerms {
			vocabulary[term] = true
		}
		for i := 0; i < 100; i++ {
			path := ep.Resolve(rng)
			require.True(t, strings.HasPrefix(path, "/search?q="), "got %q", path)
			assert.True(t, vocabulary[strings.TrimPrefix(path, "/search?q=")], "unexpected term in %q", path)
		}
	})

	t.Run("literals resolve to themselves", func(t *testing.T) {
		assert.Equal(t, "/dashboard", Literal("/dashboard").Resolve(rng))
	})
}

func TestRangeSampling(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	t.Run("duration stays within bounds", func(t *testing.T) {
		r := DurationRange{Min: 2 * time.Second, Max: 5 * time.Second}
		for i := 0; i < 1000; i++ {
			d := r.Sample(rng)
			assert.GreaterOrEqual(t, d, r.Min)
			assert.Less(t, d, r.Max)
		}
	})

	t.Run("degenerate duration range returns min", func(t *testing.T) {
		r := DurationRange{Min: time.Second, Max: time.Second}
		assert.Equal(t, time.Second, r.Sample(rng))
	})

	t.Run("int range is inclusive on both ends", func(t *testing.T) {
		r := IntRange{Min: 3, Max: 8}
		seen := map[int]bool{}
		for i := 0; i < 1000; i++ {
			v := r.Sample(rng)
			require.GreaterOrEqual(t, v, 3)
			require.LessOrEqual(t, v, 8)
			seen[v] = true
		}
		assert.Len(t, seen, 6, "all values in [3,8] should appear over 1000 draws")
	})
}

func TestDistributionValidation(t *testing.T) {
	valid := &Profile{
		Name:      "ok",
		Endpoints: []WeightedEndpoint{{Endpoint: Literal("/"), Weight: 1}},
	}

	testCases := []struct {
		name        string
		build       func() *Distribution
		expectError string
	}{
		{
			name:        "empty distribution",
			build:       func() *Distribution { return NewDistribution() },
			expectError: "empty",
		},
		{
			name: "all-zero weights",
			build: func() *Distribution {
				return NewDistribution().Add(valid, 0)
			},
			expectError: "all zero",
		},
		{
			name: "negative weight",
			build: func() *Distribution {
				return NewDistribution().Add(valid, -1)
			},
			expectError: "negative",
		},
		{
			name: "profile without endpoints",
			build: func() *Distribution {
				return NewDistribution().Add(&Profile{Name: "bare"}, 1)
			},
			expectError: "no endpoints",
		},
		{
			name: "valid",
			build: func() *Distribution {
				return NewDistribution().Add(valid, 1)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.build().Validate()
			if tc.expectError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectError)
			}
		})
	}
}

func TestDistributionPick(t *testing.T) {
	a := &Profile{Name: "a", Endpoints: []WeightedEndpoint{{Endpoint: Literal("/"), Weight: 1}}}
	b := &Profile{Name: "b", Endpoints: []WeightedEndpoint{{Endpoint: Literal("/"), Weight: 1}}}
	dist := NewDistribution().Add(a, 0.9).Add(b, 0.1)
	require.NoError(t, dist.Validate())

	rng := rand.New(rand.NewSource(99))
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[dist.Pick(rng).Name]++
	}
	assert.InDelta(t, 0.9, float64(counts["a"])/10000, 0.05)
}

func TestDefaultDistribution(t *testing.T) {
	dist := DefaultDistribution()
	require.NoError(t, dist.Validate())
	assert.Equal(t, 5, dist.Len())
}
