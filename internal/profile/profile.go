// Package profile defines the statistical user archetypes that drive the
// traffic generator: how long a visitor stays, how many pages they view, how
// long they pause, and which endpoints they favor.
package profile

import (
	"fmt"
	"math/rand"
	"time"
)

// Endpoint is one entry in a profile's browsing repertoire. It is either a
// fixed path or a parameterized template whose placeholder is filled in with
// a freshly generated value on every request.
type Endpoint interface {
	// Resolve produces the request path for a single page view.
	Resolve(rng *rand.Rand) string
}

// Literal is an endpoint with no dynamic parts.
type Literal string

func (l Literal) Resolve(*rand.Rand) string { return string(l) }

// Parameterized is an endpoint template with a single %s placeholder and a
// generator that produces the substitution value per request.
type Parameterized struct {
	Format   string
	Generate func(rng *rand.Rand) string
}

func (p Parameterized) Resolve(rng *rand.Rand) string {
	return fmt.Sprintf(p.Format, p.Generate(rng))
}

// searchTerms is the vocabulary used for generated search queries.
var searchTerms = []string{"laptop", "phone", "book", "shoes", "watch", "camera"}

// ProductPage returns a /product/{id} endpoint with a random item id in [1,1000].
func ProductPage() Endpoint {
	return Parameterized{
		Format: "/product/%s",
		Generate: func(rng *rand.Rand) string {
			return fmt.Sprintf("item%d", 1+rng.Intn(1000))
		},
	}
}

// SearchPage returns a /search?q={term} endpoint drawing from a fixed vocabulary.
func SearchPage() Endpoint {
	return Parameterized{
		Format: "/search?q=%s",
		Generate: func(rng *rand.Rand) string {
			return searchTerms[rng.Intn(len(searchTerms))]
		},
	}
}

// WeightedEndpoint pairs an endpoint with its selection weight. Weights need
// not sum to 1; they are normalized at selection time.
type WeightedEndpoint struct {
	Endpoint Endpoint
	Weight   float64
}

// DurationRange is a closed interval sampled uniformly.
type DurationRange struct {
	Min time.Duration
	Max time.Duration
}

// Sample draws a uniform duration from the range.
func (r DurationRange) Sample(rng *rand.Rand) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rng.Int63n(int64(r.Max-r.Min)))
}

// IntRange is a closed integer interval sampled uniformly.
type IntRange struct {
	Min int
	Max int
}

// Sample draws a uniform integer from [Min, Max].
func (r IntRange) Sample(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// Profile describes one user archetype. Profiles are immutable after startup
// and shared read-only across all sessions that select them.
type Profile struct {
	Name            string
	SessionDuration DurationRange
	PagesPerSession IntRange
	ThinkTime       DurationRange
	Endpoints       []WeightedEndpoint
}

// PickEndpoint performs an independent weighted draw over the profile's
// endpoints and resolves any placeholder. Draws are with replacement.
func (p *Profile) PickEndpoint(rng *rand.Rand) string {
	idx := pickWeighted(rng, len(p.Endpoints), func(i int) float64 { return p.Endpoints[i].Weight })
	return p.Endpoints[idx].Endpoint.Resolve(rng)
}

// Validate checks the structural invariants of the profile.
func (p *Profile) Validate() error {
	if len(p.Endpoints) == 0 {
		return fmt.Errorf("profile %q has no endpoints", p.Name)
	}
	total := 0.0
	for _, we := range p.Endpoints {
		if we.Weight < 0 {
			return fmt.Errorf("profile %q has a negative endpoint weight", p.Name)
		}
		total += we.Weight
	}
	if total == 0 {
		return fmt.Errorf("profile %q has all-zero endpoint weights", p.Name)
	}
	return nil
}

// Distribution maps profiles to selection weights; new sessions sample their
// archetype from it.
type Distribution struct {
	entries []distributionEntry
}

type distributionEntry struct {
	profile *Profile
	weight  float64
}

// NewDistribution builds a distribution from profile/weight pairs. Order is
// preserved so selection is deterministic for a seeded RNG.
func NewDistribution() *Distribution {
	return &Distribution{}
}

// Add registers a profile with the given selection weight.
func (d *Distribution) Add(p *Profile, weight float64) *Distribution {
	d.entries = append(d.entries, distributionEntry{profile: p, weight: weight})
	return d
}

// Pick performs a weighted draw with replacement; the same profile may back
// any number of concurrent sessions.
func (d *Distribution) Pick(rng *rand.Rand) *Profile {
	idx := pickWeighted(rng, len(d.entries), func(i int) float64 { return d.entries[i].weight })
	return d.entries[idx].profile
}

// Validate checks the distribution and every profile in it. A failure is a
// configuration fault, fatal at startup.
func (d *Distribution) Validate() error {
	if len(d.entries) == 0 {
		return fmt.Errorf("profile distribution is empty")
	}
	total := 0.0
	for _, e := range d.entries {
		if e.weight < 0 {
			return fmt.Errorf("profile %q has a negative selection weight", e.profile.Name)
		}
		total += e.weight
		if err := e.profile.Validate(); err != nil {
			return err
		}
	}
	if total == 0 {
		return fmt.Errorf("profile distribution weights are all zero")
	}
	return nil
}

// Len returns the number of profiles in the distribution.
func (d *Distribution) Len() int { return len(d.entries) }

// pickWeighted draws an index with probability proportional to its weight.
// Callers must have validated that weights are non-negative and not all zero.
func pickWeighted(rng *rand.Rand, n int, weight func(int) float64) int {
	total := 0.0
	for i := 0; i < n; i++ {
		total += weight(i)
	}
	r := rng.Float64() * total
	for i := 0; i < n; i++ {
		r -= weight(i)
		if r < 0 {
			return i
		}
	}
	return n - 1
}
