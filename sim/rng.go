package sim

import (
	"hash/fnv"
	"math/rand"
)

// Names of the random streams of one simulated device.
const (
	// StreamArrivals draws the task arrival of each tick. Seeded with the
	// run seed itself, so arrivals only depend on the seed and alpha.
	StreamArrivals = "arrivals"

	// StreamTransmission draws whether the TU completes its packet.
	StreamTransmission = "transmission"

	// StreamDecisions samples actions from stochastic policies.
	StreamDecisions = "decisions"
)

// RandomStreams hands out one generator per source of randomness of a run.
// Every policy evaluated with the same seed sees the same arrivals and
// packet completions, however many decision samples it draws.
//
// A stream other than arrivals is seeded with seed XOR fnv1a64(name).
// Not safe for concurrent use; each run owns its streams.
type RandomStreams struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewRandomStreams returns the streams of a run seeded with seed.
func NewRandomStreams(seed int64) *RandomStreams {
	return &RandomStreams{seed: seed, streams: make(map[string]*rand.Rand)}
}

// Stream returns the generator for name, creating it on first use.
func (r *RandomStreams) Stream(name string) *rand.Rand {
	if rng, ok := r.streams[name]; ok {
		return rng
	}
	seed := r.seed
	if name != StreamArrivals {
		seed ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(seed))
	r.streams[name] = rng
	return rng
}

// Seed returns the run seed.
func (r *RandomStreams) Seed() int64 {
	return r.seed
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
