package sim

import (
	"hash/fnv"
	"math/rand"
)

// RandomSource yields uniform draws in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// SubsystemFailures is the RNG subsystem for machine failure sampling.
const SubsystemFailures = "failures"

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
// Derived seed = masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// FixedSource replays a fixed sequence of draws, cycling when exhausted.
// Useful for forcing failure outcomes.
type FixedSource struct {
	Values []float64
	next   int
}

// Float64 returns the next value in the sequence, or 0.5 if empty.
func (f *FixedSource) Float64() float64 {
	if len(f.Values) == 0 {
		return 0.5
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}
