// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hearth Contributors

// Package rng provides a seeded random number source as an App plugin.
// Handlers that need randomness declare *rng.Source as a parameter, so runs
// with the same seed and the same events are reproducible.
package rng

import (
	"math/rand/v2"

	"github.com/hearthrt/hearth/pkg/app"
)

// Source is a deterministic PCG generator. It is not safe for concurrent
// use, which matches handler execution on the App's goroutine.
type Source struct {
	seed  uint64
	r     *rand.Rand
	draws uint64
}

// New creates a source seeded with seed.
func New(seed uint64) *Source {
	return &Source{seed: seed, r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint64 { return s.seed }

// Draws returns how many values have been drawn.
func (s *Source) Draws() uint64 { return s.draws }

// IntN returns a value in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	s.draws++
	return s.r.IntN(n)
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	s.draws++
	return s.r.Float64()
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}

// Shuffle permutes n elements using swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.draws++
	s.r.Shuffle(n, swap)
}

// Config registers a Source seeded with Seed.
type Config struct {
	Seed uint64
}

// Apply implements app.Config.
func (c Config) Apply(b *app.Builder) error {
	return b.Plugins().Insert(New(c.Seed))
}

// LateEvaluation returns false.
func (Config) LateEvaluation() bool { return false }
