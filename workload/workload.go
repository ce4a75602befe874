// Package workload generates synthetic cache access patterns: streams of
// non-negative integer keys drawn from distributions that stress different
// aspects of an eviction policy. Generators are deterministic for a given
// seeded rand source.
package workload

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// MaxKey is the default exclusive upper bound of the generated key space.
const MaxKey = int64(1) << 32

// Generator produces the next key of an access stream.
type Generator func() int64

// wrap folds v back into [minv, maxv).
func wrap(v, minv, maxv float64) float64 {
	if v < minv {
		return v + (maxv - minv)
	}
	if v >= maxv {
		return v - (maxv - minv)
	}
	return v
}

// Expo generates keys with an exponential distribution: half of all accesses
// fall below offset+median.
func Expo(r *rand.Rand, median, offset float64) (Generator, error) {
	if median <= 0 {
		return nil, errors.Errorf("workload: expo median must be positive, got %v", median)
	}
	mult := median / math.Ln2
	return func() int64 {
		return int64(r.ExpFloat64()*mult + offset)
	}, nil
}

// Walk generates a stochastic gaussian walk: the distribution center drifts
// by a normal step of the given variance each access, wrapping between minv
// and maxv.
func Walk(r *rand.Rand, variance, start, minv, maxv float64) (Generator, error) {
	if variance <= 0 {
		return nil, errors.Errorf("workload: walk variance must be positive, got %v", variance)
	}
	mu := start
	sigma := math.Sqrt(variance)
	return func() int64 {
		mu = wrap(r.NormFloat64()*sigma+mu, minv, maxv)
		return int64(mu)
	}, nil
}

// Scan generates a linear scan from start with the given step, wrapping
// between minv and maxv. Fractional steps are kept exactly; only the yielded
// key is truncated.
func Scan(start, step, minv, maxv float64) (Generator, error) {
	if step == 0 {
		return nil, errors.Errorf("workload: scan step must be non-zero")
	}
	value := start
	return func() int64 {
		k := int64(value)
		value = wrap(value+step, minv, maxv)
		return k
	}, nil
}

// Jump generates an exponential distribution whose offset jumps by
// dist*median every wait*median accesses.
func Jump(r *rand.Rand, median, start, dist, wait float64) (Generator, error) {
	egen, err := Expo(r, median, 0)
	if err != nil {
		return nil, err
	}
	duration := int(wait * median)
	if duration < 1 {
		return nil, errors.Errorf("workload: jump wait*median must be at least 1, got %v", wait*median)
	}
	offset := start
	n := 0
	return func() int64 {
		if n == duration {
			n = 0
			offset += dist * median
		}
		n++
		return egen() + int64(offset)
	}, nil
}

// Wave generates a sliding exponential wave: a linear scan minus an
// exponential backward tail, wrapped between minv and maxv.
func Wave(r *rand.Rand, median, start, step, minv, maxv float64) (Generator, error) {
	egen, err := Expo(r, median, 0)
	if err != nil {
		return nil, err
	}
	sgen, err := Scan(start, step, minv, maxv)
	if err != nil {
		return nil, err
	}
	return func() int64 {
		return int64(wrap(float64(sgen()-egen()), minv, maxv))
	}, nil
}

// Cycle combines generators by cycling through them access by access.
func Cycle(gens ...Generator) Generator {
	i := 0
	return func() int64 {
		k := gens[i]()
		i = (i + 1) % len(gens)
		return k
	}
}

// Mixed is a nasty mixture sized for a cache of the given size: an
// exponential working set, a jumping one, a sliding wave and a pure scan,
// interleaved.
func Mixed(r *rand.Rand, size float64) (Generator, error) {
	g1, err := Expo(r, size, 0)
	if err != nil {
		return nil, err
	}
	g2, err := Jump(r, size, 4*size, 4, 16)
	if err != nil {
		return nil, err
	}
	g3, err := Wave(r, size/2, 8*size, 0.25, 0, float64(MaxKey))
	if err != nil {
		return nil, err
	}
	g4, err := Scan(0, 1, 0, float64(MaxKey))
	if err != nil {
		return nil, err
	}
	return Cycle(g1, g2, g3, g4), nil
}
