// Package synth produces the per-iteration parameter vectors. Output is a
// pure function of the seed: the generator is a frozen xorshift128 so that
// vectors stay byte-identical across processes, platforms and Go releases.
package synth

const (
	// Multiplier used to expand the seed into the generator state.
	seedMultiplier uint32 = 1812433253

	// Values are built from the low 23 bits of each draw.
	mantissaBits  = 23
	mantissaMask  = 1<<mantissaBits - 1
	mantissaScale = 1.0 / float32(1<<mantissaBits)
)

// Source is a xorshift128 generator.
type Source struct {
	x, y, z, w uint32
}

// Create a source initialized with seed.
func NewSource(seed int64) *Source {
	s := &Source{}
	s.Seed(seed)
	return s
}

// Reset the generator state from seed. The low 32 bits seed x and the bits
// that do not fit a sign extended int32 are folded into y, so every int64
// seed maps to a distinct state and int32 seeds keep their sequences.
func (s *Source) Seed(seed int64) {
	high := uint32((seed - int64(int32(seed))) >> 32)
	s.x = uint32(seed)
	s.y = s.x*seedMultiplier + 1 + high
	s.z = s.y*seedMultiplier + 1
	s.w = s.z*seedMultiplier + 1
}

// Get the next 32-bit value.
func (s *Source) Uint32() uint32 {
	t := s.x ^ (s.x << 11)
	s.x, s.y, s.z = s.y, s.z, s.w
	s.w = s.w ^ (s.w >> 19) ^ t ^ (t >> 8)
	return s.w
}

// Get a value uniformly distributed in [0, 1).
func (s *Source) Float32() float32 {
	return float32(s.Uint32()&mantissaMask) * mantissaScale
}

// Synthesizer produces parameter vectors for a fixed object layout.
type Synthesizer struct {
	objectCount     int
	paramsPerObject int
}

// Create a synthesizer for objectCount objects with paramsPerObject values each.
func New(objectCount, paramsPerObject int) *Synthesizer {
	return &Synthesizer{
		objectCount:     objectCount,
		paramsPerObject: paramsPerObject,
	}
}

// Length of the vectors returned by Synthesize.
func (sy *Synthesizer) Len() int {
	return sy.objectCount * sy.paramsPerObject
}

// Synthesize the parameter vector for seed. Values are drawn object-major:
// index i*paramsPerObject+p holds attribute p of object i.
func (sy *Synthesizer) Synthesize(seed int) []float32 {
	out := make([]float32, sy.Len())
	sy.SynthesizeInto(seed, out)
	return out
}

// Synthesize into a caller supplied slice which must hold at least Len() values.
func (sy *Synthesizer) SynthesizeInto(seed int, out []float32) {
	src := NewSource(int64(seed))
	for i := 0; i < sy.objectCount; i++ {
		base := i * sy.paramsPerObject
		for p := 0; p < sy.paramsPerObject; p++ {
			out[base+p] = src.Float32()
		}
	}
}
