package shader

// IterationSpace is the number of invocations along each axis.
type IterationSpace struct {
	X uint32 `yaml:"x" toml:"x"`
	Y uint32 `yaml:"y" toml:"y"`
	Z uint32 `yaml:"z" toml:"z"`
}

// Dimensions returns 3 when every axis exceeds one, 2 when x and y do and z
// is one, and 1 otherwise.
func (s IterationSpace) Dimensions() int {
	switch {
	case s.X > 1 && s.Y > 1 && s.Z > 1:
		return 3
	case s.X > 1 && s.Y > 1 && s.Z == 1:
		return 2
	default:
		return 1
	}
}

// WorkgroupSize is the invocation count of one workgroup per axis.
type WorkgroupSize struct {
	X, Y, Z uint32
}

// WorkgroupSize picks 64x1x1, 8x8x1 or 4x4x4 by dimension count.
func (s IterationSpace) WorkgroupSize() WorkgroupSize {
	switch s.Dimensions() {
	case 3:
		return WorkgroupSize{X: 4, Y: 4, Z: 4}
	case 2:
		return WorkgroupSize{X: 8, Y: 8, Z: 1}
	default:
		return WorkgroupSize{X: 64, Y: 1, Z: 1}
	}
}

// Dispatch returns the number of workgroups needed to cover the space.
func (s IterationSpace) Dispatch() WorkgroupSize {
	wg := s.WorkgroupSize()
	return WorkgroupSize{
		X: ceilDiv(max(s.X, 1), wg.X),
		Y: ceilDiv(max(s.Y, 1), wg.Y),
		Z: ceilDiv(max(s.Z, 1), wg.Z),
	}
}

func ceilDiv(a, b uint32) uint32 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// Params values the pipeline constants of a composed shader. Changing any
// field requires recomposing the shader text.
type Params struct {
	IterationSpace IterationSpace `yaml:"iteration_space" toml:"iteration_space"`
	// Lengths maps an array item type name to its element count.
	Lengths map[string]uint32 `yaml:"lengths" toml:"lengths"`
	// DefaultLength applies to arrays missing from Lengths.
	DefaultLength uint32 `yaml:"default_length" toml:"default_length"`
}

// DefaultParams is a single invocation with one-element arrays.
func DefaultParams() Params {
	return Params{
		IterationSpace: IterationSpace{X: 1, Y: 1, Z: 1},
		DefaultLength:  1,
	}
}

// Length returns the element count for the array of item type name.
func (p Params) Length(name string) uint32 {
	if n, ok := p.Lengths[name]; ok && n > 0 {
		return n
	}
	if p.DefaultLength > 0 {
		return p.DefaultLength
	}
	return 1
}
