package layout

import "fmt"

// Type is a WGSL host-shareable type.
type Type interface {
	// WGSL returns the type's WGSL spelling.
	WGSL() string
}

// Scalar is f32, f16, i32, u32 or bool.
type Scalar struct {
	Name string
}

func (s Scalar) WGSL() string { return s.Name }

// Vector is vecN<T>.
type Vector struct {
	Elem Scalar
	N    uint32
}

func (v Vector) WGSL() string { return fmt.Sprintf("vec%d<%s>", v.N, v.Elem.Name) }

// Matrix is matCxR<T>, stored as C column vectors of R rows.
type Matrix struct {
	Elem Scalar
	Cols uint32
	Rows uint32
}

func (m Matrix) WGSL() string { return fmt.Sprintf("mat%dx%d<%s>", m.Cols, m.Rows, m.Elem.Name) }

// Array is a fixed-length array<T, N>.
type Array struct {
	Elem Type
	Len  uint32
}

func (a Array) WGSL() string { return fmt.Sprintf("array<%s, %d>", a.Elem.WGSL(), a.Len) }

type Field struct {
	Name string
	Type Type
}

// Struct is a named structure. Calculator caches by pointer.
type Struct struct {
	Name   string
	Fields []Field
}

func (s *Struct) WGSL() string { return s.Name }

// Info is the memory layout of a type.
type Info struct {
	Size  uint32
	Align uint32
	// Stride is the element stride of an array.
	Stride    uint32
	FieldOffs []uint32
}

// UniformAlign is the minimum alignment of a uniform buffer block.
const UniformAlign = 16

type Calculator struct {
	cache map[*Struct]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*Struct]Info),
	}
}

// AlignTo rounds offset up to a multiple of align, which must be a power of
// two.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func scalarSize(s Scalar) uint32 {
	if s.Name == "f16" {
		return 2
	}
	// bool is not host-shareable; hosts exchange it as a 32-bit word.
	return 4
}

func (c *Calculator) Calculate(t Type) Info {
	switch typ := t.(type) {
	case Scalar:
		n := scalarSize(typ)
		return Info{Size: n, Align: n}
	case Vector:
		n := scalarSize(typ.Elem)
		align := 2 * n
		if typ.N > 2 {
			align = 4 * n
		}
		return Info{Size: typ.N * n, Align: align}
	case Matrix:
		col := c.Calculate(Vector{Elem: typ.Elem, N: typ.Rows})
		stride := AlignTo(col.Size, col.Align)
		return Info{Size: typ.Cols * stride, Align: col.Align, Stride: stride}
	case Array:
		elem := c.Calculate(typ.Elem)
		stride := AlignTo(elem.Size, elem.Align)
		return Info{Size: typ.Len * stride, Align: elem.Align, Stride: stride}
	case *Struct:
		return c.calculateStruct(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) calculateStruct(s *Struct) Info {
	if cached, ok := c.cache[s]; ok {
		return cached
	}
	if len(s.Fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	fieldOffs := make([]uint32, len(s.Fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, field := range s.Fields {
		fieldLayout := c.Calculate(field.Type)

		offset = AlignTo(offset, fieldLayout.Align)
		fieldOffs[i] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		offset += fieldLayout.Size
	}

	info := Info{
		Size:      AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}
	c.cache[s] = info
	return info
}

// Uniform returns the layout of s bound as a uniform block: alignment and
// size rounded up to 16 bytes.
func (c *Calculator) Uniform(s *Struct) Info {
	info := c.calculateStruct(s)
	if info.Align < UniformAlign {
		info.Align = UniformAlign
	}
	info.Size = AlignTo(info.Size, info.Align)
	return info
}

// UniformViolation reports the first member of s that breaks the uniform
// address space rules: array strides and the alignment of nested structs
// must be multiples of 16. path names the offending member from s down;
// reason is empty when s is valid.
func (c *Calculator) UniformViolation(s *Struct) (path []string, reason string) {
	for _, f := range s.Fields {
		if sub, why := c.uniformMember(f.Type); why != "" {
			return append([]string{f.Name}, sub...), why
		}
	}
	return nil, ""
}

func (c *Calculator) uniformMember(t Type) ([]string, string) {
	switch typ := t.(type) {
	case Array:
		if stride := c.Calculate(typ).Stride; stride%UniformAlign != 0 {
			return nil, fmt.Sprintf("%s has stride %d, uniform arrays need a multiple of %d",
				typ.WGSL(), stride, UniformAlign)
		}
		return c.uniformMember(typ.Elem)
	case *Struct:
		if align := c.Calculate(typ).Align; align%UniformAlign != 0 {
			return nil, fmt.Sprintf("struct %s has alignment %d, uniform struct members need %d",
				typ.Name, align, UniformAlign)
		}
		return c.UniformViolation(typ)
	}
	return nil, ""
}
