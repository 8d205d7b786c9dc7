// Package layout computes WGSL host-shareable memory layouts.
//
// These calculations determine the byte image the host must write into a
// storage or uniform buffer so the shader reads the fields it declares.
//
// # Layout Rules
//
// The WGSL memory layout rules:
//   - Scalars: size equals alignment (f32, i32, u32 = 4, f16 = 2)
//   - Vectors: vec2 aligns to twice the scalar, vec3 and vec4 to four times
//     it; vec3 therefore leaves a trailing hole when followed by a scalar of
//     a wider alignment class
//   - Matrices: an array of column vectors
//   - Arrays: element stride is the element size rounded to its alignment
//   - Structs: fields laid out sequentially with padding, size rounded up to
//     the largest field alignment
//   - Uniform blocks: additionally aligned and sized to 16 bytes
//
// # Usage
//
//	c := layout.NewCalculator()
//	info := c.Calculate(&layout.Struct{Name: "Particle", Fields: fields})
//	// info.Size, info.Align, info.FieldOffs available
//
// This package is internal to the host module generator.
package layout
