package shader

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TypeName is the (canonical, uppercase, lowercase) triple every synthetic
// identifier is derived from.
type TypeName struct {
	Name  string `yaml:"name"`
	Upper string `yaml:"upper"`
	Lower string `yaml:"lower"`
}

// NewTypeName derives the triple for name.
func NewTypeName(name string) TypeName {
	return TypeName{
		Name:  name,
		Upper: cases.Upper(language.Und).String(name),
		Lower: cases.Lower(language.Und).String(name),
	}
}

// Direction distinguishes input from output arrays.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

func (d Direction) upper() string {
	if d == Output {
		return "OUTPUT"
	}
	return "INPUT"
}

// Workgroup size constant names.
const (
	WorkgroupSizeX = "WORKGROUP_SIZE_X"
	WorkgroupSizeY = "WORKGROUP_SIZE_Y"
	WorkgroupSizeZ = "WORKGROUP_SIZE_Z"
)

// ArrayAlias returns lower(T) + "_input_array" or "_output_array".
func ArrayAlias(t TypeName, d Direction) string {
	return t.Lower + "_" + d.String() + "_array"
}

// LengthConst returns UPPER(T) + "_INPUT_ARRAY_LENGTH" or "_OUTPUT_ARRAY_LENGTH".
func LengthConst(t TypeName, d Direction) string {
	return t.Upper + "_" + d.upper() + "_ARRAY_LENGTH"
}

// CounterName returns lower(T) + "_counter".
func CounterName(t TypeName) string {
	return t.Lower + "_counter"
}

// BufferVar names the storage variable bound for an array.
func BufferVar(t TypeName, d Direction) string {
	return t.Lower + "_" + d.String()
}

// UniformVar names the uniform variable bound for a config struct.
func UniformVar(t TypeName) string {
	return t.Lower
}

// PushHelper names the injected append function of a counted output array.
func PushHelper(t TypeName) string {
	return t.Lower + "_output_push"
}
