package shader

// HostField is one field of a host-shareable struct.
type HostField struct {
	Name     string `yaml:"name"`
	GoName   string `yaml:"go_name"`
	WGSLType string `yaml:"wgsl_type"`
	GoType   string `yaml:"go_type"`
	Offset   uint32 `yaml:"offset"`
	Size     uint32 `yaml:"size"`
	Align    uint32 `yaml:"align"`
}

// HostType is the memory layout of a type the host exchanges with the GPU.
type HostType struct {
	Name   string      `yaml:"name"`
	Kind   DeclKind    `yaml:"kind"`
	Size   uint32      `yaml:"size"`
	Align  uint32      `yaml:"align"`
	Fields []HostField `yaml:"fields,omitempty"`
}

// HostModule is the host-usable form of a kernel module: the authored text
// with markers stripped, the layouts of every data type and Go declarations
// mirroring them.
type HostModule struct {
	Cleaned string     `yaml:"-"`
	Types   []HostType `yaml:"types"`
	// GoDecls holds the Go declarations without package clause or imports.
	GoDecls  string `yaml:"-"`
	GoSource []byte `yaml:"-"`
}

// Type returns the layout of the type named name.
func (m *HostModule) Type(name string) (HostType, bool) {
	for _, t := range m.Types {
		if t.Name == name {
			return t, true
		}
	}
	return HostType{}, false
}
