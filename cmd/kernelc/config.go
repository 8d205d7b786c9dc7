package main

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/wippyai/kernelc"
	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
)

// defaultConfigFile is read from the working directory when -config is not
// given.
const defaultConfigFile = "kernelc.toml"

// fileConfig is the kernelc.toml schema:
//
//	out = "gen"
//	package = "kernels"
//	verify = true
//
//	[params.iteration_space]
//	x = 100
//	y = 100
//	z = 1
//
//	[params.lengths]
//	Position = 100
//	CollisionResult = 4950
type fileConfig struct {
	Out            string        `toml:"out"`
	Package        string        `toml:"package"`
	DescriptorFunc string        `toml:"descriptor_func"`
	MaxBindings    int           `toml:"max_bindings"`
	Group          uint32        `toml:"group"`
	YAML           bool          `toml:"yaml"`
	Verify         bool          `toml:"verify"`
	Params         shader.Params `toml:"params"`
}

// loadConfig reads path, or kernelc.toml when path is empty. A missing
// default file is not an error.
func loadConfig(path string) (fileConfig, error) {
	var fc fileConfig
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return fc, nil
		}
		return fc, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read "+path)
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse "+path)
	}
	return fc, nil
}

// buildConfig layers defaults, the config file and explicitly set flags, in
// that order.
func buildConfig(fc fileConfig, opts options) (kernelc.Config, string, bool, error) {
	cfg := kernelc.DefaultConfig()

	if fc.Params.IterationSpace != (shader.IterationSpace{}) {
		cfg.Params.IterationSpace = fc.Params.IterationSpace
	}
	if fc.Params.DefaultLength > 0 {
		cfg.Params.DefaultLength = fc.Params.DefaultLength
	}
	cfg.Params.Lengths = make(map[string]uint32)
	for k, v := range fc.Params.Lengths {
		cfg.Params.Lengths[k] = v
	}
	cfg.Package = fc.Package
	if fc.DescriptorFunc != "" {
		cfg.DescriptorFunc = fc.DescriptorFunc
	}
	if fc.MaxBindings != 0 {
		cfg.MaxBindings = fc.MaxBindings
	}
	cfg.Group = fc.Group
	cfg.Verify = fc.Verify
	outDir, writeYAML := fc.Out, fc.YAML

	for _, axis := range []struct {
		flag string
		v    uint64
		dst  *uint32
	}{
		{"x", opts.x, &cfg.Params.IterationSpace.X},
		{"y", opts.y, &cfg.Params.IterationSpace.Y},
		{"z", opts.z, &cfg.Params.IterationSpace.Z},
	} {
		if !opts.set[axis.flag] {
			continue
		}
		if axis.v > math.MaxUint32 {
			return cfg, "", false, errors.InvalidInput(errors.PhaseConfig,
				fmt.Sprintf("-%s %d exceeds %d", axis.flag, axis.v, uint64(math.MaxUint32)))
		}
		*axis.dst = uint32(axis.v)
	}
	if opts.set["len"] {
		lengths, err := parseLengths(opts.lengths)
		if err != nil {
			return cfg, "", false, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "-len")
		}
		for k, v := range lengths {
			cfg.Params.Lengths[k] = v
		}
	}
	if opts.set["pkg"] {
		cfg.Package = opts.pkg
	}
	if opts.set["func"] {
		cfg.DescriptorFunc = opts.funcName
	}
	if opts.set["max-bindings"] {
		cfg.MaxBindings = opts.maxBindings
	}
	if opts.set["verify"] {
		cfg.Verify = opts.verify
	}
	if opts.set["out"] {
		outDir = opts.outDir
	}
	if opts.set["yaml"] {
		writeYAML = opts.writeYAML
	}

	is := cfg.Params.IterationSpace
	if is.X == 0 || is.Y == 0 || is.Z == 0 {
		return cfg, "", false, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("iteration space %dx%dx%d has a zero dimension", is.X, is.Y, is.Z))
	}
	return cfg, outDir, writeYAML, nil
}
