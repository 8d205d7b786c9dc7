// Package transpiler runs the compilation phases of a kernel module in their
// fixed order: parse, classify, validate, rewrite, derive, clean, compose and
// the optional verify.
//
// Every phase mutates one Unit. The first failing phase aborts the run and
// no partial artifacts are returned.
package transpiler

import (
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/shader"
	"github.com/wippyai/kernelc/syntax"
	"github.com/wippyai/kernelc/transpiler/internal/classify"
	"github.com/wippyai/kernelc/transpiler/internal/compose"
	"github.com/wippyai/kernelc/transpiler/internal/derive"
	"github.com/wippyai/kernelc/transpiler/internal/hostgen"
	"github.com/wippyai/kernelc/transpiler/internal/rewrite"
	"github.com/wippyai/kernelc/verify"
)

// Phase is one step of the pipeline.
type Phase struct {
	Name errors.Phase
	Run  func(*Transpiler, *Unit) error
}

// Phases returns the pipeline in execution order. Verify is last and only
// included when enabled.
func Phases(verifyOutput bool) []Phase {
	phases := []Phase{
		{errors.PhaseParse, (*Transpiler).runParse},
		{errors.PhaseClassify, (*Transpiler).runClassify},
		{errors.PhaseValidate, (*Transpiler).runValidate},
		{errors.PhaseRewrite, (*Transpiler).runRewrite},
		{errors.PhaseDerive, (*Transpiler).runDerive},
		{errors.PhaseClean, (*Transpiler).runClean},
		{errors.PhaseCompose, (*Transpiler).runCompose},
	}
	if verifyOutput {
		phases = append(phases, Phase{errors.PhaseVerify, (*Transpiler).runVerify})
	}
	return phases
}

// Transpiler compiles kernel sources with a fixed configuration. It holds
// no per-run state and may be reused.
type Transpiler struct {
	grammar        *semver.Version
	params         shader.Params
	pkg            string
	descriptorFunc string
	sourceName     string
	maxBindings    int
	group          uint32
	verifyOutput   bool
}

// New creates a transpiler with the given config.
func New(cfg Config) *Transpiler {
	if cfg.Grammar == nil {
		cfg.Grammar = syntax.GrammarVersion
	}
	fn := cfg.DescriptorFunc
	if fn == "" {
		fn = compose.DefaultFunc
	}
	maxBindings := cfg.MaxBindings
	if maxBindings == 0 {
		maxBindings = derive.DefaultMaxBindings
	}
	if maxBindings < 0 {
		maxBindings = 0
	}
	return &Transpiler{
		grammar:        cfg.Grammar,
		params:         cfg.Params,
		pkg:            cfg.Package,
		descriptorFunc: fn,
		sourceName:     cfg.SourceName,
		maxBindings:    maxBindings,
		group:          cfg.Group,
		verifyOutput:   cfg.Verify,
	}
}

// Run transpiles source. On success every artifact of the returned Unit is
// populated.
func (t *Transpiler) Run(source string) (*Unit, error) {
	u := &Unit{Source: source}
	log := Logger()

	for _, p := range Phases(t.verifyOutput) {
		start := time.Now()
		if err := p.Run(t, u); err != nil {
			log.Debug("phase failed",
				zap.String("phase", string(p.Name)),
				zap.String("module", u.Name()),
				zap.Error(err))
			return nil, err
		}
		u.Completed = append(u.Completed, string(p.Name))
		log.Debug("phase done",
			zap.String("phase", string(p.Name)),
			zap.String("module", u.Name()),
			zap.Duration("took", time.Since(start)))
	}

	log.Info("kernel transpiled",
		zap.String("module", u.Name()),
		zap.Int("wgsl_bytes", len(u.WGSL)),
		zap.Int("bindings", len(u.Library.Bindings)))
	return u, nil
}

func (t *Transpiler) runParse(u *Unit) error {
	file, err := syntax.Parse(u.Source)
	if err != nil {
		return err
	}
	u.File = file
	return nil
}

func (t *Transpiler) runClassify(u *Unit) error {
	node, err := classify.Select(u.File)
	if err != nil {
		return err
	}
	m, err := classify.Classify(node)
	if err != nil {
		return err
	}
	u.Module = m
	return nil
}

func (t *Transpiler) runValidate(u *Unit) error {
	return classify.Validate(u.Module)
}

func (t *Transpiler) runRewrite(u *Unit) error {
	r, err := rewrite.New(u.Source, u.Module, t.grammar)
	if err != nil {
		return err
	}
	d, err := r.Descriptor()
	if err != nil {
		return err
	}
	u.Descriptor = d
	return nil
}

func (t *Transpiler) deriveOptions() derive.Options {
	return derive.Options{Params: t.params, MaxBindings: t.maxBindings, Group: t.group}
}

func (t *Transpiler) runDerive(u *Unit) error {
	lib, err := derive.Derive(u.Descriptor, t.deriveOptions())
	if err != nil {
		return err
	}
	u.Library = lib
	return nil
}

func (t *Transpiler) packageName(module string) string {
	if t.pkg != "" {
		return t.pkg
	}
	return hostgen.PackageName(module)
}

func (t *Transpiler) runClean(u *Unit) error {
	host, err := hostgen.Build(u.Source, u.Module, hostgen.Options{
		Package:  t.packageName(u.Module.Name),
		Source:   t.sourceName,
		Params:   t.params,
		Reserved: []string{t.descriptorFunc, compose.ShaderPackage},
	})
	if err != nil {
		return err
	}
	u.Host = host
	return nil
}

func (t *Transpiler) runCompose(u *Unit) error {
	u.WGSL = compose.WGSL(u.Descriptor, u.Library)
	src, err := compose.GoFile(t.packageName(u.Module.Name), t.sourceName, u.Host.GoDecls, u.Descriptor, t.descriptorFunc)
	if err != nil {
		return err
	}
	u.GoSource = src
	return nil
}

func (t *Transpiler) runVerify(u *Unit) error {
	return verify.WGSL(u.WGSL)
}

// Recompose derives the library portion of a stored descriptor for the
// configured parameters and composes its shader, without parsing.
func (t *Transpiler) Recompose(d *shader.Descriptor) (*shader.LibraryPortion, string, error) {
	if d == nil || d.Entry == nil {
		return nil, "", errors.InvalidInput(errors.PhaseCompose, "descriptor has no entry function")
	}
	lib, err := derive.Derive(d, t.deriveOptions())
	if err != nil {
		return nil, "", err
	}
	wgsl := compose.WGSL(d, lib)
	if t.verifyOutput {
		if err := verify.WGSL(wgsl); err != nil {
			return nil, "", err
		}
	}
	return lib, wgsl, nil
}
