package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/kernelc"
	"github.com/wippyai/kernelc/errors"
	"github.com/wippyai/kernelc/transpiler"
)

type options struct {
	inputs      []string
	outDir      string
	configPath  string
	lengths     string
	x, y, z     uint64
	pkg         string
	funcName    string
	maxBindings int
	writeYAML   bool
	verify      bool
	interactive bool
	verbose     bool
	set         map[string]bool
}

func main() {
	var opts options
	var in string
	flag.StringVar(&in, "in", "", "Kernel source files (comma-separated)")
	flag.StringVar(&opts.outDir, "out", "", "Output directory (default: next to the source)")
	flag.StringVar(&opts.configPath, "config", "", "TOML config file (default: kernelc.toml if present)")
	flag.Uint64Var(&opts.x, "x", 1, "Iteration space X")
	flag.Uint64Var(&opts.y, "y", 1, "Iteration space Y")
	flag.Uint64Var(&opts.z, "z", 1, "Iteration space Z")
	flag.StringVar(&opts.lengths, "len", "", "Array lengths (Name=N,Name2=N)")
	flag.StringVar(&opts.pkg, "pkg", "", "Go package of the generated file (default: module name)")
	flag.StringVar(&opts.funcName, "func", "", "Name of the generated descriptor function")
	flag.IntVar(&opts.maxBindings, "max-bindings", 0, "Binding slot limit (negative disables)")
	flag.BoolVar(&opts.writeYAML, "yaml", false, "Also write the descriptor as YAML")
	flag.BoolVar(&opts.verify, "verify", false, "Parse the emitted WGSL with naga")
	flag.BoolVar(&opts.interactive, "i", false, "Inspect the result in a TUI")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Parse()

	opts.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if in != "" {
		opts.inputs = strings.Split(in, ",")
	}
	opts.inputs = append(opts.inputs, flag.Args()...)

	if len(opts.inputs) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: kernelc -in <kernel.rs>[,<kernel2.rs>] [-out dir] [-config kernelc.toml]")
		fmt.Fprintln(os.Stderr, "       kernelc -in <kernel.rs> -x 100 -y 100 -len Position=100,Hit=4950")
		fmt.Fprintln(os.Stderr, "       kernelc -in <kernel.rs> -i  (interactive mode)")
		os.Exit(1)
	}

	log, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	transpiler.SetLogger(log)

	if err := run(opts, log); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func run(opts options, log *zap.Logger) error {
	fileCfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	cfg, outDir, writeYAML, err := buildConfig(fileCfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	sources := make([]kernelc.Source, 0, len(opts.inputs))
	for _, path := range opts.inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: read %s: %v\n", path, err)
			return err
		}
		sources = append(sources, kernelc.Source{Name: path, Text: string(data)})
	}

	outcomes := kernelc.CompileAll(sources, cfg)

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			err := fmt.Errorf("interactive mode needs a terminal")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		if err := runInteractive(sources, outcomes); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		return nil
	}

	var failed error
	for i, o := range outcomes {
		if o.Err != nil {
			report(os.Stderr, sources[i], o.Err)
			failed = o.Err
			continue
		}
		written, err := writeArtifacts(o, outDir, writeYAML)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", o.Name, err)
			failed = err
			continue
		}
		log.Info("kernel written", zap.String("source", o.Name), zap.Strings("files", written))
		for _, w := range written {
			fmt.Println(w)
		}
	}
	return failed
}

// report prints err with source context, coloured when f is a terminal.
func report(f *os.File, src kernelc.Source, err error) {
	fmt.Fprintf(f, "%s: %s\n", src.Name, formatError(src, err, term.IsTerminal(int(f.Fd()))))
}

func formatError(src kernelc.Source, err error, colour bool) string {
	msg := err.Error()
	var e *errors.Error
	if stderrors.As(err, &e) {
		msg = e.FormatWithContext(src.Text)
	}
	if colour {
		msg = errorStyle.Render(msg)
	}
	return msg
}

func writeArtifacts(o kernelc.Outcome, outDir string, writeYAML bool) ([]string, error) {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(o.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	name := o.Result.Descriptor.Name
	files := map[string][]byte{
		name + ".wgsl":   []byte(o.Result.WGSL),
		name + "_gen.go": o.Result.GoSource,
	}
	order := []string{name + ".wgsl", name + "_gen.go"}
	if writeYAML {
		data, err := o.Result.Descriptor.YAML()
		if err != nil {
			return nil, err
		}
		files[name+".yaml"] = data
		order = append(order, name+".yaml")
	}

	var written []string
	for _, f := range order {
		path := filepath.Join(dir, f)
		if err := os.WriteFile(path, files[f], 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// parseLengths reads "Name=N,Name2=N".
func parseLengths(s string) (map[string]uint32, error) {
	out := make(map[string]uint32)
	if s == "" {
		return out, nil
	}
	for _, kv := range strings.Split(s, ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("length %q: want Name=N", kv)
		}
		n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("length %q: %w", kv, err)
		}
		out[strings.TrimSpace(parts[0])] = uint32(n)
	}
	return out, nil
}
