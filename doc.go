// Package kernelc transpiles GPU compute kernels written in an annotated,
// Rust-like authoring grammar into WGSL shader text plus a host-side
// descriptor of every data surface the shader declares.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	kernelc/             Root package: Compile, Recompose and Result
//	├── syntax/          Authoring grammar lexer and parser
//	├── ast/             Syntax tree, node kinds and generic traversal
//	├── shader/          Descriptor, library portion, bindings and params
//	├── transpiler/      Phase pipeline, configuration and logging
//	│   └── internal/    classify, rewrite, derive, hostgen, compose
//	├── verify/          WGSL check through the naga compiler
//	├── errors/          Structured error types for diagnostics
//	└── cmd/kernelc/     Command line tool and descriptor inspector
//
// # Quick Start
//
//	res, err := kernelc.Compile(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.WGSL)
//	for _, b := range res.Library.Bindings {
//	    fmt.Println(b.Slot, b.Name, b.Kind)
//	}
//
// # Authoring Markers
//
// A kernel is one module marked #[wgsl_shader_module]. Inside it:
//
//   - #[wgsl_config] struct: a uniform block
//   - #[wgsl_input_array] type alias or struct: the item type of an input array
//   - #[wgsl_output_array] struct: the item type of an output array;
//     #[wgsl_output_array(counter)] adds an atomic counter
//   - #[wgsl_output_vec] struct: an output array that always has a counter
//   - fn main(global_id: WgslGlobalId): the kernel entry
//
// Every other struct, alias, const and function is carried over as a helper.
//
// # Generated Names
//
// For an array item type T the transpiler derives, byte for byte:
//
//	lower(T)_input_array, lower(T)_output_array     array aliases
//	UPPER(T)_INPUT_ARRAY_LENGTH, ..._OUTPUT_...     length constants
//	lower(T)_input, lower(T)_output                 storage buffers
//	lower(T)_counter, lower(T)_output_push          counter and its helper
//
// # Error Handling
//
// All failures are *errors.Error values carrying the phase, a kind such as
// definition or type_mapping, the declaration path and a source span:
//
//	var e *errors.Error
//	if stderrors.As(err, &e) {
//	    fmt.Print(e.FormatWithContext(src))
//	}
package kernelc
