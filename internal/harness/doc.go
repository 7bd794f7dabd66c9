// Package harness provides the conformance testing framework for the
// translator.
//
// A scenario is a YAML file naming a model fixture, the backends to
// translate for, and the lint diagnostics the model is expected to
// produce. The runner decodes the model, lints it, translates it for every
// requested backend, and returns the emitted sources; golden comparison
// (goldie) pins the emitted text byte-for-byte, one golden file per
// (scenario, backend) pair.
//
// Everything the harness runs is deterministic: decoding, linting, and
// code generation have no clocks, no randomness, and no I/O beyond the
// fixture files, so golden files are stable across runs and platforms.
package harness
