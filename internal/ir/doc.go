// Package ir defines the role-annotated, index-normalized intermediate
// representation of a probabilistic model, the canonical distribution
// catalog, and the backend descriptors.
//
// An ir.Model is built exactly once per translation request from a linted
// AST and its symbol table. It is immutable after Build returns: backend
// generators only read it, which is what allows several backends to
// translate the same model concurrently without synchronization.
//
// Three normalizations happen here rather than in the backends:
//
//   - Role finalization: a sample target whose name is also the subject of
//     an observe statement is Observed; all other sample targets are Latent.
//   - Index tagging: every index node carries NeedsOffset (source indices
//     are zero-based, at least one target framework is one-based) and, where
//     the index is fed by a real-stored discrete draw, RequiresTrunc. The
//     tags record facts; each backend decides what to emit for them.
//   - Distribution canonicalization: every distribution call is resolved
//     against the fixed catalog in dist.go. Unknown names fail the build
//     with a CodegenError carrying the source position.
package ir
