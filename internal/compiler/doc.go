// Package compiler decodes the CUE interchange document produced by a
// model frontend into the AST. The concrete parser for the surface syntax
// is an external collaborator; its boundary artifact is a CUE value with
// kind-discriminated statement and expression nodes, each carrying the
// source position of the construct it encodes.
//
// Decoding uses the CUE SDK's Go API directly (not a CLI subprocess) and
// fails with *CompileError carrying the CUE source position.
package compiler
