// Package writers turns report payloads into serialized outputs.
//
// Design:
//   - Writers own the format choice; report owns the rendering of each format.
//   - Taxtree stays domain-only and never writes anything.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
