// Package reconcile drives a single NetBox object towards a desired state.
//
// A call moves through a fixed sequence of stages:
//
//	start -> resolving -> fetching -> comparing -> applying -> done
//
// with a terminal failed stage reachable from any non-terminal one. Resource
// types are described by Kind descriptors held in a Registry; the engine itself
// has no per-kind code. Adding a kind means registering a descriptor.
//
// # Planning and applying
//
// Engine.Plan performs the read-only stages and returns the decided action and
// delta. Engine.Apply executes a plan, or simulates it in dry-run mode without
// calling any mutating endpoint. Engine.Run composes both and never returns a Go
// error: failures are attached to the Outcome as a *Failure carrying the stage,
// a classification code and, for transport failures, the HTTP status and body.
//
// # Reporting
//
// Report turns an Outcome into the flat Result returned to callers (CLI and HTTP):
//
//	outcome := engine.Run(ctx, reconcile.Request{Kind: "platform", Data: data})
//	result := reconcile.Report(outcome)
//
// The engine does not retry. Only the API client retries idempotent reads.
package reconcile
