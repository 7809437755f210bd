// Package llm defines the reasoning-service boundary. The pipeline treats a
// reasoning service as an opaque text-completion call; the role a call plays
// in the trial is an explicit parameter, never inferred from prompt text.
package llm

import "context"

// Role identifies which part a reasoning call plays in a trial.
type Role string

const (
	RoleAdvocateYes Role = "advocate_yes"
	RoleAdvocateNo  Role = "advocate_no"
	RoleJudge       Role = "judge"
)

// Request is one completion request.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Completion is the raw reasoning-service output plus provenance.
type Completion struct {
	Content string // Treated downstream as a JSON document; schema mismatch fails loudly
	Model   string // Which model actually answered
}

// Client is the boundary to one reasoning service.
type Client interface {
	// Complete performs a single completion call. Implementations must honor
	// ctx cancellation; a timed-out call fails the whole trial, there is no
	// safe default output.
	Complete(ctx context.Context, role Role, req Request) (*Completion, error)

	// Model returns the configured model tag for provenance stamping.
	Model() string
}
