// Package llm carries the interface-only contract for the external
// LLM-assisted candidate path (§1: "the optional external-LLM path that
// produces candidate assignments from a prompt" is an external
// collaborator, out of the core's scope). Nothing here imports an LLM
// client; the Generator Orchestrator accepts a CandidateSource and treats
// it exactly like any other optional, timeout-bound collaborator (§5:
// "External LLM calls ... must carry a timeout and, on expiry, surface as
// a warning rather than aborting the run -- unless the LLM path was the
// sole assignment source").
package llm

import (
	"context"
	"time"

	"github.com/retailshift/scheduler/internal/entity"
)

// Request describes one shortfall the orchestrator would like the
// collaborator to propose candidates for.
type Request struct {
	Date              entity.Date
	IntervalStart     int // minutes since midnight, matches timeutil.TimeOfDay's underlying unit
	MinEmployees      int
	MaxEmployees      int
	RequiresKeyholder bool
	AllowedGroups     []entity.Group
	Prompt            string
}

// Candidate is one proposed (employee, template) pair. The orchestrator
// still runs it through the Constraint Checker before accepting it --
// the collaborator's output is advisory, never trusted outright.
type Candidate struct {
	EmployeeID      entity.EmployeeID
	ShiftTemplateID entity.ShiftTemplateID
	Rationale       string
}

// CandidateSource is implemented by whatever external process turns a
// prompt into proposed assignments. The core ships no implementation.
type CandidateSource interface {
	// Propose returns candidates for req, ordered best-first. ctx carries
	// the caller's timeout; implementations must return promptly on
	// ctx.Done() rather than block past it.
	Propose(ctx context.Context, req Request) ([]Candidate, error)
}

// DefaultTimeout bounds one Propose call when the caller does not
// override it (§5).
const DefaultTimeout = 10 * time.Second
