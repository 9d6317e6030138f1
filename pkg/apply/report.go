package apply

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Outcome is what happened to one (agent, skill) pair
type Outcome string

// Outcomes
const (
	Created   Outcome = "created"
	Unchanged Outcome = "unchanged"
	Replaced  Outcome = "replaced"
	Conflict  Outcome = "conflict"
	Failed    Outcome = "failed"
)

// Result records the outcome for one (agent, skill) pair
type Result struct {
	Agent   string  `json:"agent"`
	Skill   string  `json:"skill"`
	Target  string  `json:"target"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// Report collects results and warnings from one apply run. Warnings are
// kept in the order they were raised.
type Report struct {
	Results  []Result
	Warnings []string

	errs *multierror.Error
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	if res.Err != nil {
		r.errs = multierror.Append(r.errs, errors.Wrapf(res.Err, "%s/%s", res.Agent, res.Skill))
	}
}

// Count returns how many pairs ended with outcome
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Err aggregates every failed pair, or returns nil
func (r *Report) Err() error {
	return r.errs.ErrorOrNil()
}
