package pipeline

import (
	"fmt"
	"time"

	"github.com/i474232898/goes-imagery/internal/imagery"
	"github.com/i474232898/goes-imagery/internal/render"
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageLookup    Stage = "lookup"
	StageFetch     Stage = "fetch"
	StageComposite Stage = "composite"
	StageRender    Stage = "render"
)

// Result is the output of one pipeline run. Raw is only set for products
// whose descriptor has ReturnsRawData.
type Result struct {
	RunID      string
	Descriptor imagery.Descriptor
	QueryTime  string
	Figure     *render.Figure
	Raw        *imagery.Raster
}

// StageError wraps a pipeline failure with the context needed to diagnose it.
type StageError struct {
	RunID     string
	Product   string
	QueryTime string
	Stage     Stage
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s at %s (run %s): %v", e.Stage, e.Product, e.QueryTime, e.RunID, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// RunRecord summarises one pipeline run. It never carries imagery.
type RunRecord struct {
	RunID     string        `json:"runId"`
	Product   string        `json:"product"`
	QueryTime string        `json:"queryTime"`
	StartedAt time.Time     `json:"startedAt"` // always UTC
	Duration  time.Duration `json:"durationNs"`
	Stage     Stage         `json:"stage,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Succeeded reports whether the run completed.
func (r RunRecord) Succeeded() bool {
	return r.Error == ""
}

// RunStore keeps recent run records.
type RunStore interface {
	SaveRun(rec RunRecord)
	Recent(product string, limit int) ([]RunRecord, error)
}
