package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/artifact"
)

// Gate verdict results.
const (
	GatePass = "PASS"
	GateWarn = "WARN"
	GateFail = "FAIL"
)

// Verdict is the safety gate's judgement of a generated batch. Score runs
// 0 to 16; higher is worse. FAIL is fatal for the order, WARN is recorded
// and the pipeline continues.
type Verdict struct {
	Result  string
	Score   int
	Reasons []string
}

// SafetyGate inspects generated content before it is stored or delivered.
type SafetyGate interface {
	Inspect(ctx context.Context, batch artifact.Batch) (Verdict, error)
}
