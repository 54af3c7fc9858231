// Package gate provides the built-in SafetyGate implementation: a keyword
// scorer over the batch's artifact names. Each blocked keyword hit adds to
// the score; the verdict follows the score thresholds. A real moderation
// backend replaces this adapter behind the same port.
package gate

import (
	"context"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/ports"
)

const (
	// pointsPerHit is the score added for each matched keyword.
	pointsPerHit = 4

	// maxScore caps the verdict score.
	maxScore = 16

	// warnThreshold and failThreshold partition the score range into
	// PASS, WARN and FAIL.
	warnThreshold = 4
	failThreshold = 8
)

// KeywordGate scores a batch by matching keywords against the inspectable
// text of its artifacts.
type KeywordGate struct {
	keywords []string
}

// NewKeywordGate creates a gate with the given blocked keywords. Matching
// is case-insensitive.
func NewKeywordGate(keywords []string) *KeywordGate {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &KeywordGate{keywords: lowered}
}

// Inspect scores the batch and returns the verdict. An empty keyword list
// passes everything with score 0.
func (g *KeywordGate) Inspect(ctx context.Context, batch artifact.Batch) (ports.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return ports.Verdict{}, err
	}

	score := 0
	reasons := make([]string, 0)

	for _, kw := range g.keywords {
		hits := 0
		for _, a := range batch.Artifacts {
			if strings.Contains(strings.ToLower(a.Name()), kw) {
				hits++
			}
		}
		if hits > 0 {
			score += hits * pointsPerHit
			reasons = append(reasons, fmt.Sprintf("keyword %q matched %d artifact(s)", kw, hits))
		}
	}

	if score > maxScore {
		score = maxScore
	}

	verdict := ports.Verdict{Result: ports.GatePass, Score: score, Reasons: reasons}
	switch {
	case score >= failThreshold:
		verdict.Result = ports.GateFail
	case score >= warnThreshold:
		verdict.Result = ports.GateWarn
	}

	return verdict, nil
}
