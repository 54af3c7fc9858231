package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"fulfillment/internal/core/domain/model/order"
)

// Batch is the full output of one generation run: the artifacts plus the
// cost it took to produce them.
type Batch struct {
	Artifacts       []*Artifact
	TokensUsed      int
	ImagesGenerated int
}

// Hash returns a short stable fingerprint of the batch, derived from the
// sorted artifact content hashes. Two runs producing identical content get
// the same batch hash regardless of artifact order, which makes delivery
// deduplication survive retries.
func (b Batch) Hash() string {
	hashes := make([]string, 0, len(b.Artifacts))
	for _, a := range b.Artifacts {
		hashes = append(hashes, a.Hash())
	}
	sort.Strings(hashes)

	sum := sha256.Sum256([]byte(strings.Join(hashes, ":")))
	return hex.EncodeToString(sum[:])[:16]
}

// ExceedsBudget reports whether the batch cost broke the tier ceiling, and
// if so which limit was hit.
func (b Batch) ExceedsBudget(budget order.Budget) (bool, string) {
	if b.TokensUsed > budget.Tokens {
		return true, fmt.Sprintf("tokens %d > %d", b.TokensUsed, budget.Tokens)
	}
	if b.ImagesGenerated > budget.Images {
		return true, fmt.Sprintf("images %d > %d", b.ImagesGenerated, budget.Images)
	}
	return false, ""
}
