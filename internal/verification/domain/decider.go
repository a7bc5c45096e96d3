package domain

import (
	"context"
	"math/rand/v2"

	contractdomain "github.com/enfinitus/onboarding/internal/contract/domain"
)

// Decider makes the feasibility decision for a draft.
type Decider interface {
	Decide(ctx context.Context, draft contractdomain.ContractDraft, malo contractdomain.MaLoDraft) (Outcome, error)
}

type DeciderFunc func(ctx context.Context, draft contractdomain.ContractDraft, malo contractdomain.MaLoDraft) (Outcome, error)

func (f DeciderFunc) Decide(ctx context.Context, draft contractdomain.ContractDraft, malo contractdomain.MaLoDraft) (Outcome, error) {
	return f(ctx, draft, malo)
}

// FixedDecider always returns outcome.
func FixedDecider(outcome Outcome) Decider {
	return DeciderFunc(func(context.Context, contractdomain.ContractDraft, contractdomain.MaLoDraft) (Outcome, error) {
		return outcome, nil
	})
}

// RandomDecider approves with probability ratio. Ratios outside [0,1] are
// clamped.
func RandomDecider(ratio float64) Decider {
	switch {
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	return DeciderFunc(func(context.Context, contractdomain.ContractDraft, contractdomain.MaLoDraft) (Outcome, error) {
		if rand.Float64() < ratio {
			return OutcomeApproved, nil
		}
		return OutcomeRejected, nil
	})
}
