// Package merge combines override values and fetched counts into the state
// to publish. Decide is a pure function of its inputs.
package merge

import (
	"time"

	"github.com/okian/birdiecount/internal/domain/model"
)

// FetchFailedMessage is published when the feed fails and no override
// fallback exists.
const FetchFailedMessage = "Failed to fetch scores"

// Rule names the decision table row that produced a Decision.
type Rule string

// Decision table rows, in evaluation order.
const (
	RuleOverridesOnly       Rule = "overrides_only"
	RuleFetchedPlusBaseline Rule = "fetched_plus_baseline"
	RuleFallbackOverrides   Rule = "fallback_overrides"
	RuleFetchFailed         Rule = "fetch_failed"
	RuleAwaitingFetch       Rule = "awaiting_fetch"
	RuleIdle                Rule = "idle"
)

// Decision is the outcome of evaluating the table.
type Decision struct {
	Rule    Rule
	Kind    model.StateKind
	Score   *model.Score
	Message string
}

// State converts the decision into a published state stamped with now.
func (d Decision) State(now time.Time) model.State {
	switch d.Kind {
	case model.StateReady:
		return model.Ready(*d.Score, now)
	case model.StateError:
		return model.Failed(d.Message, now)
	case model.StateLoading:
		return model.Loading(nil, now)
	default:
		return model.Idle(now)
	}
}

// NeedsFetch reports whether p requires the remote feed. When false no
// request is ever issued for the session.
func NeedsFetch(p model.Params) bool {
	return p.HasEventRound()
}

// Decide evaluates the decision table. outcome is nil when no fetch was
// attempted.
func Decide(p model.Params, outcome *model.FetchOutcome) Decision {
	switch {
	case p.HasOverrides() && !p.HasEventRound():
		return ready(RuleOverridesOnly, p.Baseline())

	case p.HasEventRound() && outcome == nil:
		return Decision{Rule: RuleAwaitingFetch, Kind: model.StateLoading}

	case p.HasEventRound() && outcome.OK():
		return ready(RuleFetchedPlusBaseline, p.Baseline().Add(outcome.Score()))

	case p.HasEventRound() && p.HasOverrides():
		return ready(RuleFallbackOverrides, p.Baseline())

	case p.HasEventRound():
		return Decision{Rule: RuleFetchFailed, Kind: model.StateError, Message: FetchFailedMessage}

	default:
		return Decision{Rule: RuleIdle, Kind: model.StateIdle}
	}
}

func ready(r Rule, s model.Score) Decision {
	return Decision{Rule: r, Kind: model.StateReady, Score: &s}
}
