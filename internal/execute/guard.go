package execute

import "goal-navigator/internal/entity"

// Verdict is what the loop guard allows for the next action.
type Verdict int

const (
	// Proceed: the action is new or a plain repeat with no alternative.
	Proceed Verdict = iota
	// Substitute: run the alternate strategy instead of repeating the action.
	Substitute
	// Loop: the action was repeated too often; give up on it.
	Loop
)

// Guard decides how to treat a repeated (target, intent) signature.
type Guard struct {
	maxRepeats int
}

func NewGuard(maxRepeats int) *Guard {
	if maxRepeats < 1 {
		maxRepeats = 1
	}

	return &Guard{maxRepeats: maxRepeats}
}

func Signature(el *entity.CandidateElement, intent entity.Intent) entity.ActionSignature {
	return entity.ActionSignature{Target: el.Fingerprint, Intent: string(intent)}
}

// Check inspects the retry state without changing it.
func (g *Guard) Check(state *entity.RetryState, sig entity.ActionSignature, el *entity.CandidateElement) (Verdict, int) {
	repeats := state.Repeats(sig)

	switch {
	case repeats >= g.maxRepeats:
		return Loop, repeats
	case repeats >= 1 && (el.Search || el.IsTextEntry()):
		return Substitute, repeats
	default:
		return Proceed, repeats
	}
}
