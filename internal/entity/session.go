package entity

// ActionSignature identifies an executed action independent of per-scan ids.
type ActionSignature struct {
	Target string
	Intent string
}

// RetryState is the cross-step memory of one session: the last executed
// signature, how often it was repeated back to back, and the set of domains
// whose cookie consent was already handled.
type RetryState struct {
	last           ActionSignature
	hasLast        bool
	repeats        int
	consentHandled map[string]struct{}
}

func NewRetryState() *RetryState {
	return &RetryState{
		consentHandled: make(map[string]struct{}),
	}
}

// Repeats returns how many consecutive times sig was already executed.
func (r *RetryState) Repeats(sig ActionSignature) int {
	if !r.hasLast || r.last != sig {
		return 0
	}

	return r.repeats + 1
}

// Record stores sig as the last executed signature.
func (r *RetryState) Record(sig ActionSignature) {
	if r.hasLast && r.last == sig {
		r.repeats++

		return
	}

	r.last = sig
	r.hasLast = true
	r.repeats = 0
}

func (r *RetryState) Last() (ActionSignature, bool) {
	return r.last, r.hasLast
}

// Forget clears the repeat memory but keeps consent state.
func (r *RetryState) Forget() {
	r.last = ActionSignature{}
	r.hasLast = false
	r.repeats = 0
}

func (r *RetryState) MarkConsentHandled(domain string) {
	if domain == "" {
		return
	}

	r.consentHandled[domain] = struct{}{}
}

func (r *RetryState) ConsentHandled(domain string) bool {
	if domain == "" {
		return false
	}

	_, ok := r.consentHandled[domain]

	return ok
}

// Session is the explicit per-run state owned by the goal loop and passed by
// reference to the inspector and executor.
type Session struct {
	Goal  string
	Retry *RetryState
}

func NewSession(goal string) *Session {
	return &Session{
		Goal:  goal,
		Retry: NewRetryState(),
	}
}
