package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"goal-navigator/internal/entity"
	"goal-navigator/internal/resolve"
)

func newResolver(t *testing.T) *resolve.Resolver {
	t.Helper()

	return resolve.New(resolve.Params{Logger: zaptest.NewLogger(t)})
}

func scanOf(elements ...entity.CandidateElement) *entity.ScanResult {
	scan := &entity.ScanResult{URL: "https://example.com", Elements: elements}
	scan.Reindex()

	return scan
}

func fixture() *entity.ScanResult {
	return scanOf(
		entity.CandidateElement{Tag: "button", Kind: entity.KindButton, Text: "Login"},
		entity.CandidateElement{Tag: "input", Type: "email", Kind: entity.KindInput, Name: "user_email", Placeholder: "Email address", IDAttr: "email-field"},
		entity.CandidateElement{Tag: "input", Type: "password", Kind: entity.KindInput, Name: "pass", Value: "hunter2"},
		entity.CandidateElement{Tag: "input", Type: "password", Kind: entity.KindInput, Name: "confirm"},
		entity.CandidateElement{Tag: "a", Kind: entity.KindLink, Text: "Forgot password?"},
	)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		decision     entity.ActionDecision
		wantOutcome  resolve.Outcome
		wantID       int
		wantDOMID    string
		wantStrategy string
	}{
		{
			name:         "numeric id wins over every other field",
			decision:     entity.ActionDecision{Intent: entity.IntentClick, Target: entity.IndexRef(4), Description: "Login", InputType: "email"},
			wantOutcome:  resolve.Found,
			wantID:       4,
			wantStrategy: resolve.StrategyIndex,
		},
		{
			name:         "hash id present in scan",
			decision:     entity.ActionDecision{Target: entity.ParseTargetRef("#email-field")},
			wantOutcome:  resolve.Found,
			wantID:       1,
			wantStrategy: resolve.StrategyDOMID,
		},
		{
			name:         "id-shaped token absent from scan",
			decision:     entity.ActionDecision{Target: entity.ParseTargetRef("newsletter-signup")},
			wantOutcome:  resolve.DirectSelector,
			wantDOMID:    "newsletter-signup",
			wantStrategy: resolve.StrategyDirectSelector,
		},
		{
			name:         "placeholder beats text",
			decision:     entity.ActionDecision{Target: entity.IndexRef(99), Description: "email"},
			wantOutcome:  resolve.Found,
			wantID:       1,
			wantStrategy: resolve.StrategyPlaceholder,
		},
		{
			name:         "name attribute",
			decision:     entity.ActionDecision{Description: "confirm"},
			wantOutcome:  resolve.Found,
			wantID:       3,
			wantStrategy: resolve.StrategyName,
		},
		{
			name:         "visible text",
			decision:     entity.ActionDecision{Target: entity.ParseTargetRef("forgot password")},
			wantOutcome:  resolve.Found,
			wantID:       4,
			wantStrategy: resolve.StrategyText,
		},
		{
			name:         "declared subtype prefers an empty input",
			decision:     entity.ActionDecision{Intent: entity.IntentType, InputText: "s3cret!", InputType: "Password"},
			wantOutcome:  resolve.Found,
			wantID:       3,
			wantStrategy: resolve.StrategyInputSubtype,
		},
		{
			name:         "description containing element text",
			decision:     entity.ActionDecision{Description: "the login button at the top"},
			wantOutcome:  resolve.Found,
			wantID:       0,
			wantStrategy: resolve.StrategyReverseText,
		},
		{
			name:         "nothing matches",
			decision:     entity.ActionDecision{Description: "checkout"},
			wantOutcome:  resolve.NotFound,
			wantStrategy: resolve.StrategyNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newResolver(t).Resolve(tt.decision, fixture())

			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantStrategy, res.Strategy)
			assert.Equal(t, tt.wantDOMID, res.DOMID)

			if tt.wantOutcome == resolve.Found {
				require.NotNil(t, res.Element)
				assert.Equal(t, tt.wantID, res.Element.ID)
			} else {
				assert.Nil(t, res.Element)
			}
		})
	}
}

func TestResolveSearchCategory(t *testing.T) {
	scan := scanOf(
		entity.CandidateElement{Tag: "a", Kind: entity.KindLink, Text: "Home"},
		entity.CandidateElement{Tag: "input", Type: "text", Kind: entity.KindInput, Placeholder: "Search products", Search: true},
	)

	res := newResolver(t).Resolve(entity.ActionDecision{
		Intent:      entity.IntentType,
		Target:      entity.IndexRef(42),
		Description: "the search box",
		InputText:   "wireless mouse",
	}, scan)

	require.Equal(t, resolve.Found, res.Outcome)
	assert.Equal(t, 1, res.Element.ID)
	assert.Equal(t, resolve.StrategySearch, res.Strategy)
}

func TestResolveNilScan(t *testing.T) {
	res := newResolver(t).Resolve(entity.ActionDecision{Target: entity.IndexRef(0)}, nil)

	assert.Equal(t, resolve.NotFound, res.Outcome)
}

func TestResolveIndexAlwaysWins(t *testing.T) {
	r := resolve.New(resolve.Params{Logger: zaptest.NewLogger(t)})

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")
		elements := make([]entity.CandidateElement, n)

		for i := range elements {
			elements[i] = entity.CandidateElement{
				Tag:         "input",
				Type:        rapid.SampledFrom([]string{"text", "search", "email"}).Draw(t, "type"),
				Text:        rapid.StringMatching(`[a-z ]{0,8}`).Draw(t, "text"),
				Placeholder: rapid.StringMatching(`[a-z ]{0,8}`).Draw(t, "placeholder"),
				Search:      rapid.Bool().Draw(t, "search"),
			}
		}

		index := rapid.IntRange(0, n-1).Draw(t, "index")
		decision := entity.ActionDecision{
			Intent:      entity.IntentType,
			Target:      entity.IndexRef(index),
			Description: rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "description"),
			InputText:   rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "input"),
			InputType:   "search",
		}

		res := r.Resolve(decision, scanOf(elements...))
		if res.Outcome != resolve.Found || res.Element.ID != index {
			t.Fatalf("index %d resolved to %+v", index, res)
		}
	})
}

func TestResolveDeterministic(t *testing.T) {
	r := newResolver(t)
	scan := fixture()
	decision := entity.ActionDecision{Description: "pass"}

	first := r.Resolve(decision, scan)
	second := r.Resolve(decision, scan)

	assert.Equal(t, first.Element.ID, second.Element.ID)
	assert.Equal(t, first.Strategy, second.Strategy)
}
