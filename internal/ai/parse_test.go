package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"goal-navigator/internal/ai"
	"goal-navigator/internal/entity"
	"goal-navigator/pkg/apperr"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantIntent entity.Intent
		wantTarget entity.TargetRef
		check      func(t *testing.T, d entity.ActionDecision)
	}{
		{
			name:       "plain object with numeric id",
			raw:        `{"action":"click","element_id":3,"element_description":"Accept all button","reasoning":"cookie banner","goal_achieved":false,"confidence":0.1}`,
			wantIntent: entity.IntentClick,
			wantTarget: entity.IndexRef(3),
			check: func(t *testing.T, d entity.ActionDecision) {
				assert.Equal(t, "Accept all button", d.Description)
				assert.InDelta(t, 0.1, d.Confidence, 1e-9)
				assert.False(t, d.GoalAchieved)
			},
		},
		{
			name:       "fenced reply with surrounding prose",
			raw:        "Sure, here it is:\n```json\n{\"action\": \"type\", \"element_id\": \"2\", \"input_text\": \"go {lang}\", \"input_type\": \"Search\"}\n```\nGood luck",
			wantIntent: entity.IntentType,
			wantTarget: entity.TargetRef{Kind: entity.RefIndex, Index: 2, Raw: "2"},
			check: func(t *testing.T, d entity.ActionDecision) {
				assert.Equal(t, "go {lang}", d.InputText)
				assert.Equal(t, "search", d.InputType)
			},
		},
		{
			name:       "hash dom id",
			raw:        `{"action":"Click","element_id":"#login-btn"}`,
			wantIntent: entity.IntentClick,
			wantTarget: entity.TargetRef{Kind: entity.RefDOMID, DOMID: "login-btn", Raw: "#login-btn"},
		},
		{
			name:       "free text target",
			raw:        `{"action":"click","element_id":"the sign in button"}`,
			wantIntent: entity.IntentClick,
			wantTarget: entity.TargetRef{Kind: entity.RefText, Text: "the sign in button", Raw: "the sign in button"},
		},
		{
			name:       "alias intent",
			raw:        `{"action":"fill","element_id":0,"input_text":"alice"}`,
			wantIntent: entity.IntentType,
			wantTarget: entity.IndexRef(0),
		},
		{
			name:       "unknown intent stays empty",
			raw:        `{"action":"scroll","element_id":1}`,
			wantIntent: "",
			wantTarget: entity.IndexRef(1),
		},
		{
			name:       "missing id",
			raw:        `{"action":"click","element_description":"search box"}`,
			wantIntent: entity.IntentClick,
			wantTarget: entity.TargetRef{Kind: entity.RefNone},
		},
		{
			name:       "fractional id is not an index",
			raw:        `{"action":"click","element_id":1.5}`,
			wantIntent: entity.IntentClick,
			wantTarget: entity.TargetRef{Kind: entity.RefNone, Raw: "1.5"},
		},
		{
			name:       "confidence is clamped",
			raw:        `{"action":"click","element_id":0,"goal_achieved":"true","confidence":7}`,
			wantIntent: entity.IntentClick,
			wantTarget: entity.IndexRef(0),
			check: func(t *testing.T, d entity.ActionDecision) {
				assert.True(t, d.GoalAchieved)
				assert.Equal(t, 1.0, d.Confidence)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ai.ParseDecision(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIntent, d.Intent)
			assert.Equal(t, tt.wantTarget, d.Target)
			assert.False(t, d.Fallback)

			if tt.check != nil {
				tt.check(t, d)
			}
		})
	}
}

func TestParseDecisionRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "click the button", `{"action": "click"`, "[1,2,3]", `{"action": }`} {
		_, err := ai.ParseDecision(raw)
		require.Error(t, err, raw)
		assert.Equal(t, apperr.CodeMalformedDecision, apperr.CodeOf(err), raw)
	}
}

func TestParseDecisionNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.String().Draw(t, "raw")

		d, err := ai.ParseDecision(raw)
		if err == nil {
			assert.GreaterOrEqual(t, d.Confidence, 0.0)
			assert.LessOrEqual(t, d.Confidence, 1.0)
		}
	})
}
