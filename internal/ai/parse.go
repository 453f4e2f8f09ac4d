package ai

import (
	"errors"
	"goal-navigator/internal/entity"
	"goal-navigator/pkg/apperr"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

var errNoObject = errors.New("no JSON object in reply")

var intentAliases = map[string]entity.Intent{
	"click":  entity.IntentClick,
	"tap":    entity.IntentClick,
	"press":  entity.IntentClick,
	"select": entity.IntentClick,
	"type":   entity.IntentType,
	"fill":   entity.IntentType,
	"input":  entity.IntentType,
	"enter":  entity.IntentType,
}

// ParseDecision decodes the first JSON object found in a model reply.
// Unknown actions yield an empty intent so the caller can fall back.
func ParseDecision(raw string) (entity.ActionDecision, error) {
	const op = "ParseDecision"

	obj, ok := firstObject(raw)
	if !ok || !gjson.Valid(obj) {
		return entity.ActionDecision{}, apperr.Wrap(op, apperr.CodeMalformedDecision, errNoObject, map[string]any{
			apperr.MetaReason: "no_json_object",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	res := gjson.Parse(obj)
	if !res.IsObject() {
		return entity.ActionDecision{}, apperr.Wrap(op, apperr.CodeMalformedDecision, errNoObject, map[string]any{
			apperr.MetaReason: "not_an_object",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	return entity.ActionDecision{
		Intent:       intentAliases[strings.ToLower(strings.TrimSpace(res.Get("action").String()))],
		Target:       targetOf(res.Get("element_id")),
		InputText:    res.Get("input_text").String(),
		Description:  strings.TrimSpace(res.Get("element_description").String()),
		InputType:    strings.ToLower(strings.TrimSpace(res.Get("input_type").String())),
		Reasoning:    res.Get("reasoning").String(),
		GoalAchieved: res.Get("goal_achieved").Bool(),
		Confidence:   clamp01(res.Get("confidence").Float()),
	}, nil
}

func targetOf(v gjson.Result) entity.TargetRef {
	switch v.Type {
	case gjson.Number:
		if v.Num != math.Trunc(v.Num) {
			return entity.TargetRef{Kind: entity.RefNone, Raw: v.Raw}
		}

		return entity.IndexRef(int(v.Int()))
	case gjson.String:
		return entity.ParseTargetRef(v.Str)
	default:
		return entity.TargetRef{Kind: entity.RefNone, Raw: v.Raw}
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}

// firstObject returns the first balanced {...} span of s, skipping braces inside string literals.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}

			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
