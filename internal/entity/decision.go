package entity

import (
	"regexp"
	"strconv"
	"strings"
)

type Intent string

const (
	IntentClick Intent = "click"
	IntentType  Intent = "type"
)

func (i Intent) Valid() bool {
	return i == IntentClick || i == IntentType
}

// RefKind tags which variant of the target reference union was received.
type RefKind int

const (
	RefNone RefKind = iota
	RefIndex
	RefDOMID
	RefText
)

func (k RefKind) String() string {
	switch k {
	case RefIndex:
		return "index"
	case RefDOMID:
		return "dom_id"
	case RefText:
		return "text"
	default:
		return "none"
	}
}

// TargetRef is the decoded element reference of a decision.
// Only the field matching Kind is set; Raw keeps the original value.
type TargetRef struct {
	Kind  RefKind
	Index int
	DOMID string
	Text  string
	Raw   string
}

var (
	idTokenPattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*(?:[-_:.][A-Za-z0-9]+)+$`)
	idSuffixedPattern = regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)
	idSeparators      = strings.NewReplacer("-", " ", "_", " ", ":", " ", ".", " ")
)

// LooksLikeDOMID reports whether token has the shape of a raw id attribute
// (kebab/snake/colon separated, or letters followed by digits).
func LooksLikeDOMID(token string) bool {
	return idTokenPattern.MatchString(token) || idSuffixedPattern.MatchString(token)
}

// IndexRef builds a numeric reference.
func IndexRef(index int) TargetRef {
	return TargetRef{Kind: RefIndex, Index: index, Raw: strconv.Itoa(index)}
}

// AsText turns a DOM id reference into a text reference, splitting the id on
// its separators so "sign-up" can match "Sign up". Other kinds are returned as is.
func (r TargetRef) AsText() TargetRef {
	if r.Kind != RefDOMID {
		return r
	}

	return TargetRef{Kind: RefText, Text: idSeparators.Replace(r.DOMID), Raw: r.Raw}
}

// ParseTargetRef decodes a string-typed reference: numeric id or "#5", "#id",
// id-shaped token or free-text description, in that order.
func ParseTargetRef(raw string) TargetRef {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TargetRef{Kind: RefNone, Raw: raw}
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		return TargetRef{Kind: RefIndex, Index: n, Raw: raw}
	}

	if strings.HasPrefix(trimmed, "#") {
		id := strings.TrimLeft(trimmed, "#")
		if n, err := strconv.Atoi(id); err == nil && n >= 0 {
			return TargetRef{Kind: RefIndex, Index: n, Raw: raw}
		}

		if id != "" && !strings.ContainsAny(id, " \t") {
			return TargetRef{Kind: RefDOMID, DOMID: id, Raw: raw}
		}
	}

	if LooksLikeDOMID(trimmed) {
		return TargetRef{Kind: RefDOMID, DOMID: trimmed, Raw: raw}
	}

	return TargetRef{Kind: RefText, Text: trimmed, Raw: raw}
}

// ActionDecision is the decoded, untrusted answer of the decision service.
type ActionDecision struct {
	Intent       Intent
	Target       TargetRef
	InputText    string
	Description  string
	InputType    string
	Reasoning    string
	GoalAchieved bool
	Confidence   float64
	// Fallback marks a decision synthesized locally instead of received.
	Fallback bool
}

// DefaultDecision is the safe action used when a payload cannot be trusted: click the top-ranked candidate.
func DefaultDecision(reason string) ActionDecision {
	return ActionDecision{
		Intent:    IntentClick,
		Target:    IndexRef(0),
		Reasoning: reason,
		Fallback:  true,
	}
}

// MentionsSearch reports whether the free-text fields of the decision talk about searching.
func (d ActionDecision) MentionsSearch() bool {
	for _, field := range []string{d.Description, d.InputText, d.Target.Text} {
		if strings.Contains(strings.ToLower(field), "search") {
			return true
		}
	}

	return false
}

// Usable reports whether the decision can be acted on for scan: a known
// intent, text for type actions, and some way to find a target.
func (d ActionDecision) Usable(scan *ScanResult) bool {
	if !d.Intent.Valid() {
		return false
	}

	if d.Target.Kind == RefIndex && d.Target.Index >= 0 && d.Target.Index < scan.Len() {
		return true
	}

	return d.Target.Kind == RefDOMID || d.Target.Kind == RefText ||
		d.Description != "" || d.InputType != "" || (d.Intent == IntentType && d.InputText != "")
}
