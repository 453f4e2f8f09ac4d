// Package resolve maps an untrusted decision reference onto a scanned element.
package resolve

import (
	"goal-navigator/internal/entity"
	"goal-navigator/pkg/logg"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	resolverName = "Resolver"

	minReverseTextLen = 3
)

type Outcome int

const (
	NotFound Outcome = iota
	Found
	// DirectSelector means the reference is a raw DOM id absent from the scan; look it up live.
	DirectSelector
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case DirectSelector:
		return "direct_selector"
	default:
		return "not_found"
	}
}

const (
	StrategyIndex          = "index"
	StrategyDOMID          = "dom_id"
	StrategyDirectSelector = "direct_selector"
	StrategyPlaceholder    = "placeholder"
	StrategyName           = "name"
	StrategyText           = "text"
	StrategySearch         = "search_category"
	StrategyInputSubtype   = "input_subtype"
	StrategyReverseText    = "reverse_text"
	StrategyNone           = "none"
)

type Resolution struct {
	Outcome  Outcome
	Element  *entity.CandidateElement
	DOMID    string
	Strategy string
}

var textSubtypes = map[string]bool{"text": true, "search": true, "email": true, "password": true}

type Resolver struct {
	logger *zap.Logger
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func New(params Params) *Resolver {
	return &Resolver{
		logger: params.Logger.With(zap.String(logg.Layer, resolverName)),
	}
}

// Resolve tries each strategy in order and returns the first hit. For a fixed
// scan and decision the result is deterministic; ties go to the earliest element.
func (r *Resolver) Resolve(decision entity.ActionDecision, scan *entity.ScanResult) Resolution {
	const op = "Resolve"

	res := resolve(decision, scan)

	fields := []zap.Field{
		zap.String(logg.Operation, op),
		zap.String(logg.Strategy, res.Strategy),
		zap.String("outcome", res.Outcome.String()),
		zap.String("reference", decision.Target.Raw),
	}
	if res.Element != nil {
		fields = append(fields, zap.Int(logg.ElementID, res.Element.ID))
	}

	if res.Outcome == NotFound {
		r.logger.Warn("Element reference not resolved", fields...)
	} else {
		r.logger.Debug("Element reference resolved", fields...)
	}

	return res
}

func resolve(decision entity.ActionDecision, scan *entity.ScanResult) Resolution {
	var elements []entity.CandidateElement
	if scan != nil {
		elements = scan.Elements
	}

	target := decision.Target

	if target.Kind == entity.RefIndex {
		if el, ok := scan.ByID(target.Index); ok {
			return found(el, StrategyIndex)
		}
	}

	if target.Kind == entity.RefDOMID {
		for i := range elements {
			if elements[i].IDAttr == target.DOMID {
				return found(&elements[i], StrategyDOMID)
			}
		}

		return Resolution{Outcome: DirectSelector, DOMID: target.DOMID, Strategy: StrategyDirectSelector}
	}

	terms := searchTerms(decision)

	if res, ok := byKeyword(elements, terms); ok {
		return res
	}

	if decision.MentionsSearch() {
		for i := range elements {
			if elements[i].Search {
				return found(&elements[i], StrategySearch)
			}
		}
	}

	if subtype := strings.ToLower(strings.TrimSpace(decision.InputType)); textSubtypes[subtype] {
		if el := bySubtype(elements, subtype); el != nil {
			return found(el, StrategyInputSubtype)
		}
	}

	if el := byReverseText(elements, terms); el != nil {
		return found(el, StrategyReverseText)
	}

	return Resolution{Outcome: NotFound, Strategy: StrategyNone}
}

func found(el *entity.CandidateElement, strategy string) Resolution {
	return Resolution{Outcome: Found, Element: el, Strategy: strategy}
}

func searchTerms(decision entity.ActionDecision) []string {
	terms := make([]string, 0, 3)

	for _, raw := range []string{decision.InputText, decision.Description, decision.Target.Text} {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term != "" {
			terms = append(terms, term)
		}
	}

	return terms
}

// byKeyword matches terms as substrings of placeholder, then name, then text.
// Each field pass tries every term before moving on.
func byKeyword(elements []entity.CandidateElement, terms []string) (Resolution, bool) {
	passes := []struct {
		strategy string
		field    func(*entity.CandidateElement) string
	}{
		{StrategyPlaceholder, func(el *entity.CandidateElement) string { return el.Placeholder }},
		{StrategyName, func(el *entity.CandidateElement) string { return el.Name }},
		{StrategyText, func(el *entity.CandidateElement) string { return el.Text }},
	}

	for _, pass := range passes {
		for _, term := range terms {
			for i := range elements {
				value := pass.field(&elements[i])
				if value != "" && strings.Contains(strings.ToLower(value), term) {
					return found(&elements[i], pass.strategy), true
				}
			}
		}
	}

	return Resolution{}, false
}

// bySubtype prefers an empty input of the subtype over one that already holds a value.
func bySubtype(elements []entity.CandidateElement, subtype string) *entity.CandidateElement {
	var first *entity.CandidateElement

	for i := range elements {
		el := &elements[i]
		if el.Tag != "input" || el.Type != subtype {
			continue
		}

		if el.Value == "" {
			return el
		}

		if first == nil {
			first = el
		}
	}

	return first
}

// byReverseText finds an element whose whole visible text appears inside a term,
// e.g. text "Login" for the description "the login button".
func byReverseText(elements []entity.CandidateElement, terms []string) *entity.CandidateElement {
	for _, term := range terms {
		for i := range elements {
			text := strings.ToLower(strings.TrimSpace(elements[i].Text))
			if len(text) >= minReverseTextLen && strings.Contains(term, text) {
				return &elements[i]
			}
		}
	}

	return nil
}
