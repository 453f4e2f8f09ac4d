package rank

import (
	"goal-navigator/internal/entity"
	"math"
	"sort"
	"strings"
)

const (
	levelSpan  = 4
	levelEqual = 3
)

type Ranker struct {
	weights Weights
}

func New(weights Weights) *Ranker {
	return &Ranker{weights: weights}
}

func (r *Ranker) Weights() Weights {
	return r.weights
}

// RawScore computes the unnormalized score of a visible element. pageArea <= 0 disables the area factor.
func (r *Ranker) RawScore(el *entity.CandidateElement, goal string, pageArea float64) float64 {
	w := r.weights
	score := w.Base

	if el.OverlayScore > 0 {
		score -= math.Min(w.OverlayCap, float64(el.OverlayScore)*w.OverlayMultiplier)
	}

	text := strings.ToLower(el.Text)
	score -= r.keywordBonus(text)
	score -= r.authBonus(text, strings.ToLower(goal))
	score += r.typeBias(el.Kind)

	if el.OverlayScore < w.DepthOverlayThreshold {
		score += math.Min(w.DepthCap, float64(el.Depth)*w.DepthMultiplier)
	}

	if pageArea > 0 {
		ratio := el.Area() / pageArea

		switch {
		case ratio < w.SmallAreaRatio:
			score += w.SmallAreaPenalty
		case ratio > w.LargeAreaRatio:
			score += w.LargeAreaPenalty
		}
	}

	return math.Max(0, score)
}

func (r *Ranker) keywordBonus(text string) float64 {
	if text == "" {
		return 0
	}

	tiers := []struct {
		terms []string
		bonus float64
	}{
		{criticalTerms, r.weights.Critical},
		{primaryTerms, r.weights.Primary},
		{secondaryTerms, r.weights.Secondary},
		{navigationTerms, r.weights.Navigation},
		{searchTerms, r.weights.Search},
	}

	for _, tier := range tiers {
		if containsAny(text, tier.terms) {
			return tier.bonus
		}
	}

	return 0
}

func (r *Ranker) authBonus(text, goal string) float64 {
	if text == "" || (!containsAny(text, authTerms) && !containsAny(text, providers)) {
		return 0
	}

	bonus := r.weights.Auth

	for _, p := range providers {
		if strings.Contains(text, p) && strings.Contains(goal, p) {
			bonus += r.weights.ProviderGoal

			break
		}
	}

	return bonus
}

func (r *Ranker) typeBias(kind entity.ElementKind) float64 {
	switch kind {
	case entity.KindButton:
		return r.weights.TypeButton
	case entity.KindLink:
		return r.weights.TypeLink
	case entity.KindInput, entity.KindSelect, entity.KindTextarea:
		return r.weights.TypeInput
	case entity.KindInteractive:
		return r.weights.TypeInteractive
	default:
		return r.weights.TypeUnknown
	}
}

// Rank assigns HierarchyLevel to every element in place. Invisible elements get
// the lowest level; visible ones are mapped linearly onto 1..5. When all visible
// scores are equal the level is 3, except a lone visible element which gets 1.
func (r *Ranker) Rank(elements []entity.CandidateElement, goal string, pageArea float64) {
	scores := make([]float64, len(elements))
	lo, hi := math.Inf(1), math.Inf(-1)
	visible := 0

	for i := range elements {
		if !elements[i].Visible {
			elements[i].HierarchyLevel = entity.LevelLowest

			continue
		}

		s := r.RawScore(&elements[i], goal, pageArea)
		scores[i] = s
		visible++
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	if visible == 0 {
		return
	}

	for i := range elements {
		if !elements[i].Visible {
			continue
		}

		elements[i].HierarchyLevel = Normalize(scores[i], lo, hi, visible)
	}
}

// Normalize maps a raw score onto 1..5 given the range of the visible population.
func Normalize(score, lo, hi float64, population int) int {
	span := hi - lo
	if span <= 0 {
		if population == 1 {
			return entity.LevelHighest
		}

		return levelEqual
	}

	normalized := (score - lo) / span * levelSpan

	return entity.LevelHighest + int(math.Min(levelSpan, normalized))
}

// Order sorts elements cookie-consent first, then by level and vertical position.
// The sort is stable so scan order breaks remaining ties.
func Order(elements []entity.CandidateElement) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := &elements[i], &elements[j]

		if a.CookieConsent != b.CookieConsent {
			return a.CookieConsent
		}

		if a.HierarchyLevel != b.HierarchyLevel {
			return a.HierarchyLevel < b.HierarchyLevel
		}

		return a.Y < b.Y
	})
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}

	return false
}
