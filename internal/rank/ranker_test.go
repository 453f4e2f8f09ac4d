package rank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"goal-navigator/internal/entity"
	"goal-navigator/internal/rank"
)

const pageArea = 1280 * 2000

func button(text string, y float64) entity.CandidateElement {
	return entity.CandidateElement{
		Tag:         "button",
		Kind:        entity.KindButton,
		Text:        text,
		Visible:     true,
		Depth:       3,
		BoundingBox: entity.BoundingBox{X: 10, Y: y, Width: 120, Height: 40},
	}
}

func TestRawScore(t *testing.T) {
	r := rank.New(rank.DefaultWeights())

	tests := []struct {
		name string
		el   entity.CandidateElement
		goal string
		want float64
	}{
		{
			name: "critical keyword on a shallow button",
			el:   button("Accept All", 0),
			want: 100 - 70 + 6,
		},
		{
			name: "primary keyword only",
			el:   button("Submit", 0),
			want: 100 - 60 + 6,
		},
		{
			name: "navigation keyword",
			el:   button("Home", 0),
			want: 100 - 30 + 6,
		},
		{
			name: "only the highest tier counts",
			el:   button("Cancel and go back", 0),
			want: 100 - 70 + 6,
		},
		{
			name: "auth text clamps at zero",
			el:   button("Login", 0),
			want: 0,
		},
		{
			name: "provider named in goal gets extra weight",
			el: func() entity.CandidateElement {
				el := button("Google", 0)
				el.Depth = 15

				return el
			}(),
			goal: "sign in with google",
			want: 100 - 65 - 30 + 30,
		},
		{
			name: "provider not in goal",
			el: func() entity.CandidateElement {
				el := button("Google", 0)
				el.Depth = 15

				return el
			}(),
			goal: "find cheap flights",
			want: 100 - 65 + 30,
		},
		{
			name: "overlay drops depth bias",
			el: func() entity.CandidateElement {
				el := button("Learn more", 0)
				el.OverlayScore = 2
				el.Depth = 10

				return el
			}(),
			want: 100 - 32,
		},
		{
			name: "overlay bonus is capped",
			el: func() entity.CandidateElement {
				el := button("Learn more", 0)
				el.OverlayScore = 5

				return el
			}(),
			want: 100 - 80,
		},
		{
			name: "tiny link",
			el: entity.CandidateElement{
				Kind:        entity.KindLink,
				Text:        "terms",
				Visible:     true,
				BoundingBox: entity.BoundingBox{Width: 10, Height: 10},
			},
			want: 100 + 5 + 15,
		},
		{
			name: "page sized container",
			el: entity.CandidateElement{
				Kind:        entity.KindInteractive,
				Visible:     true,
				BoundingBox: entity.BoundingBox{Width: 1280, Height: 1500},
			},
			want: 100 + 5 + 20,
		},
		{
			name: "unknown kind",
			el: entity.CandidateElement{
				Kind:        entity.KindUnknown,
				Visible:     true,
				BoundingBox: entity.BoundingBox{Width: 200, Height: 40},
			},
			want: 100 + 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, r.RawScore(&tt.el, tt.goal, pageArea), 1e-9)
		})
	}
}

func TestRankButtonsOrdering(t *testing.T) {
	elements := []entity.CandidateElement{
		button("Home", 10),
		button("Submit", 20),
		button("Accept All", 30),
	}

	rank.New(rank.DefaultWeights()).Rank(elements, "", pageArea)

	assert.Equal(t, 5, elements[0].HierarchyLevel)
	assert.Equal(t, 2, elements[1].HierarchyLevel)
	assert.Equal(t, 1, elements[2].HierarchyLevel)

	rank.Order(elements)

	assert.Equal(t, []string{"Accept All", "Submit", "Home"}, texts(elements))
}

func TestRankEqualScores(t *testing.T) {
	elements := []entity.CandidateElement{button("Alpha", 0), button("Beta", 50)}

	rank.New(rank.DefaultWeights()).Rank(elements, "", pageArea)

	assert.Equal(t, 3, elements[0].HierarchyLevel)
	assert.Equal(t, 3, elements[1].HierarchyLevel)
}

func TestRankSingleVisibleElement(t *testing.T) {
	hidden := button("Hidden", 0)
	hidden.Visible = false
	elements := []entity.CandidateElement{button("Login", 0), hidden}

	rank.New(rank.DefaultWeights()).Rank(elements, "", pageArea)

	assert.Equal(t, entity.LevelHighest, elements[0].HierarchyLevel)
	assert.Equal(t, entity.LevelLowest, elements[1].HierarchyLevel)
}

func TestOrderPutsCookieConsentFirst(t *testing.T) {
	consent := button("Reject", 500)
	consent.CookieConsent = true
	consent.HierarchyLevel = 2

	top := button("Login", 900)
	top.HierarchyLevel = 1

	upper := button("Search", 100)
	upper.HierarchyLevel = 1

	elements := []entity.CandidateElement{top, consent, upper}
	rank.Order(elements)

	assert.Equal(t, []string{"Reject", "Search", "Login"}, texts(elements))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 1, rank.Normalize(0, 0, 100, 5))
	assert.Equal(t, 3, rank.Normalize(50, 0, 100, 5))
	assert.Equal(t, 4, rank.Normalize(99, 0, 100, 5))
	assert.Equal(t, 5, rank.Normalize(100, 0, 100, 5))
	assert.Equal(t, 3, rank.Normalize(7, 7, 7, 2))
	assert.Equal(t, 1, rank.Normalize(7, 7, 7, 1))
}

var sampleTexts = []string{
	"", "Accept All", "Submit", "Home", "Login", "Next", "Search", "Continue with Google",
	"Read more", "Privacy", "Menu", "Create account",
}

func candidateGen() *rapid.Generator[entity.CandidateElement] {
	return rapid.Custom(func(t *rapid.T) entity.CandidateElement {
		return entity.CandidateElement{
			Kind: rapid.SampledFrom([]entity.ElementKind{
				entity.KindButton, entity.KindLink, entity.KindInput, entity.KindInteractive, entity.KindUnknown,
			}).Draw(t, "kind"),
			Text:         rapid.SampledFrom(sampleTexts).Draw(t, "text"),
			Visible:      rapid.Bool().Draw(t, "visible"),
			Depth:        rapid.IntRange(0, 40).Draw(t, "depth"),
			OverlayScore: rapid.IntRange(0, 5).Draw(t, "overlay"),
			BoundingBox: entity.BoundingBox{
				Y:      rapid.Float64Range(0, 3000).Draw(t, "y"),
				Width:  rapid.Float64Range(0, 1280).Draw(t, "w"),
				Height: rapid.Float64Range(0, 1500).Draw(t, "h"),
			},
		}
	})
}

func TestRankLevelsInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		elements := rapid.SliceOf(candidateGen()).Draw(t, "elements")

		rank.New(rank.DefaultWeights()).Rank(elements, "log in with google", pageArea)

		for _, el := range elements {
			if el.HierarchyLevel < entity.LevelHighest || el.HierarchyLevel > entity.LevelLowest {
				t.Fatalf("level %d out of range", el.HierarchyLevel)
			}

			if !el.Visible && el.HierarchyLevel != entity.LevelLowest {
				t.Fatalf("invisible element at level %d", el.HierarchyLevel)
			}
		}
	})
}

func TestRankOverlayMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := candidateGen().Draw(t, "base")
		base.Visible = true

		low := rapid.IntRange(0, 4).Draw(t, "low")
		high := rapid.IntRange(low+1, 5).Draw(t, "high")

		a, b := base, base
		a.OverlayScore = high
		b.OverlayScore = low

		others := rapid.SliceOf(candidateGen()).Draw(t, "others")
		elements := append([]entity.CandidateElement{a, b}, others...)

		rank.New(rank.DefaultWeights()).Rank(elements, "", pageArea)

		if elements[0].HierarchyLevel > elements[1].HierarchyLevel {
			t.Fatalf("overlay %d ranked %d, overlay %d ranked %d",
				high, elements[0].HierarchyLevel, low, elements[1].HierarchyLevel)
		}
	})
}

func TestDefaultWeightsMatchEnvDefaults(t *testing.T) {
	w := rank.DefaultWeights()

	require.InDelta(t, 100.0, w.Base, 0)
	assert.Equal(t, 2, w.DepthOverlayThreshold)
	assert.InDelta(t, 0.0005, w.SmallAreaRatio, 1e-12)
}

func texts(elements []entity.CandidateElement) []string {
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		out = append(out, el.Text)
	}

	return out
}
