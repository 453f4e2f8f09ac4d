// Package rank turns candidate signals into 1-5 hierarchy levels.
package rank

// Weights is the scoring table. Lower raw scores rank higher.
type Weights struct {
	Base float64 `envconfig:"SCORE_BASE" default:"100"`

	OverlayMultiplier float64 `envconfig:"SCORE_OVERLAY_MULTIPLIER" default:"16"`
	OverlayCap        float64 `envconfig:"SCORE_OVERLAY_CAP" default:"80"`

	Critical   float64 `envconfig:"SCORE_CRITICAL" default:"70"`
	Primary    float64 `envconfig:"SCORE_PRIMARY" default:"60"`
	Secondary  float64 `envconfig:"SCORE_SECONDARY" default:"50"`
	Navigation float64 `envconfig:"SCORE_NAVIGATION" default:"30"`
	Search     float64 `envconfig:"SCORE_SEARCH" default:"20"`

	Auth         float64 `envconfig:"SCORE_AUTH" default:"65"`
	ProviderGoal float64 `envconfig:"SCORE_PROVIDER_GOAL" default:"30"`

	TypeButton      float64 `envconfig:"SCORE_TYPE_BUTTON" default:"0"`
	TypeLink        float64 `envconfig:"SCORE_TYPE_LINK" default:"5"`
	TypeInput       float64 `envconfig:"SCORE_TYPE_INPUT" default:"10"`
	TypeInteractive float64 `envconfig:"SCORE_TYPE_INTERACTIVE" default:"5"`
	TypeUnknown     float64 `envconfig:"SCORE_TYPE_UNKNOWN" default:"10"`

	DepthMultiplier float64 `envconfig:"SCORE_DEPTH_MULTIPLIER" default:"2"`
	DepthCap        float64 `envconfig:"SCORE_DEPTH_CAP" default:"30"`
	// DepthOverlayThreshold: depth bias only applies below this overlay score.
	DepthOverlayThreshold int `envconfig:"SCORE_DEPTH_OVERLAY_THRESHOLD" default:"2"`

	SmallAreaRatio   float64 `envconfig:"SCORE_SMALL_AREA_RATIO" default:"0.0005"`
	SmallAreaPenalty float64 `envconfig:"SCORE_SMALL_AREA_PENALTY" default:"15"`
	LargeAreaRatio   float64 `envconfig:"SCORE_LARGE_AREA_RATIO" default:"0.5"`
	LargeAreaPenalty float64 `envconfig:"SCORE_LARGE_AREA_PENALTY" default:"20"`
}

func DefaultWeights() Weights {
	return Weights{
		Base:                  100,
		OverlayMultiplier:     16,
		OverlayCap:            80,
		Critical:              70,
		Primary:               60,
		Secondary:             50,
		Navigation:            30,
		Search:                20,
		Auth:                  65,
		ProviderGoal:          30,
		TypeButton:            0,
		TypeLink:              5,
		TypeInput:             10,
		TypeInteractive:       5,
		TypeUnknown:           10,
		DepthMultiplier:       2,
		DepthCap:              30,
		DepthOverlayThreshold: 2,
		SmallAreaRatio:        0.0005,
		SmallAreaPenalty:      15,
		LargeAreaRatio:        0.5,
		LargeAreaPenalty:      20,
	}
}

// Keyword tiers, checked in order; only the first matching tier counts.
var (
	criticalTerms   = []string{"allow all", "allow", "accept", "confirm", "deny", "reject", "continue", "proceed", "cancel"}
	primaryTerms    = []string{"login", "sign in", "signin", "log in", "submit", "save", "start", "sign up", "create", "get started"}
	secondaryTerms  = []string{"register", "signup", "create account", "next", "back"}
	navigationTerms = []string{"menu", "nav", "navigation", "home"}
	searchTerms     = []string{"search", "find", "query"}

	authTerms = []string{
		"login", "log in", "signin", "sign in", "auth", "authenticate", "continue with",
	}
	providers = []string{"google", "facebook", "twitter", "github", "apple", "microsoft"}
)
