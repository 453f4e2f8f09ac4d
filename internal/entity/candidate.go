package entity

// ElementKind is the coarse interaction class of a candidate, used for type bias.
type ElementKind string

const (
	KindButton      ElementKind = "button"
	KindLink        ElementKind = "link"
	KindInput       ElementKind = "input"
	KindSelect      ElementKind = "select"
	KindTextarea    ElementKind = "textarea"
	KindInteractive ElementKind = "interactive"
	KindUnknown     ElementKind = "unknown"
)

// LevelLowest is the hierarchy level reserved for invisible and least relevant elements.
const (
	LevelHighest = 1
	LevelLowest  = 5
)

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// CandidateElement is one interactive node of a single inspection pass.
// ID is only meaningful inside the ScanResult that produced it.
type CandidateElement struct {
	ID          int         `json:"id"`
	Tag         string      `json:"tag"`
	Kind        ElementKind `json:"kind"`
	Type        string      `json:"type,omitempty"`
	Text        string      `json:"text"`
	Placeholder string      `json:"placeholder"`
	Name        string      `json:"name"`
	IDAttr      string      `json:"id_attr"`
	ClassAttr   string      `json:"class_attr"`
	AriaLabel   string      `json:"aria_label"`
	AriaRole    string      `json:"aria_role"`
	Title       string      `json:"title,omitempty"`
	Href        string      `json:"href,omitempty"`
	ParentText  string      `json:"parent_text,omitempty"`
	BoundingBox
	Visible        bool `json:"visible"`
	Depth          int  `json:"dom_depth"`
	OverlayScore   int  `json:"overlay_score"`
	HierarchyLevel int  `json:"hierarchy_level"`
	CookieConsent  bool `json:"cookie_consent,omitempty"`
	Search         bool `json:"search,omitempty"`

	Value       string `json:"-"`
	Sensitive   bool   `json:"-"`
	Fingerprint string `json:"-"`
}

// IsTextEntry reports whether the element accepts typed text.
func (c *CandidateElement) IsTextEntry() bool {
	return c.Kind == KindInput || c.Kind == KindTextarea
}

// ScanResult is the ordered candidate list of one inspection pass. It is replaced wholesale every step.
type ScanResult struct {
	URL            string             `json:"url"`
	Title          string             `json:"title,omitempty"`
	Domain         string             `json:"-"`
	PageWidth      float64            `json:"-"`
	PageHeight     float64            `json:"-"`
	ConsentHandled bool               `json:"consent_handled"`
	Elements       []CandidateElement `json:"elements"`
}

func (s *ScanResult) Len() int {
	if s == nil {
		return 0
	}

	return len(s.Elements)
}

// ByID returns the candidate with the given per-scan id.
func (s *ScanResult) ByID(id int) (*CandidateElement, bool) {
	if s == nil || id < 0 || id >= len(s.Elements) {
		return nil, false
	}

	el := &s.Elements[id]
	if el.ID != id {
		for i := range s.Elements {
			if s.Elements[i].ID == id {
				return &s.Elements[i], true
			}
		}

		return nil, false
	}

	return el, true
}

// Reindex assigns contiguous ids 0..N-1 in the current order.
func (s *ScanResult) Reindex() {
	for i := range s.Elements {
		s.Elements[i].ID = i
	}
}

// PageSnapshot is the raw output of the in-page scan script.
type PageSnapshot struct {
	URL        string         `json:"url"`
	Title      string         `json:"title"`
	PageWidth  float64        `json:"pageWidth"`
	PageHeight float64        `json:"pageHeight"`
	Candidates []RawCandidate `json:"candidates"`
	Skipped    int            `json:"skipped"`
	Error      string         `json:"error,omitempty"`
}

type RawCandidate struct {
	Tag         string        `json:"tag"`
	Type        string        `json:"type"`
	Text        string        `json:"text"`
	FullText    string        `json:"fullText"`
	Placeholder string        `json:"placeholder"`
	Value       string        `json:"value"`
	Name        string        `json:"name"`
	IDAttr      string        `json:"id"`
	ClassAttr   string        `json:"className"`
	AriaLabel   string        `json:"ariaLabel"`
	Role        string        `json:"role"`
	Title       string        `json:"title"`
	Alt         string        `json:"alt"`
	Href        string        `json:"href"`
	ParentText  string        `json:"parentText"`
	Position    string        `json:"position"`
	AriaModal   bool          `json:"ariaModal"`
	Clickable   bool          `json:"clickable"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Visible     bool          `json:"visible"`
	Depth       int           `json:"depth"`
	Ancestors   []RawAncestor `json:"ancestors"`
}

// RawAncestor is one step of a candidate's parent chain, nearest first.
type RawAncestor struct {
	Tag       string `json:"tag"`
	Role      string `json:"role"`
	IDAttr    string `json:"id"`
	ClassAttr string `json:"className"`
	Position  string `json:"position"`
	AriaModal bool   `json:"ariaModal"`
	Text      string `json:"text"`
}
