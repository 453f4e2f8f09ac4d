package dom

import "strings"

const (
	maxOverlayAncestors = 5
	maxConsentAncestors = 4
	maxOverlayScore     = 5

	scoreDialog     = 4
	scoreOverlayTag = 3
	scoreFixed      = 2
	scoreFormSubmit = 2
	scoreConsent    = 5
	scoreConsentish = 2
)

var (
	overlayTerms = []string{
		"modal", "overlay", "dialog", "popup", "toast", "notification",
		"alert", "drawer", "cookie", "banner", "consent",
	}
	consentTerms = []string{
		"accept", "allow", "agree", "consent", "deny", "reject", "decline",
		"cookie", "privacy", "gdpr", "ccpa",
	}
	consentRegionTerms = []string{"cookie", "privacy", "consent", "gdpr", "data"}
)

// OverlayOptions tunes a single scoring call.
type OverlayOptions struct {
	// SkipConsent drops the consent component, used once a domain's banner was handled.
	SkipConsent bool
}

// OverlayResult is the capped overlay score and whether the node looks like a cookie-consent control.
type OverlayResult struct {
	Score         int
	CookieConsent bool
}

// ScoreOverlay estimates (0-5) whether n sits inside a modal, banner or consent region.
// A nil node scores 0.
func ScoreOverlay(n Node, opts OverlayOptions) OverlayResult {
	if n == nil {
		return OverlayResult{}
	}

	score := ancestorOverlay(n) + formSubmit(n)

	consent, cookie := consentScore(n)
	if !opts.SkipConsent {
		score += consent
	}

	if score > maxOverlayScore {
		score = maxOverlayScore
	}

	return OverlayResult{Score: score, CookieConsent: cookie}
}

// ConsentScore exposes the consent component alone.
func ConsentScore(n Node) (int, bool) {
	if n == nil {
		return 0, false
	}

	return consentScore(n)
}

// ancestorOverlay walks the node and up to four ancestors; the first signal found wins.
func ancestorOverlay(n Node) int {
	current := n
	for depth := 0; current != nil && depth < maxOverlayAncestors; depth++ {
		role := strings.ToLower(attr(current, "role"))
		_, modal := current.Attr("aria-modal")

		if role == "dialog" || role == "alertdialog" || current.Tag() == "dialog" || modal {
			return scoreDialog
		}

		class := strings.ToLower(attr(current, "class"))
		id := strings.ToLower(attr(current, "id"))

		for _, term := range overlayTerms {
			if strings.Contains(class, term) || strings.Contains(id, term) {
				return scoreOverlayTag
			}
		}

		if strings.EqualFold(current.InlineStyle("position"), "fixed") {
			return scoreFixed
		}

		current = current.Parent()
	}

	return 0
}

func formSubmit(n Node) int {
	tag := n.Tag()
	typ, hasType := n.Attr("type")
	typ = strings.ToLower(typ)

	submit := (tag == "button" && (!hasType || typ == "" || typ == "submit")) ||
		(tag == "input" && typ == "submit")
	if !submit {
		return 0
	}

	for current := n.Parent(); current != nil; current = current.Parent() {
		if current.Tag() == "form" {
			return scoreFormSubmit
		}
	}

	return 0
}

func consentScore(n Node) (int, bool) {
	text := strings.ToLower(n.Text() + " " + attr(n, "aria-label") + " " + attr(n, "title"))
	if !containsAny(text, consentTerms) {
		return 0, false
	}

	current := n.Parent()
	for depth := 0; current != nil && depth < maxConsentAncestors; depth++ {
		if containsAny(strings.ToLower(current.Text()), consentRegionTerms) {
			return scoreConsent, true
		}

		current = current.Parent()
	}

	return scoreConsentish, false
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}

	return false
}
