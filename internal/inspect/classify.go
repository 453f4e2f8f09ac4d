package inspect

import (
	"goal-navigator/internal/entity"
	"strings"

	"github.com/google/uuid"
)

const maxTextLen = 200

var (
	buttonInputTypes = map[string]bool{"button": true, "submit": true, "reset": true, "image": true}
	interactiveRoles = map[string]bool{
		"button": true, "link": true, "checkbox": true, "menuitem": true, "tab": true,
		"radio": true, "switch": true, "option": true, "combobox": true, "textbox": true,
		"searchbox": true, "slider": true, "treeitem": true,
	}
	sensitiveTerms = []string{
		"password", "passwd", "pwd", "secret", "token", "credential", "apikey", "api-key", "api_key",
		"otp", "cvv", "cvc", "card-number", "cardnumber", "ssn",
	}
	// fingerprintSpace namespaces element fingerprints.
	fingerprintSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("goal-navigator/candidate"))
)

// Candidate converts one raw scan entry into a candidate without scores.
func Candidate(raw entity.RawCandidate) entity.CandidateElement {
	el := entity.CandidateElement{
		Tag:         strings.ToLower(raw.Tag),
		Type:        strings.ToLower(raw.Type),
		Text:        clip(strings.TrimSpace(raw.Text)),
		Placeholder: raw.Placeholder,
		Name:        raw.Name,
		IDAttr:      raw.IDAttr,
		ClassAttr:   raw.ClassAttr,
		AriaLabel:   raw.AriaLabel,
		AriaRole:    strings.ToLower(raw.Role),
		Title:       raw.Title,
		Href:        raw.Href,
		ParentText:  clip(raw.ParentText),
		BoundingBox: entity.BoundingBox{X: raw.X, Y: raw.Y, Width: raw.Width, Height: raw.Height},
		Visible:     raw.Visible,
		Depth:       raw.Depth,
		Value:       raw.Value,
	}

	if el.Tag == "input" && el.Type == "" {
		el.Type = "text"
	}

	el.Kind = Kind(el.Tag, el.Type, el.AriaRole, raw.Clickable)
	el.Search = IsSearch(&el)
	el.Sensitive = IsSensitive(&el)
	el.Fingerprint = Fingerprint(&el)

	return el
}

// Kind maps tag, input type and role onto the coarse kind used for type bias.
func Kind(tag, typ, role string, clickable bool) entity.ElementKind {
	switch tag {
	case "button":
		return entity.KindButton
	case "a":
		return entity.KindLink
	case "input":
		if buttonInputTypes[typ] {
			return entity.KindButton
		}

		return entity.KindInput
	case "select":
		return entity.KindSelect
	case "textarea":
		return entity.KindTextarea
	case "label", "summary":
		return entity.KindInteractive
	}

	if interactiveRoles[role] || clickable {
		return entity.KindInteractive
	}

	return entity.KindUnknown
}

// IsSearch reports whether the element is a search control by type, role or attributes.
func IsSearch(el *entity.CandidateElement) bool {
	if el.Type == "search" || el.AriaRole == "search" || el.AriaRole == "searchbox" {
		return true
	}

	for _, v := range []string{el.IDAttr, el.Name, el.Placeholder, el.AriaLabel} {
		if strings.Contains(strings.ToLower(v), "search") {
			return true
		}
	}

	return false
}

// IsSensitive reports whether typed text for the element must not be logged.
func IsSensitive(el *entity.CandidateElement) bool {
	if el.Type == "password" {
		return true
	}

	for _, v := range []string{el.IDAttr, el.Name, el.Placeholder, el.AriaLabel} {
		lower := strings.ToLower(v)
		for _, term := range sensitiveTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}

	return false
}

// Fingerprint identifies an element across scans, where per-scan ids are meaningless.
func Fingerprint(el *entity.CandidateElement) string {
	key := strings.Join([]string{
		el.Tag, el.IDAttr, el.Name, el.Placeholder, el.AriaLabel, strings.ToLower(el.Text),
	}, "\x1f")

	return uuid.NewSHA1(fingerprintSpace, []byte(key)).String()
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxTextLen {
		return s
	}

	return string(r[:maxTextLen])
}
