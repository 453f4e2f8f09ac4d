package fakes

import "goal-navigator/internal/entity"

const (
	PageWidth  = 1280
	PageHeight = 2000
)

func Snapshot(url string, candidates ...entity.RawCandidate) *entity.PageSnapshot {
	return &entity.PageSnapshot{
		URL:        url,
		Title:      "fixture",
		PageWidth:  PageWidth,
		PageHeight: PageHeight,
		Candidates: candidates,
	}
}

func Button(text string, y float64) entity.RawCandidate {
	return entity.RawCandidate{
		Tag:     "button",
		Text:    text,
		X:       100,
		Y:       y,
		Width:   120,
		Height:  40,
		Visible: true,
		Depth:   3,
	}
}

func Link(text, href string, y float64) entity.RawCandidate {
	raw := Button(text, y)
	raw.Tag = "a"
	raw.Href = href

	return raw
}

func Input(typ, placeholder string, y float64) entity.RawCandidate {
	return entity.RawCandidate{
		Tag:         "input",
		Type:        typ,
		Placeholder: placeholder,
		Text:        placeholder,
		X:           100,
		Y:           y,
		Width:       300,
		Height:      32,
		Visible:     true,
		Depth:       4,
	}
}

// InCookieBanner places raw inside a fixed cookie banner whose text mentions cookies.
func InCookieBanner(raw entity.RawCandidate) entity.RawCandidate {
	raw.Ancestors = append([]entity.RawAncestor{
		{Tag: "div", ClassAttr: "cookie-banner", Position: "fixed", Text: "we use cookies to improve your experience"},
		{Tag: "body"},
	}, raw.Ancestors...)

	return raw
}

// InForm appends a form ancestor to raw.
func InForm(raw entity.RawCandidate) entity.RawCandidate {
	raw.Ancestors = append(raw.Ancestors, entity.RawAncestor{Tag: "form"})

	return raw
}
