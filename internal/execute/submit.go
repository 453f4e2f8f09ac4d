package execute

import (
	"goal-navigator/internal/entity"
	"strings"
)

var searchIconClasses = []string{"search-icon", "searchicon", "icon-search", "fa-search"}

// FindSubmit picks a control that submits the current form or search: a native
// submit first, then a search/go button, then a search icon. The element with
// the excluded fingerprint is never returned.
func FindSubmit(scan *entity.ScanResult, exclude string) *entity.CandidateElement {
	if scan == nil {
		return nil
	}

	checks := []func(*entity.CandidateElement) bool{
		isNativeSubmit,
		isSearchButton,
		isSearchIcon,
	}

	for _, check := range checks {
		for i := range scan.Elements {
			el := &scan.Elements[i]
			if exclude != "" && el.Fingerprint == exclude {
				continue
			}

			if check(el) {
				return el
			}
		}
	}

	return nil
}

func isNativeSubmit(el *entity.CandidateElement) bool {
	return el.Type == "submit"
}

func isSearchButton(el *entity.CandidateElement) bool {
	buttonLike := el.Tag == "button" || el.AriaRole == "button" ||
		strings.Contains(strings.ToLower(el.ClassAttr), "button")
	if !buttonLike {
		return false
	}

	if strings.EqualFold(strings.TrimSpace(el.Text), "go") {
		return true
	}

	for _, v := range []string{el.IDAttr, el.Name, el.Text, el.AriaLabel} {
		if strings.Contains(strings.ToLower(v), "search") {
			return true
		}
	}

	return false
}

func isSearchIcon(el *entity.CandidateElement) bool {
	class := strings.ToLower(el.ClassAttr)

	for _, icon := range searchIconClasses {
		if strings.Contains(class, icon) {
			return true
		}
	}

	return strings.Contains(class, "material-icons") && strings.Contains(strings.ToLower(el.Text), "search")
}
