package inspect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goal-navigator/internal/entity"
	"goal-navigator/internal/inspect"
)

func TestKind(t *testing.T) {
	tests := []struct {
		tag, typ, role string
		clickable      bool
		want           entity.ElementKind
	}{
		{tag: "button", want: entity.KindButton},
		{tag: "input", typ: "submit", want: entity.KindButton},
		{tag: "input", typ: "email", want: entity.KindInput},
		{tag: "a", want: entity.KindLink},
		{tag: "select", want: entity.KindSelect},
		{tag: "textarea", want: entity.KindTextarea},
		{tag: "summary", want: entity.KindInteractive},
		{tag: "div", role: "button", want: entity.KindInteractive},
		{tag: "span", clickable: true, want: entity.KindInteractive},
		{tag: "div", want: entity.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.typ+"/"+tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, inspect.Kind(tt.tag, tt.typ, tt.role, tt.clickable))
		})
	}
}

func TestCandidateDerivedFlags(t *testing.T) {
	search := inspect.Candidate(entity.RawCandidate{Tag: "INPUT", Placeholder: "Search products", Visible: true})
	assert.Equal(t, "input", search.Tag)
	assert.Equal(t, "text", search.Type)
	assert.Equal(t, entity.KindInput, search.Kind)
	assert.True(t, search.Search)
	assert.False(t, search.Sensitive)

	role := inspect.Candidate(entity.RawCandidate{Tag: "div", Role: "Searchbox"})
	assert.True(t, role.Search)

	password := inspect.Candidate(entity.RawCandidate{Tag: "input", Type: "password", Name: "pw"})
	assert.True(t, password.Sensitive)

	token := inspect.Candidate(entity.RawCandidate{Tag: "input", Name: "api_key"})
	assert.True(t, token.Sensitive)
}

func TestFingerprint(t *testing.T) {
	a := inspect.Candidate(entity.RawCandidate{Tag: "button", Text: "Search", Y: 10})
	moved := inspect.Candidate(entity.RawCandidate{Tag: "button", Text: "search", Y: 400})
	other := inspect.Candidate(entity.RawCandidate{Tag: "button", Text: "Go"})

	assert.Equal(t, a.Fingerprint, moved.Fingerprint)
	assert.NotEqual(t, a.Fingerprint, other.Fingerprint)
	assert.NotEmpty(t, a.Fingerprint)
}

func TestDomainOf(t *testing.T) {
	tests := map[string]string{
		"https://www.example.com/login":      "example.com",
		"https://shop.example.co.uk/cart":    "example.co.uk",
		"http://localhost:8080/":             "localhost",
		"http://127.0.0.1:3000/x":            "127.0.0.1",
		"https://accounts.Google.com/signin": "google.com",
		"about:blank":                        "",
		"":                                   "",
	}

	for in, want := range tests {
		assert.Equal(t, want, inspect.DomainOf(in), in)
	}
}
