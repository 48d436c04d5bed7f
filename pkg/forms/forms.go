// Package forms fetches a page and extracts its HTML forms into
// descriptors the injection scanner can submit.
package forms

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Submission methods. Anything else in a method attribute becomes MethodGet.
const (
	MethodGet  = "get"
	MethodPost = "post"
)

// DefaultFieldType is assumed for an input without a type attribute.
const DefaultFieldType = "text"

// Field is one <input> element.
type Field struct {
	// Type is the lower-cased type attribute, "text" when absent
	Type string `json:"type"`

	// Name is the name attribute; only meaningful when HasName is set
	Name    string `json:"name,omitempty"`
	HasName bool   `json:"has_name"`

	// Value is the default value attribute, "" when absent
	Value string `json:"value"`
}

// Form is one <form> element with its inputs in document order.
type Form struct {
	// Action is the raw action attribute, unresolved
	Action    string `json:"action,omitempty"`
	HasAction bool   `json:"has_action"`

	// Method is MethodGet or MethodPost
	Method string `json:"method"`

	Fields []Field `json:"fields"`
}

// NormalizeMethod lower-cases m and maps anything other than "post" to "get".
func NormalizeMethod(m string) string {
	if strings.EqualFold(strings.TrimSpace(m), MethodPost) {
		return MethodPost
	}
	return MethodGet
}

// Parse extracts every form in r. Inputs belong to every form that is open
// around them, so nested forms both see an inner input. Parsing never
// fails; unreadable input yields what was parsed so far.
func Parse(r io.Reader) []Form {
	var (
		out  []Form
		open []int
	)

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return out

		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			switch t.DataAtom {
			case atom.Form:
				out = append(out, newForm(t))
				if tt == html.StartTagToken {
					open = append(open, len(out)-1)
				}
			case atom.Input:
				f := newField(t)
				for _, i := range open {
					out[i].Fields = append(out[i].Fields, f)
				}
			}

		case html.EndTagToken:
			if t := z.Token(); t.DataAtom == atom.Form && len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}
}

func newForm(t html.Token) Form {
	f := Form{Method: MethodGet, Fields: []Field{}}
	for _, a := range t.Attr {
		switch a.Key {
		case "action":
			f.Action, f.HasAction = a.Val, true
		case "method":
			f.Method = NormalizeMethod(a.Val)
		}
	}
	return f
}

func newField(t html.Token) Field {
	f := Field{Type: DefaultFieldType}
	for _, a := range t.Attr {
		switch a.Key {
		case "type":
			f.Type = strings.ToLower(a.Val)
		case "name":
			f.Name, f.HasName = a.Val, true
		case "value":
			f.Value = a.Val
		}
	}
	return f
}
