package domain

import "strings"

// SearchQuery is a marketplace search string plus its exclusion terms.
// Exclusions are carried structurally and only flattened to the inline
// "-word" convention at a provider's API boundary.
type SearchQuery struct {
	Text    string
	Exclude []string
}

// Inline renders the query in the single-string convention some provider
// APIs expect: the text followed by a "-word" suffix per exclusion.
func (q SearchQuery) Inline() string {
	if len(q.Exclude) == 0 {
		return q.Text
	}
	var b strings.Builder
	b.WriteString(q.Text)
	for _, word := range q.Exclude {
		b.WriteString(" -")
		b.WriteString(word)
	}
	return b.String()
}

// Excludes reports whether the given product name contains any of the
// query's exclusion terms.
func (q SearchQuery) Excludes(productName string) bool {
	name := strings.ToLower(productName)
	for _, word := range q.Exclude {
		if strings.Contains(name, strings.ToLower(word)) {
			return true
		}
	}
	return false
}
