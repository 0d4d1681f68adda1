package model

import "strings"

// Contributor is a project author mined from version control.
//
// Email is kept in memory for merging but is never serialised: the report
// must not leak contributor addresses.
type Contributor struct {
	Name          string  `json:"name"`
	Email         *string `json:"-"`
	Contributions int     `json:"contributions"`
}

// NewContributor returns a contributor with a copy of email (nil allowed).
func NewContributor(name string, email *string, contributions int) Contributor {
	var e *string
	if email != nil {
		v := *email
		e = &v
	}
	return Contributor{Name: name, Email: e, Contributions: contributions}
}

// NameParts splits the full name on whitespace.
func (c Contributor) NameParts() []string {
	return strings.Fields(c.Name)
}

// FirstName returns the first whitespace-delimited token of the name, or ""
// when the name is blank.
func (c Contributor) FirstName() string {
	parts := c.NameParts()
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// HasSingleName reports whether the name consists of exactly one token.
func (c Contributor) HasSingleName() bool {
	return len(c.NameParts()) == 1
}

// WithoutEmail returns a copy of the contributor with the email removed.
func (c Contributor) WithoutEmail() Contributor {
	return Contributor{Name: c.Name, Contributions: c.Contributions}
}
