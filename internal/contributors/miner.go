// Package contributors mines commit authors from version control and
// reconciles the many spellings one person accumulates into a single,
// email-free contributor entry.
package contributors

import (
	"context"
	"strings"

	"github.com/StinkyLord/xctools/internal/logger"
)

// Observations maps an author email to every name recorded for it, one
// element per commit.
type Observations map[string][]string

// Aliases maps known alternative spellings to a canonical full name.
// Matching is exact; unknown names pass through unchanged.
type Aliases map[string]string

// DefaultAliases is the built-in alias table.
func DefaultAliases() Aliases {
	return Aliases{
		"kamaal111": "Kamaal Farah",
		"Kamaal":    "Kamaal Farah",
	}
}

// Canonical returns the canonical spelling of name.
func (a Aliases) Canonical(name string) string {
	if canonical, ok := a[name]; ok {
		return canonical
	}
	return name
}

// ParseLine splits a "<name> <<email>>" history line. The name is the text
// before the first '<', trimmed; the email is the text between that '<' and
// the first '>'. Lines without both delimiters in order, or with an empty
// name, are rejected.
func ParseLine(line string) (name, email string, ok bool) {
	start := strings.IndexByte(line, '<')
	if start < 0 {
		return "", "", false
	}
	end := strings.IndexByte(line, '>')
	if end < 0 || end <= start {
		return "", "", false
	}
	name = strings.TrimSpace(line[:start])
	if name == "" {
		return "", "", false
	}
	return name, line[start+1 : end], true
}

// Group parses lines, applies aliases and groups names by email.
func Group(lines []string, aliases Aliases) Observations {
	obs := make(Observations)
	for _, line := range lines {
		name, email, ok := ParseLine(line)
		if !ok {
			continue
		}
		obs[email] = append(obs[email], aliases.Canonical(name))
	}
	return obs
}

// Miner collects contributor observations from a History.
type Miner struct {
	History History
	Aliases Aliases
}

// NewMiner returns a Miner. A nil alias table selects DefaultAliases.
func NewMiner(history History, aliases Aliases) *Miner {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Miner{History: history, Aliases: aliases}
}

// Mine never fails: when history is unavailable (no repository, git not
// installed) the result is empty.
func (m *Miner) Mine(ctx context.Context) Observations {
	log := logger.FromContext(ctx)
	if m.History == nil {
		return Observations{}
	}
	lines, err := m.History.AuthorLines(ctx)
	if err != nil {
		log.Debug("version control history unavailable, skipping contributors", "err", err)
		return Observations{}
	}
	obs := Group(lines, m.Aliases)
	log.Debug("mined contributors", "commits", len(lines), "emails", len(obs))
	return obs
}
