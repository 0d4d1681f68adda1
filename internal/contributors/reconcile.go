package contributors

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/StinkyLord/xctools/internal/model"
)

// MergeDecision is the outcome of comparing two contributor records.
type MergeDecision int

const (
	// Distinct means the records belong to different people.
	Distinct MergeDecision = iota
	// MergeInto means the records are the same person.
	MergeInto
)

func (d MergeDecision) String() string {
	if d == MergeInto {
		return "merge"
	}
	return "distinct"
}

// Decide compares a candidate with an already merged record. They are the
// same person when the first names match and either the full names are
// identical or exactly one side is a bare first name: "John" merges with
// "John Doe", but "John Doe" never merges with "John Smith".
func Decide(candidate, existing model.Contributor) MergeDecision {
	first := candidate.FirstName()
	if first == "" || first != existing.FirstName() {
		return Distinct
	}
	if candidate.Name == existing.Name {
		return MergeInto
	}
	cn, en := len(candidate.NameParts()), len(existing.NameParts())
	if (cn == 1 || en == 1) && cn != en {
		return MergeInto
	}
	return Distinct
}

// Aggregate turns per-email observations into one contributor per email,
// named after the longest observed spelling (first seen wins ties) and
// credited with one contribution per observation. Output is sorted by email.
func Aggregate(obs Observations) []model.Contributor {
	emails := make([]string, 0, len(obs))
	for email := range obs {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	records := make([]model.Contributor, 0, len(emails))
	for _, email := range emails {
		names := obs[email]
		if len(names) == 0 {
			continue
		}
		records = append(records, model.NewContributor(longestName(names), &email, len(names)))
	}
	return records
}

func longestName(names []string) string {
	longest := ""
	for _, name := range names {
		if utf8.RuneCountInString(name) > utf8.RuneCountInString(longest) {
			longest = name
		}
	}
	return longest
}

// Reconciler merges contributor records that belong to the same person.
type Reconciler struct {
	// DropUnmatched discards a record whose first name collides with an
	// existing one that Decide rejects. By default such a record is kept as
	// a separate contributor.
	DropUnmatched bool
}

// Merge folds records into the smallest set of distinct contributors.
// Records are processed in name order so the outcome does not depend on the
// order of the input.
func (r Reconciler) Merge(records []model.Contributor) []model.Contributor {
	ordered := make([]model.Contributor, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return emailOf(ordered[i]) < emailOf(ordered[j])
	})

	var merged []model.Contributor
	for _, candidate := range ordered {
		first := candidate.FirstName()
		if first == "" {
			continue
		}
		if !containsFirstName(merged, first) {
			merged = append(merged, candidate)
			continue
		}

		idx := -1
		for i, existing := range merged {
			if Decide(candidate, existing) == MergeInto {
				idx = i
				break
			}
		}
		if idx < 0 {
			if !r.DropUnmatched {
				merged = append(merged, candidate)
			}
			continue
		}

		existing := merged[idx]
		name := existing.Name
		if utf8.RuneCountInString(candidate.Name) >= utf8.RuneCountInString(existing.Name) {
			name = candidate.Name
		}
		merged[idx] = model.NewContributor(name, candidate.Email, candidate.Contributions+existing.Contributions)
	}
	return merged
}

// Finalize sorts contributors case-insensitively by name and removes every
// email.
func Finalize(contributors []model.Contributor) []model.Contributor {
	out := make([]model.Contributor, 0, len(contributors))
	for _, c := range contributors {
		out = append(out, c.WithoutEmail())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Reconcile runs Aggregate, Merge and Finalize.
func (r Reconciler) Reconcile(obs Observations) []model.Contributor {
	return Finalize(r.Merge(Aggregate(obs)))
}

func containsFirstName(contributors []model.Contributor, first string) bool {
	for _, c := range contributors {
		if c.FirstName() == first {
			return true
		}
	}
	return false
}

func emailOf(c model.Contributor) string {
	if c.Email == nil {
		return ""
	}
	return *c.Email
}
