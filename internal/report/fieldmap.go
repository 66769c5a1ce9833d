package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldIndex maps a role to the column that holds it. Roles without a
// matching header have no entry.
type FieldIndex map[Role]int

// MapFields builds a FieldIndex from a header row.
//
// A header selects a role when its lowercase form starts with the role's
// prefix ("Country_Region" -> country, "Confirmed_Cases" -> confirmed). Every
// header is tested against every role, so when several headers match the
// same role the last one wins.
func MapFields(header []string) FieldIndex {
	idx := FieldIndex{}
	lower := cases.Lower(language.Und)
	for col, h := range header {
		folded := lower.String(h)
		for _, r := range AllRoles() {
			if strings.HasPrefix(folded, r.Prefix()) {
				idx[r] = col
			}
		}
	}
	return idx
}

// Roles returns the set of mapped roles.
func (fi FieldIndex) Roles() RoleSet {
	var s RoleSet
	for r := range fi {
		s = s.With(r)
	}
	return s
}
