package report

import "fmt"

// Kind is the value kind a query expects for a role.
type Kind string

const (
	KindNumber Kind = "number"
	KindString Kind = "string"
)

// Requirements lists the roles a query needs and the kind it expects for
// each. Roles that are not listed are never checked.
type Requirements map[Role]Kind

// Rejected describes a record dropped by FilterValid.
type Rejected struct {
	Record Record
	Role   Role
	Reason string
}

// Check reports whether rec satisfies every requirement. When it does not,
// the first failing role (in role declaration order) and a reason are
// returned.
//
// A required role fails when the report did not provide it, when the
// requested kind differs from the role's kind, when a number holds no valid
// data, or when a string is empty.
func (req Requirements) Check(rec Record) (bool, Role, string) {
	for _, e := range roleTable {
		want, ok := req[e.role]
		if !ok {
			continue
		}
		if !rec.Has(e.role) {
			return false, e.role, fmt.Sprintf("required field %q missing", e.name)
		}
		if want != e.kind {
			return false, e.role, fmt.Sprintf("field %q: holds a %s, want %s", e.name, e.kind, want)
		}
		switch want {
		case KindNumber:
			if !rec.numberValid(e.role) {
				return false, e.role, fmt.Sprintf("field %q: no valid number", e.name)
			}
		case KindString:
			if rec.Country == "" {
				return false, e.role, fmt.Sprintf("field %q: empty", e.name)
			}
		}
	}
	return true, 0, ""
}

// FilterValid returns the records that satisfy req, in input order. The
// input slice is not modified. reject, when non-nil, is called for every
// dropped record.
func FilterValid(recs []Record, req Requirements, reject func(Rejected)) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		ok, role, reason := req.Check(rec)
		if ok {
			out = append(out, rec)
			continue
		}
		if reject != nil {
			reject(Rejected{Record: rec, Role: role, Reason: reason})
		}
	}
	return out
}
