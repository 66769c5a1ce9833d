// Package report turns the rows of a daily epidemiological report into one
// canonical record per country.
//
// The stages are pure and run in order:
//
//	MapFields  header row       -> FieldIndex (role -> column)
//	Normalize  raw rows         -> []Row      (typed, possibly invalid values)
//	Merge      []Row            -> []Record   (one per country)
//	FilterValid []Record        -> []Record   (records usable by a query)
//
// Numeric values carry an explicit Valid flag. An invalid value means "no
// usable data", which is different from a genuine zero.
package report

import "strconv"

// Role is the semantic meaning of a report column.
type Role uint8

const (
	RoleCountry Role = iota
	RoleConfirmed
	RoleActive
	RoleDeaths
	RoleLatitude
)

// roleTable lists every role with the header prefix that selects it. Headers
// are tested against the roles in this order.
var roleTable = [...]struct {
	role   Role
	name   string
	prefix string
	kind   Kind
}{
	{RoleCountry, "country", "country", KindString},
	{RoleConfirmed, "confirmed", "confirm", KindNumber},
	{RoleActive, "active", "active", KindNumber},
	{RoleDeaths, "deaths", "death", KindNumber},
	{RoleLatitude, "latitude", "lat", KindNumber},
}

// AllRoles returns the roles in declaration order.
func AllRoles() []Role {
	out := make([]Role, len(roleTable))
	for i, e := range roleTable {
		out[i] = e.role
	}
	return out
}

func (r Role) String() string {
	if int(r) < len(roleTable) {
		return roleTable[r].name
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

// Prefix returns the lowercase header prefix that maps a column to r.
func (r Role) Prefix() string {
	if int(r) < len(roleTable) {
		return roleTable[r].prefix
	}
	return ""
}

// Kind returns the natural value kind stored for r.
func (r Role) Kind() Kind {
	if int(r) < len(roleTable) {
		return roleTable[r].kind
	}
	return ""
}

// RoleSet is a set of roles.
type RoleSet uint8

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool { return s&(1<<r) != 0 }

// With returns the set with r added.
func (s RoleSet) With(r Role) RoleSet { return s | 1<<r }

// Count is an integer counter that may hold no valid data.
type Count struct {
	N     int64
	Valid bool
}

// ValidCount returns a valid Count holding n.
func ValidCount(n int64) Count { return Count{N: n, Valid: true} }

// Coord is a coordinate in degrees that may hold no valid data.
type Coord struct {
	Deg   float64
	Valid bool
}

// ValidCoord returns a valid Coord holding deg.
func ValidCoord(deg float64) Coord { return Coord{Deg: deg, Valid: true} }

// Record is the merged statistics of one country.
//
// Roles lists which columns the source report provided. A role missing from
// Roles is absent: its value is the zero value and must not be read as data.
// Country is empty for rows that were grouped by position because the report
// had no usable country column.
type Record struct {
	Country   string
	Confirmed Count
	Active    Count
	Deaths    Count
	Latitude  Coord
	Roles     RoleSet
}

// Has reports whether the source report provided role r for this record.
func (r Record) Has(role Role) bool { return r.Roles.Has(role) }

// numberValid reports whether the numeric value stored for role is valid.
func (r Record) numberValid(role Role) bool {
	switch role {
	case RoleConfirmed:
		return r.Confirmed.Valid
	case RoleActive:
		return r.Active.Valid
	case RoleDeaths:
		return r.Deaths.Valid
	case RoleLatitude:
		return r.Latitude.Valid
	}
	return false
}
