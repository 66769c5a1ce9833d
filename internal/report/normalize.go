package report

import "covidstats/internal/parser/ints"

// Row is one report row converted to typed values. Only the roles in Roles
// were read from the source; the other fields are zero and absent.
type Row struct {
	// Ordinal is the 0-based position of the row among the data rows.
	Ordinal int

	Roles     RoleSet
	Country   string
	Confirmed Count
	Active    Count
	Deaths    Count
	Latitude  Coord
}

// NormalizeRow converts the raw fields of one data row using idx.
//
// The country cell is kept verbatim. Counters keep the leading integer of
// their cell and latitude the leading decimal number; a cell without one
// becomes an invalid value. A column index past the end of a short row reads
// as an empty cell.
func NormalizeRow(ordinal int, fields []string, idx FieldIndex) Row {
	row := Row{Ordinal: ordinal, Roles: idx.Roles()}

	cell := func(r Role) string {
		col := idx[r]
		if col < 0 || col >= len(fields) {
			return ""
		}
		return fields[col]
	}
	count := func(r Role) Count {
		n, ok := ints.LeadingInt(cell(r))
		return Count{N: n, Valid: ok}
	}

	if row.Roles.Has(RoleCountry) {
		row.Country = cell(RoleCountry)
	}
	if row.Roles.Has(RoleConfirmed) {
		row.Confirmed = count(RoleConfirmed)
	}
	if row.Roles.Has(RoleActive) {
		row.Active = count(RoleActive)
	}
	if row.Roles.Has(RoleDeaths) {
		row.Deaths = count(RoleDeaths)
	}
	if row.Roles.Has(RoleLatitude) {
		deg, ok := ints.LeadingFloat(cell(RoleLatitude))
		row.Latitude = Coord{Deg: deg, Valid: ok}
	}
	return row
}

// Normalize converts every data row. rows must not include the header.
func Normalize(rows [][]string, idx FieldIndex) []Row {
	out := make([]Row, len(rows))
	for i, fields := range rows {
		out[i] = NormalizeRow(i, fields, idx)
	}
	return out
}
