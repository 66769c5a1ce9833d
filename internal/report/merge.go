package report

import (
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/unicode/norm"
)

// counter accumulates one numeric field across the rows of a group.
type counter struct {
	sum      int64
	sawValid bool
}

// add folds v into the counter. Invalid values contribute nothing. The sum
// saturates at the int64 bounds, like LeadingInt does for a single cell.
func (c *counter) add(v Count) {
	if !v.Valid {
		return
	}
	c.sum = addClamped(c.sum, v.N)
	c.sawValid = true
}

func addClamped(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

// resolve produces the final value. When tracked is set and no row ever
// contributed a valid value the result is invalid rather than zero.
func (c counter) resolve(tracked bool) Count {
	if tracked && !c.sawValid {
		return Count{}
	}
	return ValidCount(c.sum)
}

// group is the accumulator for every row sharing a grouping key.
type group struct {
	country   string
	byCountry bool
	roles     RoleSet

	confirmed counter
	active    counter
	deaths    counter
	latitudes []float64
}

// groupKey identifies a group: a country name, or the ordinal of a row that
// had no country to group by.
type groupKey struct {
	country string
	ordinal int
}

// Merger folds normalized rows into one accumulator per country. It is not
// safe for concurrent use; one Merger serves one pass over one report.
type Merger struct {
	groups map[groupKey]*group
	order  []groupKey
}

// NewMerger returns an empty Merger.
func NewMerger() *Merger {
	return &Merger{groups: map[groupKey]*group{}}
}

// Add folds row into its group, creating the group on first sight.
//
// Rows are grouped by country name when the country role is mapped and the
// cell is non-empty. Any other row forms a group of its own, keyed by its
// ordinal, and gets no validity tracking: its invalid counters end up as 0.
func (m *Merger) Add(row Row) {
	key := groupKey{ordinal: row.Ordinal}
	byCountry := row.Roles.Has(RoleCountry) && row.Country != ""
	if byCountry {
		key = groupKey{country: norm.NFC.String(row.Country), ordinal: -1}
	}

	g, ok := m.groups[key]
	if !ok {
		g = &group{country: row.Country, byCountry: byCountry}
		if !byCountry {
			g.country = ""
		}
		m.groups[key] = g
		m.order = append(m.order, key)
	}
	g.roles |= row.Roles

	if row.Roles.Has(RoleConfirmed) {
		g.confirmed.add(row.Confirmed)
	}
	if row.Roles.Has(RoleActive) {
		g.active.add(row.Active)
	}
	if row.Roles.Has(RoleDeaths) {
		g.deaths.add(row.Deaths)
	}
	if row.Roles.Has(RoleLatitude) && row.Latitude.Valid {
		g.latitudes = append(g.latitudes, row.Latitude.Deg)
	}
}

// Records finalizes every group into a Record, in first-seen order. It may be
// called more than once; the accumulators are not modified.
func (m *Merger) Records() []Record {
	out := make([]Record, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.groups[key].finalize())
	}
	return out
}

func (g *group) finalize() Record {
	rec := Record{Country: g.country, Roles: g.roles}
	if g.roles.Has(RoleConfirmed) {
		rec.Confirmed = g.confirmed.resolve(g.byCountry)
	}
	if g.roles.Has(RoleActive) {
		rec.Active = g.active.resolve(g.byCountry)
	}
	if g.roles.Has(RoleDeaths) {
		rec.Deaths = g.deaths.resolve(g.byCountry)
	}
	if g.roles.Has(RoleLatitude) {
		if mean, err := stats.Mean(g.latitudes); err == nil {
			rec.Latitude = ValidCoord(mean)
		}
	}
	return rec
}

// Merge groups rows by country and returns one Record per group.
//
// Country names are compared after NFC normalization, so a precomposed and a
// decomposed spelling of the same name ("Curaçao") fall into one group. The
// record keeps the first spelling seen.
func Merge(rows []Row) []Record {
	m := NewMerger()
	for _, r := range rows {
		m.Add(r)
	}
	return m.Records()
}
