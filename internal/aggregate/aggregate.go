// Package aggregate implements the read-only statistics computed over the
// merged country records of a daily report.
//
// Every query expects records that already passed report.FilterValid with the
// query's requirement table (see the *Requirements variables); fields outside
// that table are not read.
package aggregate

import (
	"cmp"
	"slices"

	"covidstats/internal/report"
	"covidstats/internal/topk"
)

// Defaults used by the CLI when the pipeline config leaves them unset.
const (
	DefaultTopConfirmed       = 3
	DefaultManyCasesThreshold = 1_000_000
	DefaultActiveStage        = 10
	DefaultConfirmedStage     = 5
)

// Requirement tables for each query.
var (
	MostConfirmedRequirements = report.Requirements{
		report.RoleCountry:   report.KindString,
		report.RoleConfirmed: report.KindNumber,
	}
	HemisphereRequirements = report.Requirements{
		report.RoleCountry:  report.KindString,
		report.RoleDeaths:   report.KindNumber,
		report.RoleLatitude: report.KindNumber,
	}
	ActiveSumRequirements = report.Requirements{
		report.RoleConfirmed: report.KindNumber,
		report.RoleActive:    report.KindNumber,
	}
	DeathSumRequirements = report.Requirements{
		report.RoleConfirmed: report.KindNumber,
		report.RoleActive:    report.KindNumber,
		report.RoleDeaths:    report.KindNumber,
	}
)

func byConfirmed(a, b report.Record) int { return cmp.Compare(a.Confirmed.N, b.Confirmed.N) }
func byActive(a, b report.Record) int    { return cmp.Compare(a.Active.N, b.Active.N) }

// MostConfirmed returns the names of the n countries with the most confirmed
// cases, sorted alphabetically. Selection is by confirmed count; the output
// order is not.
func MostConfirmed(recs []report.Record, n int) []string {
	top := topk.Select(recs, n, byConfirmed)
	names := make([]string, len(top))
	for i, r := range top {
		names[i] = r.Country
	}
	slices.Sort(names)
	return names
}

// ThreeMostConfirmed is MostConfirmed with n = 3.
func ThreeMostConfirmed(recs []report.Record) []string {
	return MostConfirmed(recs, DefaultTopConfirmed)
}

// Hemispheres holds the country with most deaths in each hemisphere. A
// hemisphere without any record that has at least one death is empty.
type Hemispheres struct {
	Northern string `json:"northern"`
	Southern string `json:"southern"`
}

// MostDeathsByHemisphere finds, in one pass, the record with most deaths
// among those at latitude >= 0 (northern) and latitude < 0 (southern). A
// record replaces the running maximum only when it has strictly more deaths,
// so the first of several tied records wins.
func MostDeathsByHemisphere(recs []report.Record) Hemispheres {
	var north, south report.Record
	for _, r := range recs {
		if r.Latitude.Deg >= 0 {
			if r.Deaths.N > north.Deaths.N {
				north = r
			}
		} else if r.Deaths.N > south.Deaths.N {
			south = r
		}
	}
	return Hemispheres{Northern: north.Country, Southern: south.Country}
}

// SumActiveForManyCases sums active cases over the records with at least
// threshold confirmed cases. ok is false when no record reached the
// threshold, so the sum carries no information.
func SumActiveForManyCases(recs []report.Record, threshold int64) (sum int64, ok bool) {
	for _, r := range recs {
		if r.Confirmed.N >= threshold {
			sum += r.Active.N
			ok = true
		}
	}
	return sum, ok
}

// DeathSum sums deaths over a two-stage selection: the activeStage records
// with most active cases, and among those the confirmedStage records with
// most confirmed cases. ok is false when recs is empty.
func DeathSum(recs []report.Record, activeStage, confirmedStage int) (sum int64, ok bool) {
	mostActive := topk.Select(recs, activeStage, byActive)
	picked := topk.Select(mostActive, confirmedStage, byConfirmed)
	for _, r := range picked {
		sum += r.Deaths.N
	}
	return sum, len(picked) > 0
}

// DeathSumFewestActiveInMostConfirmed is DeathSum with the default 10/5
// stages.
func DeathSumFewestActiveInMostConfirmed(recs []report.Record) (int64, bool) {
	return DeathSum(recs, DefaultActiveStage, DefaultConfirmedStage)
}
