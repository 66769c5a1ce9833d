package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowsFor normalizes data rows against a header, the way the pipeline does.
func rowsFor(header []string, data ...[]string) []Row {
	return Normalize(data, MapFields(header))
}

func TestMerge_ValidContributionWins(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "confirmed"},
		[]string{"X", "abc"},
		[]string{"X", "10"},
	))

	require.Len(t, recs, 1)
	assert.Equal(t, "X", recs[0].Country)
	assert.Equal(t, ValidCount(10), recs[0].Confirmed)
}

func TestMerge_NoValidContributionIsInvalid(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "confirmed"},
		[]string{"X", "abc"},
		[]string{"X", "xyz"},
	))

	require.Len(t, recs, 1)
	assert.False(t, recs[0].Confirmed.Valid)
	assert.True(t, recs[0].Has(RoleConfirmed))
}

func TestMerge_GenuineZeroIsValid(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "deaths"},
		[]string{"Tonga", "0"},
		[]string{"Tonga", "n/a"},
	))

	require.Len(t, recs, 1)
	assert.Equal(t, ValidCount(0), recs[0].Deaths)
}

func TestMerge_SumSaturates(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "confirmed", "deaths"},
		[]string{"X", "99999999999999999999", "-99999999999999999999"},
		[]string{"X", "5", "-5"},
	))

	require.Len(t, recs, 1)
	assert.Equal(t, ValidCount(math.MaxInt64), recs[0].Confirmed)
	assert.Equal(t, ValidCount(math.MinInt64), recs[0].Deaths)
}

func TestAddClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b, want int64
	}{
		{1, 2, 3},
		{-4, 1, -3},
		{math.MaxInt64 - 1, 5, math.MaxInt64},
		{math.MinInt64 + 1, -5, math.MinInt64},
		{math.MaxInt64, math.MinInt64, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, addClamped(tt.a, tt.b), "%d + %d", tt.a, tt.b)
	}
}

func TestMerge_FieldsTrackedIndependently(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "confirmed", "active", "deaths"},
		[]string{"X", "5", "bad", "1"},
		[]string{"X", "bad", "bad", "2"},
	))

	require.Len(t, recs, 1)
	assert.Equal(t, ValidCount(5), recs[0].Confirmed)
	assert.False(t, recs[0].Active.Valid)
	assert.Equal(t, ValidCount(3), recs[0].Deaths)
}

func TestMerge_LatitudeAverage(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "lat"},
		[]string{"X", "10"},
		[]string{"X", "-5"},
		[]string{"X", "NaN"},
	))

	require.Len(t, recs, 1)
	require.True(t, recs[0].Latitude.Valid)
	assert.InDelta(t, 2.5, recs[0].Latitude.Deg, 1e-12)
}

func TestMerge_LatitudeWithoutValidValues(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "lat"},
		[]string{"X", ""},
		[]string{"X", "unknown"},
	))

	require.Len(t, recs, 1)
	assert.False(t, recs[0].Latitude.Valid)
}

func TestMerge_SumsDuplicatesInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"Country_Region", "Confirmed", "Deaths"},
		[]string{"Canada", "100", "1"},
		[]string{"Australia", "50", "2"},
		[]string{"Canada", "25", "3"},
	))

	require.Len(t, recs, 2)
	assert.Equal(t, "Canada", recs[0].Country)
	assert.Equal(t, ValidCount(125), recs[0].Confirmed)
	assert.Equal(t, ValidCount(4), recs[0].Deaths)
	assert.Equal(t, "Australia", recs[1].Country)
}

func TestMerge_UnicodeFormsShareAGroup(t *testing.T) {
	t.Parallel()

	composed := "C\u00f4te d'Ivoire"
	decomposed := "Co\u0302te d'Ivoire"

	recs := Merge(rowsFor([]string{"country", "confirmed"},
		[]string{composed, "1"},
		[]string{decomposed, "2"},
	))

	require.Len(t, recs, 1)
	assert.Equal(t, composed, recs[0].Country, "display name is the first spelling seen")
	assert.Equal(t, ValidCount(3), recs[0].Confirmed)
}

func TestMerge_RowsWithoutCountryStaySeparate(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"confirmed", "deaths"},
		[]string{"10", "1"},
		[]string{"bad", "2"},
	))

	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, "", r.Country)
	}
	assert.Equal(t, ValidCount(10), recs[0].Confirmed)
	assert.Equal(t, ValidCount(0), recs[1].Confirmed, "ungrouped rows are not validity tracked")
}

func TestMerge_EmptyCountryCellIsUngrouped(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "confirmed"},
		[]string{"", "1"},
		[]string{"", "2"},
		[]string{"Fiji", "3"},
	))

	require.Len(t, recs, 3)
	assert.Equal(t, "", recs[0].Country)
	assert.Equal(t, "", recs[1].Country)
	assert.Equal(t, "Fiji", recs[2].Country)
}

func TestMerge_AbsentRolesStayAbsent(t *testing.T) {
	t.Parallel()

	recs := Merge(rowsFor([]string{"country", "deaths"}, []string{"X", "4"}))

	require.Len(t, recs, 1)
	assert.False(t, recs[0].Has(RoleConfirmed))
	assert.False(t, recs[0].Has(RoleLatitude))
	assert.Equal(t, Count{}, recs[0].Confirmed)
}

func TestMerger_RecordsIsRepeatable(t *testing.T) {
	t.Parallel()

	m := NewMerger()
	for _, r := range rowsFor([]string{"country", "confirmed"},
		[]string{"A", "1"},
		[]string{"B", "2"},
		[]string{"A", "3"},
	) {
		m.Add(r)
	}

	assert.Len(t, m.Records(), 2)
	assert.Equal(t, m.Records(), m.Records())
}
