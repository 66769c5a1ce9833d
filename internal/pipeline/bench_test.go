package pipeline

import (
	"fmt"
	"strings"
	"testing"
)

// syntheticReport builds a daily report with rows locations spread over
// countries countries, so the merger sees many duplicate keys.
func syntheticReport(rows, countries int) []byte {
	var sb strings.Builder
	sb.WriteString("FIPS,Admin2,Province_State,Country_Region,Last_Update,Lat,Long_,Confirmed,Deaths,Recovered,Active\n")
	for i := 0; i < rows; i++ {
		c := i % countries
		lat := float64(c%180) - 90
		fmt.Fprintf(&sb, ",,Province %d,Country %d,2022-02-18 04:20:50,%.4f,0,%d,%d,,%d\n",
			i, c, lat, 1000+i*7, i%97, 900+i*5)
	}
	return []byte(sb.String())
}

// BenchmarkEvaluate measures every stage after reading on an in-memory
// report of JHU size (about 4000 rows over 200 countries).
//
// Run with:
//
//	go test ./internal/pipeline -run=^$ -bench ^BenchmarkEvaluate$ -benchmem
func BenchmarkEvaluate(b *testing.B) {
	data := syntheticReport(4000, 200)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		res, err := Evaluate(data, Config{})
		if err != nil {
			b.Fatalf("Evaluate: %v", err)
		}
		if res.Stats.Records != 200 {
			b.Fatalf("records = %d, want 200", res.Stats.Records)
		}
	}
}
