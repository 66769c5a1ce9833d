// Command covidstats evaluates JHU CSSE daily COVID-19 reports and prints
// five statistics per report.
//
// Usage:
//
//	covidstats run 02-17-2022.csv
//	covidstats run --source http 02-17-2022.csv 02-18-2022.csv
//	covidstats probe 02-17-2022.csv > configs/daily.json
//	covidstats validate --config configs/daily.json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
