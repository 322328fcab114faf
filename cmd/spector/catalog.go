package main

import (
	"context"
	"fmt"
	"math"

	"github.com/urfave/cli/v3"

	"github.com/girpas-ulg/spector/internal/speccat"
	"github.com/girpas-ulg/spector/internal/spectra"
)

func catalogCmd() *cli.Command {
	var (
		recordLimit int
		asJSON      bool
	)

	return &cli.Command{
		Name:      "catalog",
		Usage:     "Inspect a yearly spectra description catalog (SPyy/BRyy)",
		ArgsUsage: "<file>",
		Flags: append(loggingFlags(),
			&cli.IntFlag{
				Name:        "records",
				Usage:       "limit record listing (0 = no limit)",
				Value:       20,
				Destination: &recordLimit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the decoded catalog as JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			applyLogConfig(c, LoadConfig())

			path := c.Args().First()
			if path == "" {
				return cli.Exit("error: missing file argument", 1)
			}
			cat, err := speccat.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if asJSON {
				return printJSON(cat)
			}

			fmt.Printf("Catalog: %s\n", path)
			section("Header")
			rowInt("n_records", cat.Header.NRecords)
			row("created_pc", cat.Header.CreatedPC.String())
			row("modified_pc", cat.Header.ModifiedPC.String())
			row("created_hp1000", cat.Header.CreatedHP1000.String())
			row("modified_hp1000", cat.Header.ModifiedHP1000.String())

			section("Records")
			shown := 0
			for _, rec := range cat.Records {
				printCatalogRecord(rec)
				shown++
				if recordLimit > 0 && shown >= recordLimit {
					break
				}
			}
			if recordLimit > 0 && shown < len(cat.Records) {
				fmt.Printf("... (%d shown of %d)\n", shown, len(cat.Records))
			}
			return nil
		},
	}
}

func printCatalogRecord(rec speccat.Record) {
	line := fmt.Sprintf("%-14s %s  source=%s  %g-%g cm-1  n=%d",
		rec.Name,
		rec.DatetimeAvg.UTC().Format("2006-01-02 15:04:05"),
		spectra.SourceName(rec.SourceID),
		rec.WavenumberBegin, rec.WavenumberEnd, rec.NPoints)
	if !math.IsNaN(float64(rec.Temperature)) {
		line += fmt.Sprintf("  T=%g", float64(rec.Temperature))
	}
	if rec.Quality.IsBadSpectrum {
		line += "  BAD"
	}
	fmt.Println(line)
}
