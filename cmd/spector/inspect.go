package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/girpas-ulg/spector/internal/bruker"
	"github.com/girpas-ulg/spector/internal/fts1"
	"github.com/girpas-ulg/spector/internal/rinsland"
	"github.com/girpas-ulg/spector/internal/spectra"
)

func inspectCmd() *cli.Command {
	var (
		format    string
		dataLimit int
		asJSON    bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect the contents of a legacy spectrum file",
		ArgsUsage: "<file>",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "file format (fts1, bruker, rinsland)",
				Destination: &format,
				Required:    true,
			},
			&cli.IntFlag{
				Name:        "data",
				Usage:       "print the first N samples (0 = none)",
				Destination: &dataLimit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the decoded spectrum as JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			applyLogConfig(c, LoadConfig())

			path := c.Args().First()
			if path == "" {
				return cli.Exit("error: missing file argument", 1)
			}
			stat, err := os.Stat(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: stat %q: %v", path, err), 1)
			}

			var (
				summary     spectra.Summary
				spectrum    any
				data        []float32
				printHeader func()
			)
			switch format {
			case "fts1":
				sp, err := fts1.Open(path)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				summary, spectrum, data = sp.Summary(), sp, sp.Data
				if dataLimit == 0 {
					sp.Data = nil
				}
				printHeader = func() {
					row("source", spectra.SourceName(sp.SourceID))
					row("ftype", sp.FType)
					rowTime("datetime_begin", sp.DatetimeBegin)
					rowTime("datetime_end", sp.DatetimeEnd)
					rowFloat("correction_factor", sp.CorrectionFactor)
					rowFloat("aperture", sp.Aperture)
					rowInt("nb_scan_forward", sp.NScanForward)
					rowInt("nb_scan_backward", sp.NScanBackward)
					rowFloat("sun_elevation", sp.SunElevation)
					rowInt("sn_ratio", sp.SNRatio)
					rowFloat("secz", sp.SecZ)
				}
			case "bruker":
				sp, err := bruker.Open(path)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				summary, spectrum, data = sp.Summary(), sp, sp.Data
				if dataLimit == 0 {
					sp.Data = nil
				}
				printHeader = func() {
					row("source", spectra.SourceName(sp.SourceID))
					rowInt("n_scan_forward", sp.NScanForward)
					rowInt("scale_factor", sp.ScaleFactor)
					rowInt("sn_ratio", sp.SNRatio)
					rowInt("aperture_id", sp.ApertureID)
					rowInt("beamsplitter_id", sp.BeamsplitterID)
					rowInt("filter_id", sp.FilterID)
					rowFloat("laser_frequency", sp.LaserFrequency)
					rowFloat("correction_factor", sp.CorrectionFactor)
					rowFloat("sun_elevation", sp.SunElevation)
				}
			case "rinsland":
				sp, err := rinsland.Open(path)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				summary, spectrum, data = sp.Summary(), sp, sp.Data
				if dataLimit == 0 {
					sp.Data = nil
				}
				printHeader = func() {
					row("spec_type", sp.SpecType)
					rowFloat("aperture", sp.Aperture)
					rowFloat("zenith_angle", sp.ZenithAngle)
					rowInt("sn_ratio", sp.SNRatio)
				}
			default:
				return cli.Exit(fmt.Sprintf("error: unknown format %q", format), 1)
			}

			if asJSON {
				return printJSON(map[string]any{
					"format":   format,
					"summary":  summary,
					"spectrum": spectrum,
				})
			}

			fmt.Printf("Spectrum: %s\n", path)
			fmt.Printf("File: %s (%d bytes)\n", summary.Name, stat.Size())
			printSummary(summary)
			section("Header")
			printHeader()
			if dataLimit > 0 {
				printData(data, dataLimit)
			}
			return nil
		},
	}
}

func printSummary(s spectra.Summary) {
	section("Summary")
	row("format", s.Format)
	row("name", s.Name)
	rowTime("datetime_avg", s.DatetimeAvg)
	rowFloat("wavenumber_begin", s.WavenumberBegin)
	rowFloat("wavenumber_end", s.WavenumberEnd)
	rowFloat("wavenumber_step", s.WavenumberStep)
	rowFloat("resolution", s.Resolution)
	rowInt("n_points", s.NPoints)
	rowInt("samples", s.Samples)
}

func printData(data []float32, limit int) {
	section("Data")
	shown := len(data)
	if limit < shown {
		shown = limit
	}
	for i := 0; i < shown; i++ {
		fmt.Printf("%8d  %g\n", i, data[i])
	}
	if shown < len(data) {
		fmt.Printf("... (%d shown of %d)\n", shown, len(data))
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-24s %s\n", label+":", value)
}

func rowInt(label string, v int) {
	if v == 0 {
		return
	}
	row(label, fmt.Sprintf("%d", v))
}

func rowFloat(label string, v float64) {
	if v == 0 {
		return
	}
	row(label, fmt.Sprintf("%g", v))
}

func rowTime(label string, t time.Time) {
	if t.IsZero() {
		return
	}
	row(label, t.UTC().Format(time.RFC3339))
}
