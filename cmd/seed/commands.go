package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/report"
	"github.com/andresuchdata/pomonitor/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "search", Usage: "Customer or PO number substring"},
		&cli.StringFlag{Name: "status", Usage: "OPEN, COMPLETED or OVERDUE"},
		&cli.StringFlag{Name: "sales-engineer", Usage: "Sales engineer"},
		&cli.StringFlag{Name: "division", Usage: "Division"},
		&cli.IntFlag{Name: "month", Usage: "Order month (1-12, needs --year)"},
		&cli.IntFlag{Name: "year", Usage: "Order year"},
	}
}

func filterFrom(c *cli.Context) (domain.POFilter, error) {
	filter := domain.POFilter{
		Search:        c.String("search"),
		SalesEngineer: c.String("sales-engineer"),
		Division:      c.String("division"),
		Month:         c.Int("month"),
		Year:          c.Int("year"),
	}
	if raw := c.String("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return filter, fmt.Errorf("unknown status %q", raw)
		}
		filter.Status = status
	}
	if filter.Month < 0 || filter.Month > 12 {
		return filter, fmt.Errorf("month must be between 1 and 12, got %d", filter.Month)
	}
	return filter, nil
}

func runImport(c *cli.Context) error {
	path := c.String("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := report.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	inputs := make([]domain.PurchaseOrderInput, len(rows))
	for i, row := range rows {
		inputs[i] = row.Input
	}

	result, err := poServiceFrom(c).Import(c.Context, inputs)
	if err != nil {
		return fmt.Errorf("import aborted: %w", err)
	}

	for _, failure := range result.Failed {
		fmt.Fprintf(c.App.Writer, "line %d skipped: %s\n", rows[failure.Index].Line, failure.Error)
	}
	fmt.Fprintf(c.App.Writer, "imported %d of %d purchase orders\n", len(result.Created), len(rows))
	logger.Log.Info().
		Str("file", path).
		Int("created", len(result.Created)).
		Int("skipped", len(result.Failed)).
		Msg("csv import finished")
	return nil
}

func runExport(c *cli.Context) error {
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}

	upload := c.Bool("upload")
	reports, err := reportServiceFrom(c, upload)
	if err != nil {
		return err
	}

	var w io.Writer = c.App.Writer
	if path := c.String("file"); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	count, err := reports.Export(c.Context, filter, w)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("rows", count).Msg("csv export finished")

	if upload {
		key, err := reports.Publish(c.Context, filter)
		if err != nil {
			return fmt.Errorf("failed to upload report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "uploaded %s\n", key)
	}
	return nil
}

func runList(c *cli.Context) error {
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}

	views, err := poServiceFrom(c).List(c.Context, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPO NUMBER\tCUSTOMER\tORDER DATE\tEXPECTED ETA\tACTUAL ETA\tSTATUS")
	for _, v := range views {
		actual := "-"
		if v.ActualETA != nil {
			actual = v.ActualETA.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.PONumber, v.Customer, v.OrderDate, v.ExpectedETA, actual, v.Status)
	}
	return tw.Flush()
}

func runSummary(c *cli.Context) error {
	filter, err := filterFrom(c)
	if err != nil {
		return err
	}

	summary, err := poServiceFrom(c).GetDashboardSummary(c.Context, filter)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
