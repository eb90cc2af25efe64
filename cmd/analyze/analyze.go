// Package analyze imports exports from files or URLs and prints the
// resulting performance report.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeanalytics/src/export"
	"tradeanalytics/src/ingest"
	"tradeanalytics/src/kpi"
	"tradeanalytics/src/schema"
	"tradeanalytics/src/service"
	"tradeanalytics/src/store"
	"tradeanalytics/src/utils"
)

var ErrUnknownFormat = errors.New("unknown output format")

// sourceLister is implemented by stores that remember merged file names.
type sourceLister interface {
	FileNames(ctx context.Context) ([]string, error)
}

type Analyzer struct {
	Log     *logger.Entry
	Config  *Config
	Out     io.Writer
	Mapping schema.Mapping

	// Store overrides the store chosen from Config.
	Store  service.TradeStore
	loader *ingest.Loader
}

func (a *Analyzer) init() {
	if a.Config == nil {
		a.Config = GetConfig()
	}
	if a.Log == nil {
		a.Log = logger.WithField("cmd", "analyze")
	}
	if a.Store == nil {
		if a.Config.SnapshotPath != "" {
			a.Store = service.NewSnapshotStore(store.NewFileSnapshotStore(a.Config.SnapshotPath))
		} else {
			a.Store = &service.MemoryStore{}
		}
	}
	if a.loader == nil {
		a.loader = ingest.NewLoader(a.Config.FetchTimeout)
	}
}

// Import loads every location and merges it into the store, printing one
// line per file. Rejected files are reported, not treated as errors.
func (a *Analyzer) Import(ctx context.Context, locations []string) ([]service.ImportResult, error) {
	a.init()
	svc := service.New(a.Store, a.Log)

	results := make([]service.ImportResult, 0, len(locations))
	for _, location := range locations {
		src, err := a.loader.Load(ctx, location)
		if err != nil {
			return results, err
		}

		res, err := svc.Import(ctx, service.ImportRequest{
			FileName: src.Name,
			CSV:      src.Text,
			Mapping:  a.Mapping,
		})
		if err != nil {
			return results, err
		}
		results = append(results, res)

		if res.OK() {
			fmt.Fprintf(a.Out, "%s: %s, %d added, %d skipped, %d total\n", res.FileName, res.Format, res.Added, res.Skipped, res.Total)
		} else {
			fmt.Fprintf(a.Out, "%s: %s: %s\n", res.FileName, res.Outcome, res.Message)
		}
	}
	return results, nil
}

// Start imports locations, prints the report and writes the CSV sheets when
// an export directory is configured.
func (a *Analyzer) Start(ctx context.Context, locations []string) error {
	a.init()
	if a.Config.OutputFormat != FormatText && a.Config.OutputFormat != FormatJSON {
		return fmt.Errorf("%w %q", ErrUnknownFormat, a.Config.OutputFormat)
	}

	if _, err := a.Import(ctx, locations); err != nil {
		return err
	}

	svc := service.New(a.Store, a.Log)
	trades, err := svc.Trades(ctx)
	if err != nil {
		return err
	}
	report := kpi.BuildReport(trades)

	if a.Config.OutputFormat == FormatJSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		if err := renderText(a.Out, report); err != nil {
			return err
		}
		if sources, ok := a.Store.(sourceLister); ok {
			names, err := sources.FileNames(ctx)
			if err != nil {
				return err
			}
			if len(names) > 0 {
				fmt.Fprintf(a.Out, "\nSources: %s\n", strings.Join(names, ", "))
			}
		}
	}

	if a.Config.ExportDir != "" {
		paths, err := export.WriteDir(a.Config.ExportDir, trades, report)
		if err != nil {
			return err
		}
		a.Log.WithField("files", paths).Info("Report exported")
	}
	return nil
}

func renderText(out io.Writer, report kpi.Report) error {
	s := report.Summary
	if s.TotalTrades == 0 {
		_, err := fmt.Fprintln(out, "No trades.")
		return err
	}
	x := report.Extended

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Trades\t%d (%d wins, %d losses, %d even)\n", s.TotalTrades, s.WinCount, s.LossCount, s.EvenCount)
	fmt.Fprintf(w, "Win rate\t%s\n", kpi.FormatPercent(s.WinRate))
	fmt.Fprintf(w, "Total P/L\t%s\n", kpi.FormatCurrency(s.TotalPnL))
	fmt.Fprintf(w, "Commission\t%s\n", kpi.FormatCurrency(s.TotalCommission))
	fmt.Fprintf(w, "Net P/L\t%s\n", kpi.FormatCurrency(s.NetPnL))
	fmt.Fprintf(w, "Profit factor\t%s\n", kpi.FormatProfitFactor(s.ProfitFactor))
	fmt.Fprintf(w, "Avg win / loss\t%s / %s\n", kpi.FormatCurrency(s.AvgWin), kpi.FormatCurrency(s.AvgLoss))
	fmt.Fprintf(w, "Max win / loss\t%s / %s\n", kpi.FormatCurrency(s.MaxWin), kpi.FormatCurrency(s.MaxLoss))
	fmt.Fprintf(w, "Streaks\t%d wins / %d losses\n", s.MaxConsecutiveWins, s.MaxConsecutiveLosses)
	fmt.Fprintf(w, "Avg duration\t%s (wins %s, losses %s)\n", seconds(x.AvgDuration), seconds(x.AvgWinDuration), seconds(x.AvgLossDuration))
	fmt.Fprintf(w, "Long / short\t%d / %d (%s long)\n", x.LongCount, x.ShortCount, kpi.FormatPercent(x.LongPercent))
	fmt.Fprintf(w, "Best trade\t%s\n", kpi.FormatTradeDetail(x.BestTrade))
	fmt.Fprintf(w, "Worst trade\t%s\n", kpi.FormatTradeDetail(x.WorstTrade))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Date\tP/L\tCumulative\tTrades\tWin rate")
	for _, d := range report.Daily {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", d.Date, kpi.FormatCurrency(d.PnL), kpi.FormatCurrency(d.CumulativePnL), d.TradeCount, kpi.FormatPercent(d.WinRate))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Day\tP/L\tTrades\tWin rate")
	for _, d := range report.DayOfWeek {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Day, kpi.FormatCurrency(d.PnL), d.TradeCount, kpi.FormatPercent(d.WinRate))
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func seconds(v float64) string {
	return utils.FormatHoldingLong(time.Duration(v * float64(time.Second)))
}
