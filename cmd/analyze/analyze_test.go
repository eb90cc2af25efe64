package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeanalytics/src/export"
	"tradeanalytics/src/kpi"
)

const performanceCSV = `symbol,qty,buyPrice,sellPrice,pnl,boughtTimestamp,soldTimestamp,duration
MESH6,1,6900.00,6902.00,$10.00,02/11/2026 09:45:00,02/11/2026 09:50:00,5min
MESH6,1,6905.00,6902.00,$(15.00),02/11/2026 10:00:00,02/11/2026 10:05:00,5min
`

func writeExport(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newAnalyzer(cfg *Config) (*Analyzer, *bytes.Buffer) {
	log, _ := logrustest.NewNullLogger()
	out := &bytes.Buffer{}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = FormatText
	}
	return &Analyzer{Log: log.WithField("cmd", "analyze"), Config: cfg, Out: out}, out
}

func TestStartPrintsTextReport(t *testing.T) {
	a, out := newAnalyzer(&Config{})
	require.NoError(t, a.Start(context.Background(), []string{writeExport(t, "Performance.csv", performanceCSV)}))

	text := out.String()
	assert.Contains(t, text, "Performance.csv: performance, 2 added, 0 skipped, 2 total")
	assert.Regexp(t, `Win rate\s+50\.0%`, text)
	assert.Regexp(t, `Total P/L\s+-\$5\.00`, text)
	assert.Regexp(t, `Net P/L\s+-\$8\.24`, text)
	assert.Regexp(t, `Profit factor\s+0\.67`, text)
	assert.Regexp(t, `2026-02-11\s+-\$5\.00\s+-\$5\.00\s+2\s+50\.0%`, text)
	assert.Regexp(t, `Wednesday\s+-\$5\.00\s+2`, text)
	assert.Regexp(t, `Avg duration\s+5 min \(wins 5 min, losses 5 min\)`, text)
	assert.NotContains(t, text, "Sources:", "memory store keeps no file names")
}

func TestStartJSONAndExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sheets")
	a, out := newAnalyzer(&Config{OutputFormat: FormatJSON, ExportDir: dir})
	require.NoError(t, a.Start(context.Background(), []string{writeExport(t, "Performance.csv", performanceCSV)}))

	body := out.Bytes()
	body = body[bytes.IndexByte(body, '{'):]

	var report kpi.Report
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, 2, report.Summary.TotalTrades)
	assert.Equal(t, -5.0, report.Summary.TotalPnL)
	require.Len(t, report.Daily, 1)

	for _, name := range []string{export.TradesFile, export.DailyFile, export.SummaryFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestStartMergesIntoSnapshot(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "trades.json")
	file := writeExport(t, "Performance.csv", performanceCSV)

	a, _ := newAnalyzer(&Config{SnapshotPath: snapshot})
	require.NoError(t, a.Start(context.Background(), []string{file}))

	again, out := newAnalyzer(&Config{SnapshotPath: snapshot})
	require.NoError(t, again.Start(context.Background(), []string{file}))
	assert.Contains(t, out.String(), "0 added, 2 skipped, 2 total")
	assert.Contains(t, out.String(), "Sources: Performance.csv\n")
}

func TestImportFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exports/Performance.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(performanceCSV))
	}))
	defer srv.Close()

	a, out := newAnalyzer(&Config{})
	results, err := a.Import(context.Background(), []string{srv.URL + "/exports/Performance.csv"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Contains(t, out.String(), "Performance.csv: performance")

	_, err = a.Import(context.Background(), []string{srv.URL + "/missing.csv"})
	assert.Error(t, err)
}

func TestImportReportsRejectedFiles(t *testing.T) {
	a, out := newAnalyzer(&Config{})
	results, err := a.Import(context.Background(), []string{writeExport(t, "empty.csv", "symbol,qty\n")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].OK())
	assert.Contains(t, out.String(), "empty.csv: empty:")

	_, err = a.Import(context.Background(), []string{filepath.Join(t.TempDir(), "nope.csv")})
	assert.Error(t, err)
}

func TestStartUnknownFormat(t *testing.T) {
	a, _ := newAnalyzer(&Config{OutputFormat: "xml"})
	err := a.Start(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestStartWithoutTrades(t *testing.T) {
	a, out := newAnalyzer(&Config{})
	require.NoError(t, a.Start(context.Background(), nil))
	assert.Equal(t, "No trades.\n", out.String())
}
