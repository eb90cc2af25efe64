package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradeanalytics/cmd/analyze"
	"tradeanalytics/cmd/serve"
	"tradeanalytics/src/database"
	"tradeanalytics/src/schema"
	"tradeanalytics/src/service"
)

var Version string

func SetupLogger() {
	config := database.GetConfig()

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(config.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()

	app := cli.NewApp()
	app.Name = "tradeanalytics"
	app.Usage = "Reconstruct futures trades from broker exports and report on them"
	app.Version = Version

	app.Commands = []cli.Command{
		analyzeCMD,
		importCMD,
		serveCMD,
		watchCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var mappingFlag = cli.StringSliceFlag{
	Name:  "mapping, m",
	Usage: "column override as field=Header, repeatable",
}

var (
	analyzeCMD = cli.Command{
		Name:      "analyze",
		Usage:     "import exports and print the performance report",
		Action:    analyzeAction,
		ArgsUsage: "FILE|URL...",
		Flags: []cli.Flag{
			mappingFlag,
			cli.StringFlag{Name: "snapshot, s", Usage: "merge into and persist the snapshot file at `PATH`"},
			cli.StringFlag{Name: "format, f", Usage: "report format: text or json"},
			cli.StringFlag{Name: "export, e", Usage: "write trades, daily and kpi CSV sheets into `DIR`"},
		},
		Description: `Run the import workflow in memory or against a snapshot file`,
	}
	importCMD = cli.Command{
		Name:        "import",
		Usage:       "import exports into the database",
		Action:      importAction,
		ArgsUsage:   "FILE|URL...",
		Flags:       []cli.Flag{mappingFlag},
		Description: `Merge exports into the trades table`,
	}
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the HTTP API",
		Action:      serveAction,
		Description: `Serve imports, trades and reports over HTTP`,
	}
	watchCMD = cli.Command{
		Name:   "watch",
		Usage:  "import exports dropped into a directory",
		Action: watchAction,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "dir, d", Usage: "directory to poll, overrides WATCH_DIR"},
		},
		Description: `Poll a directory and import new or changed CSV files`,
	}
)

func mappingFrom(c *cli.Context) (schema.Mapping, error) {
	mapping, err := schema.ParseMapping(c.StringSlice("mapping"))
	if err != nil {
		return nil, cli.NewExitError(err.Error(), 2)
	}
	return mapping, nil
}

func analyzeAction(c *cli.Context) error {
	if !c.Args().Present() {
		return cli.NewExitError("analyze: at least one FILE or URL is required", 2)
	}
	mapping, err := mappingFrom(c)
	if err != nil {
		return err
	}

	config := analyze.GetConfig()
	if v := c.String("snapshot"); v != "" {
		config.SnapshotPath = v
	}
	if v := c.String("format"); v != "" {
		config.OutputFormat = v
	}
	if v := c.String("export"); v != "" {
		config.ExportDir = v
	}

	a := &analyze.Analyzer{
		Log:     logrus.WithField("cmd", "analyze"),
		Config:  config,
		Out:     os.Stdout,
		Mapping: mapping,
	}
	if err := a.Start(context.Background(), c.Args()); err != nil {
		logrus.WithError(err).Error("Analyze failed")
		return err
	}
	return nil
}

func importAction(c *cli.Context) error {
	if !c.Args().Present() {
		return cli.NewExitError("import: at least one FILE or URL is required", 2)
	}
	mapping, err := mappingFrom(c)
	if err != nil {
		return err
	}

	logrus.Info("Starting import CMD")
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	a := &analyze.Analyzer{
		Log:     logrus.WithField("cmd", "import"),
		Out:     os.Stdout,
		Mapping: mapping,
		Store:   service.DefaultDatabaseStore(),
	}
	results, err := a.Import(context.Background(), c.Args())
	if err != nil {
		logrus.WithError(err).Error("Import failed")
		return err
	}

	rejected := 0
	for _, res := range results {
		if !res.OK() {
			rejected++
		}
	}
	if rejected > 0 {
		return cli.NewExitError(fmt.Sprintf("%d of %d files were not imported", rejected, len(results)), 1)
	}
	return nil
}

func serveAction(_ *cli.Context) error {
	logrus.Info("Starting serve CMD")

	s := &serve.Server{Log: logrus.WithField("cmd", "serve")}
	if err := s.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func watchAction(c *cli.Context) error {
	logrus.Info("Starting watch CMD")

	w := &serve.Watcher{
		Log: logrus.WithField("cmd", "watch"),
		Dir: c.String("dir"),
	}
	if err := w.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}
