package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clv-dashboard/pkg/calculator"
	"clv-dashboard/pkg/config"
	"clv-dashboard/pkg/dashboard"
	"clv-dashboard/pkg/database"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const renderWidth = 120

func main() {
	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := openSource(cfg, logger)
	if err != nil {
		logger.Fatal("open source", zap.Error(err))
	}
	defer closeSrc()

	ds, err := database.NewLoader(src, logger).Load(ctx)
	if err != nil {
		logger.Fatal("load dataset", zap.String("source", src.Name()), zap.Error(err))
	}

	builder := dashboard.NewBuilder(ds, dashboard.Options{
		Periods: calculator.PeriodScheme{
			EarlyYears: cfg.Periods.EarlyYears,
			EarlyLabel: cfg.Periods.EarlyLabel,
			LateLabel:  cfg.Periods.LateLabel,
		},
		TopN:          cfg.TopN,
		PreviewRows:   cfg.PreviewRows,
		HistogramBins: cfg.HistogramBins,
	}, logger)

	if !cfg.Interactive {
		fmt.Print(dashboard.Render(builder.Build(dashboard.NewSession()), renderWidth))
		return
	}

	p := tea.NewProgram(dashboard.NewModel(builder, dashboard.NewSession(), logger),
		tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Fatal("dashboard", zap.Error(err))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// openSource builds the configured source. The returned func releases it.
func openSource(cfg *config.Config, logger *zap.Logger) (database.Source, func(), error) {
	switch cfg.Source {
	case config.SourceMySQL:
		db, dsnUsed, err := database.Open(cfg.MySQL.DSN)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open db")
		}
		src, err := database.NewMySQLSource(db, dsnUsed, cfg.MySQL.CustomerTable, cfg.MySQL.SegmentTable, cfg.Verbose, logger)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("connected", zap.String("source", src.Name()))
		return src, func() { _ = db.Close() }, nil
	default:
		src := database.NewParquetSource(cfg.Parquet.CustomerPath, cfg.Parquet.SegmentPath, cfg.Verbose, logger)
		return src, func() {}, nil
	}
}
