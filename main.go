package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	perftop "github.com/jondoveston/perftop/internal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "perftop",
	Short: "Terminal dashboard for Performance Analyzer metrics and RCA",
	Long: `perftop polls the Performance Analyzer metrics and RCA APIs of a cluster
and draws the results as bar, line, table and donut widgets in the terminal.

Preset dashboards: ` + strings.Join(perftop.Presets(), ", ") + `

Examples:
  perftop --dashboard ClusterOverview --endpoint localhost:9600
  perftop --dashboard NodeAnalysis --nodename node-1 --logfile perftop.log
  perftop --dashboard ./my-dashboard.json --ui termui
  PERFTOP_ENDPOINT=https://es.lan:9600 perftop --dashboard TemperatureAnalysis`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().String("dashboard", "", "dashboard JSON file or preset name")
	rootCmd.Flags().String("endpoint", "", "Performance Analyzer endpoint, overrides the dashboard")
	rootCmd.Flags().String("nodename", "", "value substituted for #nodeName in the dashboard")
	rootCmd.Flags().String("logfile", "", "file to write diagnostics to (default: discard)")
	rootCmd.Flags().String("mode", "", "metrics or rca (default: inferred from the dashboard)")
	rootCmd.Flags().String("ui", "tea", "renderer: tea or termui")
	rootCmd.Flags().Bool("legacy-api", false, "request metrics without the /_opendistro prefix")
	rootCmd.Flags().String("metrics-addr", "", "serve perftop's own metrics on this address")
	rootCmd.Flags().Bool("print-config", false, "print the resolved dashboard as YAML and exit")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	for _, name := range []string{"dashboard", "endpoint", "nodename", "logfile", "mode", "ui", "legacy-api", "metrics-addr"} {
		// dashes in flags become underscores in viper
		if err := viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), rootCmd.Flags().Lookup(name)); err != nil {
			log.Fatalf("failed to bind %s: %v", name, err)
		}
	}

	viper.SetEnvPrefix("perftop")
	viper.AutomaticEnv()
}

func run(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Printf("perftop version %s\n", version)
		return nil
	}

	dashboard := viper.GetString("dashboard")
	if dashboard == "" {
		return errors.New("--dashboard is required")
	}

	logOut := io.Discard
	if path := viper.GetString("logfile"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := perftop.NewLogger(logOut, "")
	logger.Info("Starting perftop %s", version)

	d, err := perftop.LoadDashboard(perftop.LoadOptions{
		Dashboard: dashboard,
		Endpoint:  viper.GetString("endpoint"),
		NodeName:  viper.GetString("nodename"),
		Mode:      viper.GetString("mode"),
	})
	if err != nil {
		return err
	}
	warnings, err := d.Validate()
	if warnings != nil {
		logger.Warn("%v", warnings)
	}
	if err != nil {
		return fmt.Errorf("invalid dashboard %s: %w", d.Name, err)
	}

	if printConfig, _ := cmd.Flags().GetBool("print-config"); printConfig {
		return d.WriteYAML(os.Stdout)
	}

	reg := prometheus.NewRegistry()
	stats := perftop.NewStats(reg, reg)
	if addr := viper.GetString("metrics_addr"); addr != "" {
		go func() {
			logger.Info("Serving metrics on %s", addr)
			if err := http.ListenAndServe(addr, stats.Handler()); err != nil {
				logger.Error("metrics server stopped: %v", err)
			}
		}()
	}

	data, err := perftop.NewPerfAnalyzerData(d.Endpoint, viper.GetBool("legacy_api"), logger, stats)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := data.Check(ctx); err != nil {
		logger.Warn("Performance Analyzer is not answering at %s: %v", d.Endpoint, err)
	}

	widgets, err := d.Widgets(ctx, perftop.NewCache(data), logger, stats)
	if err != nil {
		return err
	}
	sched := perftop.NewScheduler(widgets, logger)
	logger.Info("Using %s dashboard %s (%s mode) against %s with %d widgets", viper.GetString("ui"), d.Name, d.Mode, d.Endpoint, len(widgets))

	switch viper.GetString("ui") {
	case "termui":
		err = perftop.RunTermuiDashboard(ctx, d, sched)
	case "tea", "":
		err = perftop.RunTeaDashboard(ctx, d, sched)
	default:
		return fmt.Errorf("unknown ui %q, expected tea or termui", viper.GetString("ui"))
	}

	logger.Info("Stopping perftop: %s", stats.Summary())
	if dumpErr := stats.Dump(logOut); dumpErr != nil {
		logger.Error("failed to dump stats: %v", dumpErr)
	}
	return err
}
