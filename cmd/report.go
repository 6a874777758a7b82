package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sw33tLie/curaudit/internal/utils"
	"github.com/sw33tLie/curaudit/pkg/curation"
	"github.com/sw33tLie/curaudit/pkg/metrics"
	"github.com/sw33tLie/curaudit/pkg/report"
	"github.com/sw33tLie/curaudit/pkg/sweep"
)

type reportOptions struct {
	BaseURL  string
	Username string
	Password string
	Proxy    string

	Span     time.Duration
	Step     time.Duration
	PageSize int
	Timeout  time.Duration

	JSONOnly    bool
	Pushgateway string
	Job         string
}

// reportCmd implements: curaudit report
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Sweep the curation audit log and print blocked packages by policy",
	Long: `Fetches every curation audit event of the last --days days, walking the log in
sub-windows of --step-days, and prints a summary of approved and blocked packages.

Any failed request aborts the run without printing a summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown command: '%s'. See 'curaudit report --help'", args[0])
		}

		opts, err := reportOptionsFromConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runReport(ctx, opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Int("days", 30, "Length of the audit period in days")
	reportCmd.Flags().Int("step-days", 7, "Days the query cursor advances between sweeps")
	reportCmd.Flags().Int("page-size", curation.DefaultPageSize, "Events requested per page (num_of_rows)")
	reportCmd.Flags().Duration("timeout", 5*time.Minute, "Timeout of a single API request")
	reportCmd.Flags().Bool("json", false, "Only print the JSON summary")
	reportCmd.Flags().String("pushgateway", "", "Prometheus Pushgateway URL to push run metrics to (optional)")
	reportCmd.Flags().String("job", metrics.DefaultJob, "Pushgateway job name")

	viper.BindPFlag("report.days", reportCmd.Flags().Lookup("days"))
	viper.BindPFlag("report.step_days", reportCmd.Flags().Lookup("step-days"))
	viper.BindPFlag("report.page_size", reportCmd.Flags().Lookup("page-size"))
	viper.BindPFlag("report.timeout", reportCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("report.pushgateway", reportCmd.Flags().Lookup("pushgateway"))
	viper.BindPFlag("report.job", reportCmd.Flags().Lookup("job"))
}

func reportOptionsFromConfig(cmd *cobra.Command) (reportOptions, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	jsonOnly, _ := cmd.Flags().GetBool("json")

	days := viper.GetInt("report.days")
	stepDays := viper.GetInt("report.step_days")
	if days <= 0 || stepDays <= 0 {
		return reportOptions{}, fmt.Errorf("--days and --step-days must be positive (got %d and %d)", days, stepDays)
	}

	return reportOptions{
		BaseURL:     viper.GetString("jfrog.url"),
		Username:    viper.GetString("jfrog.user"),
		Password:    viper.GetString("jfrog.password"),
		Proxy:       proxy,
		Span:        time.Duration(days) * sweep.Day,
		Step:        time.Duration(stepDays) * sweep.Day,
		PageSize:    viper.GetInt("report.page_size"),
		Timeout:     viper.GetDuration("report.timeout"),
		JSONOnly:    jsonOnly,
		Pushgateway: viper.GetString("report.pushgateway"),
		Job:         viper.GetString("report.job"),
	}, nil
}

// runReport performs one full audit sweep and writes the digest to out.
func runReport(ctx context.Context, opts reportOptions, out io.Writer) error {
	client, err := curation.NewClient(curation.Config{
		BaseURL:  opts.BaseURL,
		Username: opts.Username,
		Password: opts.Password,
		Timeout:  opts.Timeout,
		Proxy:    opts.Proxy,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	began := time.Now()
	utils.Log.Info("start")

	walker := &sweep.Walker{
		Fetcher:  client,
		Span:     opts.Span,
		Step:     opts.Step,
		PageSize: opts.PageSize,
		Log:      utils.Log,
		OnProgress: func(p sweep.Progress) {
			utils.Log.Infof("created_at_start: %s, events_fetched: %d, offset: %d",
				curation.FormatCursor(p.CreatedAtStart), p.EventsFetched, p.Offset)
		},
	}

	agg, err := walker.Run(ctx)
	if err != nil {
		return fmt.Errorf("audit sweep failed: %w", err)
	}
	finished := time.Now()

	utils.Log.Infof("fetched %d events", agg.EventsFetched)
	utils.Log.Infof("action counts: %s", agg.ActionCounts)

	summary := report.Build(agg)
	if opts.JSONOnly {
		err = report.WriteJSON(out, summary)
	} else {
		err = report.Write(out, summary, finished)
	}
	if err != nil {
		return err
	}

	if opts.Pushgateway != "" {
		reg := prometheus.NewRegistry()
		metrics.NewRunMetrics(reg).Observe(agg, summary, finished.Sub(began), finished)
		if err := metrics.Push(ctx, opts.Pushgateway, opts.Job, reg, client.HTTPClient()); err != nil {
			return err
		}
		utils.Log.Infof("Pushed run metrics to %s", opts.Pushgateway)
	}

	return nil
}
