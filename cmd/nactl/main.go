package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dm/nactl/internal/client"
	"github.com/dm/nactl/internal/config"
	"github.com/dm/nactl/internal/engine"
	"github.com/dm/nactl/internal/model"
	"github.com/dm/nactl/internal/render"
)

const version = "0.3.0"

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

const defaultInvoiceLimit = 3

type options struct {
	mbpkgid        int
	zoneID         int
	json           bool
	configPath     string
	apiURL         string
	maxConcurrency int
	maxRetries     int
	requestTimeout time.Duration
	rps            float64
	invoices       int
	logLevel       string
	stats          bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, lookup config.LookupFunc) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr, lookup)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case config.IsConfigError(err):
		return exitConfig
	default:
		return exitFailed
	}
}

func newRootCmd(stdout, stderr io.Writer, lookup config.LookupFunc) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "nactl [-m mbpkgid | -z zoneid]",
		Short: "nactl shows NetActuate servers, DNS zones and account inventory",
		Long: `nactl queries the NetActuate API concurrently.

With no id it prints the account inventory. -m prints the detail of one
server package and -z prints one DNS zone with its records.

Credentials come from API_KEY (and optionally API_ADDRESS), a YAML file
given with --config, or NACTL_CONFIG.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &config.Error{Field: "args", Err: fmt.Errorf("unexpected argument %q", args[0])}
			}
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			return o.run(c, stdout, stderr, lookup)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.Error{Field: "flags", Err: err}
	})

	f := cmd.Flags()
	f.IntVarP(&o.mbpkgid, "mbpkgid", "m", 0, "show the detail view of one server package")
	f.IntVarP(&o.zoneID, "zoneid", "z", 0, "show one DNS zone and its records")
	f.BoolVar(&o.json, "json", false, "write JSON instead of tables")
	f.StringVar(&o.configPath, "config", "", "YAML config file (default $NACTL_CONFIG)")
	f.StringVar(&o.apiURL, "api-url", "", "API base URL (overrides API_ADDRESS)")
	f.IntVar(&o.maxConcurrency, "max-concurrency", config.DefaultMaxConcurrency, "maximum in-flight API requests")
	f.IntVar(&o.maxRetries, "max-retries", config.DefaultMaxRetries, "retries for rate-limited requests")
	f.DurationVar(&o.requestTimeout, "request-timeout", config.DefaultRequestTimeout, "per-request timeout")
	f.Float64Var(&o.rps, "rps", 0, "requests per second limit (0 = unlimited)")
	f.IntVar(&o.invoices, "invoices", defaultInvoiceLimit, "invoices shown in the inventory (0 = all)")
	f.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	f.BoolVar(&o.stats, "stats", false, "print request statistics to stderr")
	return cmd
}

// loadConfig layers flag overrides on top of the file and environment.
func (o *options) loadConfig(c *cobra.Command, lookup config.LookupFunc) (config.Config, error) {
	cfg, err := config.Load(o.configPath, lookup)
	if err != nil {
		return cfg, err
	}
	f := c.Flags()
	if f.Changed("api-url") {
		cfg.APIURL = o.apiURL
	}
	if f.Changed("max-concurrency") {
		cfg.MaxConcurrency = o.maxConcurrency
	}
	if f.Changed("max-retries") {
		cfg.MaxRetries = o.maxRetries
	}
	if f.Changed("request-timeout") {
		cfg.RequestTimeout = o.requestTimeout
	}
	if f.Changed("rps") {
		cfg.RequestsPerSecond = o.rps
	}
	return cfg, cfg.Validate()
}

func (o *options) run(c *cobra.Command, stdout, stderr io.Writer, lookup config.LookupFunc) error {
	// Ids below 1 leave the view unselected.
	detail, zone := o.mbpkgid > 0, o.zoneID > 0
	if detail && zone {
		return &config.Error{Field: "flags", Err: fmt.Errorf("-m and -z cannot be used together")}
	}
	if o.invoices < 0 {
		return &config.Error{Field: "invoices", Err: fmt.Errorf("must not be negative, got %d", o.invoices)}
	}

	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return &config.Error{Field: "log-level", Err: err}
	}
	log.SetOutput(stderr)
	log.SetLevel(level)

	cfg, err := o.loadConfig(c, lookup)
	if err != nil {
		return err
	}

	api, err := client.New(client.Config{
		BaseURL:        cfg.APIURL,
		APIKey:         cfg.APIKey,
		RequestTimeout: cfg.RequestTimeout,
		UserAgent:      "nactl/" + version,
	})
	if err != nil {
		return &config.Error{Err: err}
	}
	gov := engine.NewGovernor(engine.GovernorConfig{
		MaxConcurrency:    cfg.MaxConcurrency,
		MaxRetries:        cfg.MaxRetries,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	agg := engine.NewAggregator(api, gov)
	log.WithFields(log.Fields{
		"api_url":         cfg.APIURL,
		"max_concurrency": cfg.MaxConcurrency,
		"max_retries":     cfg.MaxRetries,
	}).Debug("starting")

	ctx := c.Context()
	var view any
	switch {
	case detail:
		d, err := agg.FetchPackageDetail(ctx, o.mbpkgid)
		if err != nil {
			o.printStats(stderr, gov)
			return err
		}
		view = engine.AssembleDetail(d)
	case zone:
		z, err := agg.FetchZone(ctx, o.zoneID)
		if err != nil {
			o.printStats(stderr, gov)
			return err
		}
		view = engine.AssembleZone(z)
	default:
		snap := agg.FetchInventory(ctx)
		if !snap.Snapshot().Complete(model.InventoryKinds...) {
			return fmt.Errorf("inventory: snapshot is missing sections")
		}
		failures := snap.Failures()
		for _, out := range failures {
			log.WithFields(log.Fields{
				"kind":  out.Kind,
				"error": out.Err,
			}).Warn("inventory section unavailable")
		}
		inv := engine.AssembleInventory(snap, engine.AssembleOptions{InvoiceLimit: o.invoices})
		if inv.Degraded() {
			log.WithFields(log.Fields{
				"failed": len(failures),
				"total":  len(model.InventoryKinds),
			}).Warn("inventory is incomplete")
		}
		view = inv
	}

	if err := o.write(stdout, view); err != nil {
		return err
	}
	o.printStats(stderr, gov)
	return nil
}

func (o *options) write(w io.Writer, view any) error {
	if o.json {
		return render.JSON(w, view)
	}
	return render.Text(w, view)
}

func (o *options) printStats(w io.Writer, gov *engine.Governor) {
	if !o.stats {
		return
	}
	if err := render.Stats(w, gov.Stats()); err != nil {
		log.WithError(err).Warn("writing stats")
	}
}
