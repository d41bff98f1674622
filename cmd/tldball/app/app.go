package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli"

	"tldball/explorer"
	"tldball/internal/config"
	"tldball/internal/limiter"
	"tldball/internal/render"
)

// Run executes the CLI: it explores the ball around the domain given as the
// first argument and writes the graph to a file, or to stdout for --output=-.
// The traversal trace goes to stderr. If no domain is given, it prints help and returns nil.
func Run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	client *http.Client,
	clock limiter.Timer,
) error {
	defaults := config.Default()

	app := cli.NewApp()
	app.Name = "tldball"
	app.Usage = "map the domains reachable by links from a center domain"
	app.UsageText = "tldball [global options] <domain>"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML file with default settings",
		},
		cli.IntFlag{
			Name:  "depth",
			Usage: "radius of the ball: domains at this many hops are not fetched",
			Value: defaults.Depth,
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "number of concurrent fetches (1 keeps depth-first order)",
			Value: defaults.Workers,
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
			Value: defaults.Timeout,
		},
		cli.IntFlag{
			Name:  "retries",
			Usage: "number of retries for temporary failures",
		},
		cli.DurationFlag{
			Name:  "delay",
			Usage: "delay between requests (example: 200ms, 1s)",
		},
		cli.Float64Flag{
			Name:  "rps",
			Usage: "limit requests per second (overrides delay)",
		},
		cli.StringFlag{
			Name:  "user-agent",
			Usage: "custom user agent",
			Value: defaults.UserAgent,
		},
		cli.StringFlag{
			Name:  "output",
			Usage: "output file, - for stdout (default: <domain>.gv)",
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "output format: dot or json",
			Value: defaults.Format,
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log skipped links",
		},
	}
	app.Action = func(c *cli.Context) error {
		cfg, err := configFromCLI(c)
		if err != nil {
			return err
		}

		if cfg.Center == "" {
			_ = cli.ShowAppHelp(c)

			return nil
		}

		logger := newLogger(stderr, cfg.Verbose)

		client.Timeout = cfg.Timeout
		report, err := explorer.Explore(ctx, optionsFromConfig(cfg, client, clock, logger))
		if err != nil {
			return err
		}

		return writeOutput(stdout, cfg, report, logger)
	}

	err := app.Run(args)
	if err != nil {
		return err
	}

	return nil
}

func configFromCLI(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if center := c.Args().First(); center != "" {
		cfg.Center = center
	}
	if c.IsSet("depth") {
		cfg.Depth = c.Int("depth")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("retries") {
		cfg.Retries = c.Int("retries")
	}
	if c.IsSet("delay") {
		cfg.Delay = c.Duration("delay")
	}
	if c.IsSet("rps") {
		cfg.RPS = c.Float64("rps")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}

	return cfg, cfg.Validate()
}

func optionsFromConfig(
	cfg config.Config,
	client *http.Client,
	clock limiter.Timer,
	logger *log.Logger,
) explorer.Options {
	return explorer.Options{
		Center:     cfg.Center,
		MaxDepth:   cfg.Depth,
		Workers:    cfg.Workers,
		Timeout:    cfg.Timeout,
		Retries:    cfg.Retries,
		Delay:      cfg.Delay,
		RPS:        cfg.RPS,
		UserAgent:  cfg.UserAgent,
		HTTPClient: client,
		Clock:      clock,
		Logger:     logger,
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{Level: level})
}

func writeOutput(stdout io.Writer, cfg config.Config, report explorer.Report, logger *log.Logger) error {
	path := cfg.OutputPath()
	if path == "-" {
		return render.Write(stdout, cfg.Format, report)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if err := render.Write(file, cfg.Format, report); err != nil {
		_ = file.Close()

		return fmt.Errorf("write output: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info("finished rendering", "file", path, "nodes", len(report.Graph.Nodes), "edges", len(report.Graph.Edges))

	return nil
}
