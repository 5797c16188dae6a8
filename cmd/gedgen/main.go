package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/gedgen/internal/app"
	"github.com/okian/gedgen/internal/config"
	"github.com/okian/gedgen/pkg/logger"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{stdout: stdout, stderr: stderr}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if c.log != nil {
			c.log.Error(ctx, "gedgen failed", logger.Error(err))
		} else {
			// Use fmt for errors raised before the logger is available
			fmt.Fprintln(stderr, "gedgen: "+err.Error())
		}
		return 1
	}
	return 0
}

type cli struct {
	stdout io.Writer
	stderr io.Writer

	cfg *config.Config
	log logger.Logger
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gedgen",
		Short: "Generate synthetic genealogy trees as GEDCOM 5.5.1",
		Long: "gedgen grows a random family tree around a trunk of first-born lines\n" +
			"and writes it as a GEDCOM file. Settings are read from defaults, an\n" +
			"optional YAML file, GEDGEN_* environment variables and flags, in that order.",
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.generate,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  c.dumpConfig,
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Needs no configuration.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(c.stdout, "gedgen "+version)
		},
	})
	return root
}

// setup loads the configuration and initializes logging.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	path, err := flags.GetString(config.FlagConfig)
	if err != nil {
		return err
	}
	cfg, err := config.Load(ctx, config.WithFile(path), config.WithFlags(flags))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithWriter(c.stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.log = logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

func (c *cli) generate(cmd *cobra.Command, _ []string) error {
	svc := app.New(c.cfg,
		app.WithLogger(c.log),
		app.WithStdout(c.stdout),
		app.WithVersion(version),
	)
	_, err := svc.Run(cmd.Context())
	return err
}

func (c *cli) dumpConfig(*cobra.Command, []string) error {
	enc := yaml.NewEncoder(c.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(c.cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
