package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	chimera "github.com/chimerascript/chimera"
	_ "github.com/chimerascript/chimera/httpclient"
	"github.com/chimerascript/chimera/report"
	"github.com/chimerascript/chimera/runner"
)

var errNoBaseURL = errors.New("no base_url specified (use --base-url or .chimera.yaml)")

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run ChimeraScript tests",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "client",
				Usage: "client to use (overrides config)",
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "base URL prefixed to every request path",
				Sources: cli.EnvVars("CHIMERA_BASE_URL"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a config file (default: nearest .chimera.yaml)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output results as JSON",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "stop on first failure",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "run only cases whose dotted path matches pattern",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug-level logging of discovery, dispatch, and teardown",
			},
			&cli.BoolFlag{
				Name:  "no-tui",
				Usage: "always use plain-text output, even on a TTY",
			},
		},
		Action: runRun,
	}
}

type parsedFile struct {
	script *chimera.Script
	path   string
}

func runRun(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	defer func() { _ = logger.Sync() }()

	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := collectTestFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return errNoChimeraFiles
	}

	logger.Debug("discovered source files", zap.Int("count", len(files)))

	parsed := make([]parsedFile, 0, len(files))

	for _, file := range files {
		data, err := os.ReadFile(file) //nolint:gosec // G304: file path from user input is expected
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}

		script, err := chimera.Parse(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", file, err)
		}

		parsed = append(parsed, parsedFile{script: script, path: file})
	}

	clientName, baseURL, err := resolveClientConfig(cmd, files[0])
	if err != nil {
		return err
	}

	client, err := chimera.NewClient(clientName, chimera.ClientConfig{BaseURL: baseURL})
	if err != nil {
		return fmt.Errorf("creating client %q: %w", clientName, err)
	}

	reporter, finish, err := buildReporter(cmd, parsed)
	if err != nil {
		return err
	}

	var total *runner.Result

	for _, pf := range parsed {
		logger.Debug("running file", zap.String("path", pf.path))

		r := runner.New(
			runner.WithClient(client),
			runner.WithBaseURL(baseURL),
			runner.WithOut(os.Stdout),
			runner.WithHandler(reporter),
			runner.WithFailFast(cmd.Bool("fail-fast")),
			runner.WithFilter(cmd.String("run")),
			runner.WithLogger(logger),
		)

		result, err := r.Run(ctx, pf.script, pf.path)
		if err != nil {
			return fmt.Errorf("running %s: %w", pf.path, err)
		}

		if total == nil {
			total = result
		} else {
			total.Merge(result)
		}
	}

	if total == nil {
		total = runner.NewResult()
	}

	if err := finish(total); err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}

	if !total.Ok() {
		return cli.Exit("", 1)
	}

	return nil
}

// reporterFinisher flushes a reporter's final summary once every file has
// run. Both report.TextReporter and report.JSONReporter share this shape;
// report.TUIReporter additionally blocks until the user dismisses the view.
type reporterFinisher func(*runner.Result) error

func buildReporter(cmd *cli.Command, parsed []parsedFile) (runner.Handler, reporterFinisher, error) {
	switch {
	case cmd.Bool("json"):
		rep := report.NewJSONReporter(os.Stdout)

		return rep, rep.Finish, nil

	case cmd.Bool("no-tui") || !isTerminalStdout():
		rep := report.NewTextReporter(os.Stdout)

		return rep, rep.Finish, nil

	default:
		script := &chimera.Script{}
		for _, pf := range parsed {
			script.Cases = append(script.Cases, pf.script.Cases...)
		}

		rep := report.NewTUIReporter(os.Stdout, script)

		if err := rep.Start(); err != nil {
			return nil, nil, fmt.Errorf("starting TUI: %w", err)
		}

		return rep, rep.Finish, nil
	}
}

func resolveClientConfig(cmd *cli.Command, firstFile string) (string, string, error) {
	clientName := cmd.String("client")
	baseURL := cmd.String("base-url")

	if clientName == "" || baseURL == "" {
		var loadedCfg *chimera.Config

		if path := cmd.String("config"); path != "" {
			cfg, err := chimera.LoadConfigFile(path)
			if err != nil {
				return "", "", fmt.Errorf("loading config %s: %w", path, err)
			}

			loadedCfg = cfg
		} else if cfg, err := chimera.LoadConfig(filepath.Dir(firstFile)); err == nil {
			loadedCfg = cfg
		}

		if loadedCfg != nil {
			if clientName == "" {
				clientName = loadedCfg.ClientFor(firstFile)
			}

			if baseURL == "" {
				baseURL = loadedCfg.ResolvedBaseURL()
			}
		}
	}

	if clientName == "" {
		clientName = "http"
	}

	if baseURL == "" {
		return "", "", errNoBaseURL
	}

	return clientName, baseURL, nil
}

func collectTestFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}

				if !d.IsDir() && strings.HasSuffix(path, ".chs") {
					files = append(files, path)
				}

				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			files = append(files, arg)
		}
	}

	return files, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	config.Level = zap.NewAtomicLevelAt(level)

	return config.Build()
}

func isTerminalStdout() bool {
	fd := os.Stdout.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
