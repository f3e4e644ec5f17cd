package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tasmanium/reportview"
	"github.com/tasmanium/reportview/bubbletea"
	"github.com/tasmanium/reportview/chroma"
	"github.com/tasmanium/reportview/clipboard"
	"github.com/tasmanium/reportview/config"
	"github.com/tasmanium/reportview/fs"
	"github.com/tasmanium/reportview/html"
	rvhttp "github.com/tasmanium/reportview/http"
	rvlipgloss "github.com/tasmanium/reportview/lipgloss"
	"github.com/tasmanium/reportview/logger"
)

// ErrNoReport is returned when neither an argument nor the config names a report.
var ErrNoReport = errors.New("no report document given")

// NewRootCommand builds the reportview command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	v := config.New()
	var configPath, fragment string

	root := &cobra.Command{
		Use:   "reportview [report.html[#scenario]]",
		Short: "Browse a generated test execution report",
		Long: `reportview browses a generated HTML test execution report in the terminal.

The open scenario is kept in a location file, so a later run (or another
process, with --follow) picks up the same scenario. Attachments are read from
the report directory, or from --base-url when the report is served remotely.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return runView(cmd, cfg, args, fragment)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to a config file (default ./reportview.yaml)")
	pf.StringP("theme", "t", "dark", "Color theme: dark or light")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-file", "", "Write logs to this file")
	bindFlag(v, "theme", pf.Lookup("theme"))
	bindFlag(v, "log_level", pf.Lookup("log-level"))
	bindFlag(v, "log_file", pf.Lookup("log-file"))

	f := root.Flags()
	f.StringVarP(&fragment, "fragment", "f", "", "Scenario to open, overriding the link's #fragment")
	f.String("location-file", "", "File the open scenario is persisted in")
	f.Bool("follow", false, "Follow scenario changes written to the location file by other processes")
	f.String("base-url", "", "Retrieve attachments from this URL instead of the report directory")
	bindFlag(v, "location_file", f.Lookup("location-file"))
	bindFlag(v, "follow_location", f.Lookup("follow"))
	bindFlag(v, "base_url", f.Lookup("base-url"))

	root.AddCommand(
		newRenderCommand(v, &configPath),
		newServeCommand(v, &configPath),
		newVersionCommand(),
	)
	return root
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func runView(cmd *cobra.Command, cfg *config.Config, args []string, fragment string) error {
	link := cfg.Report
	if len(args) == 1 {
		link = args[0]
	}
	document, id := reportview.SplitLink(link)
	if fragment != "" {
		id = reportview.ParseFragment(fragment)
	}
	if document == "" {
		return ErrNoReport
	}

	// The TUI owns the terminal, so logs go to a file.
	stateDir := fs.DefaultStateDir()
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(stateDir, "reportview.log")
	}
	log, closer, err := logger.Open(logFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	theme, err := rvlipgloss.ThemeByName(cfg.Theme)
	if err != nil {
		return err
	}
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette()))
	if err != nil {
		return err
	}
	fetcher, err := newFetcher(cfg, document)
	if err != nil {
		return err
	}

	locPath := cfg.LocationFile
	if locPath == "" {
		locPath = fs.DefaultLocationFile(stateDir, document)
	}
	if err := os.MkdirAll(filepath.Dir(locPath), 0755); err != nil {
		return fmt.Errorf("create location dir: %w", err)
	}
	loc := fs.NewLocationFile(locPath)
	if id != "" {
		if err := loc.SetFragment(id); err != nil {
			return err
		}
	}

	in, err := os.Open(document)
	if err != nil {
		return err
	}
	defer in.Close()

	opts := []bubbletea.ViewerOption{
		bubbletea.WithLocation(loc),
		bubbletea.WithModelOptions(
			bubbletea.WithTheme(theme),
			bubbletea.WithTokenizer(tokenizer),
			bubbletea.WithLanguageDetector(chroma.NewDetector()),
			bubbletea.WithFetcher(fetcher),
			bubbletea.WithClipboard(clipboard.NewSystem()),
			bubbletea.WithLogger(log),
			bubbletea.WithDocument(document),
		),
	}
	if cfg.FollowLocation {
		opts = append(opts, bubbletea.WithWatcher(loc))
	}

	log.WithFields(logrus.Fields{
		"report":   document,
		"location": locPath,
		"follow":   cfg.FollowLocation,
	}).Info("Opening report")

	app := &App{
		Input:  in,
		Parser: html.NewParser(),
		Viewer: bubbletea.NewViewer(opts...),
	}
	return app.Run(cmd.Context())
}

// newFetcher returns the attachment source: the remote report when a base URL
// is configured, the directory holding the document otherwise.
func newFetcher(cfg *config.Config, document string) (reportview.Fetcher, error) {
	if cfg.BaseURL != "" {
		return rvhttp.NewFetcher(cfg.BaseURL)
	}
	return fs.NewFetcher(filepath.Dir(document)), nil
}

func newRenderCommand(v *viper.Viper, configPath *string) *cobra.Command {
	var view, fragment, output string
	var hide []string

	cmd := &cobra.Command{
		Use:   "render report.html[#scenario]",
		Short: "Write the report with a view state applied",
		Long: `render applies a grouping, hidden statuses and an open scenario to the
report and writes the resulting document, producing a static snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			document, id := reportview.SplitLink(args[0])
			if fragment != "" {
				id = reportview.ParseFragment(fragment)
			}
			snap, err := parseSnapshot(view, hide, id)
			if err != nil {
				return err
			}

			in, err := os.Open(document)
			if err != nil {
				return err
			}
			defer in.Close()

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			app := &RenderApp{Input: in, Output: out, Snapshot: snap, Log: log}
			if err := app.Run(); err != nil {
				return err
			}
			if output != "" {
				log.Infof("Wrote %s", output)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&view, "view", reportview.ViewFlat.String(), "Grouping: flat, outlines, features or exceptions")
	f.StringSliceVar(&hide, "hide", nil, "Statuses to hide: passed, failed, skipped")
	f.StringVarP(&fragment, "fragment", "f", "", "Scenario to open, overriding the link's #fragment")
	f.StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func parseSnapshot(view string, hide []string, id string) (reportview.Snapshot, error) {
	mode, err := reportview.ParseViewMode(view)
	if err != nil {
		return reportview.Snapshot{}, err
	}
	snap := reportview.Snapshot{Mode: mode, Fragment: id}
	for _, h := range hide {
		st, err := reportview.ParseStatus(h)
		if err != nil {
			return reportview.Snapshot{}, err
		}
		snap.Hidden = append(snap.Hidden, st)
	}
	return snap, nil
}

func newServeCommand(v *viper.Viper, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [report.html]",
		Short: "Serve the report, its attachments and a JSON API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *configPath)
			if err != nil {
				return err
			}
			document := cfg.Report
			if len(args) == 1 {
				document = args[0]
			}
			document, _ = reportview.SplitLink(document)
			if document == "" {
				return ErrNoReport
			}

			log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(document)
			if err != nil {
				return err
			}
			srv, err := rvhttp.NewServer(filepath.Dir(document), filepath.Base(document), raw, log)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context(), net.JoinHostPort(cfg.Serve.Host, strconv.Itoa(cfg.Serve.Port)))
		},
	}

	f := cmd.Flags()
	f.StringP("host", "H", "localhost", "Host to bind the server to")
	f.IntP("port", "p", 8080, "Port to run the server on")
	bindFlag(v, "serve.host", f.Lookup("host"))
	bindFlag(v, "serve.port", f.Lookup("port"))
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reportview %s (commit: %s)\n", version, commit)
		},
	}
}
