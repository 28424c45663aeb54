package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/Digital-Shane/marquee/internal/config"
	"github.com/Digital-Shane/marquee/internal/log"
	"github.com/spf13/cobra"
)

// cliState is shared by every subcommand of one invocation.
type cliState struct {
	cfg *config.Config

	// newApp wires stores and providers from cfg. needCatalog is false for
	// commands that only touch the watchlist.
	newApp func(cfg *config.Config, needCatalog bool) (*app, error)
}

func newRootCmd(s *cliState) *cobra.Command {
	root := &cobra.Command{
		Use:   "marquee",
		Short: "Browse trending movies and TV shows from TMDB",
		Long: `marquee browses popular and newly released movies and TV shows from
The Movie Database (TMDB), searches the catalog and keeps a local watchlist.

Run "marquee browse" for the interactive browser, or use the list, search,
details and watchlist commands for plain terminal output.`,
		SilenceUsage:      true,
		PersistentPreRunE: s.setup,
	}

	root.AddCommand(
		newListCmd(s),
		newSearchCmd(s),
		newDetailsCmd(s),
		newWatchlistCmd(s),
		newHistoryCmd(s),
		newConfigCmd(s),
		newBrowseCmd(s),
	)
	return root
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	s := &cliState{newApp: buildApp}
	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	s.teardown()
	return err
}

// setup loads configuration and opens the session journal.
func (s *cliState) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s.cfg = cfg

	dir, err := config.LogDir()
	if err != nil {
		return err
	}
	log.SetDir(dir)
	log.Initialize(cfg.EnableLogging, cfg.LogRetentionDays)
	if cfg.EnableLogging {
		log.SetupDiagnostics(dir)
	}

	// Record "watchlist add 42" rather than "add 42".
	path := strings.Fields(cmd.CommandPath())
	name := path[len(path)-1]
	if len(path) > 1 {
		name = path[1]
		args = append(path[2:], args...)
	}
	return log.StartSession(name, args)
}

// teardown writes the session journal. It runs whether or not the command
// succeeded so failed requests are kept.
func (s *cliState) teardown() {
	if err := log.EndSession(); err != nil {
		log.Warnf("failed to save session: %v", err)
	}
	_ = log.CloseDiagnostics()
}
