package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/zbook/internal/book"
	"github.com/zarlcorp/zbook/internal/cli"
	"github.com/zarlcorp/zbook/internal/config"
	"github.com/zarlcorp/zbook/internal/logger"
	"github.com/zarlcorp/zbook/internal/repl"
	"github.com/zarlcorp/zbook/internal/store"
	"github.com/zarlcorp/zbook/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

// CLI is the top-level command structure for zbook.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Config  string           `help:"Extra config file, applied last." type:"path" placeholder:"PATH"`
	DataDir string           `help:"Data directory." type:"path" placeholder:"DIR"`

	Shell     ShellCmd     `cmd:"" default:"1" help:"Run the interactive command loop."`
	List      ListCmd      `cmd:"" help:"List contacts."`
	Birthdays BirthdaysCmd `cmd:"" help:"Show upcoming birthdays."`
	Forget    ForgetCmd    `cmd:"" help:"Delete a contact."`
	Browse    BrowseCmd    `cmd:"" help:"Browse contacts in a terminal UI."`
}

// env carries what every command needs once flags and config are resolved.
type env struct {
	ctx     context.Context
	cfg     *config.Config
	dataDir string
	log     *slog.Logger
}

// ShellCmd runs the interactive command loop and saves on the way out.
type ShellCmd struct{}

// Run executes the shell command.
func (c *ShellCmd) Run(e *env) error {
	s, b, err := e.openBook()
	if err != nil {
		return err
	}
	defer s.Close()

	sess := repl.New(b, os.Stdout,
		repl.WithWindow(e.cfg.Birthdays.Window),
		repl.WithPrompt(isTerminal(os.Stdin)),
		repl.WithLogger(e.log),
	)
	runErr := sess.Run(e.ctx, os.Stdin)

	if err := e.save(s, b); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// ListCmd prints all contacts.
type ListCmd struct {
	JSON bool `help:"Print as JSON."`
}

// Run executes the list command.
func (c *ListCmd) Run(e *env) error {
	s, b, err := e.openBook()
	if err != nil {
		return err
	}
	defer s.Close()

	return cli.CmdList(os.Stdout, b, c.JSON)
}

// BirthdaysCmd prints upcoming birthdays.
type BirthdaysCmd struct {
	Days int  `help:"Days to look ahead; negative uses the configured window." default:"-1"`
	JSON bool `help:"Print as JSON."`
}

// Run executes the birthdays command.
func (c *BirthdaysCmd) Run(e *env) error {
	s, b, err := e.openBook()
	if err != nil {
		return err
	}
	defer s.Close()

	return cli.CmdBirthdays(os.Stdout, b, c.window(e.cfg), time.Now(), c.JSON)
}

func (c *BirthdaysCmd) window(cfg *config.Config) int {
	if c.Days < 0 {
		return cfg.Birthdays.Window
	}
	return c.Days
}

// ForgetCmd deletes a contact and saves.
type ForgetCmd struct {
	Name string `arg:"" help:"Contact name."`
}

// Run executes the forget command.
func (c *ForgetCmd) Run(e *env) error {
	s, b, err := e.openBook()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := cli.CmdForget(os.Stdout, b, c.Name); err != nil {
		return err
	}
	return e.save(s, b)
}

// BrowseCmd opens the read-only contact browser.
type BrowseCmd struct{}

// Run executes the browse command.
func (c *BrowseCmd) Run(e *env) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}

	s, b, err := e.openBook()
	if err != nil {
		return err
	}
	defer s.Close()

	m := tui.New(version, b, time.Now(), e.cfg.Birthdays.Window)
	if _, err := tea.NewProgram(m, tea.WithContext(e.ctx)).Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

func (e *env) openBook() (*store.Store, *book.AddressBook, error) {
	pass, err := cli.Password(e.dataDir, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	s, err := cli.OpenStore(e.dataDir, pass)
	if err != nil {
		return nil, nil, err
	}

	b, err := s.Load()
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	e.log.Debug("loaded contacts", "count", b.Len(), "dir", e.dataDir)
	return s, b, nil
}

func (e *env) save(s *store.Store, b *book.AddressBook) error {
	if err := s.Save(b); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	e.log.Debug("saved contacts", "count", b.Len())
	return nil
}

// loadConfig loads layered config from the user path, the working
// directory and the --config flag, then applies env overrides.
func loadConfig(extra string) (*config.Config, error) {
	paths := []string{
		os.ExpandEnv("$HOME/.config/zbook/config.yaml"),
		".zbook.yaml",
	}
	if extra != "" {
		paths = append(paths, extra)
	}

	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDataDir picks the data directory: flag, then config, then the
// platform default.
func resolveDataDir(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	return cli.DataDir()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	var root CLI
	kctx := kong.Parse(&root,
		kong.Name("zbook"),
		kong.Description("Personal contact book."),
		kong.Vars{"version": "zbook " + version},
	)

	if err := run(kctx, &root); err != nil {
		fmt.Fprintf(os.Stderr, "zbook: %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context, root *CLI) error {
	app := zapp.New(zapp.WithName("zbook"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	cfg, err := loadConfig(root.Config)
	if err != nil {
		_ = app.Close()
		return err
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Format: cfg.Log.Format,
	})
	slog.SetDefault(log)

	e := &env{
		ctx:     ctx,
		cfg:     cfg,
		dataDir: resolveDataDir(root.DataDir, cfg),
		log:     log,
	}

	if err := kctx.Run(e); err != nil {
		slog.Debug("command failed", "cmd", kctx.Command(), "err", err)
		_ = app.Close()
		return err
	}

	if err := app.Close(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
