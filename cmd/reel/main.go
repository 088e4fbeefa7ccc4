package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/reel/internal/catalog"
	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/prefs"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tmdb"
	"github.com/mmcdole/reel/internal/tui"
	"github.com/mmcdole/reel/internal/tui/styles"
	"github.com/mmcdole/reel/internal/wishlist"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("reel %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: reel [flags] [command]

Without a command reel opens the browser, or prints the last browsed list
when stdout is not a terminal.

Commands:
  list <movie|tv> <category> [-pages N] [-genre ID] [-refresh]
  search <movie|tv> <query...>
  details <movie|tv> <id>
  genres <movie|tv>
  wishlist [movie|tv]
  wishlist add <movie|tv> <id>
  wishlist rm <movie|tv> <id>
  wishlist find <query...>
  sync [movie|tv]
  clear-cache [<movie|tv> <category>]
  adult <on|off>
  version

Flags:
`)
	flag.PrintDefaults()
}

// app holds the services shared by every command
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	prefs    *prefs.Store
	catalog  *catalog.Service
	wishlist *wishlist.Service
}

func run(args []string) error {
	if len(args) > 0 && args[0] == "version" {
		fmt.Printf("reel %s\n", Version)
		return nil
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := config.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = config.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting reel", "version", Version, "args", args)

	interactive := term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
	if !cfg.IsConfigured() && len(args) == 0 && interactive {
		if err := runSetupFlow(cfg, logger); err != nil {
			return err
		}
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(args) == 0 {
		if interactive {
			return a.runTUI()
		}
		mt, cat := a.lastBrowsed()
		return a.printList(ctx, mt, cat, 1, 0, false)
	}

	switch args[0] {
	case "list":
		return a.cmdList(ctx, args[1:])
	case "search":
		return a.cmdSearch(ctx, args[1:])
	case "details":
		return a.cmdDetails(ctx, args[1:])
	case "genres":
		return a.cmdGenres(ctx, args[1:])
	case "wishlist":
		return a.cmdWishlist(ctx, args[1:])
	case "sync":
		return a.cmdSync(ctx, args[1:])
	case "clear-cache":
		return a.cmdClearCache(ctx, args[1:])
	case "adult":
		return a.cmdAdult(args[1:])
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	st, err := store.Open(cfg.CachePath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	pr, err := prefs.Open(cfg.PrefsDir())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	opts := cfg.ClientOptions()
	if adult, ok := pr.GetBool(prefs.KeyAdult); ok {
		opts.IncludeAdult = adult
	}
	client := tmdb.NewClient(opts, logger)

	catalogSvc, err := catalog.NewService(client, st, pr, catalog.Options{
		StaleAfter:       cfg.Cache.StaleAfter,
		PageSize:         cfg.UI.PageSize,
		DetailsCacheSize: cfg.Cache.DetailsCacheSize,
		SyncWorkers:      cfg.Sync.Workers,
	}, logger)
	if err != nil {
		pr.Close()
		st.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		prefs:    pr,
		catalog:  catalogSvc,
		wishlist: wishlist.NewService(st, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.prefs.Close(); err != nil {
		a.logger.Warn("failed to close preferences", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close cache", "error", err)
	}
}

// lastBrowsed returns the list remembered from the previous session, or the configured default
func (a *app) lastBrowsed() (domain.MediaType, domain.Category) {
	mt := a.cfg.DefaultMediaType()
	cat := domain.Category(a.cfg.UI.DefaultCategory)

	if s, ok := a.prefs.GetString(prefs.KeyMediaType); ok {
		if parsed, err := domain.ParseMediaType(s); err == nil {
			mt = parsed
		}
	}
	if s, ok := a.prefs.GetString(prefs.KeyCategory); ok && domain.ValidCategory(mt, domain.Category(s)) {
		cat = domain.Category(s)
	}
	if !domain.ValidCategory(mt, cat) {
		cat = domain.CategoryTrending
	}
	return mt, cat
}

func (a *app) runTUI() error {
	mt, cat := a.lastBrowsed()
	model := tui.NewModel(a.catalog, a.wishlist, mt, cat)

	p := tea.NewProgram(model, tea.WithAltScreen())

	a.logger.Info("starting TUI", "mediaType", mt, "category", cat)

	final, err := p.Run()
	if err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := final.(tui.Model); ok {
		mt, cat := m.Selection()
		if err := a.prefs.SetString(prefs.KeyMediaType, string(mt)); err != nil {
			a.logger.Warn("failed to save media type", "error", err)
		}
		if err := a.prefs.SetString(prefs.KeyCategory, string(cat)); err != nil {
			a.logger.Warn("failed to save category", "error", err)
		}
	}

	a.logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for TMDB credentials, verifies them and saves the config
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to reel!")
	fmt.Println()
	fmt.Println("reel needs a TMDB API key (v3) or read access token (v4).")
	fmt.Println("Create one at https://www.themoviedb.org/settings/api")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("API key or access token: ")
		secret, err := readSecret(reader)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		fmt.Println()

		if secret == "" {
			fmt.Println("Key cannot be empty. Please try again.")
			continue
		}

		// v4 tokens are JWTs
		if strings.HasPrefix(secret, "eyJ") {
			cfg.TMDB.AccessToken, cfg.TMDB.APIKey = secret, ""
		} else {
			cfg.TMDB.APIKey, cfg.TMDB.AccessToken = secret, ""
		}

		if err := verifyWithSpinner(cfg, logger); err != nil {
			fmt.Printf("✗ %v\n", err)
			if errors.Is(err, domain.ErrUnauthorized) {
				fmt.Println("Please check the key and try again.")
				fmt.Println()
				continue
			}
			return err
		}
		break
	}

	if err := config.SaveConfig(cfg, ""); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}

func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		return strings.TrimSpace(string(b)), err
	}
	line, err := reader.ReadString('\n')
	return strings.TrimSpace(line), err
}

// verifyWithSpinner checks the credentials with a visual spinner
func verifyWithSpinner(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		client := tmdb.NewClient(cfg.ClientOptions(), logger)
		_, err := client.GetGenres(ctx, domain.MediaTypeMovie)
		errCh <- err
	}()

	frame := 0
	fmt.Printf("\r%s Checking credentials...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ Credentials accepted")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking credentials...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("verification timed out")
		}
	}
}
