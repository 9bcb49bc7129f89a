package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/tiketto/tiketto/internal/api"
	"github.com/tiketto/tiketto/internal/cart"
	"github.com/tiketto/tiketto/internal/catalog"
	"github.com/tiketto/tiketto/internal/checkout"
	"github.com/tiketto/tiketto/internal/config"
	"github.com/tiketto/tiketto/internal/domain"
	"github.com/tiketto/tiketto/internal/identity"
	"github.com/tiketto/tiketto/internal/notify"
	"github.com/tiketto/tiketto/internal/store"
	"github.com/tiketto/tiketto/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	var loginEmail string
	var logout bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&loginEmail, "login", "", "sign in with this email and store the session token")
	flag.BoolVar(&logout, "logout", false, "discard the stored session token")
	flag.Parse()

	if showVersion {
		fmt.Printf("tiketto %s\n", Version)
		return
	}

	if err := run(loginEmail, logout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(loginEmail string, logout bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tiketto needs an interactive terminal")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = config.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting tiketto", "version", Version, "server", cfg.Server.URL)

	clientStore, err := store.Open(config.DefaultDataPath())
	if err != nil {
		return fmt.Errorf("failed to open client store: %w", err)
	}
	defer clientStore.Close()

	// The persisted language wins over the configured default, so a
	// previous session's switch survives restarts.
	language := cfg.Server.Language
	if stored, ok := clientStore.Language(); ok {
		language = stored
	}

	resolver := identity.NewResolver(clientStore, language)
	client := api.NewClient(cfg.Server.URL, resolver, logger)

	if logout {
		if err := clientStore.ClearToken(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Println("signed out; your cart continues as a guest cart")
		return nil
	}

	if loginEmail != "" {
		return login(client, clientStore, loginEmail)
	}

	events := make(chan notify.Event, 16)
	notifier := notify.NewChannelNotifier(events)

	cache := cart.NewCache(client, resolver, logger)
	reloader := cart.NewReloader(cache, notifier, logger)
	adjuster := cart.NewAdjuster(cache, notifier, logger)
	catalogSvc := catalog.NewService(client, logger)
	checkoutSvc := checkout.NewService(client, cache, notifier, logger)

	model := tui.NewModel(tui.Options{
		Cache:     cache,
		Reloader:  reloader,
		Adjuster:  adjuster,
		Catalog:   catalogSvc,
		Checkout:  checkoutSvc,
		Resolver:  resolver,
		LangStore: clientStore,
		Events:    events,
		Languages: cfg.UI.Languages,
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Push cache changes into the update loop so the cart pane tracks
	// mutations triggered outside it (checkout lock, post-order reload).
	unsubscribe := cache.Subscribe(func(s domain.CartSnapshot) {
		p.Send(tui.CartChangedMsg{Snapshot: s})
	})
	defer unsubscribe()

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// login prompts for a password on the terminal, exchanges it for a
// bearer token, and persists the token so every later request is
// authenticated.
func login(client *api.Client, clientStore *store.ClientStore, email string) error {
	fmt.Printf("Password for %s: ", email)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	token, err := client.Login(context.Background(), email, string(password))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := clientStore.SaveToken(token); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	fmt.Println("signed in")
	return nil
}
