// Package tui implements the terminal storefront: a catalog pane, a
// cart pane, and toast notifications, all driven by the cart
// synchronization layer underneath.
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tiketto/tiketto/internal/cart"
	"github.com/tiketto/tiketto/internal/catalog"
	"github.com/tiketto/tiketto/internal/checkout"
	"github.com/tiketto/tiketto/internal/domain"
	"github.com/tiketto/tiketto/internal/identity"
	"github.com/tiketto/tiketto/internal/notify"
	"github.com/tiketto/tiketto/internal/tui/styles"
)

// Pane identifies the focused half of the screen.
type Pane int

const (
	PaneCatalog Pane = iota
	PaneCart
)

const maxToasts = 3

// LanguageStore persists the preferred language across sessions.
// *store.ClientStore satisfies it.
type LanguageStore interface {
	SaveLanguage(lang string) error
}

// Model is the Bubble Tea model for the storefront.
type Model struct {
	cache     *cart.Cache
	reloader  *cart.Reloader
	adjuster  *cart.Adjuster
	catalog   *catalog.Service
	checkout  *checkout.Service
	resolver  *identity.Resolver
	langStore LanguageStore
	events    <-chan notify.Event
	logger    *slog.Logger

	keys   KeyMap
	pane   Pane
	width  int
	height int

	spinner   spinner.Model
	filter    textinput.Model
	filtering bool

	products      []domain.Product // Currently visible (possibly filtered) catalog
	catalogCursor int

	snapshot   domain.CartSnapshot
	status     cart.Status
	cartCursor int

	toasts      []toast
	nextToastID int
	showHelp    bool

	languages []string
	language  string
}

// Options wires the model's collaborators.
type Options struct {
	Cache     *cart.Cache
	Reloader  *cart.Reloader
	Adjuster  *cart.Adjuster
	Catalog   *catalog.Service
	Checkout  *checkout.Service
	Resolver  *identity.Resolver
	LangStore LanguageStore
	Events    <-chan notify.Event
	Languages []string
	Logger    *slog.Logger
}

// NewModel creates the storefront model.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"en"}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	filter := textinput.New()
	filter.Placeholder = "filter events..."
	filter.CharLimit = 64

	return &Model{
		cache:     opts.Cache,
		reloader:  opts.Reloader,
		adjuster:  opts.Adjuster,
		catalog:   opts.Catalog,
		checkout:  opts.Checkout,
		resolver:  opts.Resolver,
		langStore: opts.LangStore,
		events:    opts.Events,
		logger:    opts.Logger,
		keys:      Keys,
		spinner:   sp,
		filter:    filter,
		languages: opts.Languages,
		language:  opts.Resolver.Language(),
	}
}

// Init kicks off the initial cart reload and catalog fetch; the cart
// reload on startup is the "mount" trigger.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.reloadCartCmd(),
		m.loadCatalogCmd(),
		m.waitForEventCmd(),
	)
}

// Update handles all messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CartReloadedMsg:
		m.snapshot = m.cache.Snapshot()
		m.status = m.reloader.Status()
		m.clampCartCursor()
		return m, nil

	case CartChangedMsg:
		m.snapshot = msg.Snapshot
		m.clampCartCursor()
		return m, nil

	case ProductsLoadedMsg:
		if msg.Err == nil {
			m.products = msg.Products
			m.clampCatalogCursor()
		}
		return m, nil

	case AdjustDoneMsg:
		m.snapshot = m.cache.Snapshot()
		m.clampCartCursor()
		return m, nil

	case ClearDoneMsg:
		m.snapshot = m.cache.Snapshot()
		m.clampCartCursor()
		if msg.Cleared {
			// The cache itself never notifies; confirmation of a clear
			// is a presentation concern and surfaces here.
			return m, func() tea.Msg {
				return NotificationMsg{Event: notify.Event{Level: notify.LevelSuccess, Kind: notify.KindCartCleared}}
			}
		}
		return m, nil

	case CheckoutDoneMsg:
		m.snapshot = m.cache.Snapshot()
		m.clampCartCursor()
		return m, nil

	case NotificationMsg:
		id := m.nextToastID
		m.nextToastID++
		m.toasts = append(m.toasts, toast{id: id, event: msg.Event})
		if len(m.toasts) > maxToasts {
			m.toasts = m.toasts[len(m.toasts)-maxToasts:]
		}
		return m, tea.Batch(m.expireToastCmd(id), m.waitForEventCmd())

	case ToastExpiredMsg:
		for i, t := range m.toasts {
			if t.id == msg.ID {
				m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil

	case LanguageChangedMsg:
		m.language = msg.Language
		// Cart lines carry language-dependent display text; a switch
		// without a refetch would show stale-language content.
		return m, tea.Batch(m.reloadCartCmd(), m.loadCatalogCmd())
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		if m.pane == PaneCatalog {
			m.pane = PaneCart
			// Opening the cart pane re-syncs, same as the web cart
			// popover refetching on open.
			return m, m.reloadCartCmd()
		}
		m.pane = PaneCatalog
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		if m.pane == PaneCatalog {
			m.filtering = true
			m.filter.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reloadCartCmd()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Language):
		return m, m.switchLanguageCmd()

	case key.Matches(msg, m.keys.Enter):
		if m.pane == PaneCatalog {
			if product, ok := m.selectedProduct(); ok {
				return m, m.addToCartCmd(product)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Increment):
		if line, ok := m.selectedLine(); ok {
			return m, m.adjustCmd(line, line.Quantity+1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Decrement):
		if line, ok := m.selectedLine(); ok {
			return m, m.adjustCmd(line, line.Quantity-1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		if line, ok := m.selectedLine(); ok {
			return m, m.adjustCmd(line, 0)
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearCart):
		return m, m.clearCartCmd()

	case key.Matches(msg, m.keys.Checkout):
		return m, m.checkoutCmd()
	}

	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.filtering = false
		m.filter.Reset()
		m.products = m.catalog.Products()
		m.clampCatalogCursor()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		m.filtering = false
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)

	query := m.filter.Value()
	if query == "" {
		m.products = m.catalog.Products()
	} else {
		results := m.catalog.Filter(query)
		filtered := make([]domain.Product, len(results))
		for i, r := range results {
			filtered[i] = r.Product
		}
		m.products = filtered
	}
	m.clampCatalogCursor()
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	if m.pane == PaneCatalog {
		m.catalogCursor += delta
		m.clampCatalogCursor()
		return
	}
	m.cartCursor += delta
	m.clampCartCursor()
}

func (m *Model) clampCatalogCursor() {
	if m.catalogCursor >= len(m.products) {
		m.catalogCursor = len(m.products) - 1
	}
	if m.catalogCursor < 0 {
		m.catalogCursor = 0
	}
}

func (m *Model) clampCartCursor() {
	if m.cartCursor >= len(m.snapshot.Items) {
		m.cartCursor = len(m.snapshot.Items) - 1
	}
	if m.cartCursor < 0 {
		m.cartCursor = 0
	}
}

func (m *Model) selectedProduct() (domain.Product, bool) {
	if m.catalogCursor < 0 || m.catalogCursor >= len(m.products) {
		return domain.Product{}, false
	}
	return m.products[m.catalogCursor], true
}

func (m *Model) selectedLine() (domain.CartLine, bool) {
	if m.cartCursor < 0 || m.cartCursor >= len(m.snapshot.Items) {
		return domain.CartLine{}, false
	}
	return m.snapshot.Items[m.cartCursor], true
}
