package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tiketto/tiketto/internal/cart"
	"github.com/tiketto/tiketto/internal/tui/styles"
)

// View renders the whole storefront.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderCatalog(), m.renderCart())
	footer := m.renderFooter()

	sections := []string{header, body, footer}
	if toasts := renderToasts(m.toasts, m.language); toasts != "" {
		sections = append(sections, toasts)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("tiketto")
	lang := styles.DimStyle.Render("lang: " + m.language)

	session := styles.DimStyle.Render("guest")
	if m.resolver.Authenticated() {
		session = styles.SuccessStyle.Render("signed in")
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", lang, "  ", session)
}

func (m *Model) renderCatalog() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Events"))
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if len(m.products) == 0 {
		b.WriteString(styles.DimStyle.Render("no events found"))
		if suggestions := m.catalog.Suggest(m.filter.Value()); len(suggestions) > 0 {
			b.WriteString("\n")
			b.WriteString(styles.DimStyle.Render("did you mean: " + suggestions[0]))
		}
	}

	for i, product := range m.products {
		stock := styles.SuccessStyle.Render(styles.InStockChar)
		if !product.InStock {
			stock = styles.DimStyle.Render(styles.SoldOutChar)
		}

		row := fmt.Sprintf("%s %s  %s", stock, product.Name,
			styles.SubtitleStyle.Render(fmt.Sprintf("%.2f", product.Price)))

		if i == m.catalogCursor && m.pane == PaneCatalog {
			row = styles.SelectedItemStyle.Render(row)
		} else {
			row = styles.NormalItemStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	border := styles.InactiveBorder
	if m.pane == PaneCatalog {
		border = styles.ActiveBorder
	}
	return border.Width(m.paneWidth()).Render(b.String())
}

func (m *Model) renderCart() string {
	var b strings.Builder

	title := "Cart"
	if m.snapshot.Locked {
		title += " " + styles.WarningStyle.Render(styles.LockedChar+" checkout in progress")
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case m.status.Reloading:
		b.WriteString(m.spinner.View())
		b.WriteString(styles.DimStyle.Render(" syncing..."))
		b.WriteString("\n")

	case m.status.HasError:
		msg := "failed to load the cart"
		if m.status.Failure == cart.FailureNotFound {
			msg = "your cart could not be found"
		}
		b.WriteString(styles.ErrorStyle.Render(msg))
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("press r to retry"))
		b.WriteString("\n")
	}

	if len(m.snapshot.Items) == 0 && !m.status.Reloading && !m.status.HasError {
		b.WriteString(styles.DimStyle.Render("your cart is empty"))
		b.WriteString("\n")
	}

	for i, line := range m.snapshot.Items {
		row := fmt.Sprintf("%dx %s  %s", line.Quantity, line.Name,
			styles.SubtitleStyle.Render(fmt.Sprintf("%.2f", line.Price*float64(line.Quantity))))

		if line.Quantity >= line.AvailableQuantity {
			row += " " + styles.WarningStyle.Render("(max)")
		}

		if i == m.cartCursor && m.pane == PaneCart {
			row = styles.SelectedItemStyle.Render(row)
		} else {
			row = styles.NormalItemStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if len(m.snapshot.Items) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.AccentStyle.Render(fmt.Sprintf("total: %.2f", m.snapshot.TotalPrice())))
		b.WriteString("\n")
	}

	border := styles.InactiveBorder
	if m.pane == PaneCart {
		border = styles.ActiveBorder
	}
	return border.Width(m.paneWidth()).Render(b.String())
}

func (m *Model) renderFooter() string {
	if !m.showHelp {
		return styles.DimStyle.Render("?: help  q: quit")
	}
	help := []string{
		"tab: switch pane",
		"enter: add",
		"+/-: quantity",
		"x: remove",
		"X: clear cart",
		"o: checkout",
		"/: filter",
		"L: language",
		"r: reload",
		"q: quit",
	}
	return styles.DimStyle.Render(strings.Join(help, "  "))
}

func (m *Model) paneWidth() int {
	w := m.width/2 - 2
	if w < 20 {
		w = 20
	}
	return w
}
