package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/reel/internal/catalog"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/resource"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// Lines used by the header, preview and footer around the list
const chromeHeight = 6

// View renders the UI
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var body string
	switch m.mode {
	case ViewHelp:
		body = m.renderHelp()
	case ViewDetails:
		body = m.renderDetails()
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.renderList(),
			m.renderPreview(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m Model) listHeight() int {
	return max(m.Height-chromeHeight, 1)
}

func (m Model) renderHeader() string {
	title := styles.AccentStyle.Bold(true).Render("reel") + " " +
		styles.SubtitleStyle.Render(m.mediaType.Label())

	var line string
	switch m.mode {
	case ViewSearch:
		line = styles.TitleStyle.Render(fmt.Sprintf("Search: %q", m.query))
	case ViewWishlist:
		line = styles.TitleStyle.Render(fmt.Sprintf("Wishlist (%d)", len(m.wishlist)))
	default:
		tabs := make([]string, 0, len(m.categories))
		for i, c := range m.categories {
			if i == m.catIdx {
				tabs = append(tabs, styles.ActiveTab.Render(c.Label()))
			} else {
				tabs = append(tabs, styles.InactiveTab.Render(c.Label()))
			}
		}
		line = lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	}

	if m.searching {
		line = m.searchInput.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, line)
}

func (m Model) renderList() string {
	height := m.listHeight()
	lines := make([]string, 0, height)

	if len(m.items) == 0 {
		msg := "Nothing here yet"
		switch {
		case m.loading:
			msg = styles.RenderSpinner(m.SpinnerFrame) + " Loading..."
		case m.mode == ViewWishlist:
			msg = "Wishlist is empty · press w on a title to add it"
		case m.mode == ViewSearch:
			msg = "No results"
		}
		lines = append(lines, styles.DimStyle.Render(msg))
	} else {
		start, end := visibleRange(m.cursor, len(m.items), height)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderRow(m.items[i], i == m.cursor))
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// visibleRange keeps the cursor centred while the list is scrolled
func visibleRange(cursor, total, height int) (start, end int) {
	if total <= height {
		return 0, total
	}
	start = cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

func (m Model) renderRow(item domain.Content, selected bool) string {
	mark := " "
	if m.wished[item.Key()] {
		mark = styles.WishlistChar
	}

	desc := item.GetDescription()
	if m.mode == ViewWishlist && desc == "" && item.VoteAverage > 0 {
		desc = fmt.Sprintf("★ %.1f", item.VoteAverage)
	}
	if m.mode == ViewWishlist {
		desc = strings.TrimSpace(item.MediaType.Label() + "  " + desc)
	}

	width := max(m.Width-len([]rune(desc))-6, 10)
	row := fmt.Sprintf(" %s %-*s %s", mark, width, truncate(item.Title, width), desc)

	if selected {
		return styles.SelectedRow.Render(row)
	}
	if mark != " " {
		return styles.NormalRow.Render(" ") + styles.WishlistMark + styles.NormalRow.Render(row[len(mark)+1:])
	}
	return styles.NormalRow.Render(row)
}

func (m Model) renderPreview() string {
	item, ok := m.selected()
	if !ok {
		return "\n"
	}

	meta := []string{}
	if names := catalog.GenreNames(m.genres[item.MediaType], item.GenreIDs); len(names) > 0 {
		meta = append(meta, strings.Join(names, ", "))
	}
	if item.VoteCount > 0 {
		meta = append(meta, fmt.Sprintf("%d votes", item.VoteCount))
	}

	overview := truncate(strings.ReplaceAll(item.Overview, "\n", " "), max(m.Width-2, 10))
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.SubtitleStyle.Render(strings.Join(meta, " · ")),
		styles.DimStyle.Render(overview),
	)
}

func (m Model) renderDetails() string {
	d := m.details
	if d == nil {
		return styles.DimStyle.Render("No details")
	}
	width := max(m.Width-4, 20)

	title := styles.TitleStyle.Render(d.Title)
	if year := d.Year(); year > 0 {
		title += styles.SubtitleStyle.Render(fmt.Sprintf(" (%d)", year))
	}
	if m.wished[d.Key()] {
		title += " " + styles.WishlistMark
	}

	lines := []string{title}
	if d.Tagline != "" {
		lines = append(lines, styles.AccentStyle.Italic(true).Render(d.Tagline))
	}
	lines = append(lines, "")

	var facts []string
	if len(d.Genres) > 0 {
		names := make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			names = append(names, g.Name)
		}
		facts = append(facts, strings.Join(names, ", "))
	}
	if rt := d.FormattedRuntime(); rt != "" {
		facts = append(facts, rt)
	}
	if d.VoteCount > 0 {
		facts = append(facts, fmt.Sprintf("★ %.1f (%d)", d.VoteAverage, d.VoteCount))
	}
	if d.Status != "" {
		facts = append(facts, d.Status)
	}
	if d.NumberOfSeasons > 0 {
		facts = append(facts, fmt.Sprintf("%d seasons · %d episodes", d.NumberOfSeasons, d.NumberOfEpisodes))
	}
	if len(facts) > 0 {
		lines = append(lines, styles.SubtitleStyle.Render(strings.Join(facts, " · ")), "")
	}

	if d.Overview != "" {
		lines = append(lines, lipgloss.NewStyle().Width(width).Foreground(styles.LightGray).Render(d.Overview), "")
	}
	if d.Homepage != "" {
		lines = append(lines, styles.DimStyle.Render(d.Homepage))
	}

	switch m.detailsStatus {
	case resource.StatusLoading:
		lines = append(lines, styles.RenderSpinner(m.SpinnerFrame)+styles.DimStyle.Render(" Fetching details..."))
	case resource.StatusError:
		if d.FetchedAt.IsZero() {
			lines = append(lines, styles.ErrorStyle.Render(errorText(m.detailsErr)))
		} else {
			lines = append(lines, styles.WarnStyle.Render(
				fmt.Sprintf("%s · cached %s", errorText(m.detailsErr), d.FetchedAt.Format("2006-01-02 15:04"))))
		}
	}

	box := styles.ActiveBorder.Width(width).Height(max(m.Height-3, 5)).Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	case m.loading:
		left = styles.RenderSpinner(m.SpinnerFrame) + styles.DimStyle.Render(" Loading")
	case m.offline:
		left = styles.WarnStyle.Render("Offline · cached")
	}

	if m.mode != ViewWishlist && m.mode != ViewDetails && m.mode != ViewHelp && len(m.items) > 0 {
		left += styles.DimStyle.Render(fmt.Sprintf("  %d/%d", m.cursor+1, len(m.items)))
	}

	hints := "/ search · t type · w wish · W wishlist · ? help · q quit"
	if m.mode == ViewDetails {
		hints = "w wish · esc back · q quit"
	}
	right := styles.DimStyle.Render(hints)

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHelp() string {
	bindings := []struct {
		keys, desc string
	}{
		{"j/k ↑/↓", "Move selection"},
		{"pgup/pgdn g/G", "Page up/down, top/bottom"},
		{"h/l tab", "Previous/next category"},
		{"t", "Switch movies/TV"},
		{"enter", "Open details"},
		{"esc", "Back"},
		{"/", "Search"},
		{"r", "Refresh from TMDB"},
		{"P", "Load previous page"},
		{"w", "Toggle wishlist"},
		{"W", "Show wishlist"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	lines := []string{styles.TitleStyle.Render("Keys"), ""}
	for _, b := range bindings {
		lines = append(lines, fmt.Sprintf("%s %s",
			styles.AccentStyle.Render(fmt.Sprintf("%-14s", b.keys)),
			styles.SubtitleStyle.Render(b.desc)))
	}
	return styles.InactiveBorder.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
