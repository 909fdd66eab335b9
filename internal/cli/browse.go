package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardspace/pkg/engine"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/render/hierarchy"
)

var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	detailBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	crumbStyle    = lipgloss.NewStyle().Foreground(colorGray)
	missingMarker = lipgloss.NewStyle().Foreground(colorRed).Render("?")
)

func (c *CLI) browseCommand() *cobra.Command {
	var focus string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Navigate the card tree in the terminal",
		Long: `Browse lists the top-level cards. Enter drills into a card with children,
backspace goes back, m cycles the colour mode and q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if focus != "" {
				if err := errors.ValidateEntityID(focus); err != nil {
					return err
				}
			}
			ws, err := c.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			m := NewBrowseModel(ws.store)
			if focus != "" {
				m = m.Drill(focus)
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "start inside this entity")
	_ = cmd.RegisterFlagCompletionFunc("focus", c.completeEntityIDs)
	return cmd
}

// =============================================================================
// BrowseModel - card tree navigator
// =============================================================================

// level is one step of the navigation path.
type level struct {
	parent string // empty for the roots
	ids    []string
	cursor int
	offset int
}

// BrowseModel is the bubbletea model for walking the card tree.
type BrowseModel struct {
	store  *entity.Store
	path   []level
	mode   entity.Mode
	Height int
}

// NewBrowseModel starts at the entities that are nobody's child.
func NewBrowseModel(store *entity.Store) BrowseModel {
	return BrowseModel{
		store:  store,
		path:   []level{{ids: hierarchy.Roots(store)}},
		mode:   entity.ModeTheme,
		Height: 15,
	}
}

func (m BrowseModel) current() *level { return &m.path[len(m.path)-1] }

// Selected returns the id under the cursor, or "" for an empty level.
func (m BrowseModel) Selected() string {
	l := m.current()
	if len(l.ids) == 0 {
		return ""
	}
	return l.ids[l.cursor]
}

// Breadcrumb returns the drilled ids from the root.
func (m BrowseModel) Breadcrumb() []string {
	var out []string
	for _, l := range m.path[1:] {
		out = append(out, l.parent)
	}
	return out
}

// Drill enters id if it has children. The path slice is copied so earlier
// model values stay valid.
func (m BrowseModel) Drill(id string) BrowseModel {
	ids, ok := m.store.Children(id)
	if !ok || len(ids) == 0 {
		return m
	}
	m.path = append(append([]level(nil), m.path...), level{parent: id, ids: ids})
	return m
}

// Back leaves the current level; the roots are never left.
func (m BrowseModel) Back() BrowseModel {
	if len(m.path) > 1 {
		m.path = m.path[:len(m.path)-1 : len(m.path)-1]
	}
	return m
}

func (m BrowseModel) move(delta int) BrowseModel {
	m.path = append([]level(nil), m.path...)
	l := m.current()
	n := len(l.ids)
	if n == 0 {
		return m
	}
	l.cursor = max(0, min(n-1, l.cursor+delta))
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+m.Height {
		l.offset = l.cursor - m.Height + 1
	}
	return m
}

// nextMode cycles through the top-level colour slots.
func (m BrowseModel) nextMode() BrowseModel {
	modes := entity.TopLevelModes
	for i, md := range modes {
		if md == m.mode {
			m.mode = modes[(i+1)%len(modes)]
			return m
		}
	}
	m.mode = modes[0]
	return m
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			return m.move(-1), nil
		case "down", "j":
			return m.move(1), nil
		case "enter", "right", "l":
			return m.Drill(m.Selected()), nil
		case "backspace", "left", "h":
			return m.Back(), nil
		case "m":
			return m.nextMode(), nil
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-8)
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Cards"))
	if crumbs := m.Breadcrumb(); len(crumbs) > 0 {
		b.WriteString(" " + crumbStyle.Render(strings.Join(crumbs, " › ")))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ navigate  ⏎ drill  ⌫ back  m mode (%s)  q quit", m.mode)))
	b.WriteString("\n\n")

	list := m.listView()
	if sel, ok := m.store.Get(m.Selected()); ok {
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detailBox.Render(m.detailView(sel)))
	}
	b.WriteString(list)
	b.WriteString("\n\n")

	l := m.current()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(l.cursor+1, len(l.ids)), len(l.ids))))
	return b.String()
}

func (m BrowseModel) listView() string {
	l := m.current()
	end := min(l.offset+m.Height, len(l.ids))

	var rows [][]string
	for i := l.offset; i < end; i++ {
		id := l.ids[i]
		cursor := "  "
		if i == l.cursor {
			cursor = "▸ "
		}
		e, ok := m.store.Get(id)
		if !ok {
			rows = append(rows, []string{cursor, missingMarker, id, ""})
			continue
		}
		kids := ""
		if n := len(e.ChildIDs()); n > 0 {
			kids = fmt.Sprintf("%d ›", n)
		}
		rows = append(rows, []string{cursor, swatch(e.Color.Get(m.mode)), e.Title, kids})
	}

	return renderTable([]string{"", "", "Title", ""}, rows, func(row, col int) lipgloss.Style {
		base := lipgloss.NewStyle().Padding(0, 1)
		if l.offset+row == l.cursor {
			return base.Foreground(colorGreen).Bold(true)
		}
		if col == 3 {
			return base.Foreground(colorDim)
		}
		return base
	})
}

func (m BrowseModel) detailView(e *entity.Entity) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(e.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · %s", e.ID, e.Kind)))
	b.WriteString("\n")
	for _, line := range detailLines(engine.DetailText(e)) {
		b.WriteString("\n" + line)
	}
	for _, u := range engine.DetailLinks(e) {
		if u != "" {
			b.WriteString("\n" + StyleLink.Render(u))
		}
	}
	return b.String()
}
