// Package tui is the interactive dashboard over the rule store: site rules,
// file categories, and the recent-download activity log.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"sortdl/internal/config"
	"sortdl/internal/rules"
	"sortdl/internal/state"
)

type tab int

const (
	tabRules tab = iota
	tabCategories
	tabActivity
)

var tabNames = []string{"Rules", "Categories", "Activity"}

type ruleRow struct {
	Website   string
	Extension string
	Folder    string
}

type model struct {
	cfg   *config.Config
	db    *state.DB
	theme Theme

	tab      tab
	cursor   int
	search   textinput.Model
	filter   bool
	width    int
	height   int
	err      error
	settings state.Settings

	ruleRows []ruleRow
	cats     []rules.Category
	activity []state.Activity
}

func New(cfg *config.Config, db *state.DB) tea.Model {
	ti := textinput.New()
	ti.Placeholder = "filter rules"
	ti.CharLimit = 64
	m := &model{
		cfg:    cfg,
		db:     db,
		theme:  themeByName(cfg.UI.Theme),
		search: ti,
	}
	m.reload()
	return m
}

func (m *model) reload() {
	snap, err := m.db.LoadSnapshot()
	if err != nil {
		m.err = err
		return
	}
	m.ruleRows = flattenRules(snap.Sites)
	m.cats = snap.Categories
	m.settings, err = m.db.LoadSettings()
	if err != nil {
		m.err = err
		return
	}
	m.activity, err = m.db.ListActivity(m.cfg.Engine.ActivityLimit)
	if err != nil {
		m.err = err
	}
}

func flattenRules(sites rules.SiteRules) []ruleRow {
	var rows []ruleRow
	for site, exts := range sites {
		for ext, folder := range exts {
			rows = append(rows, ruleRow{Website: site, Extension: ext, Folder: folder})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Website != rows[j].Website {
			return rows[i].Website < rows[j].Website
		}
		return rows[i].Extension < rows[j].Extension
	})
	return rows
}

// filterRows keeps rows fuzzy-matching the query against "site ext folder".
func filterRows(rows []ruleRow, query string) []ruleRow {
	q := strings.TrimSpace(query)
	if q == "" {
		return rows
	}
	var out []ruleRow
	for _, r := range rows {
		hay := r.Website + " " + r.Extension + " " + r.Folder
		if fuzzy.MatchFold(q, hay) {
			out = append(out, r)
		}
	}
	return out
}

func (m *model) visibleRules() []ruleRow {
	return filterRows(m.ruleRows, m.search.Value())
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.filter {
			switch msg.String() {
			case "enter", "esc":
				m.filter = false
				m.search.Blur()
				m.cursor = 0
				return m, nil
			default:
				var cmd tea.Cmd
				m.search, cmd = m.search.Update(msg)
				m.cursor = 0
				return m, cmd
			}
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "right":
			m.tab = (m.tab + 1) % tab(len(tabNames))
			m.cursor = 0
		case "shift+tab", "left":
			m.tab = (m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames))
			m.cursor = 0
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.rowCount()-1 {
				m.cursor++
			}
		case "/":
			if m.tab == tabRules {
				m.filter = true
				m.search.Focus()
			}
		case "d":
			if m.tab == tabRules {
				m.deleteSelected()
			}
		case "e":
			m.settings.ExtensionEnabled = !m.settings.ExtensionEnabled
			m.err = m.db.SaveSettings(m.settings)
		case "l":
			m.settings.LearningEnabled = !m.settings.LearningEnabled
			m.err = m.db.SaveSettings(m.settings)
		case "r":
			m.reload()
		}
	}
	return m, nil
}

func (m *model) rowCount() int {
	switch m.tab {
	case tabRules:
		return len(m.visibleRules())
	case tabCategories:
		return len(m.cats)
	default:
		return len(m.activity)
	}
}

func (m *model) deleteSelected() {
	rows := m.visibleRules()
	if m.cursor >= len(rows) {
		return
	}
	row := rows[m.cursor]
	m.err = m.db.MutateSiteRules(func(r rules.SiteRules) {
		r.Remove(row.Website, row.Extension)
	})
	m.reload()
	if m.cursor >= m.rowCount() && m.cursor > 0 {
		m.cursor--
	}
}

func (m *model) View() string {
	var b strings.Builder

	var tabs []string
	for i, name := range tabNames {
		if tab(i) == m.tab {
			tabs = append(tabs, m.theme.tabActive.Render(name))
		} else {
			tabs = append(tabs, m.theme.tabInactive.Render(name))
		}
	}
	b.WriteString(m.theme.title.Render("sortdl"))
	b.WriteString("  ")
	b.WriteString(strings.Join(tabs, " | "))
	b.WriteString("  ")
	b.WriteString(m.renderFlags())
	b.WriteString("\n\n")

	switch m.tab {
	case tabRules:
		b.WriteString(m.renderRules())
	case tabCategories:
		b.WriteString(m.renderCategories())
	default:
		b.WriteString(m.renderActivity())
	}

	if m.err != nil {
		b.WriteString("\n" + m.theme.bad.Render("error: "+m.err.Error()))
	}
	b.WriteString("\n" + m.theme.footer.Render(m.footerHelp()))
	return b.String()
}

func (m *model) renderFlags() string {
	onOff := func(v bool) string {
		if v {
			return m.theme.ok.Render("on")
		}
		return m.theme.bad.Render("off")
	}
	return fmt.Sprintf("engine:%s learning:%s", onOff(m.settings.ExtensionEnabled), onOff(m.settings.LearningEnabled))
}

func (m *model) footerHelp() string {
	switch m.tab {
	case tabRules:
		return "↑/↓ move · / filter · d delete · e engine · l learning · tab switch · q quit"
	default:
		return "↑/↓ move · e engine · l learning · r refresh · tab switch · q quit"
	}
}

func (m *model) renderRules() string {
	var b strings.Builder
	if m.filter || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	rows := m.visibleRules()
	if len(rows) == 0 {
		b.WriteString(m.theme.label.Render("no rules"))
		return b.String()
	}
	b.WriteString(m.theme.head.Render(fmt.Sprintf("%-28s %-8s %s", "WEBSITE", "EXT", "FOLDER")))
	b.WriteString("\n")
	for i, r := range rows {
		line := fmt.Sprintf("%-28s %-8s %s", r.Website, "."+r.Extension, r.Folder)
		if i == m.cursor {
			line = m.theme.rowSelected.Render("> " + line)
		} else {
			line = m.theme.row.Render("  " + line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *model) renderCategories() string {
	var b strings.Builder
	if len(m.cats) == 0 {
		return m.theme.label.Render("no categories")
	}
	b.WriteString(m.theme.head.Render(fmt.Sprintf("%-12s %s", "CATEGORY", "EXTENSIONS")))
	b.WriteString("\n")
	for i, c := range m.cats {
		line := fmt.Sprintf("%-12s %s", c.Name, strings.Join(c.Extensions, ", "))
		if i == m.cursor {
			line = m.theme.rowSelected.Render("> " + line)
		} else {
			line = m.theme.row.Render("  " + line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *model) renderActivity() string {
	var b strings.Builder
	if len(m.activity) == 0 {
		return m.theme.label.Render("no downloads yet")
	}
	b.WriteString(m.theme.head.Render(fmt.Sprintf("%-26s %-18s %-12s %-9s %s", "FILE", "WEBSITE", "FOLDER", "SIZE", "WHEN")))
	b.WriteString("\n")
	for i, a := range m.activity {
		when := humanize.Time(time.Unix(a.CompletedAt, 0))
		size := humanize.Bytes(uint64(a.Size))
		folder := a.Folder
		if folder == "" {
			folder = "-"
		}
		line := fmt.Sprintf("%-26s %-18s %-12s %-9s %s", clip(a.Filename, 26), clip(a.Website, 18), clip(folder, 12), size, when)
		if i == m.cursor {
			line = m.theme.rowSelected.Render("> " + line)
		} else {
			line = m.theme.row.Render("  " + line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
