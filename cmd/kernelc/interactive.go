package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/kernelc"
	"github.com/wippyai/kernelc/shader"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// inspectItem is one selectable entry of the inspector list.
type inspectItem struct {
	module string
	kind   string
	name   string
	body   string
	failed bool
}

type modelState int

const (
	stateList modelState = iota
	stateFilter
	stateDetail
)

type inspectModel struct {
	items    []inspectItem
	visible  []int
	filter   textinput.Model
	detail   viewport.Model
	selected int
	width    int
	height   int
	state    modelState
}

func newInspectModel(sources []kernelc.Source, outcomes []kernelc.Outcome) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "filter by name or kind"
	ti.Prompt = "/ "
	ti.Width = 40

	m := &inspectModel{
		items:  inspectItems(sources, outcomes),
		filter: ti,
		detail: viewport.New(80, 20),
		width:  80,
		height: 24,
	}
	m.applyFilter()
	return m
}

func inspectItems(sources []kernelc.Source, outcomes []kernelc.Outcome) []inspectItem {
	var items []inspectItem
	for i, o := range outcomes {
		if o.Err != nil {
			items = append(items, inspectItem{
				module: o.Name,
				kind:   "error",
				name:   o.Name,
				body:   formatError(sources[i], o.Err, false),
				failed: true,
			})
			continue
		}
		items = append(items, resultItems(o.Result)...)
	}
	return items
}

func resultItems(res *kernelc.Result) []inspectItem {
	d := res.Descriptor
	mod := d.Name
	var items []inspectItem
	add := func(kind, name, body string) {
		items = append(items, inspectItem{module: mod, kind: kind, name: name, body: body})
	}
	pair := func(c shader.Component) string {
		if c.Source == "" {
			return c.Target
		}
		return sourceStyle.Render(c.Source) + "\n\n" + c.Target
	}

	add("shader", mod+".wgsl", res.WGSL)

	var bindings strings.Builder
	for _, b := range res.Library.Bindings {
		fmt.Fprintf(&bindings, "%-8s %s\n", b.Kind, b.String())
	}
	add("bindings", fmt.Sprintf("%d slots", len(res.Library.Bindings)), bindings.String())

	for _, c := range d.StaticConsts {
		add(shader.DeclStaticConst.String(), firstLine(c.Target), pair(c))
	}
	for _, c := range d.HelperTypes {
		add(shader.DeclHelperType.String(), firstLine(c.Target), pair(c))
	}
	for _, u := range d.Uniforms {
		add(shader.DeclUniform.String(), u.Type.Name, pair(u.Code))
	}
	for _, in := range d.InputArrays {
		add(shader.DeclInputArray.String(), in.ItemType.Name, pair(in.Item)+"\n\n"+in.Array.Target)
	}
	for _, o := range d.OutputArrays {
		body := pair(o.Item) + "\n\n" + o.Array.Target
		if o.HasCounter() {
			body += "\n\ncounter: " + o.CounterName
		}
		add(shader.DeclOutputArray.String(), o.ItemType.Name, body)
	}
	for _, c := range d.HelperFunctions {
		add(shader.DeclHelperFunction.String(), firstLine(c.Target), pair(c))
	}
	if d.Entry != nil {
		add(shader.DeclEntry.String(), "main", pair(*d.Entry))
	}

	for _, t := range res.Host.Types {
		add("layout", t.Name, layoutText(t))
	}
	add("go", mod+"_gen.go", string(res.GoSource))
	return items
}

func layoutText(t shader.HostType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: size %d, align %d\n\n", t.Kind, t.Name, t.Size, t.Align)
	for _, f := range t.Fields {
		fmt.Fprintf(&b, "  %4d  %-12s %-16s %s\n", f.Offset, f.Name, f.WGSLType, f.GoType)
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "{")
}

func (m *inspectModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, it := range m.items {
		if q == "" || strings.Contains(strings.ToLower(it.name), q) || strings.Contains(it.kind, q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-4, 1)

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateList
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateList {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			if m.state == stateList && len(m.visible) > 0 {
				m.detail.SetContent(m.items[m.visible[m.selected]].body)
				m.detail.GotoTop()
				m.state = stateDetail
				return m, nil
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
				return m, nil
			}
		}
	}

	if m.state == stateDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("kernelc inspector"))
	b.WriteString("\n\n")

	switch m.state {
	case stateList, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		for row, idx := range m.visible {
			line := m.formatItem(m.items[idx])
			if row == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("  no match"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • / filter • q quit"))

	case stateDetail:
		it := m.items[m.visible[m.selected]]
		b.WriteString(kindStyle.Render(it.kind) + " " + nameStyle.Render(it.name) + "\n")
		b.WriteString(m.detail.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func (m *inspectModel) formatItem(it inspectItem) string {
	kind := kindStyle.Render(fmt.Sprintf("%-15s", it.kind))
	if it.failed {
		return kind + " " + errorStyle.Render(it.name)
	}
	return kind + " " + it.module + "." + nameStyle.Render(it.name)
}

func runInteractive(sources []kernelc.Source, outcomes []kernelc.Outcome) error {
	p := tea.NewProgram(newInspectModel(sources, outcomes), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
