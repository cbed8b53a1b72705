// Package preview renders an interactive terminal treemap. One level of
// the value tree is shown at a time; branches can be zoomed into and out
// of with the keyboard.
package preview

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mosaiclabs/mosaic/pkg/tree"
)

// Block is one child of the focused node placed on the character grid.
type Block struct {
	Node   tree.Tree
	Label  string
	Share  float64
	X, Y   int
	Width  int
	Height int
}

// Model is the Bubble Tea model driving the preview.
type Model struct {
	root  *tree.Branch
	stack []*tree.Branch // zoom path, stack[0] == root
	sel   int
	keys  KeyMap

	blocks []Block
	width  int
	height int
}

// New creates a preview over the given tree. A bare leaf is shown as a
// single full-size block.
func New(t tree.Tree) Model {
	root, ok := t.(*tree.Branch)
	if !ok {
		root = tree.NewBranch(t)
	}
	return Model{
		root:  root,
		stack: []*tree.Branch{root},
		keys:  DefaultKeyMap(),
	}
}

// Run starts the interactive preview and blocks until the user quits.
func Run(t tree.Tree) error {
	p := tea.NewProgram(New(t), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			if m.sel > 0 {
				m.sel--
			}
		case key.Matches(msg, m.keys.Next):
			if m.sel < len(m.blocks)-1 {
				m.sel++
			}
		case key.Matches(msg, m.keys.Zoom):
			m.zoomIn()
		case key.Matches(msg, m.keys.Back):
			m.zoomOut()
		}
	}
	return m, nil
}

// focus returns the branch whose children are currently displayed.
func (m Model) focus() *tree.Branch {
	return m.stack[len(m.stack)-1]
}

func (m *Model) zoomIn() {
	if m.sel >= len(m.blocks) {
		return
	}
	b, ok := m.blocks[m.sel].Node.(*tree.Branch)
	if !ok || len(b.Children) == 0 || b.Total() == 0 {
		return
	}
	m.stack = append(m.stack, b)
	m.sel = 0
	m.layout()
}

func (m *Model) zoomOut() {
	if len(m.stack) <= 1 {
		return
	}
	m.stack = m.stack[:len(m.stack)-1]
	m.sel = 0
	m.layout()
}

// layout splits the content area among the focused node's children in
// sibling order, proportional to their reduced values. The split axis
// alternates with zoom depth, matching the SVG layout.
func (m *Model) layout() {
	m.blocks = nil

	contentW := m.width
	contentH := m.height - 2 // header and footer lines
	if contentW < 1 || contentH < 1 {
		return
	}

	focus := m.focus()
	total := focus.Total()
	if total == 0 {
		return
	}

	horizontal := (len(m.stack)-1)%2 == 0
	span := contentW
	if !horizontal {
		span = contentH
	}

	offset := 0
	cum := 0.0
	for _, child := range focus.Children {
		share := child.Total() / total
		cum += share
		end := int(math.Round(cum * float64(span)))
		size := end - offset

		block := Block{Node: child, Label: blockLabel(child), Share: share}
		if horizontal {
			block.X = offset
			block.Width = size
			block.Height = contentH
		} else {
			block.Y = offset
			block.Height = size
			block.Width = contentW
		}
		m.blocks = append(m.blocks, block)
		offset = end
	}

	if m.sel >= len(m.blocks) {
		m.sel = len(m.blocks) - 1
	}
}

func blockLabel(t tree.Tree) string {
	switch n := t.(type) {
	case *tree.Leaf:
		return n.Label
	case *tree.Branch:
		return fmt.Sprintf("%d items", len(n.Children))
	}
	return ""
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	blockBorder   = lipgloss.Color("#4B5563")
	blockText     = lipgloss.Color("#9CA3AF")
	selectedColor = lipgloss.Color("#7C3AED")
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width < 1 || m.height < 3 {
		return ""
	}
	if len(m.blocks) == 0 {
		return headerStyle.Render("nothing to show") + "\n"
	}

	rendered := make([]string, 0, len(m.blocks))
	for i, b := range m.blocks {
		if b.Width < 1 || b.Height < 1 {
			continue
		}
		rendered = append(rendered, m.renderBlock(b, i == m.sel))
	}

	horizontal := (len(m.stack)-1)%2 == 0
	var body string
	if horizontal {
		body = lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, rendered...)
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(m.breadcrumb()))
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(footerStyle.Render(m.helpLine()))
	return sb.String()
}

func (m Model) renderBlock(b Block, selected bool) string {
	innerW := b.Width - 2
	innerH := b.Height - 2
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	text := b.Label
	if innerH > 1 {
		text += "\n" + formatWeight(b.Node.Total())
	}

	border := blockBorder
	fg := blockText
	if selected {
		border = selectedColor
		fg = lipgloss.Color("#FFFFFF")
	}

	style := lipgloss.NewStyle().
		Width(innerW).
		Height(innerH).
		MaxWidth(b.Width).
		MaxHeight(b.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(fg)
	if selected {
		style = style.Bold(true)
	}
	return style.Render(text)
}

func (m Model) breadcrumb() string {
	parts := make([]string, 0, len(m.stack))
	for i, b := range m.stack {
		if i == 0 {
			parts = append(parts, "root")
			continue
		}
		parts = append(parts, fmt.Sprintf("%d items", len(b.Children)))
	}
	return strings.Join(parts, " / ") + "  (" + formatWeight(m.focus().Total()) + ")"
}

func (m Model) helpLine() string {
	parts := make([]string, 0, 5)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ·  ")
}
