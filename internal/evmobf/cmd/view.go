package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"evmobf/internal/analysis"
	"evmobf/internal/bytecode"
	"evmobf/internal/config"
	"evmobf/internal/evmobf/styles"
	"evmobf/internal/obfuscation"
	"evmobf/internal/opcodes"
)

type viewMode int

const (
	viewReport viewMode = iota
	viewSites
	viewOutput
)

type siteItem struct {
	n    int
	site analysis.JumpSite
}

func (i siteItem) Title() string {
	return fmt.Sprintf("%3d  %06x  %v 0x%s", i.n, i.site.Offset, i.site.Op, i.site.ValueHex)
}

func (i siteItem) FilterValue() string { return i.site.ValueHex }

type siteDelegate struct{}

func (d siteDelegate) Height() int                               { return 1 }
func (d siteDelegate) Spacing() int                              { return 0 }
func (d siteDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d siteDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(siteItem)
	if !ok {
		return
	}
	indicator := " "
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}
	fmt.Fprintf(w, " %s  %s", indicator, style.Render(i.Title()))
}

type obfuscatedMsg struct {
	res *obfuscation.Result
	err error
}

func obfuscateCmd(code *bytecode.Code, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		opts, err := cfg.Options()
		if err != nil {
			return obfuscatedMsg{err: err}
		}
		res, err := obfuscation.New(opts).ObfuscateCode(code)
		return obfuscatedMsg{res: res, err: err}
	}
}

type model struct {
	code   *bytecode.Code
	cfg    config.Config
	report *Report

	viewport viewport.Model
	sites    list.Model
	output   viewport.Model
	spinner  spinner.Model

	mode    viewMode
	running bool
	result  *obfuscation.Result
	err     error
	width   int
	height  int
}

// NewModel builds the interactive viewer for one bytecode.
func NewModel(code *bytecode.Code, report *Report, cfg config.Config) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	out := viewport.New()
	out.SetWidth(80)
	out.SetHeight(24)

	items := make([]list.Item, len(report.Sites))
	for i, s := range report.Sites {
		items[i] = siteItem{n: i + 1, site: s}
	}
	sites := list.New(items, siteDelegate{}, 80, 24)
	sites.SetShowStatusBar(false)
	sites.Title = "Jump sites"
	sites.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	m := model{
		code:     code,
		cfg:      cfg,
		report:   report,
		viewport: vp,
		sites:    sites,
		output:   out,
		spinner:  s,
		width:    80,
		height:   24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case obfuscatedMsg:
		m.running = false
		m.result, m.err = msg.res, msg.err
		m.mode = viewOutput
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.running {
			m.updateContent()
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(msg.Height - 2)
		m.sites.SetWidth(msg.Width)
		m.sites.SetHeight(msg.Height - 2)
		m.output.SetWidth(msg.Width)
		m.output.SetHeight(msg.Height - 2)
		m.updateContent()

	case tea.KeyMsg:
		if m.mode == viewSites && m.sites.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.mode = viewReport
			return m, nil
		case "s":
			m.mode = viewSites
			return m, nil
		case "tab":
			m.mode = (m.mode + 1) % 3
			return m, nil
		case "o":
			if m.running {
				return m, nil
			}
			m.running = true
			m.updateContent()
			return m, tea.Batch(obfuscateCmd(m.code, m.cfg), m.spinner.Tick)
		}
	}

	switch m.mode {
	case viewSites:
		m.sites, cmd = m.sites.Update(msg)
	case viewOutput:
		m.output, cmd = m.output.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewSites:
		content = m.sites.View()
	case viewOutput:
		content = m.output.View()
	default:
		content = m.viewport.View()
	}
	menu := " R: report • S: sites • O: obfuscate • Tab: cycle • Q: quit "
	return content + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(menu)
}

func (m *model) updateContent() {
	width := m.width
	if width == 0 {
		width = 80
	}
	md := m.report.Markdown()
	if m.running {
		md += fmt.Sprintf("\n\n%s Obfuscating...", m.spinner.View())
	}
	m.viewport.SetContent(strings.TrimSuffix(styles.Render(md, width-2), "\n"))

	switch {
	case m.err != nil:
		m.output.SetContent("error: " + m.err.Error())
	case m.result != nil:
		summary := fmt.Sprintf("%d of %d sites, %d -> %d bytes\n\n",
			len(m.result.Sites), m.result.Found, m.result.InputLen, m.result.Code.ByteLen())
		m.output.SetContent(summary + wrap(formatCode(m.result, m.cfg.Prefix), width-2))
	default:
		m.output.SetContent("Press O to obfuscate.")
	}
}

// wrap breaks s into lines of at most width characters.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteByte('\n')
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

var viewCmd = &cobra.Command{
	Use:   "view [bytecode|file|-]",
	Short: "Explore a bytecode interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg.Debug)

		input, err := readInput(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		code, err := bytecode.Parse(input)
		if err != nil {
			return err
		}
		report, err := BuildReport(code, opcodes.Default(), cfg.DetachMetadata)
		if err != nil {
			return err
		}

		program := tea.NewProgram(
			NewModel(code, report, cfg),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
