package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"registro/ctxlog"
	"registro/registration"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Fill and submit the registration form in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

// inputForm adapts the text inputs to registration.Form. Reset writes
// through to the backing array shared with the model.
type inputForm struct {
	names  []string
	inputs []textinput.Model
}

func (f inputForm) Fields() []registration.Field {
	fields := make([]registration.Field, 0, len(f.inputs))
	for i, in := range f.inputs {
		fields = append(fields, registration.Field{Name: f.names[i], Value: in.Value()})
	}
	return fields
}

func (f inputForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
}

// submission is the Form handed to the Submitter for one enter press. It
// holds the fields as they were at submit time and records a reset
// request, which Update applies to the inputs on the event loop.
type submission struct {
	fields []registration.Field
	reset  bool
}

func (s *submission) Fields() []registration.Field { return s.fields }
func (s *submission) Reset()                       { s.reset = true }

type formModel struct {
	ctx      context.Context
	sender   registration.Sender
	endpoint string
	form     inputForm
	focused  int
	status   *registration.StatusLine
	inFlight int
	err      error
	quitting bool
}

type submittedMsg struct {
	outcome *registration.Outcome
	reset   bool
}
type submitErrMsg struct{ err error }

func newFormModel(ctx context.Context, sender registration.Sender, endpoint string, fields []string) formModel {
	inputs := make([]textinput.Model, len(fields))
	for i, name := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = name
		ti.CharLimit = 256
		ti.Width = 40
		if name == "password" {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	m := formModel{
		ctx:      ctx,
		sender:   sender,
		endpoint: endpoint,
		form:     inputForm{names: fields, inputs: inputs},
		status:   registration.NewStatusLine(nil),
	}
	if len(inputs) > 0 {
		m.form.inputs[0].Focus()
	}
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "tab", "down":
			return m, m.focus(m.focused + 1)

		case "shift+tab", "up":
			return m, m.focus(m.focused - 1)

		case "enter":
			// No in-flight guard: each enter is an independent submission.
			m.inFlight++
			return m, m.submit()
		}

	case submittedMsg:
		m.inFlight--
		m.err = nil
		if msg.reset {
			m.form.Reset()
		}
		return m, nil

	case submitErrMsg:
		m.inFlight--
		m.err = msg.err
		return m, nil
	}

	if len(m.form.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.form.inputs[m.focused], cmd = m.form.inputs[m.focused].Update(msg)
	return m, cmd
}

// focus moves focus to index i, wrapping around.
func (m *formModel) focus(i int) tea.Cmd {
	n := len(m.form.inputs)
	if n == 0 {
		return nil
	}
	i = (i + n) % n
	m.form.inputs[m.focused].Blur()
	m.focused = i
	return m.form.inputs[i].Focus()
}

// submit snapshots the form now and starts the request. The status line
// is written by whichever submission resolves last; the returned command
// reports completion back to Update.
func (m formModel) submit() tea.Cmd {
	sub := &submission{fields: m.form.Fields()}
	done := registration.NewSubmitter(m.sender, sub, m.status).SubmitAsync(m.ctx)
	return func() tea.Msg {
		res := <-done
		if res.Err != nil {
			return submitErrMsg{res.Err}
		}
		return submittedMsg{outcome: res.Outcome, reset: sub.reset}
	}
}

func (m formModel) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF00")).
		Padding(1, 0)

	labelStyle := lipgloss.NewStyle().
		Width(12).
		Foreground(lipgloss.Color("#FFFF00"))

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Padding(1, 0)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#00FF00")).
		Padding(1, 2)

	var rows []string
	for i, in := range m.form.inputs {
		marker := "  "
		if i == m.focused {
			marker = "> "
		}
		rows = append(rows, marker+labelStyle.Render(m.form.names[i])+in.View())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("📝 Registro de cliente"))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	if m.inFlight > 0 {
		fmt.Fprintf(&b, "Enviando a %s... (%d)\n", m.endpoint, m.inFlight)
	}
	if status, ok := m.status.Current(); ok {
		statusStyle := lipgloss.NewStyle().Bold(true).Foreground(registration.TerminalColor(status.Color))
		b.WriteString(statusStyle.Render(status.Text))
		b.WriteString("\n")
	}
	if m.err != nil {
		fmt.Fprintf(&b, "Error: %v\n", m.err)
	}

	controls := `Controls:
  TAB/↓     - Next field
  S-TAB/↑   - Previous field
  ENTER     - Submit
  ESC       - Quit`
	b.WriteString(helpStyle.Render(controls))

	return b.String()
}

func runInteractive(ctx context.Context) error {
	var logW io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "registro")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logW = f
	}
	logger, err := ctxlog.New(cfg.LogLevel(), cfg.LogFormat, logW)
	if err != nil {
		return err
	}
	ctx = ctxlog.WithLogger(ctx, logger)

	client := registration.NewClient(cfg.Endpoint)
	model := newFormModel(ctx, client, client.Endpoint(), cfg.Fields)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
