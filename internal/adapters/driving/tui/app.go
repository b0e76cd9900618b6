package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// chromeHeight is the rows used by the title, input and status bar.
const chromeHeight = 6

type entryKind int

const (
	entryNotice entryKind = iota
	entryQuestion
	entryAnswer
	entryRisk
	entryError
)

type entry struct {
	kind entryKind
	text string
}

// App is the chat model for one document following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	source string
	token  string

	styles   *styles.Styles
	keymap   *keymap.KeyMap
	input    *input.QuestionInput
	status   *status.Bar
	viewport viewport.Model

	transcript []entry
	busy       bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat over the document at source.
func NewApp(ports *Ports, source string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrMissingSource
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		source:   source,
		styles:   s,
		keymap:   km,
		input:    input.NewQuestionInput(s),
		status:   status.NewBar(s, km),
		viewport: viewport.New(80, 20),
		busy:     true,
	}, nil
}

// WithContext sets the context passed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model. It starts the document upload.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("docqa - "+a.source),
		a.loadDocument(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.SetWidth(msg.Width)
		a.status.SetWidth(msg.Width)
		a.viewport.Width = msg.Width
		a.viewport.Height = max(msg.Height-chromeHeight, 3)
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.DocumentLoaded:
		a.busy = false
		if msg.Err != nil {
			a.fail(fmt.Errorf("loading %s: %w", a.source, msg.Err))
			return a, nil
		}
		a.token = msg.Token
		a.status.SetState(status.StateReady)
		a.status.SetDocument(msg.Source)
		a.push(entryNotice, fmt.Sprintf("Loaded %s. Ask a question below.", msg.Source))
		return a, nil

	case messages.AnswerReceived:
		a.busy = false
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.status.SetState(status.StateReady)
		a.push(entryAnswer, msg.Answer)
		return a, nil

	case messages.SummaryReceived:
		a.busy = false
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.status.SetState(status.StateReady)
		a.push(entryAnswer, msg.Summary)
		return a, nil

	case messages.RisksReceived:
		a.busy = false
		if msg.Err != nil {
			a.fail(msg.Err)
			return a, nil
		}
		a.status.SetState(status.StateReady)
		a.pushFindings(msg.Findings)
		return a, nil
	}

	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(k, a.keymap.Send):
		return a, a.submit()
	case keymap.Matches(k, a.keymap.Summarize):
		return a, a.summarize()
	case keymap.Matches(k, a.keymap.Risks):
		return a, a.scanRisks()
	case keymap.Matches(k, a.keymap.ScrollUp), keymap.Matches(k, a.keymap.ScrollDown):
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("docqa"))
	b.WriteString(a.styles.Muted.Render("  " + a.source))
	b.WriteString("\n\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(a.status.View())
	return b.String()
}

// canStart reports whether a new request may be sent.
func (a *App) canStart() bool {
	return !a.busy && a.token != ""
}

func (a *App) submit() tea.Cmd {
	question := strings.TrimSpace(a.input.Value())
	if question == "" || !a.canStart() {
		return nil
	}
	a.input.Reset()
	a.begin(entryQuestion, question)

	ctx, qa, token := a.ctx, a.ports.QA, a.token
	return func() tea.Msg {
		answers, err := qa.AskSession(ctx, token, []string{question})
		answer := domain.NoInformationAnswer
		if len(answers) > 0 {
			answer = answers[0]
		}
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (a *App) summarize() tea.Cmd {
	if !a.canStart() {
		return nil
	}
	if a.ports.Analysis == nil {
		a.push(entryError, ErrAnalysisUnavailable.Error())
		return nil
	}
	a.begin(entryNotice, "Summarising the document...")

	ctx, analysis, token := a.ctx, a.ports.Analysis, a.token
	return func() tea.Msg {
		summary, err := analysis.Summarize(ctx, token)
		return messages.SummaryReceived{Summary: summary, Err: err}
	}
}

func (a *App) scanRisks() tea.Cmd {
	if !a.canStart() {
		return nil
	}
	if a.ports.Analysis == nil {
		a.push(entryError, ErrAnalysisUnavailable.Error())
		return nil
	}
	a.begin(entryNotice, "Scanning for risky clauses...")

	ctx, analysis, token := a.ctx, a.ports.Analysis, a.token
	return func() tea.Msg {
		findings, err := analysis.ScanRisks(ctx, token)
		return messages.RisksReceived{Findings: findings, Err: err}
	}
}

func (a *App) loadDocument() tea.Cmd {
	ctx, qa, source := a.ctx, a.ports.QA, a.source
	return func() tea.Msg {
		token, err := qa.Upload(ctx, "", domain.Upload{URL: source})
		return messages.DocumentLoaded{Token: token, Source: source, Err: err}
	}
}

func (a *App) begin(kind entryKind, text string) {
	a.busy = true
	a.status.SetState(status.StateThinking)
	a.push(kind, text)
}

func (a *App) fail(err error) {
	a.status.SetState(status.StateError)
	a.status.SetMessage(err.Error())
	a.push(entryError, err.Error())
}

func (a *App) pushFindings(findings []domain.RiskFinding) {
	if len(findings) == 0 {
		a.push(entryNotice, "No risky clauses found.")
		return
	}
	for _, f := range findings {
		a.push(entryRisk, fmt.Sprintf("[%s] %q\n%s", f.Category, f.Quote, f.Explanation))
	}
}

func (a *App) push(kind entryKind, text string) {
	a.transcript = append(a.transcript, entry{kind: kind, text: text})
	a.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (a *App) refresh() {
	width := max(a.viewport.Width-2, 20)

	blocks := make([]string, 0, len(a.transcript))
	for _, e := range a.transcript {
		switch e.kind {
		case entryQuestion:
			blocks = append(blocks, a.styles.Question.Width(width).Render("> "+e.text))
		case entryAnswer:
			blocks = append(blocks, a.styles.Answer.Width(width).Render(e.text))
		case entryRisk:
			blocks = append(blocks, a.styles.Warning.Width(width).Render(e.text))
		case entryError:
			blocks = append(blocks, a.styles.Error.Width(width).Render(e.text))
		default:
			blocks = append(blocks, a.styles.Muted.Width(width).Render(e.text))
		}
	}

	a.viewport.SetContent(strings.Join(blocks, "\n\n"))
	a.viewport.GotoBottom()
}
