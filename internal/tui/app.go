package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipglossv2 "charm.land/lipgloss/v2"
	"github.com/aymanbagabas/go-udiff"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/syntax-syndicate/chatshell/internal/completion"
	"github.com/syntax-syndicate/chatshell/internal/config"
	"github.com/syntax-syndicate/chatshell/internal/logger"
	"github.com/syntax-syndicate/chatshell/internal/schema"
	"github.com/syntax-syndicate/chatshell/internal/transcript"
	"github.com/syntax-syndicate/chatshell/internal/workspace"
)

// Messages produced by async store operations.
type (
	stateLoadedMsg struct{ state *transcript.State }
	messageAddedMsg struct{ message *transcript.Message }
	formSavedMsg   struct{ record *transcript.FormRecord }
	errMsg         struct{ err error }
)

// App is the root Bubbletea model: transcript on top, chat input with
// trigger completion at the bottom, form dialogs and confirmations as
// overlays.
type App struct {
	messages *MessageList
	input    *ChatInput
	form     *FormDialog
	confirm  *ConfirmDialog

	cfg     *config.Config
	store   *transcript.Store
	session *workspace.Session
	mcpURL  string

	ctx      context.Context
	width    int
	height   int
	quitting bool
}

// NewApp creates the TUI wired to the transcript store and session.
func NewApp(ctx context.Context, cfg *config.Config, store *transcript.Store, sess *workspace.Session, mcpURL string) *App {
	resolver := completion.NewResolver([]rune(cfg.Triggers))
	engine := completion.DefaultEngine(
		completion.WithMaxItems(cfg.MaxSuggestions),
		completion.WithCache(cfg.CacheSize),
	)

	return &App{
		messages: NewMessageList(),
		input:    NewChatInput(resolver, engine, sess),
		confirm:  NewConfirmDialog(),
		cfg:      cfg,
		store:    store,
		session:  sess,
		mcpURL:   mcpURL,
		ctx:      ctx,
	}
}

// Init loads the replayed transcript and focuses the input.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.Init(), a.loadTranscript())
}

// loadTranscript replays the session's events from the store.
func (a *App) loadTranscript() tea.Cmd {
	store, session := a.store, a.session.Slug
	ctx := a.ctx
	return func() tea.Msg {
		state, err := store.LoadState(ctx, session)
		if err != nil {
			return errMsg{err: err}
		}
		return stateLoadedMsg{state: state}
	}
}

// Update routes messages by overlay priority: confirm dialog first, then the
// form dialog, then the chat surface.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.SetWidth(msg.Width)
		if a.form != nil {
			a.form.SetSize(msg.Width, msg.Height)
		}
		return a, nil

	case stateLoadedMsg:
		a.messages.LoadState(msg.state)
		return a, nil

	case messageAddedMsg:
		a.messages.AppendMessage(msg.message)
		return a, nil

	case formSavedMsg:
		a.messages.AppendForm(msg.record)
		return a, nil

	case errMsg:
		logger.Error("TUI operation failed: %v", msg.err)
		return a, nil

	case SubmitMsg:
		return a, a.handleSubmit(msg.Text)

	case FormDoneMsg:
		a.form = nil
		return a, a.handleFormDone(msg)

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}
	}

	if a.confirm.IsVisible() {
		return a, a.confirm.Update(msg)
	}
	if a.form != nil && a.form.IsVisible() {
		return a, a.form.Update(msg)
	}

	var cmds []tea.Cmd
	if cmd := a.messages.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := a.input.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// handleSubmit dispatches one submitted input line.
func (a *App) handleSubmit(text string) tea.Cmd {
	switch {
	case strings.HasPrefix(text, "/"):
		return a.handleCommand(strings.TrimPrefix(text, "/"))
	case strings.HasPrefix(text, ":"):
		return a.handlePowerCommand(strings.TrimPrefix(text, ":"))
	default:
		return a.publishMessage("user", text)
	}
}

// publishMessage appends a chat message to the transcript store.
func (a *App) publishMessage(role, content string) tea.Cmd {
	store, session := a.store, a.session.Slug
	ctx := a.ctx
	return func() tea.Msg {
		msg, err := store.MessageAdd(ctx, session, role, content)
		if err != nil {
			return errMsg{err: err}
		}
		return messageAddedMsg{message: msg}
	}
}

// systemNote shows a local system message without persisting it.
func (a *App) systemNote(content string) tea.Cmd {
	return func() tea.Msg {
		return messageAddedMsg{message: &transcript.Message{
			Role:    "system",
			Content: content,
		}}
	}
}

// handleCommand runs a slash command.
func (a *App) handleCommand(line string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "help":
		return a.systemNote(helpText)
	case "config":
		return a.openSettingsForm()
	case "form":
		if arg == "" {
			return a.systemNote("usage: /form <schema.json>")
		}
		return a.openSchemaForm(arg)
	case "workspace":
		if arg == "" {
			return a.systemNote("workspace: " + a.session.Workspace)
		}
		return a.switchWorkspace(arg)
	case "project":
		if arg == "" {
			return a.systemNote("project: " + a.session.Project)
		}
		a.session.Project = arg
		return a.systemNote("switched to project " + arg)
	case "open":
		if arg == "" {
			return a.systemNote("usage: /open <session>")
		}
		return a.systemNote("session switching requires restart: chatshell chat --session " + arg)
	case "run":
		return a.systemNote("nothing to run here; agents connect over MCP at " + a.mcpURL)
	case "quit":
		return a.quit()
	default:
		return a.systemNote("unknown command: /" + name)
	}
}

// handlePowerCommand runs a colon-prefixed power command. These are terse
// aliases for the slash commands.
func (a *App) handlePowerCommand(line string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch name {
	case "ws":
		return a.handleCommand("workspace " + arg)
	case "proj":
		return a.handleCommand("project " + arg)
	case "open":
		return a.handleCommand("open " + arg)
	case "clear":
		a.messages.Clear()
		return nil
	case "quit":
		return a.quit()
	default:
		return a.systemNote("unknown power command: :" + name)
	}
}

// switchWorkspace loads or creates the named workspace and records the
// session move.
func (a *App) switchWorkspace(name string) tea.Cmd {
	ws := workspace.Load(a.cfg.DataDir, name)
	if err := workspace.Save(a.cfg.DataDir, ws); err != nil {
		return func() tea.Msg { return errMsg{err: err} }
	}
	a.session.Workspace = ws.Slug
	return a.systemNote("switched to workspace " + ws.Name)
}

// openSettingsForm opens the configuration form generated from the Config
// struct.
func (a *App) openSettingsForm() tea.Cmd {
	model, err := config.FormSchema()
	if err != nil {
		return func() tea.Msg { return errMsg{err: err} }
	}
	a.form = NewFormDialog("settings", model, a.cfg.Values(), a.cfg.ArrayDelimiter)
	a.form.SetSize(a.width, a.height)
	return a.form.Show()
}

// openSchemaForm opens a form dialog from a JSON schema file.
func (a *App) openSchemaForm(path string) tea.Cmd {
	raw, err := os.ReadFile(path)
	if err != nil {
		return a.systemNote("cannot read schema: " + err.Error())
	}
	model, err := schema.Parse(raw)
	if err != nil {
		return a.systemNote("invalid schema: " + err.Error())
	}
	name := strings.TrimSuffix(strings.TrimSuffix(path, ".json"), ".schema")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	a.form = NewFormDialog(name, model, nil, a.cfg.ArrayDelimiter)
	a.form.SetSize(a.width, a.height)
	return a.form.Show()
}

// handleFormDone finishes a completed or cancelled form.
func (a *App) handleFormDone(msg FormDoneMsg) tea.Cmd {
	if msg.Cancelled {
		return a.systemNote("form cancelled: " + msg.Form)
	}
	if msg.Form == "settings" {
		return a.confirmSettings(msg.Values)
	}

	store, session := a.store, a.session.Slug
	ctx := a.ctx
	return func() tea.Msg {
		record, err := store.FormSubmit(ctx, session, msg.Form, msg.Values)
		if err != nil {
			return errMsg{err: err}
		}
		return formSavedMsg{record: record}
	}
}

// confirmSettings shows the YAML diff the new values would produce and
// writes the global config on confirmation.
func (a *App) confirmSettings(values map[string]any) tea.Cmd {
	before, err := a.cfg.YAML()
	if err != nil {
		return func() tea.Msg { return errMsg{err: err} }
	}
	next := *a.cfg
	next.ApplyValues(values)
	after, err := next.YAML()
	if err != nil {
		return func() tea.Msg { return errMsg{err: err} }
	}

	if before == after {
		return a.systemNote("configuration unchanged")
	}

	diff := udiff.Unified("current", "updated", before, after)
	a.confirm.Show("Apply configuration?", colorizeDiff(diff),
		func() tea.Cmd {
			a.cfg.ApplyValues(values)
			if err := config.WriteGlobal(a.cfg); err != nil {
				return func() tea.Msg { return errMsg{err: err} }
			}
			// New log settings take effect without a restart.
			if err := logger.Apply(a.cfg.LogLevel, a.cfg.LogFile); err != nil {
				logger.Warn("Ignoring log settings from config: %v", err)
			}
			return a.systemNote("configuration written to " + config.GlobalPath())
		},
		func() tea.Cmd {
			return a.systemNote("configuration unchanged")
		})
	return nil
}

// colorizeDiff styles unified diff lines for the confirm dialog body.
func colorizeDiff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = styleDiffAdd.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = styleDiffDel.Render(line)
		default:
			lines[i] = styleDiffCtx.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// quit closes the session in the store and exits.
func (a *App) quit() tea.Cmd {
	a.quitting = true
	store, session := a.store, a.session.Slug
	ctx := a.ctx
	return tea.Sequence(
		func() tea.Msg {
			if err := store.SessionClose(ctx, session); err != nil {
				logger.Warn("Failed to record session close: %v", err)
			}
			return nil
		},
		tea.Quit,
	)
}

const helpText = `Commands:
  /help              show this help
  /config            edit configuration as a form
  /form <schema>     fill a form from a JSON schema file
  /workspace [name]  show or switch workspace
  /project [name]    show or switch project
  /quit              exit

Triggers: / commands, @ context, : power commands, # entities`

// View renders the full frame.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if a.quitting {
		view.AltScreen = false
		view.Content = lipglossv2.NewLayer("")
		return view
	}

	canvas := uv.NewScreenBuffer(a.width, a.height)
	a.Draw(canvas, canvas.Bounds())

	view.Content = lipglossv2.NewLayer(canvas.Render())
	view.BackgroundColor = colorBase
	return view
}

// Draw lays out header, transcript, input, and footer, then overlays.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dy() < 4 {
		return
	}

	headerArea := uv.Rectangle{
		Min: area.Min,
		Max: uv.Position{X: area.Max.X, Y: area.Min.Y + 1},
	}
	footerArea := uv.Rectangle{
		Min: uv.Position{X: area.Min.X, Y: area.Max.Y - 1},
		Max: area.Max,
	}

	inputHeight := lipglossv2.Height(a.input.View())
	inputArea := uv.Rectangle{
		Min: uv.Position{X: area.Min.X, Y: footerArea.Min.Y - inputHeight},
		Max: uv.Position{X: area.Max.X, Y: footerArea.Min.Y},
	}
	messagesArea := uv.Rectangle{
		Min: uv.Position{X: area.Min.X + 1, Y: headerArea.Max.Y + 1},
		Max: uv.Position{X: area.Max.X - 1, Y: inputArea.Min.Y},
	}

	a.drawHeader(scr, headerArea)
	a.messages.Draw(scr, messagesArea)
	a.input.Draw(scr, uv.Rectangle{
		Min: uv.Position{X: area.Min.X, Y: headerArea.Max.Y},
		Max: uv.Position{X: area.Max.X, Y: inputArea.Max.Y},
	})
	a.drawFooter(scr, footerArea)

	if a.form != nil && a.form.IsVisible() {
		a.form.Draw(scr, area)
	}
	if a.confirm.IsVisible() {
		a.confirm.Draw(scr, area)
	}
}

func (a *App) drawHeader(scr uv.Screen, area uv.Rectangle) {
	title := styleHeaderTitle.Render("chatshell")
	info := styleHeaderInfo.Render(fmt.Sprintf("%s · %s", a.session.Workspace, a.session.Name))
	DrawStyled(scr, area, styleHeader, title+"  "+info)
}

func (a *App) drawFooter(scr uv.Screen, area uv.Rectangle) {
	hints := []string{
		styleFooterKey.Render("enter") + styleFooterLabel.Render(" send"),
		styleFooterKey.Render("tab") + styleFooterLabel.Render(" complete"),
		styleFooterKey.Render("ctrl+c") + styleFooterLabel.Render(" quit"),
	}
	DrawStyled(scr, area, styleFooter, strings.Join(hints, "  "))
}
