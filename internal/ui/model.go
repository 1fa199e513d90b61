// Package ui はターミナル上のTodo画面です。
// サインインするまでTodoは表示されず、通信はすべて tea.Cmd として実行されます。
package ui

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo-sample/internal/client"
	"todo-sample/internal/controller"
	"todo-sample/internal/form"
	"todo-sample/internal/models"
	"todo-sample/internal/notify"
)

// Backend は認証とTodo APIへの入口です。
type Backend interface {
	Login(ctx context.Context, email, password string) (*client.Session, error)
	Register(ctx context.Context, username, email, password string) error
	ForgotPassword(ctx context.Context, email string) error
	Todos(sess *client.Session) controller.DataService
}

type httpBackend struct {
	c *client.Client
}

// NewBackend は client.Client を Backend として使えるようにします。
func NewBackend(c *client.Client) Backend {
	return httpBackend{c: c}
}

func (b httpBackend) Login(ctx context.Context, email, password string) (*client.Session, error) {
	return b.c.Login(ctx, email, password)
}

func (b httpBackend) Register(ctx context.Context, username, email, password string) error {
	return b.c.Register(ctx, username, email, password)
}

func (b httpBackend) ForgotPassword(ctx context.Context, email string) error {
	return b.c.ForgotPassword(ctx, email)
}

func (b httpBackend) Todos(sess *client.Session) controller.DataService {
	return b.c.Todos(sess)
}

type screen int

const (
	screenAuth screen = iota
	screenTodos
)

// サインイン画面の入力欄
const (
	authUsername = iota
	authEmail
	authPassword
)

// Todo画面のフォーカス
const (
	focusName = iota
	focusDescription
	focusList
	focusCount
)

type (
	signedInMsg       struct{ sess *client.Session }
	authFailedMsg     struct{ err error }
	registeredMsg     struct{}
	resetRequestedMsg struct{}

	// ctrl は発行時のコントローラーです。サインアウト後に届いた結果を捨てるために使います。
	fetchedMsg struct {
		ctrl *controller.Controller
		snap *controller.Snapshot
		err  error
	}
	createdMsg struct {
		ctrl *controller.Controller
		res  controller.CreateResult
		err  error
	}
	deletedMsg struct {
		ctrl *controller.Controller
		res  controller.DeleteResult
	}
	hideNoticeMsg struct{ gen int }
)

// Options は Model の生成オプションです。
type Options struct {
	Context context.Context
	Logger  *log.Logger
}

// Model は Bubble Tea のモデルです。状態は Update の中でだけ変更します。
type Model struct {
	ctx     context.Context
	backend Backend
	logger  *log.Logger
	keys    keyMap
	help    help.Model
	screen  screen

	signUp     bool
	authInputs []textinput.Model
	authFocus  int
	authErr    string
	authInfo   string
	busy       bool

	session     *client.Session
	ctrl        *controller.Controller
	name        textinput.Model
	description textinput.Model
	focus       int
	fieldErrs   *form.ValidationError
	todos       []models.Todo
	cursor      int
	notice      notify.Notification
	err         error
}

// New はサインイン画面から始まる Model を作成します。
func New(backend Backend, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := Model{
		ctx:     ctx,
		backend: backend,
		logger:  opts.Logger,
		keys:    defaultKeyMap(),
		help:    help.New(),
		notice:  *notify.New(),
	}

	m.authInputs = []textinput.Model{
		newInput("Username"),
		newInput("Email"),
		newInput("Password"),
	}
	m.authInputs[authPassword].EchoMode = textinput.EchoPassword
	m.authInputs[authPassword].EchoCharacter = '•'

	m.name = newInput("Your todo name!")
	m.description = newInput("Your todo description!")

	m.focusAuth(0)
	return m
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	return ti
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

	case signedInMsg:
		return m.handleSignedIn(msg.sess)

	case authFailedMsg:
		m.busy = false
		m.authInfo = ""
		m.authErr = describeAuthError(msg.err)
		return m, nil

	case registeredMsg:
		m.busy = false
		m.signUp = false
		m.authErr = ""
		m.authInfo = "Account created. Please sign in."
		m.authInputs[authPassword].Reset()
		m.focusAuth(0)
		return m, nil

	case resetRequestedMsg:
		m.busy = false
		m.authErr = ""
		m.authInfo = "Password reset email sent"
		return m, nil

	case fetchedMsg:
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		if msg.err != nil {
			m.handleRemoteError(msg.err)
			return m, nil
		}
		m.applySnapshot(msg.snap)
		return m, nil

	case createdMsg:
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		return m.handleCreated(msg)

	case deletedMsg:
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		var cmd tea.Cmd
		if msg.res.Notify {
			cmd = m.showNotice()
		}
		if msg.res.Snapshot != nil {
			m.applySnapshot(msg.res.Snapshot)
		}
		return m, cmd

	case hideNoticeMsg:
		m.notice.Expire(msg.gen)
		return m, nil
	}

	if m.screen == screenAuth {
		return m.updateAuth(msg)
	}
	return m.updateTodos(msg)
}

func (m Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	fields := m.authFields()
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Next):
			m.focusAuth((m.authFocus + 1) % len(fields))
			return m, nil
		case key.Matches(k, m.keys.Prev):
			m.focusAuth((m.authFocus + len(fields) - 1) % len(fields))
			return m, nil
		case key.Matches(k, m.keys.ToggleSignUp):
			m.signUp = !m.signUp
			m.authErr, m.authInfo = "", ""
			m.focusAuth(0)
			return m, nil
		case key.Matches(k, m.keys.Forgot) && !m.signUp:
			return m.requestReset()
		case key.Matches(k, m.keys.Submit):
			return m.submitAuth()
		}
	}

	idx := fields[m.authFocus]
	var cmd tea.Cmd
	m.authInputs[idx], cmd = m.authInputs[idx].Update(msg)
	return m, cmd
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	username := strings.TrimSpace(m.authInputs[authUsername].Value())
	email := strings.TrimSpace(m.authInputs[authEmail].Value())
	password := m.authInputs[authPassword].Value()

	if email == "" || password == "" || (m.signUp && username == "") {
		m.authErr = "All fields are required"
		return m, nil
	}
	m.busy = true
	m.authErr, m.authInfo = "", ""

	backend, ctx := m.backend, m.ctx
	if m.signUp {
		return m, func() tea.Msg {
			if err := backend.Register(ctx, username, email, password); err != nil {
				return authFailedMsg{err: err}
			}
			return registeredMsg{}
		}
	}
	return m, func() tea.Msg {
		sess, err := backend.Login(ctx, email, password)
		if err != nil {
			return authFailedMsg{err: err}
		}
		return signedInMsg{sess: sess}
	}
}

func (m Model) requestReset() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.authInputs[authEmail].Value())
	if email == "" {
		m.authErr = "Enter your email to reset the password"
		return m, nil
	}
	m.busy = true
	m.authErr, m.authInfo = "", ""

	backend, ctx := m.backend, m.ctx
	return m, func() tea.Msg {
		if err := backend.ForgotPassword(ctx, email); err != nil {
			return authFailedMsg{err: err}
		}
		return resetRequestedMsg{}
	}
}

func (m Model) handleSignedIn(sess *client.Session) (tea.Model, tea.Cmd) {
	m.busy = false
	ctrl, err := controller.New(controller.Config{UserID: sess.UserID, Logger: m.logger}, m.backend.Todos(sess))
	if err != nil {
		m.authErr = err.Error()
		return m, nil
	}

	m.session = sess
	m.ctrl = ctrl
	m.screen = screenTodos
	m.authErr, m.authInfo = "", ""
	m.authInputs[authPassword].Reset()
	m.todos = nil
	m.cursor = 0
	m.err = nil
	m.fieldErrs = nil
	m.setFocus(focusName)
	return m, m.fetchCmd()
}

func (m Model) fetchCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		snap, err := ctrl.FetchAll(ctx)
		return fetchedMsg{ctrl: ctrl, snap: snap, err: err}
	}
}

func (m Model) updateTodos(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.SignOut):
			m.signOut()
			return m, nil
		case key.Matches(k, m.keys.Dismiss) && m.notice.Visible():
			m.notice.Dismiss()
			return m, nil
		case key.Matches(k, m.keys.Next):
			m.setFocus((m.focus + 1) % focusCount)
			return m, nil
		case key.Matches(k, m.keys.Prev):
			m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, nil
		case key.Matches(k, m.keys.Delete):
			return m.deleteSelected()
		case key.Matches(k, m.keys.Submit) && m.focus != focusList:
			return m.submitTodo()
		case m.focus == focusList && key.Matches(k, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case m.focus == focusList && key.Matches(k, m.keys.Down):
			if m.cursor < len(m.todos)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusDescription:
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m Model) submitTodo() (tea.Model, tea.Cmd) {
	st := form.State{Name: m.name.Value(), Description: m.description.Value()}
	if err := form.Validate(st); err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			m.fieldErrs = verr
			return m, nil
		}
		m.err = err
		return m, nil
	}
	m.fieldErrs = nil

	ctrl, ctx := m.ctrl, m.ctx
	return m, func() tea.Msg {
		res, err := ctrl.Create(ctx, st)
		return createdMsg{ctrl: ctrl, res: res, err: err}
	}
}

func (m Model) handleCreated(msg createdMsg) (tea.Model, tea.Cmd) {
	var verr *form.ValidationError
	if errors.As(msg.err, &verr) {
		m.fieldErrs = verr
		return m, nil
	}

	var cmd tea.Cmd
	if msg.res.Created != nil {
		m.name.Reset()
		m.description.Reset()
		m.fieldErrs = nil
		m.setFocus(focusName)
		cmd = m.showNotice()
	}
	if msg.res.Snapshot != nil {
		m.applySnapshot(msg.res.Snapshot)
	}
	if msg.err != nil {
		m.handleRemoteError(msg.err)
	}
	return m, cmd
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	if len(m.todos) == 0 {
		return m, nil
	}
	id := m.todos[m.cursor].ID

	ctrl, ctx := m.ctrl, m.ctx
	return m, func() tea.Msg {
		return deletedMsg{ctrl: ctrl, res: ctrl.Delete(ctx, id)}
	}
}

// showNotice は通知を表示し、新しく表示した場合だけ非表示タイマーを返します。
func (m *Model) showNotice() tea.Cmd {
	gen, started := m.notice.Show()
	if !started {
		return nil
	}
	return tea.Tick(m.notice.Duration, func(time.Time) tea.Msg {
		return hideNoticeMsg{gen: gen}
	})
}

func (m *Model) applySnapshot(snap *controller.Snapshot) {
	m.todos = snap.Todos
	m.err = nil
	if m.cursor >= len(m.todos) {
		m.cursor = max(len(m.todos)-1, 0)
	}
}

// handleRemoteError は取得・作成のエラーを画面のエラー行に出します。
// トークンが無効になった場合はサインイン画面に戻ります。
func (m *Model) handleRemoteError(err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		m.signOut()
		m.authErr = "Session expired. Please sign in again."
		return
	}
	m.err = err
}

func (m *Model) signOut() {
	m.session = nil
	m.ctrl = nil
	m.todos = nil
	m.cursor = 0
	m.err = nil
	m.fieldErrs = nil
	m.notice.Dismiss()
	m.name.Reset()
	m.description.Reset()
	m.name.Blur()
	m.description.Blur()

	m.screen = screenAuth
	m.signUp = false
	m.busy = false
	m.authErr, m.authInfo = "", ""
	m.authInputs[authPassword].Reset()
	m.focusAuth(0)
}

func (m *Model) authFields() []int {
	if m.signUp {
		return []int{authUsername, authEmail, authPassword}
	}
	return []int{authEmail, authPassword}
}

func (m *Model) focusAuth(i int) {
	m.authFocus = i
	fields := m.authFields()
	for j := range m.authInputs {
		m.authInputs[j].Blur()
	}
	m.authInputs[fields[i]].Focus()
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.name.Blur()
	m.description.Blur()
	switch f {
	case focusName:
		m.name.Focus()
	case focusDescription:
		m.description.Focus()
	}
}

func describeAuthError(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "Invalid email or password"
	case errors.Is(err, client.ErrConflict):
		return "Username or email already exists"
	}
	var rse *client.RemoteServiceError
	if errors.As(err, &rse) && rse.Message != "" {
		return rse.Message
	}
	return err.Error()
}

func (m Model) View() string {
	if m.screen == screenAuth {
		return m.viewAuth()
	}
	return m.viewTodos()
}

func (m Model) viewAuth() string {
	var b strings.Builder

	heading := "Sign In"
	if m.signUp {
		heading = "Create Account"
	}
	b.WriteString(titleStyle.Render("Todo List Sample") + "\n\n")
	b.WriteString(sectionStyle.Render(heading) + "\n\n")

	labels := map[int]string{authUsername: "Username", authEmail: "Email", authPassword: "Password"}
	for _, idx := range m.authFields() {
		b.WriteString(labelStyle.Render(labels[idx]) + "\n")
		b.WriteString(m.authInputs[idx].View() + "\n\n")
	}

	switch {
	case m.busy:
		b.WriteString(mutedStyle.Render("Please wait...") + "\n")
	case m.authErr != "":
		b.WriteString(errorStyle.Render(m.authErr) + "\n")
	case m.authInfo != "":
		b.WriteString(infoStyle.Render(m.authInfo) + "\n")
	}

	b.WriteString("\n" + m.help.View(authKeys{m.keys}))
	return b.String()
}

func (m Model) viewTodos() string {
	var b strings.Builder

	header := titleStyle.Render("Todo List Sample")
	if m.session != nil {
		header += "  " + mutedStyle.Render("signed in as "+m.session.Email)
	}
	b.WriteString(header + "\n\n")

	if m.notice.Visible() {
		b.WriteString(bannerStyle.Render("Success!") + " " + mutedStyle.Render("esc to dismiss") + "\n\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	b.WriteString(sectionStyle.Render("Create Todo") + "\n\n")
	b.WriteString(m.fieldView("Name", form.FieldName, m.name))
	b.WriteString(m.fieldView("Description", form.FieldDescription, m.description))
	b.WriteString(buttonStyle.Render("Create Todo") + " " + mutedStyle.Render("enter") + "\n\n")

	if len(m.todos) == 0 {
		b.WriteString(mutedStyle.Render("No todos yet.") + "\n")
	}
	for i, t := range m.todos {
		style := cardStyle
		if m.focus == focusList && i == m.cursor {
			style = selectedCardStyle
		}
		body := cardNameStyle.Render(t.Name) + "\n" + t.Description
		done := buttonStyle.Render("DONE")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, style.Render(body), " ", done) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) fieldView(label, field string, in textinput.Model) string {
	s := labelStyle.Render(label) + "\n" + in.View() + "\n"
	if m.fieldErrs != nil && m.fieldErrs.Has(field) {
		s += fieldErrStyle.Render(m.fieldErrs.Message(field)) + "\n"
	}
	return s + "\n"
}
