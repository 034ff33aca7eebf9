// Command nsedesk is the interactive terminal dashboard: sign in with the
// backend's Google login, compare equity prices between two trading days,
// browse F&O bhavcopy snapshots, and read NSE/BSE corporate announcements.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"nsedesk/internal/api"
	"nsedesk/internal/auth"
	"nsedesk/internal/compare"
	"nsedesk/internal/config"
	"nsedesk/internal/fo"
	"nsedesk/internal/guard"
	"nsedesk/internal/util"
)

// Styles.
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	errStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	suggStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	suggSelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// views matches the guard names: login is reachable only without a session,
// the data views only with one.
type view int

const (
	viewLogin view = iota
	viewCompare
	viewFO
	viewAnnounce
)

func (v view) String() string {
	switch v {
	case viewLogin:
		return "login"
	case viewCompare:
		return "compare"
	case viewFO:
		return "f&o"
	case viewAnnounce:
		return "announcements"
	}
	return "?"
}

// Messages.
type sessionMsg struct{ sess *api.Session }

type loginDoneMsg struct {
	sess *api.Session
	err  error
}

type flowChangedMsg struct{}

type compareDoneMsg struct{ err error }

type foLoadedMsg struct {
	futures []fo.Row
	options []fo.Row
	date    string
	err     error
}

type nseLoadedMsg struct {
	resp *api.NSEAnnouncementsResponse
	err  error
}

type bseLoadedMsg struct {
	resp *api.BSEAnnouncementsResponse
	err  error
}

// Compare focus targets, cycled with tab.
const (
	focusDate1 = iota
	focusDate2
	focusSymbols
	focusFilter
	focusCount
)

type model struct {
	logger   *slog.Logger
	client   *api.Client
	sessions *auth.Sessions
	flow     *compare.Flow
	engine   *fo.Engine
	sessCh   <-chan *api.Session

	width, height int
	ready         bool
	viewport      viewport.Model
	active        view
	status        string

	// Login view.
	tokenInput textinput.Model
	loggingIn  bool

	// Compare view.
	date1Input   textinput.Model
	date2Input   textinput.Model
	symbolsInput textinput.Model
	filterInput  textinput.Model
	focus        int
	lastSymbols  string
	suggIdx      int
	comparing    bool

	// F&O view.
	foLoaded  bool
	foLoading bool
	foDate    string
	foOptions bool // show the options table instead of futures

	// Announcements view.
	annInput   textinput.Model
	annBSE     bool
	annLoading bool
	annPage    int
	nseResp    *api.NSEAnnouncementsResponse
	bseResp    *api.BSEAnnouncementsResponse
}

func initialModel(logger *slog.Logger, client *api.Client, sessions *auth.Sessions,
	flow *compare.Flow, engine *fo.Engine) model {

	token := textinput.New()
	token.Placeholder = "paste token here"
	token.Prompt = "token> "
	token.EchoMode = textinput.EchoPassword
	token.CharLimit = 512
	token.Focus()

	date1 := textinput.New()
	date1.Placeholder = "YYYY-MM-DD"
	date1.Prompt = "from> "
	date1.CharLimit = 10
	date1.Width = 12
	date1.Focus()

	date2 := textinput.New()
	date2.Placeholder = "YYYY-MM-DD"
	date2.Prompt = "to>   "
	date2.CharLimit = 10
	date2.Width = 12

	symbols := textinput.New()
	symbols.Placeholder = "RELIANCE, TCS (empty = all)"
	symbols.Prompt = "symbols> "
	symbols.CharLimit = 256

	filter := textinput.New()
	filter.Placeholder = "substring filter (all view)"
	filter.Prompt = "filter> "
	filter.CharLimit = 64

	ann := textinput.New()
	ann.Placeholder = "NSE symbol"
	ann.Prompt = "symbol> "
	ann.CharLimit = 32
	ann.Focus()

	active := viewLogin
	if d := (guard.RequireAnon{Sessions: sessions}).Check(); !d.Allowed {
		active = viewCompare
	}

	ch, _ := sessions.Subscribe()

	return model{
		logger:       logger,
		client:       client,
		sessions:     sessions,
		flow:         flow,
		engine:       engine,
		sessCh:       ch,
		active:       active,
		tokenInput:   token,
		date1Input:   date1,
		date2Input:   date2,
		symbolsInput: symbols,
		filterInput:  filter,
		annInput:     ann,
		annPage:      1,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bootstrapCmd(), waitSession(m.sessCh))
}

// waitSession re-arms after every delivery so session changes made outside
// the update loop (logout, 401 invalidation) reach the UI.
func waitSession(ch <-chan *api.Session) tea.Cmd {
	return func() tea.Msg {
		sess, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg{sess: sess}
	}
}

func (m model) bootstrapCmd() tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sessions.Bootstrap(ctx)
		return nil
	}
}

func (m model) loginCmd(token string) tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		if err := sessions.SetCredential(token); err != nil {
			return loginDoneMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		sess, err := sessions.Fetch(ctx)
		return loginDoneMsg{sess: sess, err: err}
	}
}

func (m model) submitCompareCmd() tea.Cmd {
	flow := m.flow
	d1 := strings.TrimSpace(m.date1Input.Value())
	d2 := strings.TrimSpace(m.date2Input.Value())
	syms := splitSymbols(m.symbolsInput.Value())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return compareDoneMsg{err: flow.Submit(ctx, d1, d2, syms)}
	}
}

func (m model) loadFOCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		resp, err := client.FOData(ctx, time.Time{}, "")
		if err != nil {
			return foLoadedMsg{err: err}
		}
		var fut, opt []api.FORow
		for _, r := range resp.Data {
			// UDiFF instrument types: STF/IDF futures, STO/IDO options.
			if strings.HasSuffix(r.FinInstrmTp, "F") {
				fut = append(fut, r)
			} else {
				opt = append(opt, r)
			}
		}
		return foLoadedMsg{
			futures: fo.Normalize(fut, fo.Futures),
			options: fo.Normalize(opt, fo.Options),
			date:    resp.Date,
		}
	}
}

func (m model) loadAnnouncementsCmd() tea.Cmd {
	client := m.client
	query := strings.TrimSpace(m.annInput.Value())
	bse := m.annBSE
	page := m.annPage
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if bse {
			resp, err := client.BSEAnnouncements(ctx, query, from, to, page)
			return bseLoadedMsg{resp: resp, err: err}
		}
		resp, err := client.NSEAnnouncements(ctx, query, from, to, 50)
		return nseLoadedMsg{resp: resp, err: err}
	}
}

// invalidateCmd runs a foreground session check after a request came back
// 401. Fetch clears the stored credential and publishes nil, which routes
// the UI back to the login view.
func (m model) invalidateCmd() tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sessions.Fetch(ctx)
		return nil
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// routed applies the guards to a requested view and returns where the user
// actually lands.
func (m model) routed(target view) view {
	if target == viewLogin {
		if d := (guard.RequireAnon{Sessions: m.sessions}).Check(); !d.Allowed {
			return viewCompare
		}
		return viewLogin
	}
	if d := (guard.RequireAuth{Sessions: m.sessions}).Check(); !d.Allowed {
		return viewLogin
	}
	return target
}

func (m *model) switchView(target view) {
	m.active = m.routed(target)
	m.status = ""
	m.layout()
	if m.ready {
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
	}
}

// layout recomputes the viewport height for the fixed chrome of the active
// view: header, per-view input block, footer.
func (m *model) layout() {
	if !m.ready {
		return
	}
	h := m.height - 1 - m.chromeLines() - 1
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

func (m model) chromeLines() int {
	switch m.active {
	case viewLogin:
		return 4
	case viewCompare:
		sugg, visible := m.flow.Suggestions()
		n := 3
		if visible {
			n += len(sugg)
		}
		return n
	case viewAnnounce:
		return 1
	default:
		return 1
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+x":
			if m.active != viewLogin {
				m.sessions.Logout()
				return m, nil
			}
		case "ctrl+n":
			if m.active != viewLogin {
				next := m.active + 1
				if next > viewAnnounce {
					next = viewCompare
				}
				m.switchView(next)
				return m, nil
			}
		}
		switch m.active {
		case viewLogin:
			return m.updateLogin(msg)
		case viewCompare:
			return m.updateCompare(msg)
		case viewFO:
			return m.updateFO(msg)
		case viewAnnounce:
			return m.updateAnnounce(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		}
		m.layout()
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case sessionMsg:
		if msg.sess == nil {
			m.logger.Info("session cleared")
			m.switchView(viewLogin)
		} else {
			m.logger.Info("session active", "email", msg.sess.Email)
			if m.active == viewLogin {
				m.switchView(viewCompare)
			}
		}
		return m, waitSession(m.sessCh)

	case loginDoneMsg:
		m.loggingIn = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				m.status = "token rejected, request a fresh one"
			} else {
				m.status = "login failed: " + msg.err.Error()
			}
			m.logger.Warn("login failed", "error", msg.err)
			return m, nil
		}
		m.tokenInput.SetValue("")
		// The session subscription flips the view.
		return m, nil

	case flowChangedMsg:
		// Async suggestion arrival or deferred blur-hide.
		if m.suggIdx > 0 {
			if sugg, _ := m.flow.Suggestions(); m.suggIdx >= len(sugg) {
				m.suggIdx = 0
			}
		}
		m.layout()
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case compareDoneMsg:
		if errors.Is(msg.err, compare.ErrSuperseded) {
			// A newer submit owns the status line now.
			return m, nil
		}
		m.comparing = false
		switch {
		case msg.err == nil:
			m.status = ""
		case errors.Is(msg.err, api.ErrUnauthorized):
			m.status = "session expired"
			return m, m.invalidateCmd()
		default:
			var verr *compare.ValidationError
			if errors.As(msg.err, &verr) {
				m.status = verr.Msg
			} else {
				m.status = msg.err.Error()
			}
			m.logger.Warn("compare failed", "error", msg.err)
		}
		if m.ready {
			m.viewport.SetContent(m.renderContent())
			m.viewport.GotoTop()
		}
		return m, nil

	case foLoadedMsg:
		m.foLoading = false
		if msg.err != nil {
			m.engine.Reset()
			m.foLoaded = false
			if errors.Is(msg.err, api.ErrUnauthorized) {
				m.status = "session expired"
				return m, m.invalidateCmd()
			}
			m.status = msg.err.Error()
			m.logger.Warn("loading f&o snapshot", "error", msg.err)
		} else {
			m.engine.SetSnapshot(msg.futures, msg.options)
			m.foLoaded = true
			m.foDate = msg.date
			m.status = ""
			m.logger.Info("f&o snapshot loaded", "date", msg.date,
				"futures", len(msg.futures), "options", len(msg.options))
		}
		if m.ready {
			m.viewport.SetContent(m.renderContent())
			m.viewport.GotoTop()
		}
		return m, nil

	case nseLoadedMsg:
		if msg.err == nil {
			m.nseResp = msg.resp
		}
		return m.announcementsLoaded(msg.err)

	case bseLoadedMsg:
		if msg.err == nil {
			m.bseResp = msg.resp
		}
		return m.announcementsLoaded(msg.err)
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) announcementsLoaded(err error) (tea.Model, tea.Cmd) {
	m.annLoading = false
	switch {
	case err == nil:
		m.status = ""
	case errors.Is(err, api.ErrUnauthorized):
		m.status = "session expired"
		return m, m.invalidateCmd()
	default:
		m.status = err.Error()
		m.logger.Warn("loading announcements", "error", err)
	}
	if m.ready {
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Per-view key handling
// ---------------------------------------------------------------------------

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		token := strings.TrimSpace(m.tokenInput.Value())
		if token == "" {
			m.status = "paste the token from the login redirect"
			return m, nil
		}
		m.loggingIn = true
		m.status = ""
		return m, m.loginCmd(token)
	}
	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return m, cmd
}

func (m model) updateCompare(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sugg, suggVisible := m.flow.Suggestions()

	switch msg.String() {
	case "tab", "shift+tab":
		if m.focus == focusSymbols {
			m.flow.Blur()
		}
		if msg.String() == "tab" {
			m.focus = (m.focus + 1) % focusCount
		} else {
			m.focus = (m.focus + focusCount - 1) % focusCount
		}
		m.syncFocus()
		return m, textinput.Blink
	case "ctrl+t":
		switch m.flow.CurrentView() {
		case compare.ViewGainers:
			m.flow.SetView(compare.ViewLosers)
		case compare.ViewLosers:
			m.flow.SetView(compare.ViewAll)
		default:
			m.flow.SetView(compare.ViewGainers)
		}
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil
	case "esc":
		if m.focus == focusSymbols && suggVisible {
			m.flow.Blur()
			return m, nil
		}
	case "up", "down":
		if m.focus == focusSymbols && suggVisible {
			if msg.String() == "down" && m.suggIdx < len(sugg)-1 {
				m.suggIdx++
			}
			if msg.String() == "up" && m.suggIdx > 0 {
				m.suggIdx--
			}
			return m, nil
		}
	case "enter":
		if m.focus == focusSymbols && suggVisible && m.suggIdx < len(sugg) {
			next := m.flow.Accept(m.symbolsInput.Value(), sugg[m.suggIdx])
			m.symbolsInput.SetValue(next)
			m.symbolsInput.CursorEnd()
			m.lastSymbols = next
			m.suggIdx = 0
			m.layout()
			m.viewport.SetContent(m.renderContent())
			return m, nil
		}
		if m.comparing {
			return m, nil
		}
		m.comparing = true
		m.status = "comparing..."
		return m, m.submitCompareCmd()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusDate1:
		m.date1Input, cmd = m.date1Input.Update(msg)
	case focusDate2:
		m.date2Input, cmd = m.date2Input.Update(msg)
	case focusSymbols:
		m.symbolsInput, cmd = m.symbolsInput.Update(msg)
		if v := m.symbolsInput.Value(); v != m.lastSymbols {
			m.lastSymbols = v
			m.suggIdx = 0
			m.flow.TypeAhead(v)
		}
	case focusFilter:
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.flow.SetTableQuery(m.filterInput.Value())
		m.viewport.SetContent(m.renderContent())
	}
	return m, cmd
}

func (m *model) syncFocus() {
	inputs := []*textinput.Model{&m.date1Input, &m.date2Input, &m.symbolsInput, &m.filterInput}
	for i, in := range inputs {
		if i == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m model) updateFO(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		if m.foLoading {
			return m, nil
		}
		m.foLoading = true
		m.status = "loading snapshot..."
		return m, m.loadFOCmd()
	case "o":
		m.foOptions = !m.foOptions
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil
	case "left", "right":
		syms := m.engine.Symbols()
		if len(syms) == 0 {
			return m, nil
		}
		cur := indexOf(syms, m.engine.SelectedSymbol())
		if msg.String() == "right" && cur < len(syms)-1 {
			cur++
		}
		if msg.String() == "left" && cur > 0 {
			cur--
		}
		m.engine.SelectSymbol(syms[cur])
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil
	case "up", "down":
		exps := m.engine.Expiries()
		if len(exps) == 0 {
			return m, nil
		}
		cur := 0
		for i, e := range exps {
			if e.Equal(m.engine.SelectedExpiry()) {
				cur = i
				break
			}
		}
		if msg.String() == "down" && cur < len(exps)-1 {
			cur++
		}
		if msg.String() == "up" && cur > 0 {
			cur--
		}
		m.engine.SelectExpiry(exps[cur])
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil
	}
	var cmd tea.Cmd
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return 0
}

func (m model) updateAnnounce(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.annLoading || strings.TrimSpace(m.annInput.Value()) == "" {
			return m, nil
		}
		m.annLoading = true
		m.annPage = 1
		m.status = "loading..."
		return m, m.loadAnnouncementsCmd()
	case "ctrl+b":
		m.annBSE = !m.annBSE
		if m.annBSE {
			m.annInput.Placeholder = "BSE scrip code"
		} else {
			m.annInput.Placeholder = "NSE symbol"
		}
		m.annInput.SetValue("")
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case "ctrl+right", "ctrl+left":
		if !m.annBSE || m.bseResp == nil || m.annLoading {
			break
		}
		page := m.annPage
		if msg.String() == "ctrl+right" && page < m.bseResp.TotalPages {
			page++
		}
		if msg.String() == "ctrl+left" && page > 1 {
			page--
		}
		if page == m.annPage {
			return m, nil
		}
		m.annPage = page
		m.annLoading = true
		m.status = "loading..."
		return m, m.loadAnnouncementsCmd()
	}
	var cmd tea.Cmd
	m.annInput, cmd = m.annInput.Update(msg)
	return m, cmd
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderChrome())
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" nsedesk "))
	if m.active != viewLogin {
		for _, v := range []view{viewCompare, viewFO, viewAnnounce} {
			b.WriteString(" ")
			if v == m.active {
				b.WriteString(tabActiveStyle.Render("[" + v.String() + "]"))
			} else {
				b.WriteString(tabStyle.Render(" " + v.String() + " "))
			}
		}
	}
	if sess := m.sessions.Current(); sess != nil {
		b.WriteString("  ")
		b.WriteString(userStyle.Render(sess.Email))
	}
	return b.String()
}

// renderChrome draws the fixed input block above the viewport.
func (m model) renderChrome() string {
	var b strings.Builder
	switch m.active {
	case viewLogin:
		b.WriteString(labelStyle.Render("open this URL in a browser and sign in with Google:"))
		b.WriteString("\n  ")
		b.WriteString(suggStyle.Render(m.client.LoginURL()))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("then paste the token from the redirect:"))
		b.WriteString("\n")
		b.WriteString(m.tokenInput.View())
		b.WriteString("\n")
	case viewCompare:
		b.WriteString(m.date1Input.View())
		b.WriteString("   ")
		b.WriteString(m.date2Input.View())
		b.WriteString("\n")
		b.WriteString(m.symbolsInput.View())
		b.WriteString("\n")
		if sugg, visible := m.flow.Suggestions(); visible {
			for i, s := range sugg {
				style := suggStyle
				if i == m.suggIdx {
					style = suggSelStyle
				}
				b.WriteString("  " + style.Render(s) + "\n")
			}
		}
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	case viewAnnounce:
		b.WriteString(m.annInput.View())
		if m.annBSE {
			b.WriteString(dimStyle.Render("  (BSE)"))
		} else {
			b.WriteString(dimStyle.Render("  (NSE)"))
		}
		b.WriteString("\n")
	default:
		b.WriteString(m.renderFOSelectors())
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderFOSelectors() string {
	if !m.foLoaded {
		return labelStyle.Render("press r to load the latest F&O snapshot")
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render("date " + m.foDate + "  symbol "))
	b.WriteString(selectedStyle.Render(m.engine.SelectedSymbol()))
	b.WriteString(labelStyle.Render("  expiry "))
	if exp := m.engine.SelectedExpiry(); !exp.IsZero() {
		b.WriteString(selectedStyle.Render(util.FormatDay(exp)))
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("  (%d symbols, %d expiries)",
		len(m.engine.Symbols()), len(m.engine.Expiries()))))
	return b.String()
}

func (m model) renderContent() string {
	switch m.active {
	case viewLogin:
		if m.loggingIn {
			return dimStyle.Render("  verifying token...")
		}
		return ""
	case viewCompare:
		return m.renderCompareTable()
	case viewFO:
		return m.renderFOTable()
	case viewAnnounce:
		return m.renderAnnouncements()
	}
	return ""
}

func (m model) renderCompareTable() string {
	res := m.flow.Result()
	if res == nil {
		return dimStyle.Render("  pick two dates and press enter")
	}
	var b strings.Builder
	label := "gainers"
	switch m.flow.CurrentView() {
	case compare.ViewLosers:
		label = "losers"
	case compare.ViewAll:
		label = "all"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s vs %s  %s  %d instruments",
		res.Date1, res.Date2, label, res.Count)))
	b.WriteString("\n\n")
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-12s %-28s %10s %10s %9s %8s %12s",
		"Symbol", "Name", "Old", "New", "Chg%", "VolX", "Volume")))
	b.WriteString("\n")
	for _, r := range m.flow.Rows() {
		chgStyle := gainStyle
		if r.PctChange < 0 {
			chgStyle = lossStyle
		}
		b.WriteString("  ")
		b.WriteString(symbolStyle.Render(fmt.Sprintf("%-12s", padOrTrunc(r.Symbol, 12))))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(padOrTrunc(r.InstrumentName, 28)))
		b.WriteString(priceStyle.Render(fmt.Sprintf(" %10.2f %10.2f", float64(r.OldPrice), float64(r.NewPrice))))
		b.WriteString(chgStyle.Render(fmt.Sprintf(" %9s", util.FormatPct(float64(r.PctChange)))))
		b.WriteString(priceStyle.Render(fmt.Sprintf(" %8.2f", float64(r.VolumeRatio))))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %12s", util.FormatQty(float64(r.Volume)))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderFOTable() string {
	if !m.foLoaded {
		if m.foLoading {
			return dimStyle.Render("  loading...")
		}
		return ""
	}
	rows := m.engine.FilteredFutures()
	if m.foOptions {
		rows = m.engine.FilteredOptions()
	}
	var b strings.Builder
	if m.foOptions {
		b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-12s %-10s %4s %10s %10s %10s %12s %12s",
			"Symbol", "Expiry", "Typ", "Strike", "Close", "Settle", "OI", "ChgOI")))
	} else {
		b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-12s %-10s %10s %10s %10s %10s %12s %12s",
			"Symbol", "Expiry", "Open", "High", "Low", "Close", "OI", "ChgOI")))
	}
	b.WriteString("\n")
	for _, r := range rows {
		raw := r.Raw
		b.WriteString("  ")
		b.WriteString(symbolStyle.Render(fmt.Sprintf("%-12s", padOrTrunc(r.Symbol, 12))))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %-10s", util.FormatDay(r.Expiry))))
		if m.foOptions {
			b.WriteString(priceStyle.Render(fmt.Sprintf(" %4s %10.2f %10.2f %10.2f",
				raw.OptnTp, float64(raw.StrkPric), float64(raw.ClsPric), float64(raw.SttlmPric))))
		} else {
			b.WriteString(priceStyle.Render(fmt.Sprintf(" %10.2f %10.2f %10.2f %10.2f",
				float64(raw.OpnPric), float64(raw.HghPric), float64(raw.LwPric), float64(raw.ClsPric))))
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %12s", util.FormatQty(float64(raw.OpnIntrst)))))
		chg := float64(raw.ChngInOpnIntrst)
		st := gainStyle
		if chg < 0 {
			st = lossStyle
		}
		b.WriteString(st.Render(fmt.Sprintf(" %12s", util.FormatQty(chg))))
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("  no contracts for this selection"))
	}
	return b.String()
}

func (m model) renderAnnouncements() string {
	if m.annLoading {
		return dimStyle.Render("  loading...")
	}
	var b strings.Builder
	if m.annBSE {
		if m.bseResp == nil {
			return dimStyle.Render("  enter a scrip code and press enter")
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("  scrip %s  %s to %s  page %d/%d",
			m.bseResp.ScripCode, m.bseResp.FromDate, m.bseResp.ToDate,
			m.bseResp.CurrentPage, m.bseResp.TotalPages)))
		b.WriteString("\n\n")
		for _, a := range m.bseResp.Announcements {
			b.WriteString("  " + symbolStyle.Render(a.NewsDate) + "  " + dimStyle.Render(a.Category) + "\n")
			b.WriteString("  " + a.Subject + "\n")
			if a.AttachmentURL != "" {
				b.WriteString("  " + suggStyle.Render(a.AttachmentURL) + "\n")
			}
			b.WriteString("\n")
		}
		return b.String()
	}
	if m.nseResp == nil {
		return dimStyle.Render("  enter a symbol and press enter")
	}
	if m.nseResp.Message != "" && len(m.nseResp.Announcements) == 0 {
		return dimStyle.Render("  " + m.nseResp.Message)
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s  %s to %s  %d announcements",
		m.nseResp.Symbol, m.nseResp.FromDate, m.nseResp.ToDate, m.nseResp.Count)))
	b.WriteString("\n\n")
	for _, a := range m.nseResp.Announcements {
		b.WriteString("  " + symbolStyle.Render(a.BroadcastDate) + "  " + dimStyle.Render(a.Category) + "\n")
		b.WriteString("  " + a.Subject + "\n")
		if a.AttachmentLink != "" {
			b.WriteString("  " + suggStyle.Render(a.AttachmentLink) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderFooter() string {
	if m.status != "" {
		return errStyle.Render(" " + m.status)
	}
	switch m.active {
	case viewLogin:
		return dimStyle.Render(" enter: sign in | ctrl+c: quit")
	case viewCompare:
		return dimStyle.Render(" tab: field | enter: compare/accept | ctrl+t: gainers/losers/all | ctrl+n: view | ctrl+x: logout")
	case viewFO:
		return dimStyle.Render(" r: load | ←→: symbol | ↑↓: expiry | o: futures/options | ctrl+n: view")
	default:
		return dimStyle.Render(" enter: load | ctrl+b: NSE/BSE | ctrl+←→: page | ctrl+n: view")
	}
}

// padOrTrunc pads s with spaces to width runes, or truncates if longer.
// Instrument names out of the bhavcopy are not always ASCII.
func padOrTrunc(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

func loadConfig() *config.Config {
	godotenv.Load()
	cfgPath := "config/nsedesk.yaml"
	if p := os.Getenv("NSEDESK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// runLogin prints the backend login URL, reads the redirected token (from
// the -token flag or stdin), stores it, and verifies it against /auth/me.
func runLogin(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	tokenFlag := fs.String("token", "", "token from the login redirect (default: read from stdin)")
	fs.Parse(args)

	tokens := auth.NewTokenStore(cfg.Auth.TokenPath)
	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, tokens)

	token := strings.TrimSpace(*tokenFlag)
	if token == "" {
		fmt.Println("open this URL in a browser and sign in with Google:")
		fmt.Println()
		fmt.Println("  " + client.LoginURL())
		fmt.Println()
		fmt.Print("paste the token from the redirect: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading token: %v\n", err)
			os.Exit(1)
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "no token given")
		os.Exit(1)
	}
	if err := tokens.Save(token); err != nil {
		fmt.Fprintf(os.Stderr, "storing token: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sess, err := client.Me(ctx)
	if err != nil {
		tokens.Clear()
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "token rejected, request a fresh one")
		} else {
			fmt.Fprintf(os.Stderr, "verifying token: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("logged in as %s <%s>\n", sess.Name, sess.Email)
}

func runLogout(cfg *config.Config) {
	tokens := auth.NewTokenStore(cfg.Auth.TokenPath)
	if tok := tokens.Token(); tok != "" {
		client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, tokens)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Best effort: the local credential goes away regardless.
		client.Logout(ctx, tok)
	}
	tokens.Clear()
	fmt.Println("logged out")
}

func main() {
	cfg := loadConfig()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "login":
			runLogin(cfg, os.Args[2:])
			return
		case "logout":
			runLogout(cfg)
			return
		}
	}

	// The TUI owns the terminal, so logs go to a file.
	logPath := fmt.Sprintf("/tmp/nsedesk-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))

	tokens := auth.NewTokenStore(cfg.Auth.TokenPath)
	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, tokens)
	sessions := auth.NewSessions(tokens, client, logger)
	flow := compare.NewFlow(client, logger, compare.Options{})
	engine := fo.NewEngine(cfg.UI.PrioritySymbols)

	p := tea.NewProgram(
		initialModel(logger, client, sessions, flow, engine),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	flow.SetOnChange(func() { p.Send(flowChangedMsg{}) })

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
