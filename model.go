package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

const (
	maxLogLines    = 400
	maxHistory     = 50
	toastDuration  = 5 * time.Second
	appTitle       = "配方查詢系統"
	msgLoggedOut   = "已登出"
	msgNothingToEx = "配方尚未載入完成，無法匯出"
)

type keyMap struct {
	quit          key.Binding
	cycleFocus    key.Binding
	toggleSidebar key.Binding
	toggleLogs    key.Binding
	cycleTheme    key.Binding
	back          key.Binding
	export        key.Binding
	copyLine      key.Binding
	toggleHelp    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "離開"),
		),
		cycleFocus: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "切換焦點"),
		),
		toggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "側邊欄"),
		),
		toggleLogs: key.NewBinding(
			key.WithKeys("f6"),
			key.WithHelp("F6", "紀錄"),
		),
		cycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "主題"),
		),
		back: key.NewBinding(
			key.WithKeys("backspace", "alt+left"),
			key.WithHelp("⌫", "上一頁"),
		),
		export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "匯出 Excel"),
		),
		copyLine: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "複製"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "說明"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.cycleFocus, k.toggleSidebar, k.back, k.export, k.toggleHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.cycleFocus, k.toggleSidebar, k.toggleLogs, k.cycleTheme},
		{k.back, k.export, k.copyLine},
		{k.toggleHelp, k.quit},
	}
}

type focusArea int

const (
	focusPage focusArea = iota
	focusSidebar
	focusLogs
)

// appService is everything the screens need from the recipe server.
type appService interface {
	recipeSource
	recipeSearcher
	authenticator
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*recipe.SessionResponse, error)
}

// appDeps are handed to newApp by main and by tests.
type appDeps struct {
	service appService
	// chat is nil when replies are simulated locally.
	chat      chatResponder
	chats     *chatStore
	events    *eventRecorder
	ui        *uiConfig
	uiPath    string
	startPath string
}

type sessionLoadedMsg struct {
	resp *recipe.SessionResponse
	err  error
}

type logoutDoneMsg struct {
	err error
}

type model struct {
	width  int
	height int

	styles  styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	deps appDeps

	sidebar *sidebar
	login   *loginPage
	search  *searchPage
	recipe  *ingredientsTable
	chat    *chatPage
	logsCol *logsColumn

	page        pageKind
	location    string
	history     []string
	pendingPath string
	focus       focusArea
	username    string

	logs          viewport.Model
	logLines      []string
	logsSelection int
	showLogs      bool

	contentHeight int
	logsHeight    int

	toastMessage string
	toastExpires time.Time

	promptActive bool
	prompt       promptRequestMsg
	promptInput  textinput.Model
}

func newApp(deps appDeps) *model {
	if deps.ui == nil {
		deps.ui = &uiConfig{}
	}
	if strings.TrimSpace(deps.startPath) == "" {
		deps.startPath = homepagePath
	}
	s := newStyles()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = s.statusHint

	input := textinput.New()
	input.CharLimit = 64
	input.Prompt = "› "

	m := &model{
		styles:        s,
		keys:          newKeyMap(),
		help:          help.New(),
		spinner:       sp,
		deps:          deps,
		logs:          viewport.New(80, logsColumnHeight),
		logsSelection: -1,
		promptInput:   input,
	}
	m.logsCol = newLogsColumn(m, s)
	m.sidebar = newSidebar(deps.chats, m, s)
	m.sidebar.collapsed = deps.ui.SidebarCollapsed

	var (
		auth     authenticator
		searcher recipeSearcher
		source   recipeSource
	)
	if deps.service != nil {
		auth, searcher, source = deps.service, deps.service, deps.service
	}
	m.login = newLoginPage(auth, m, deps.ui.LastUsername)
	m.search = newSearchPage(searcher, m)
	m.recipe = newIngredientsTable(deps.ui.ingredientHeaders(), source, m)
	m.chat = newChatPage(deps.chat, deps.chats, m, s)
	m.page = pageLogin
	m.location = "/"
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, checkSession(m.deps.service), textinput.Blink)
}

func checkSession(service appService) tea.Cmd {
	return func() tea.Msg {
		if service == nil {
			return sessionLoadedMsg{err: fmt.Errorf("no recipe service")}
		}
		resp, err := service.Session(context.Background())
		return sessionLoadedMsg{resp: resp, err: err}
	}
}

func (m *model) currentPage() column {
	switch m.page {
	case pageSearch:
		return m.search
	case pageRecipe:
		return m.recipe
	case pageChat:
		return m.chat
	default:
		return m.login
	}
}

func (m *model) focusedColumn() column {
	switch m.focus {
	case focusSidebar:
		if m.sidebar.Width() > 0 {
			return m.sidebar
		}
	case focusLogs:
		if m.showLogs {
			return m.logsCol
		}
	}
	return m.currentPage()
}

// typing reports whether the focused page routes plain keys to a text field.
func (m *model) typing() bool {
	if m.promptActive {
		return true
	}
	if m.focus != focusPage {
		return false
	}
	switch m.page {
	case pageLogin, pageChat:
		return true
	case pageSearch:
		return m.search.typing()
	}
	return false
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case navigateMsg:
		return m, m.navigate(msg.path, true)
	case toastMsg:
		m.setToast(msg.text, 0)
		return m, nil
	case sessionLoadedMsg:
		return m, m.applySession(msg)

	case recipeLoadedMsg:
		if m.recipe.apply(msg) {
			event := uiEvent{Event: "recipe_loaded", Page: pageRecipe.String(), RecipeID: msg.recipeID}
			if msg.err != nil {
				event.Event = "recipe_failed"
				event.Extra = map[string]string{"error": msg.err.Error()}
			}
			m.deps.events.Emit(event)
		}
		return m, nil
	case materialInfoMsg:
		if m.recipe.panel.open && msg.seq == m.recipe.panel.seq {
			m.deps.events.Emit(uiEvent{Event: "material_opened", Page: pageRecipe.String(), RecipeID: m.recipe.recipeID, Material: msg.code})
		}
		_, cmd := m.recipe.Update(msg)
		return m, cmd
	case searchResultsMsg:
		_, cmd := m.search.Update(msg)
		return m, cmd
	case chatReplyMsg:
		_, cmd := m.chat.Update(msg)
		return m, cmd
	case conversationsChangedMsg:
		_, cmd := m.sidebar.Update(msg)
		return m, cmd
	case openConversationMsg:
		m.chat.Open(msg.conv)
		return m, m.navigate("/chatbot", true)

	case loginResultMsg:
		return m, m.applyLogin(msg)
	case logoutRequestMsg:
		return m, m.logout()
	case logoutDoneMsg:
		if msg.err != nil {
			m.appendLog(fmt.Sprintf("[WARN] 登出請求失敗: %v", msg.err))
		}
		m.deps.events.Emit(uiEvent{Event: "logout"})
		m.setUser("")
		m.history = nil
		m.setToast(msgLoggedOut, 0)
		return m, m.navigate("/", false)

	case promptRequestMsg:
		m.openPrompt(msg)
		return m, textinput.Blink
	case exportDoneMsg:
		if msg.err != nil {
			m.appendLog(fmt.Sprintf("[ERROR] 匯出失敗: %v", msg.err))
			m.setToast("匯出失敗", 0)
			return m, nil
		}
		m.appendLog("[INFO] 已匯出 " + msg.path)
		m.deps.events.Emit(uiEvent{Event: "export", Page: pageRecipe.String(), RecipeID: m.recipe.recipeID, Extra: map[string]string{"path": msg.path}})
		m.setToast("已匯出 "+msg.path, 0)
		return m, nil
	}

	if m.promptActive {
		var cmd tea.Cmd
		m.promptInput, cmd = m.promptInput.Update(msg)
		return m, cmd
	}
	_, cmd := m.currentPage().Update(msg)
	return m, cmd
}

// navigate switches to the screen for path and starts whatever load it needs.
// Every screen but the login screen requires a signed in user; path is kept
// and revisited after login.
func (m *model) navigate(path string, record bool) tea.Cmd {
	loc := parseLocation(path)
	if loc.page != pageLogin && m.username == "" {
		m.pendingPath = loc.raw
		loc = parseLocation("/")
		record = false
	}
	if record && m.location != "" && m.location != loc.raw {
		m.history = append(m.history, m.location)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
	}
	m.location = loc.raw
	m.page = loc.page
	m.focus = focusPage
	m.appendLog("[INFO] 前往 " + loc.raw)
	m.deps.events.Emit(uiEvent{Event: "navigate", Page: loc.page.String(), RecipeID: loc.recipeID})

	switch loc.page {
	case pageRecipe:
		m.recipe.closePanel()
		return m.recipe.Load(loc.recipeID)
	case pageSearch:
		return m.search.Load(loc.query)
	case pageLogin:
		m.login.reset()
	}
	return nil
}

func (m *model) back() tea.Cmd {
	if len(m.history) == 0 {
		return nil
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return m.navigate(prev, false)
}

func (m *model) applySession(msg sessionLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.appendLog(fmt.Sprintf("[WARN] 無法確認登入狀態: %v", msg.err))
		m.pendingPath = m.deps.startPath
		return nil
	}
	if msg.resp != nil && msg.resp.LoggedIn {
		m.setUser(msg.resp.Username)
		return m.navigate(m.deps.startPath, false)
	}
	return m.navigate(m.deps.startPath, false)
}

func (m *model) applyLogin(msg loginResultMsg) tea.Cmd {
	cmd := m.login.apply(msg)
	if msg.err != nil || msg.resp == nil || !msg.resp.Success {
		m.deps.events.Emit(uiEvent{Event: "login_failed", Page: pageLogin.String(), Extra: map[string]string{"username": msg.username}})
		return cmd
	}
	m.setUser(msg.username)
	m.deps.ui.LastUsername = msg.username
	m.saveUI()
	m.deps.events.Emit(uiEvent{Event: "login", Page: pageLogin.String()})
	m.appendLog("[INFO] 使用者 " + msg.username + " 已登入")
	if pending := m.pendingPath; pending != "" && parseLocation(pending).page != pageLogin {
		m.pendingPath = ""
		return navigateTo(pending)
	}
	return cmd
}

func (m *model) setUser(username string) {
	m.username = strings.TrimSpace(username)
	m.sidebar.SetUser(m.username)
	m.deps.events.SetUser(m.username)
}

func (m *model) logout() tea.Cmd {
	service := m.deps.service
	return func() tea.Msg {
		if service == nil {
			return logoutDoneMsg{}
		}
		return logoutDoneMsg{err: service.Logout(context.Background())}
	}
}

func (m *model) saveUI() {
	if m.deps.uiPath == "" {
		return
	}
	if err := saveUIConfig(m.deps.ui, m.deps.uiPath); err != nil {
		m.appendLog(fmt.Sprintf("[WARN] 無法儲存介面設定: %v", err))
	}
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.promptActive {
		return m.updatePrompt(msg)
	}
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.toggleSidebar):
		m.sidebar.Toggle()
		if m.sidebar.Width() == 0 && m.focus == focusSidebar {
			m.focus = focusPage
		}
		m.deps.ui.SidebarCollapsed = m.sidebar.collapsed
		m.saveUI()
		m.applyLayout()
		return nil
	case key.Matches(msg, m.keys.cycleFocus):
		m.cycleFocus()
		return nil
	case key.Matches(msg, m.keys.toggleLogs):
		m.showLogs = !m.showLogs
		if !m.showLogs && m.focus == focusLogs {
			m.focus = focusPage
		}
		m.applyLayout()
		return nil
	case key.Matches(msg, m.keys.cycleTheme):
		next := nextMarkdownTheme(currentMarkdownTheme())
		setMarkdownTheme(next)
		m.deps.ui.Theme = string(next)
		m.saveUI()
		m.setToast("主題: "+markdownThemeLabel(next), 0)
		return nil
	}

	if !m.typing() {
		switch {
		case key.Matches(msg, m.keys.quit):
			return tea.Quit
		case key.Matches(msg, m.keys.toggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			m.applyLayout()
			return nil
		}
	}

	switch m.focus {
	case focusSidebar:
		if m.sidebar.Width() > 0 {
			_, cmd := m.sidebar.Update(msg)
			return cmd
		}
	case focusLogs:
		if m.showLogs {
			return m.updateLogs(msg)
		}
	}

	if m.page == pageRecipe && !m.recipe.panel.open {
		switch {
		case key.Matches(msg, m.keys.back):
			return m.back()
		case key.Matches(msg, m.keys.export):
			snap, ok := m.recipe.snapshot()
			if !ok {
				m.setToast(msgNothingToEx, 0)
				return nil
			}
			return exportRecipe(snap, m.deps.ui.exportDir())
		}
	}
	_, cmd := m.currentPage().Update(msg)
	return cmd
}

func (m *model) cycleFocus() {
	for i := 0; i < 3; i++ {
		m.focus = (m.focus + 1) % 3
		switch m.focus {
		case focusSidebar:
			if m.sidebar.Width() > 0 {
				return
			}
		case focusLogs:
			if m.showLogs {
				return
			}
		default:
			return
		}
	}
}

func (m *model) updateLogs(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.copyLine):
		if m.logsSelection < 0 || m.logsSelection >= len(m.logLines) {
			m.setToast("請先點選一行紀錄", 0)
			return nil
		}
		return copyToClipboard(m.logLines[m.logsSelection], m)
	case msg.String() == "esc":
		m.logsSelection = -1
		m.refreshLogs()
		return nil
	}
	_, cmd := m.logsCol.Update(msg)
	return cmd
}

func (m *model) openPrompt(req promptRequestMsg) {
	m.prompt = req
	m.promptActive = true
	m.promptInput.SetValue(req.value)
	m.promptInput.CursorEnd()
	if req.kind == promptDelete {
		m.promptInput.Blur()
		return
	}
	m.promptInput.Focus()
}

func (m *model) closePrompt() {
	m.promptActive = false
	m.promptInput.Blur()
	m.promptInput.Reset()
}

func (m *model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	if m.prompt.kind == promptDelete {
		switch msg.String() {
		case "y", "Y", "enter":
			return m.submitPrompt()
		case "n", "N", "esc":
			m.closePrompt()
		}
		return nil
	}
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return nil
	case "enter":
		return m.submitPrompt()
	}
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return cmd
}

// submitPrompt applies the pending conversation change. A blank name cancels
// creating and renaming.
func (m *model) submitPrompt() tea.Cmd {
	req := m.prompt
	value := strings.TrimSpace(m.promptInput.Value())
	m.closePrompt()
	store := m.deps.chats

	switch req.kind {
	case promptNewChat:
		if value == "" {
			return nil
		}
		conv, err := store.Create(value)
		if err != nil {
			m.appendLog(fmt.Sprintf("[ERROR] 建立對話失敗: %v", err))
			return nil
		}
		m.sidebar.reload(conv.ID)
		return func() tea.Msg { return openConversationMsg{conv: conv} }
	case promptRename:
		if value == "" {
			return nil
		}
		if err := store.Rename(req.conv.ID, value); err != nil {
			m.appendLog(fmt.Sprintf("[ERROR] 重新命名對話失敗: %v", err))
			return nil
		}
		if m.chat.conv.ID == req.conv.ID {
			m.chat.conv.Name = value
		}
		m.sidebar.reload(req.conv.ID)
	case promptDelete:
		if err := store.Delete(req.conv.ID); err != nil {
			m.appendLog(fmt.Sprintf("[ERROR] 刪除對話失敗: %v", err))
			return nil
		}
		m.chat.Close(req.conv.ID)
		m.sidebar.reload(0)
		m.setToast(fmt.Sprintf("已刪除 \"%s\"", req.conv.Name), 0)
	}
	return nil
}

// handleMouse translates screen coordinates into the local coordinates of the
// column under the pointer.
func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.promptActive {
		return nil
	}
	const top = 1
	y := msg.Y - top
	if y < 0 {
		return nil
	}
	if y >= m.contentHeight {
		logsY := y - m.contentHeight
		if !m.showLogs || logsY >= m.logsHeight {
			return nil
		}
		if msg.Type == tea.MouseLeft {
			m.focus = focusLogs
		}
		_, cmd := m.logsCol.HandleMouse(msg.X, logsY, msg)
		return cmd
	}

	sw := m.sidebar.Width()
	if msg.X < sw {
		if msg.Type == tea.MouseLeft {
			m.focus = focusSidebar
		}
		_, cmd := m.sidebar.HandleMouse(msg.X, y, msg)
		return cmd
	}
	if msg.Type == tea.MouseLeft {
		m.focus = focusPage
	}
	if mc, ok := m.currentPage().(mouseColumn); ok {
		_, cmd := mc.HandleMouse(msg.X-sw, y, msg)
		return cmd
	}
	return nil
}

func (m *model) applyLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.help.Width = m.width - 2
	helpHeight := lipgloss.Height(m.help.View(m.keys))

	topChrome := 1
	bottomChrome := 1 + helpHeight
	m.logsHeight = 0
	if m.showLogs {
		m.logsHeight = logsColumnHeight
	}
	m.contentHeight = maxInt(m.height-topChrome-bottomChrome-m.logsHeight, 6)

	sw := m.sidebar.Width()
	pageWidth := maxInt(m.width-sw, 20)
	if sw > 0 {
		m.sidebar.SetSize(sw, m.contentHeight)
	}
	m.login.SetSize(pageWidth, m.contentHeight)
	m.search.SetSize(pageWidth, m.contentHeight)
	m.recipe.SetSize(pageWidth, m.contentHeight)
	m.chat.SetSize(pageWidth, m.contentHeight)
	if m.showLogs {
		m.logsCol.SetSize(m.width, m.logsHeight)
	}
	setMarkdownWordWrap(minInt(pageWidth-6, 100))
}

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return "載入中..."
	}

	title := appTitle + " • " + m.currentPage().Title()
	if m.username != "" {
		title += " • " + m.username
	}
	top := m.styles.topBar.Width(m.width).Render(title)

	var content string
	if m.promptActive {
		content = lipgloss.Place(m.width, m.contentHeight, lipgloss.Center, lipgloss.Center, m.renderPrompt())
	} else {
		page := m.currentPage().View(m.styles, m.focus == focusPage)
		if sw := m.sidebar.Width(); sw > 0 {
			content = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.styles, m.focus == focusSidebar), page)
		} else {
			content = page
		}
	}

	parts := []string{top, content}
	if m.showLogs {
		parts = append(parts, m.logsCol.View(m.styles, m.focus == focusLogs))
	}
	parts = append(parts,
		m.styles.statusHint.Padding(0, 1).Render(m.help.View(m.keys)),
		m.renderStatus(),
	)
	return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *model) renderPrompt() string {
	hints := []string{"enter 確認", "esc 取消"}
	body := m.promptInput.View()
	if m.prompt.kind == promptDelete {
		hints = []string{"y 刪除", "n 取消"}
		body = ""
	}
	lines := []string{m.styles.cmdPrompt.Render(m.prompt.title)}
	if body != "" {
		lines = append(lines, "", body)
	}
	lines = append(lines, "", m.styles.cmdHint.Render(strings.Join(hints, " • ")))
	overlayWidth := minInt(56, maxInt(m.width-8, 24))
	return m.styles.cmdOverlay.Width(overlayWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *model) busyMessage() string {
	switch {
	case m.login.busy:
		return "登入中"
	case m.page == pageSearch && m.search.loading:
		return "搜尋中"
	case m.page == pageRecipe && len(m.recipe.rows) > 0 && m.recipe.rows[0].kind == rowLoading:
		return loadingText
	case m.page == pageChat && m.chat.pending > 0:
		return chatBotName + " 正在輸入"
	}
	return ""
}

func (m *model) renderStatus() string {
	focused := m.focusedColumn()
	focusValue := strings.TrimSpace(focused.FocusValue())
	if focusValue == "" {
		focusValue = missingValue
	}
	segments := []string{
		m.styles.statusSeg.Render(fmt.Sprintf("%s: %s", focused.Title(), focusValue)),
	}
	if busy := m.busyMessage(); busy != "" {
		segments = append(segments, m.styles.statusSeg.Render(m.spinner.View()+" "+busy))
	}
	if m.username != "" {
		segments = append(segments, m.styles.statusSeg.Render("使用者: "+m.username))
	}
	segments = append(segments, m.styles.statusSeg.Render("主題: "+markdownThemeLabel(currentMarkdownTheme())))
	if m.toastMessage != "" && time.Now().Before(m.toastExpires) {
		segments = append(segments, m.styles.statusSeg.Render(m.toastMessage))
	}
	return m.styles.statusBar.Width(m.width).Render(strings.Join(segments, "│"))
}

func (m *model) appendLog(line string) {
	line = strings.TrimRight(stripansi.Strip(line), "\n")
	if line == "" {
		return
	}
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		drop := len(m.logLines) - maxLogLines
		m.logLines = m.logLines[drop:]
		if m.logsSelection >= 0 {
			m.logsSelection -= drop
		}
	}
	m.refreshLogs()
	m.logs.GotoBottom()
}

func (m *model) refreshLogs() {
	lines := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		if i == m.logsSelection {
			line = m.styles.tableSel.Render(line)
		}
		lines[i] = line
	}
	m.logs.SetContent(strings.Join(lines, "\n"))
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = toastDuration
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}
