package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 26

type sidebarAction int

const (
	actionSearch sidebarAction = iota
	actionChatMenu
	actionConversation
	actionNewChat
	actionMemberMenu
	actionLogout
)

type sidebarItem struct {
	action sidebarAction
	conv   conversation
}

// openConversationMsg asks the app to show conv on the chat page.
type openConversationMsg struct {
	conv conversation
}

type logoutRequestMsg struct{}

type promptKind int

const (
	promptNewChat promptKind = iota
	promptRename
	promptDelete
)

// promptRequestMsg asks the app to open the input or confirm overlay.
type promptRequestMsg struct {
	kind  promptKind
	title string
	value string
	conv  conversation
}

func requestPrompt(req promptRequestMsg) tea.Cmd {
	return func() tea.Msg { return req }
}

type sidebar struct {
	store *chatStore
	log   eventLog

	list          list.Model
	conversations []conversation
	chatOpen      bool
	memberOpen    bool
	collapsed     bool
	username      string
	width         int
	height        int
}

func newSidebar(store *chatStore, log eventLog, s styles) *sidebar {
	sb := &sidebar{
		store:    store,
		log:      log,
		list:     newEntryList(nil, sidebarWidth-2, s),
		chatOpen: true,
	}
	sb.reload(0)
	return sb
}

// Width is zero while collapsed.
func (sb *sidebar) Width() int {
	if sb.collapsed {
		return 0
	}
	return sidebarWidth
}

func (sb *sidebar) Toggle() {
	sb.collapsed = !sb.collapsed
}

func (sb *sidebar) SetUser(username string) {
	sb.username = username
	sb.rebuild()
}

func (sb *sidebar) reload(selectID int64) {
	convs, err := sb.store.List()
	if err != nil && sb.log != nil {
		sb.log.appendLog(fmt.Sprintf("[ERROR] 讀取對話列表失敗: %v", err))
	}
	sb.conversations = convs
	sb.rebuild()
	if selectID == 0 {
		return
	}
	for i, item := range sb.list.Items() {
		if entry, ok := item.(listEntry); ok {
			if si, ok := entry.payload.(sidebarItem); ok && si.action == actionConversation && si.conv.ID == selectID {
				sb.list.Select(i)
				return
			}
		}
	}
}

func (sb *sidebar) rebuild() {
	index := sb.list.Index()
	chatArrow, memberArrow := "▸", "▸"
	if sb.chatOpen {
		chatArrow = "▾"
	}
	if sb.memberOpen {
		memberArrow = "▾"
	}
	items := []list.Item{
		listEntry{title: "搜尋", payload: sidebarItem{action: actionSearch}},
		listEntry{title: chatArrow + " " + chatBotName, payload: sidebarItem{action: actionChatMenu}},
	}
	if sb.chatOpen {
		for _, conv := range sb.conversations {
			items = append(items, listEntry{title: "   · " + conv.Name, payload: sidebarItem{action: actionConversation, conv: conv}})
		}
		items = append(items, listEntry{title: "   ＋ 新對話", payload: sidebarItem{action: actionNewChat}})
	}
	member := "會員"
	if sb.username != "" {
		member = sb.username
	}
	items = append(items, listEntry{title: memberArrow + " " + member, payload: sidebarItem{action: actionMemberMenu}})
	if sb.memberOpen {
		items = append(items, listEntry{title: "   登出", payload: sidebarItem{action: actionLogout}})
	}
	sb.list.SetItems(items)
	if index >= len(items) {
		index = len(items) - 1
	}
	if index >= 0 {
		sb.list.Select(index)
	}
}

func (sb *sidebar) selected() (sidebarItem, bool) {
	if entry, ok := sb.list.SelectedItem().(listEntry); ok {
		item, ok := entry.payload.(sidebarItem)
		return item, ok
	}
	return sidebarItem{}, false
}

func (sb *sidebar) activate() tea.Cmd {
	item, ok := sb.selected()
	if !ok {
		return nil
	}
	switch item.action {
	case actionSearch:
		return navigateTo(homepagePath)
	case actionChatMenu:
		sb.chatOpen = !sb.chatOpen
		sb.rebuild()
	case actionConversation:
		conv := item.conv
		return func() tea.Msg { return openConversationMsg{conv: conv} }
	case actionNewChat:
		return requestPrompt(promptRequestMsg{kind: promptNewChat, title: "請輸入新對話名稱:", value: defaultConversationName})
	case actionMemberMenu:
		sb.memberOpen = !sb.memberOpen
		sb.rebuild()
	case actionLogout:
		return func() tea.Msg { return logoutRequestMsg{} }
	}
	return nil
}

func (sb *sidebar) SetSize(width, height int) {
	sb.width = width
	sb.height = height
	sb.list.SetSize(maxInt(width-2, 1), maxInt(height-3, 1))
}

func (sb *sidebar) Update(msg tea.Msg) (column, tea.Cmd) {
	switch msg := msg.(type) {
	case conversationsChangedMsg:
		sb.reload(msg.selectID)
		return sb, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", " ":
			return sb, sb.activate()
		case "n":
			return sb, requestPrompt(promptRequestMsg{kind: promptNewChat, title: "請輸入新對話名稱:", value: defaultConversationName})
		case "r":
			if item, ok := sb.selected(); ok && item.action == actionConversation {
				return sb, requestPrompt(promptRequestMsg{kind: promptRename, title: "請輸入新名稱:", value: item.conv.Name, conv: item.conv})
			}
			return sb, nil
		case "d":
			if item, ok := sb.selected(); ok && item.action == actionConversation {
				title := fmt.Sprintf("確定要刪除 \"%s\" 嗎？", item.conv.Name)
				return sb, requestPrompt(promptRequestMsg{kind: promptDelete, title: title, conv: item.conv})
			}
			return sb, nil
		case "m":
			sb.memberOpen = !sb.memberOpen
			sb.rebuild()
			return sb, nil
		}
	}
	var cmd tea.Cmd
	sb.list, cmd = sb.list.Update(msg)
	return sb, cmd
}

// HandleMouse selects and activates the clicked entry. Entries start below
// the border and the title line.
func (sb *sidebar) HandleMouse(localX, localY int, msg tea.MouseMsg) (column, tea.Cmd) {
	switch msg.Type {
	case tea.MouseWheelUp:
		sb.list.CursorUp()
	case tea.MouseWheelDown:
		sb.list.CursorDown()
	case tea.MouseLeft:
		const itemsTop = 2
		row := localY - itemsTop
		if row < 0 {
			return sb, nil
		}
		idx := sb.list.Paginator.Page*sb.list.Paginator.PerPage + row
		if idx >= len(sb.list.Items()) {
			return sb, nil
		}
		sb.list.Select(idx)
		return sb, sb.activate()
	}
	return sb, nil
}

func (sb *sidebar) Title() string { return "選單" }

func (sb *sidebar) FocusValue() string {
	if entry, ok := sb.list.SelectedItem().(listEntry); ok {
		return entry.title
	}
	return ""
}

func (sb *sidebar) View(s styles, focused bool) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.sidebarTitle.Render("配方查詢系統"),
		sb.list.View(),
	)
	return framed(s, focused, sb.width, sb.height, body)
}
