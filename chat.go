package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	chatBotName    = "小江解"
	chatReplyDelay = time.Second
	chatGreeting   = "嗨！我是小江解，有什麼配方問題都可以問我。"
)

type chatResponder interface {
	Chat(ctx context.Context, message string) (string, error)
}

type chatReplyMsg struct {
	conversationID int64
	text           string
	err            error
}

// conversationsChangedMsg tells the sidebar to reload the conversation list.
type conversationsChangedMsg struct {
	selectID int64
}

// simulatedReply is the canned answer used when no chat service is configured.
func simulatedReply(message string) string {
	return fmt.Sprintf("你剛剛問了：「%s」，這是模擬回覆喔～", message)
}

type chatPage struct {
	service chatResponder
	store   *chatStore
	log     eventLog
	styles  styles

	conv     conversation
	messages []chatMessage
	pending  int
	delay    time.Duration

	viewport viewport.Model
	input    textinput.Model
	width    int
	height   int
}

// newChatPage replies through service when it is non-nil and with
// simulatedReply after a short delay otherwise.
func newChatPage(service chatResponder, store *chatStore, log eventLog, s styles) *chatPage {
	input := textinput.New()
	input.Placeholder = "輸入訊息，按 Enter 送出"
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()
	return &chatPage{
		service:  service,
		store:    store,
		log:      log,
		styles:   s,
		delay:    chatReplyDelay,
		viewport: viewport.New(40, 10),
		input:    input,
	}
}

func (c *chatPage) logf(format string, args ...any) {
	if c.log != nil {
		c.log.appendLog(fmt.Sprintf(format, args...))
	}
}

// Open shows conv and its stored history.
func (c *chatPage) Open(conv conversation) {
	c.conv = conv
	c.pending = 0
	msgs, err := c.store.Messages(conv.ID)
	if err != nil {
		c.logf("[ERROR] 讀取對話 %q 失敗: %v", conv.Name, err)
	}
	c.messages = msgs
	c.refresh()
}

// Close forgets the open conversation, e.g. after it was deleted.
func (c *chatPage) Close(id int64) {
	if c.conv.ID != id {
		return
	}
	c.conv = conversation{}
	c.messages = nil
	c.refresh()
}

func (c *chatPage) send() tea.Cmd {
	text := strings.TrimSpace(c.input.Value())
	if text == "" {
		return nil
	}
	c.input.Reset()

	var cmds []tea.Cmd
	if c.conv.ID == 0 && c.store != nil {
		conv, err := c.store.Create(defaultConversationName)
		if err != nil {
			c.logf("[ERROR] 建立對話失敗: %v", err)
		} else {
			c.conv = conv
			selectID := conv.ID
			cmds = append(cmds, func() tea.Msg { return conversationsChangedMsg{selectID: selectID} })
		}
	}
	c.add(c.conv.ID, chatMessage{Role: "user", Text: text})
	c.pending++

	convID := c.conv.ID
	if c.service == nil {
		cmds = append(cmds, tea.Tick(c.delay, func(time.Time) tea.Msg {
			return chatReplyMsg{conversationID: convID, text: simulatedReply(text)}
		}))
		return tea.Batch(cmds...)
	}
	service := c.service
	cmds = append(cmds, func() tea.Msg {
		reply, err := service.Chat(context.Background(), text)
		return chatReplyMsg{conversationID: convID, text: reply, err: err}
	})
	return tea.Batch(cmds...)
}

func (c *chatPage) add(convID int64, msg chatMessage) {
	if convID != 0 {
		if err := c.store.Append(convID, msg); err != nil {
			c.logf("[ERROR] 儲存訊息失敗: %v", err)
		}
	}
	if convID == c.conv.ID {
		c.messages = append(c.messages, msg)
		c.refresh()
	}
}

func (c *chatPage) receive(msg chatReplyMsg) {
	if msg.conversationID == c.conv.ID && c.pending > 0 {
		c.pending--
	}
	text := msg.text
	if msg.err != nil {
		c.logf("[ERROR] 聊天服務失敗: %v", msg.err)
		text = "抱歉，目前無法回覆，請稍後再試。"
	}
	c.add(msg.conversationID, chatMessage{Role: "bot", Text: text})
}

func (c *chatPage) refresh() {
	width := maxInt(c.viewport.Width-2, 10)
	var b strings.Builder
	if len(c.messages) == 0 {
		b.WriteString(c.styles.chatBot.Render(chatBotName+"：") + chatGreeting + "\n")
	}
	for _, m := range c.messages {
		label := c.styles.chatUser.Render("你：")
		if m.Role == "bot" {
			label = c.styles.chatBot.Render(chatBotName + "：")
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(m.Text))
		b.WriteString("\n\n")
	}
	if c.pending > 0 {
		b.WriteString(c.styles.loadingRow.Render(chatBotName + " 正在輸入..."))
	}
	c.viewport.SetContent(strings.TrimRight(b.String(), "\n"))
	c.viewport.GotoBottom()
}

func (c *chatPage) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.viewport.Width = maxInt(width-2, 10)
	// border, title, input and its rule
	c.viewport.Height = maxInt(height-2-1-2, 3)
	c.input.Width = maxInt(width-6, 10)
	c.refresh()
}

func (c *chatPage) Update(msg tea.Msg) (column, tea.Cmd) {
	switch msg := msg.(type) {
	case chatReplyMsg:
		c.receive(msg)
		return c, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return c, c.send()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			c.viewport, cmd = c.viewport.Update(msg)
			return c, cmd
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *chatPage) HandleMouse(localX, localY int, msg tea.MouseMsg) (column, tea.Cmd) {
	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c *chatPage) Title() string {
	if c.conv.Name == "" {
		return chatBotName
	}
	return chatBotName + " · " + c.conv.Name
}

func (c *chatPage) FocusValue() string {
	if c.pending > 0 {
		return "等待回覆"
	}
	return fmt.Sprintf("%d 則訊息", len(c.messages))
}

func (c *chatPage) View(s styles, focused bool) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.columnTitle.Render(c.Title()),
		c.viewport.View(),
		s.tableRule.Render(strings.Repeat("─", maxInt(c.width-2, 1))),
		c.input.View(),
	)
	return framed(s, focused, c.width, c.height, body)
}
