package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

const (
	msgUsernameRequired = "請輸入帳號"
	msgPasswordRequired = "請輸入密碼"
	msgLoginInvalid     = "帳號或密碼錯誤，請重新輸入"
	msgLoginUnavailable = "無法連線到伺服器，請稍後再試"
	msgForgotPassword   = "請聯繫系統管理員重設密碼。"
	homepagePath        = "/homepage"
)

type authenticator interface {
	Login(ctx context.Context, username, password string) (*recipe.LoginResponse, error)
}

type loginResultMsg struct {
	username string
	resp     *recipe.LoginResponse
	err      error
}

type loginPage struct {
	service authenticator
	log     eventLog

	inputs    []textinput.Model
	focus     int
	fieldErrs []string
	summary   string
	busy      bool
	width     int
	height    int
}

func newLoginPage(service authenticator, log eventLog, lastUser string) *loginPage {
	user := textinput.New()
	user.Prompt = "帳號："
	user.CharLimit = 64
	user.SetValue(lastUser)
	pass := textinput.New()
	pass.Prompt = "密碼："
	pass.CharLimit = 64
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	p := &loginPage{
		service:   service,
		log:       log,
		inputs:    []textinput.Model{user, pass},
		fieldErrs: make([]string, 2),
	}
	if strings.TrimSpace(lastUser) != "" {
		p.focus = 1
	}
	p.inputs[p.focus].Focus()
	return p
}

func (p *loginPage) reset() {
	p.inputs[1].Reset()
	p.clearErrors()
	p.busy = false
}

func (p *loginPage) clearErrors() {
	for i := range p.fieldErrs {
		p.fieldErrs[i] = ""
	}
	p.summary = ""
}

// submit validates both fields before sending anything to the service.
func (p *loginPage) submit() tea.Cmd {
	if p.busy {
		return nil
	}
	p.clearErrors()
	username := strings.TrimSpace(p.inputs[0].Value())
	password := strings.TrimSpace(p.inputs[1].Value())
	if username == "" {
		p.fieldErrs[0] = msgUsernameRequired
	}
	if password == "" {
		p.fieldErrs[1] = msgPasswordRequired
	}
	if username == "" || password == "" {
		p.summary = "請填寫帳號與密碼"
		return nil
	}
	p.busy = true
	service := p.service
	return func() tea.Msg {
		if service == nil {
			return loginResultMsg{username: username, err: fmt.Errorf("no login service")}
		}
		resp, err := service.Login(context.Background(), username, password)
		return loginResultMsg{username: username, resp: resp, err: err}
	}
}

func (p *loginPage) apply(msg loginResultMsg) tea.Cmd {
	p.busy = false
	switch {
	case msg.err != nil:
		if p.log != nil {
			p.log.appendLog(fmt.Sprintf("[ERROR] 登入失敗: %v", msg.err))
		}
		p.summary = msgLoginUnavailable
		return nil
	case msg.resp == nil || !msg.resp.Success:
		p.summary = msgLoginInvalid
		if msg.resp != nil && strings.TrimSpace(msg.resp.Message) != "" {
			p.summary = msg.resp.Message
		}
		return nil
	}
	p.reset()
	target := strings.TrimSpace(msg.resp.Redirect)
	if target == "" {
		target = homepagePath
	}
	return navigateTo(target)
}

func (p *loginPage) SetSize(width, height int) {
	p.width = width
	p.height = height
	for i := range p.inputs {
		p.inputs[i].Width = minInt(32, maxInt(width-16, 8))
	}
}

func (p *loginPage) Update(msg tea.Msg) (column, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		return p, p.apply(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if p.focus == 0 && strings.TrimSpace(p.inputs[1].Value()) == "" {
				p.setFocus(1)
				return p, nil
			}
			return p, p.submit()
		case "tab", "shift+tab", "up", "down":
			p.setFocus((p.focus + 1) % len(p.inputs))
			return p, nil
		case "ctrl+r":
			return p, toast(msgForgotPassword)
		}
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return p, cmd
}

func (p *loginPage) setFocus(i int) {
	p.inputs[p.focus].Blur()
	p.focus = i
	p.inputs[p.focus].Focus()
}

func (p *loginPage) Title() string { return "登入" }

func (p *loginPage) FocusValue() string {
	if p.busy {
		return "登入中..."
	}
	return ""
}

func (p *loginPage) View(s styles, focused bool) string {
	lines := []string{s.cmdPrompt.Render("配方查詢系統"), ""}
	for i, in := range p.inputs {
		lines = append(lines, in.View())
		if msg := strings.TrimSpace(p.fieldErrs[i]); msg != "" {
			lines = append(lines, s.formError.Render("  "+msg))
		}
	}
	lines = append(lines, "")
	if p.summary != "" {
		lines = append(lines, s.formError.Render(p.summary))
	}
	if p.busy {
		lines = append(lines, s.loadingRow.Render("登入中..."))
	}
	lines = append(lines, s.cmdHint.Render("enter 登入 · tab 切換欄位 · ctrl+r 忘記密碼"))
	form := s.cmdOverlay.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, form)
}
