package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

type fakeService struct {
	fakeRecipes
	loggedIn string
	logouts  int
}

func (f *fakeService) Search(_ context.Context, keyword string) (*recipe.SearchResponse, error) {
	return &recipe.SearchResponse{Results: []recipe.SearchResult{{ID: "G001", Code: "G001", Name: keyword}}}, nil
}

func (f *fakeService) Recipes(_ context.Context, _ string) (*recipe.SearchResponse, error) {
	return &recipe.SearchResponse{}, nil
}

func (f *fakeService) Login(_ context.Context, username, password string) (*recipe.LoginResponse, error) {
	if password != "secret" {
		return &recipe.LoginResponse{Success: false}, nil
	}
	return &recipe.LoginResponse{Success: true, Redirect: homepagePath}, nil
}

func (f *fakeService) Logout(context.Context) error {
	f.logouts++
	return nil
}

func (f *fakeService) Session(context.Context) (*recipe.SessionResponse, error) {
	return &recipe.SessionResponse{LoggedIn: f.loggedIn != "", Username: f.loggedIn}, nil
}

func newTestApp(t *testing.T, start string) (*model, *fakeService) {
	t.Helper()
	store, err := openChatStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	service := &fakeService{fakeRecipes: fakeRecipes{responses: map[string]*recipe.RecipeResponse{"G001": breadRecipe()}}}
	m := newApp(appDeps{service: service, chats: store, startPath: start})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, service
}

func signIn(m *model) {
	m.setUser("alice")
}

func TestNavigateRequiresLogin(t *testing.T) {
	m, _ := newTestApp(t, "")
	m.Update(navigateMsg{path: "/search/result/final/G001"})
	if m.page != pageLogin {
		t.Fatalf("page = %v, want login", m.page)
	}
	if m.pendingPath != "/search/result/final/G001" {
		t.Errorf("pendingPath = %q", m.pendingPath)
	}
	if len(m.history) != 0 {
		t.Errorf("redirect should not be recorded, history = %v", m.history)
	}
}

func TestLoginResumesPendingLocation(t *testing.T) {
	m, _ := newTestApp(t, "")
	m.Update(navigateMsg{path: "/search/result/final/G001"})

	_, cmd := m.Update(loginResultMsg{username: "alice", resp: &recipe.LoginResponse{Success: true, Redirect: homepagePath}})
	if m.username != "alice" {
		t.Fatalf("username = %q", m.username)
	}
	if cmd == nil {
		t.Fatal("expected navigation after login")
	}
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.path != "/search/result/final/G001" {
		t.Fatalf("navigation = %#v", nav)
	}
	if m.deps.ui.LastUsername != "alice" {
		t.Errorf("LastUsername = %q", m.deps.ui.LastUsername)
	}
}

func TestFailedLoginStaysOnLoginPage(t *testing.T) {
	m, _ := newTestApp(t, "")
	_, cmd := m.Update(loginResultMsg{username: "alice", resp: &recipe.LoginResponse{Success: false}})
	if cmd != nil {
		t.Error("failed login should not navigate")
	}
	if m.username != "" || m.page != pageLogin {
		t.Errorf("username = %q page = %v", m.username, m.page)
	}
	if m.login.summary != msgLoginInvalid {
		t.Errorf("summary = %q", m.login.summary)
	}
}

func TestSessionOpensStartPath(t *testing.T) {
	m, service := newTestApp(t, "/search/result/final/G001")
	service.loggedIn = "bob"
	msg := checkSession(service)()
	_, cmd := m.Update(msg)
	if m.username != "bob" || m.page != pageRecipe {
		t.Fatalf("username = %q page = %v", m.username, m.page)
	}
	if cmd == nil {
		t.Fatal("expected recipe load")
	}
	m.Update(cmd())
	if got := len(m.recipe.rows); got != 3 {
		t.Errorf("rows = %d, want 3", got)
	}
}

func TestRecipeNavigationAndBack(t *testing.T) {
	m, _ := newTestApp(t, "")
	signIn(m)
	m.Update(navigateMsg{path: homepagePath})
	_, cmd := m.Update(navigateMsg{path: recipeLocation("G001")})
	if m.page != pageRecipe {
		t.Fatalf("page = %v", m.page)
	}
	if m.recipe.rows[0].kind != rowLoading {
		t.Error("recipe should be loading")
	}
	m.Update(cmd())
	if m.recipe.rows[0].kind != rowData {
		t.Fatal("recipe should be loaded")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.page != pageSearch || m.location != homepagePath {
		t.Errorf("back went to %v %q", m.page, m.location)
	}
}

func TestBackIgnoredWhilePanelOpen(t *testing.T) {
	m, _ := newTestApp(t, "")
	signIn(m)
	m.Update(navigateMsg{path: homepagePath})
	_, cmd := m.Update(navigateMsg{path: recipeLocation("G001")})
	m.Update(cmd())
	m.recipe.activate(0)
	if !m.recipe.panel.open {
		t.Fatal("panel should be open")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.page != pageRecipe {
		t.Errorf("page = %v, want recipe", m.page)
	}
}

func TestExportNeedsLoadedRecipe(t *testing.T) {
	m, _ := newTestApp(t, "")
	signIn(m)
	m.Update(navigateMsg{path: recipeLocation("G001")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if cmd != nil {
		t.Error("export should not start while loading")
	}
	if m.toastMessage != msgNothingToEx {
		t.Errorf("toast = %q", m.toastMessage)
	}
}

func TestToastMessage(t *testing.T) {
	m, _ := newTestApp(t, "")
	m.Update(toastMsg{text: "  已複製 M001 "})
	if m.toastMessage != "已複製 M001" {
		t.Errorf("toast = %q", m.toastMessage)
	}
	if !strings.Contains(m.renderStatus(), "已複製 M001") {
		t.Error("status bar should show the toast")
	}
	m.setToast("", 0)
	if m.toastMessage != "" {
		t.Error("blank toast should clear")
	}
}

func TestAppendLogStripsANSIAndCaps(t *testing.T) {
	m, _ := newTestApp(t, "")
	m.appendLog("\x1b[31m[ERROR] boom\x1b[0m")
	if last := m.logLines[len(m.logLines)-1]; last != "[ERROR] boom" {
		t.Errorf("last line = %q", last)
	}
	for i := 0; i < maxLogLines+10; i++ {
		m.appendLog(fmt.Sprintf("[INFO] line %d", i))
	}
	if len(m.logLines) != maxLogLines {
		t.Errorf("log lines = %d", len(m.logLines))
	}
	if m.logLines[len(m.logLines)-1] != fmt.Sprintf("[INFO] line %d", maxLogLines+9) {
		t.Errorf("last line = %q", m.logLines[len(m.logLines)-1])
	}
}

func TestPromptCreatesConversation(t *testing.T) {
	m, _ := newTestApp(t, "")
	signIn(m)
	m.Update(promptRequestMsg{kind: promptNewChat, title: "請輸入新對話名稱:", value: defaultConversationName})
	if !m.promptActive {
		t.Fatal("prompt should be open")
	}
	m.promptInput.SetValue("麵糰問題")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.promptActive {
		t.Error("prompt should close")
	}
	if cmd == nil {
		t.Fatal("expected conversation to open")
	}
	open, ok := cmd().(openConversationMsg)
	if !ok || open.conv.Name != "麵糰問題" {
		t.Fatalf("msg = %#v", open)
	}
	m.Update(open)
	if m.page != pageChat || m.chat.conv.ID != open.conv.ID {
		t.Errorf("page = %v conv = %+v", m.page, m.chat.conv)
	}
}

func TestPromptBlankNameCancels(t *testing.T) {
	m, _ := newTestApp(t, "")
	m.Update(promptRequestMsg{kind: promptNewChat, value: "  "})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank name should not create a conversation")
	}
	convs, _ := m.deps.chats.List()
	if len(convs) != 0 {
		t.Errorf("conversations = %+v", convs)
	}
}

func TestPromptDeleteConversation(t *testing.T) {
	m, _ := newTestApp(t, "")
	conv, err := m.deps.chats.Create("舊對話")
	if err != nil {
		t.Fatal(err)
	}
	m.chat.Open(conv)
	m.Update(promptRequestMsg{kind: promptDelete, title: "確定要刪除嗎？", conv: conv})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.promptActive {
		t.Fatal("n should cancel")
	}
	if convs, _ := m.deps.chats.List(); len(convs) != 1 {
		t.Fatalf("conversations = %+v", convs)
	}

	m.Update(promptRequestMsg{kind: promptDelete, title: "確定要刪除嗎？", conv: conv})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if convs, _ := m.deps.chats.List(); len(convs) != 0 {
		t.Errorf("conversations = %+v", convs)
	}
	if m.chat.conv.ID != 0 {
		t.Error("deleted conversation should close")
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	m, service := newTestApp(t, "")
	signIn(m)
	m.Update(navigateMsg{path: homepagePath})
	_, cmd := m.Update(logoutRequestMsg{})
	m.Update(cmd())
	if service.logouts != 1 {
		t.Errorf("logouts = %d", service.logouts)
	}
	if m.username != "" || m.page != pageLogin {
		t.Errorf("username = %q page = %v", m.username, m.page)
	}
	if len(m.history) != 0 {
		t.Errorf("history = %v", m.history)
	}
}

func TestQuitKeyOnlyOutsideTextFields(t *testing.T) {
	m, _ := newTestApp(t, "")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if got := m.login.inputs[0].Value(); got != "q" {
		t.Errorf("username field = %q, q should be typed", got)
	}
	signIn(m)
	m.Update(navigateMsg{path: recipeLocation("G001")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q on the recipe page should quit")
	}
}
