package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/valueproject/recipe-lookup/internal/client"
)

func main() {
	server := flag.String("server", "", "Recipe server base URL (default from ui.yaml, then http://localhost:5000)")
	theme := flag.String("theme", "", "Markdown rendering theme: auto, light, or dark")
	open := flag.String("open", "", "Location to open after login, e.g. /search/result/final/G001")
	configDir := flag.String("config-dir", "", "Directory holding ui.yaml, chat.sqlite and ui-events.ndjson")
	showLogs := flag.Bool("logs", false, "Show the log pane on start")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "error: recipe-lookup needs an interactive terminal")
		os.Exit(1)
	}

	dir := strings.TrimSpace(*configDir)
	if dir == "" {
		dir = resolveConfigDir()
	}
	ui, uiPath := loadUIConfig(dir)
	if v := strings.TrimSpace(*server); v != "" {
		ui.ServerURL = v
	}
	themeName := ui.Theme
	if v := strings.TrimSpace(*theme); v != "" {
		themeName = v
	}
	setMarkdownTheme(markdownThemeFromString(themeName))

	service, err := client.New(ui.serverURL())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	chats, err := openChatStore(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer chats.Close()

	deps := appDeps{
		service:   service,
		chats:     chats,
		events:    newEventRecorder(filepath.Join(dir, "ui-events.ndjson")),
		ui:        ui,
		uiPath:    uiPath,
		startPath: *open,
	}
	if ui.Chat.UseServer {
		deps.chat = service
	}
	app := newApp(deps)
	app.showLogs = *showLogs
	app.appendLog("[INFO] 伺服器 " + service.BaseURL())

	if _, err := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
