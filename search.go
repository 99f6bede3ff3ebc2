package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

const (
	noResultsText       = "查無資料"
	msgKeywordRequired  = "請輸入搜尋關鍵字"
	msgCriteriaRequired = "請至少填寫一個搜尋條件"
)

type recipeSearcher interface {
	Search(ctx context.Context, keyword string) (*recipe.SearchResponse, error)
	Recipes(ctx context.Context, query string) (*recipe.SearchResponse, error)
}

type searchResultsMsg struct {
	seq     uint64
	keyword string
	resp    *recipe.SearchResponse
	err     error
}

// searchPage is the keyword box, the results table and the advanced search
// form.
type searchPage struct {
	service recipeSearcher
	log     eventLog

	input     textinput.Model
	table     table.Model
	results   []recipe.SearchResult
	seq       uint64
	keyword   string
	loading   bool
	tableMode bool

	advanced    bool
	advInputs   []textinput.Model
	advFocus    int
	width       int
	height      int
	tableHeight int
}

func newSearchPage(service recipeSearcher, log eventLog) *searchPage {
	input := textinput.New()
	input.Placeholder = "輸入配方編號或名稱"
	input.Prompt = "搜尋 › "
	input.CharLimit = 64
	input.Focus()

	code := textinput.New()
	code.Prompt = "產品編號："
	code.CharLimit = 32
	customer := textinput.New()
	customer.Prompt = "客戶名稱："
	customer.CharLimit = 64

	p := &searchPage{
		service:   service,
		log:       log,
		input:     input,
		advInputs: []textinput.Model{code, customer},
		table: newResultTable([]table.Column{
			{Title: "貨品編號", Width: 12},
			{Title: "名稱", Width: 24},
			{Title: "說明", Width: 30},
		}),
	}
	p.setResults(nil)
	return p
}

func (p *searchPage) logf(format string, args ...any) {
	if p.log != nil {
		p.log.appendLog(fmt.Sprintf(format, args...))
	}
}

// Load runs keyword through the search endpoint, or lists every recipe when
// it is blank.
func (p *searchPage) Load(keyword string) tea.Cmd {
	keyword = strings.TrimSpace(keyword)
	p.input.SetValue(keyword)
	p.seq++
	seq := p.seq
	p.keyword = keyword
	p.loading = true
	service := p.service
	return func() tea.Msg {
		if service == nil {
			return searchResultsMsg{seq: seq, keyword: keyword, err: fmt.Errorf("no recipe service")}
		}
		var (
			resp *recipe.SearchResponse
			err  error
		)
		if keyword == "" {
			resp, err = service.Recipes(context.Background(), "")
		} else {
			resp, err = service.Search(context.Background(), keyword)
		}
		return searchResultsMsg{seq: seq, keyword: keyword, resp: resp, err: err}
	}
}

func (p *searchPage) submit() tea.Cmd {
	keyword := strings.TrimSpace(p.input.Value())
	if keyword == "" {
		return toast(msgKeywordRequired)
	}
	return p.Load(keyword)
}

// submitAdvanced searches by product code, else by customer name.
func (p *searchPage) submitAdvanced() tea.Cmd {
	code := strings.TrimSpace(p.advInputs[0].Value())
	customer := strings.TrimSpace(p.advInputs[1].Value())
	keyword := code
	if keyword == "" {
		keyword = customer
	}
	if keyword == "" {
		return toast(msgCriteriaRequired)
	}
	p.closeAdvanced()
	p.logf("[INFO] 進階搜尋: 產品編號=%q 客戶名稱=%q", code, customer)
	return p.Load(keyword)
}

func (p *searchPage) openAdvanced() {
	p.advanced = true
	p.advFocus = 0
	for i := range p.advInputs {
		p.advInputs[i].SetValue("")
		p.advInputs[i].Blur()
	}
	p.advInputs[0].Focus()
	p.input.Blur()
}

func (p *searchPage) closeAdvanced() {
	p.advanced = false
	for i := range p.advInputs {
		p.advInputs[i].Blur()
	}
	if !p.tableMode {
		p.input.Focus()
	}
}

func (p *searchPage) apply(msg searchResultsMsg) {
	if msg.seq != p.seq {
		return
	}
	p.loading = false
	if msg.err != nil {
		p.logf("[ERROR] 載入資料時發生錯誤: %v", msg.err)
		p.setResults(nil)
		return
	}
	if msg.resp == nil {
		p.setResults(nil)
		return
	}
	p.logf("[INFO] 搜尋 %q 共 %d 筆", msg.keyword, len(msg.resp.Results))
	p.setResults(msg.resp.Results)
}

func (p *searchPage) setResults(results []recipe.SearchResult) {
	p.results = results
	if len(results) == 0 {
		p.table.SetRows([]table.Row{{"", noResultsText, ""}})
		p.table.SetCursor(0)
		return
	}
	rows := make([]table.Row, len(results))
	for i, r := range results {
		rows[i] = table.Row{r.Code, r.Name, r.Description}
	}
	p.table.SetRows(rows)
	p.table.SetCursor(0)
}

func (p *searchPage) selected() (recipe.SearchResult, bool) {
	idx := p.table.Cursor()
	if idx < 0 || idx >= len(p.results) {
		return recipe.SearchResult{}, false
	}
	return p.results[idx], true
}

func (p *searchPage) open(i int) tea.Cmd {
	if i < 0 || i >= len(p.results) || strings.TrimSpace(p.results[i].ID) == "" {
		return nil
	}
	return navigateTo(recipe.FinalResultURL(p.results[i].ID))
}

func (p *searchPage) setTableMode(on bool) {
	p.tableMode = on
	if on {
		p.input.Blur()
		p.table.Focus()
	} else {
		p.table.Blur()
		p.input.Focus()
	}
}

// typing reports whether key presses go to a text field.
func (p *searchPage) typing() bool {
	return p.advanced || !p.tableMode
}

func (p *searchPage) SetSize(width, height int) {
	p.width = width
	p.height = height
	inner := maxInt(width-4, 20)
	p.input.Width = inner - 8
	for i := range p.advInputs {
		p.advInputs[i].Width = 30
	}
	codeW := 12
	nameW := maxInt((inner-codeW)/2-2, 8)
	descW := maxInt(inner-codeW-nameW-6, 8)
	p.table.SetColumns([]table.Column{
		{Title: "貨品編號", Width: codeW},
		{Title: "名稱", Width: nameW},
		{Title: "說明", Width: descW},
	})
	// border, title, input, blank, table header (2 lines)
	p.tableHeight = maxInt(height-2-1-1-1-2, 3)
	p.table.SetHeight(p.tableHeight)
}

func (p *searchPage) Update(msg tea.Msg) (column, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		p.apply(msg)
		return p, nil
	case tea.KeyMsg:
		if p.advanced {
			return p, p.updateAdvanced(msg)
		}
		switch msg.String() {
		case "ctrl+f":
			p.openAdvanced()
			return p, nil
		case "tab", "shift+tab":
			p.setTableMode(!p.tableMode)
			return p, nil
		case "enter":
			if p.tableMode {
				return p, p.open(p.table.Cursor())
			}
			return p, p.submit()
		case "esc":
			if p.tableMode {
				p.setTableMode(false)
			}
			return p, nil
		}
		var cmd tea.Cmd
		if p.tableMode {
			p.table, cmd = p.table.Update(msg)
		} else {
			p.input, cmd = p.input.Update(msg)
		}
		return p, cmd
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *searchPage) updateAdvanced(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.closeAdvanced()
		return nil
	case "enter":
		return p.submitAdvanced()
	case "tab", "shift+tab", "up", "down":
		p.advInputs[p.advFocus].Blur()
		p.advFocus = (p.advFocus + 1) % len(p.advInputs)
		p.advInputs[p.advFocus].Focus()
		return nil
	}
	var cmd tea.Cmd
	p.advInputs[p.advFocus], cmd = p.advInputs[p.advFocus].Update(msg)
	return cmd
}

// HandleMouse opens the clicked result. Rows start below the border, title,
// input, blank line and table header.
func (p *searchPage) HandleMouse(localX, localY int, msg tea.MouseMsg) (column, tea.Cmd) {
	if p.advanced {
		return p, nil
	}
	switch msg.Type {
	case tea.MouseWheelUp:
		p.table.MoveUp(1)
	case tea.MouseWheelDown:
		p.table.MoveDown(1)
	case tea.MouseLeft:
		const rowsTop = 1 + 1 + 1 + 1 + 2
		if localY == 2 {
			p.setTableMode(false)
			return p, nil
		}
		if localY < rowsTop || localY >= rowsTop+p.tableHeight {
			return p, nil
		}
		start := p.table.Cursor() - p.tableRowOffset()
		idx := start + localY - rowsTop
		if idx < 0 || idx >= len(p.results) {
			return p, nil
		}
		p.setTableMode(true)
		p.table.SetCursor(idx)
		return p, p.open(idx)
	}
	return p, nil
}

// tableRowOffset approximates where the cursor sits inside the visible
// window of the bubbles table, which does not expose its viewport offset.
func (p *searchPage) tableRowOffset() int {
	cursor := p.table.Cursor()
	if cursor < p.tableHeight {
		return cursor
	}
	return p.tableHeight - 1
}

func (p *searchPage) Title() string {
	if p.keyword == "" {
		return "配方搜尋"
	}
	return "配方搜尋 · " + p.keyword
}

func (p *searchPage) FocusValue() string {
	if p.loading {
		return loadingText
	}
	if r, ok := p.selected(); ok {
		return r.Code + " " + r.Name
	}
	return fmt.Sprintf("%d 筆", len(p.results))
}

func (p *searchPage) View(s styles, focused bool) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.columnTitle.Render(p.Title()),
		p.input.View(),
		"",
		p.table.View(),
	)
	view := framed(s, focused, p.width, p.height, body)
	if !p.advanced {
		return view
	}
	form := lipgloss.JoinVertical(lipgloss.Left,
		s.cmdPrompt.Render("進階搜尋"),
		"",
		p.advInputs[0].View(),
		p.advInputs[1].View(),
		"",
		s.cmdHint.Render("tab 切換 · enter 搜尋 · esc 取消"),
	)
	overlay := s.cmdOverlay.Width(minInt(48, maxInt(p.width-4, 20))).Render(form)
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, overlay)
}
