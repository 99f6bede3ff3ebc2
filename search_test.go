package main

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

type fakeSearcher struct {
	keywords []string
	listed   int
	results  []recipe.SearchResult
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, keyword string) (*recipe.SearchResponse, error) {
	f.keywords = append(f.keywords, keyword)
	if f.err != nil {
		return nil, f.err
	}
	return &recipe.SearchResponse{Keyword: keyword, Results: f.results}, nil
}

func (f *fakeSearcher) Recipes(_ context.Context, query string) (*recipe.SearchResponse, error) {
	f.listed++
	return &recipe.SearchResponse{Keyword: query, Results: f.results}, nil
}

func runCmd(t *testing.T, page *searchPage, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	page.Update(cmd())
}

func TestSearchEmptyKeyword(t *testing.T) {
	page := newSearchPage(&fakeSearcher{}, nil)
	cmd := page.submit()
	if cmd == nil {
		t.Fatal("expected a toast")
	}
	if msg, ok := cmd().(toastMsg); !ok || msg.text != msgKeywordRequired {
		t.Errorf("msg = %#v", msg)
	}
}

func TestSearchResultsAndNavigation(t *testing.T) {
	fake := &fakeSearcher{results: []recipe.SearchResult{
		{ID: "G001", Code: "G001", Name: "奶油麵包", Description: "G - 版本: 1"},
	}}
	page := newSearchPage(fake, nil)
	page.SetSize(100, 30)
	page.input.SetValue(" 奶油 ")
	runCmd(t, page, page.submit())

	if len(fake.keywords) != 1 || fake.keywords[0] != "奶油" {
		t.Errorf("keywords = %q", fake.keywords)
	}
	if len(page.results) != 1 {
		t.Fatalf("results = %+v", page.results)
	}
	cmd := page.open(0)
	if cmd == nil {
		t.Fatal("expected navigation")
	}
	if msg := cmd().(navigateMsg); msg.path != "/search/result/final/G001" {
		t.Errorf("path = %q", msg.path)
	}
}

func TestSearchFailureShowsNoData(t *testing.T) {
	log := &captureLog{}
	page := newSearchPage(&fakeSearcher{err: errors.New("HTTP 500")}, log)
	runCmd(t, page, page.Load("奶油"))

	if len(page.results) != 0 {
		t.Errorf("results = %+v", page.results)
	}
	rows := page.table.Rows()
	if len(rows) != 1 || rows[0][1] != noResultsText {
		t.Errorf("rows = %q", rows)
	}
	if page.open(0) != nil {
		t.Error("the no-data row should not navigate")
	}
	if !log.contains("[ERROR]") {
		t.Errorf("log = %q", log.lines)
	}
}

func TestBlankLoadListsAll(t *testing.T) {
	fake := &fakeSearcher{}
	page := newSearchPage(fake, nil)
	runCmd(t, page, page.Load(""))
	if fake.listed != 1 || len(fake.keywords) != 0 {
		t.Errorf("listed = %d keywords = %q", fake.listed, fake.keywords)
	}
}

func TestStaleSearchDropped(t *testing.T) {
	page := newSearchPage(&fakeSearcher{}, nil)
	page.Load("a")
	page.Load("b")
	page.Update(searchResultsMsg{seq: 1, keyword: "a", resp: &recipe.SearchResponse{
		Results: []recipe.SearchResult{{ID: "G001"}},
	}})
	if len(page.results) != 0 || !page.loading {
		t.Errorf("stale results applied: %+v", page.results)
	}
}

func TestAdvancedSearch(t *testing.T) {
	fake := &fakeSearcher{}
	page := newSearchPage(fake, nil)
	page.openAdvanced()

	cmd := page.submitAdvanced()
	if msg, ok := cmd().(toastMsg); !ok || msg.text != msgCriteriaRequired {
		t.Fatalf("msg = %#v", msg)
	}
	if !page.advanced {
		t.Fatal("form closed without criteria")
	}

	page.advInputs[1].SetValue("王小姐")
	runCmd(t, page, page.submitAdvanced())
	if page.advanced || len(fake.keywords) != 1 || fake.keywords[0] != "王小姐" {
		t.Errorf("advanced=%v keywords=%q", page.advanced, fake.keywords)
	}

	page.openAdvanced()
	page.advInputs[0].SetValue("G001")
	page.advInputs[1].SetValue("王小姐")
	runCmd(t, page, page.submitAdvanced())
	if fake.keywords[1] != "G001" {
		t.Errorf("keywords = %q", fake.keywords)
	}

	page.openAdvanced()
	page.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if page.advanced {
		t.Error("esc should close the form")
	}
}
