package main

import (
	"net/url"
	"strings"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

type pageKind int

const (
	pageLogin pageKind = iota
	pageSearch
	pageRecipe
	pageChat
)

func (p pageKind) String() string {
	switch p {
	case pageSearch:
		return "search"
	case pageRecipe:
		return "recipe"
	case pageChat:
		return "chat"
	default:
		return "login"
	}
}

// location is a parsed in-app path, e.g. "/search/result/final/G001".
type location struct {
	page     pageKind
	recipeID string
	query    string
	raw      string
}

func parseLocation(raw string) location {
	loc := location{page: pageSearch, raw: raw}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return loc
	}
	path := strings.TrimRight(u.Path, "/")
	switch {
	case strings.Contains(u.Path, "/final"):
		loc.page = pageRecipe
		loc.recipeID = recipeIDFromLocation(raw)
	case path == "" || path == "/login":
		loc.page = pageLogin
	case path == "/chatbot":
		loc.page = pageChat
	default:
		loc.query = strings.TrimSpace(u.Query().Get("q"))
	}
	return loc
}

// recipeIDFromLocation returns the path segment after "/final/", or the "id"
// query parameter when that segment is empty.
func recipeIDFromLocation(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	// Split on the escaped path so an escaped "/" inside a code stays in it.
	const marker = "/final/"
	escaped := u.EscapedPath()
	if i := strings.Index(escaped, marker); i >= 0 {
		seg, _, _ := strings.Cut(escaped[i+len(marker):], "/")
		if id, err := url.PathUnescape(seg); err == nil && strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id)
		}
	}
	return strings.TrimSpace(u.Query().Get("id"))
}

// navigateMsg asks the app to switch to path.
type navigateMsg struct {
	path string
}

func recipeLocation(code string) string {
	return recipe.FinalResultURL(code)
}
