package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("localhost:5000"); err == nil {
		t.Fatal("expected error for a url without scheme")
	}
	c, err := New("http://localhost:5000/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.BaseURL() != "http://localhost:5000" {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}

func TestRecipe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/recipe/G001" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"recipe_details": {"recipe_name": "奶油麵包", "version": "1"},
			"ingredients": [{"material_code": "M001", "quantity": "2.5", "unit_price": 45, "cost": null}],
			"total_cost": 112.5,
			"notices": []
		}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Recipe(context.Background(), "G001")
	if err != nil {
		t.Fatalf("Recipe: %v", err)
	}
	if resp.RecipeDetails.RecipeName != "奶油麵包" || len(resp.Ingredients) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	row := resp.Ingredients[0]
	if row.Quantity.Value != 2.5 || row.Cost.Valid {
		t.Errorf("row = %+v", row)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(recipe.ErrorResponse{Error: "boom"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Recipe(context.Background(), "G001")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != 500 || statusErr.Message != "boom" {
		t.Errorf("statusErr = %+v", statusErr)
	}
	if err.Error() != "HTTP 500 Internal Server Error" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestSessionCookieKept(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req recipe.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		http.SetCookie(w, &http.Cookie{Name: "recipe_session", Value: "tok", Path: "/"})
		_ = json.NewEncoder(w).Encode(recipe.LoginResponse{Success: req.Username == "admin", Redirect: "/homepage"})
	})
	mux.HandleFunc("GET /api/session", func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie("recipe_session")
		_ = json.NewEncoder(w).Encode(recipe.SessionResponse{LoggedIn: err == nil, Username: "admin"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	login, err := c.Login(context.Background(), "admin", "admin123")
	if err != nil || !login.Success {
		t.Fatalf("Login = %+v, %v", login, err)
	}
	session, err := c.Session(context.Background())
	if err != nil || !session.LoggedIn {
		t.Errorf("Session = %+v, %v", session, err)
	}
}

func TestSearchAndChat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", func(w http.ResponseWriter, r *http.Request) {
		var req recipe.SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(recipe.SearchResponse{
			Keyword: req.Keyword,
			Results: []recipe.SearchResult{{ID: "G001", Code: "G001", Name: "奶油麵包"}},
		})
	})
	mux.HandleFunc("GET /api/recipes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(recipe.SearchResponse{Keyword: r.URL.Query().Get("q")})
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req recipe.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(recipe.ChatResponse{Response: "您說: " + req.Message})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	found, err := c.Search(ctx, "奶油")
	if err != nil || len(found.Results) != 1 || found.Keyword != "奶油" {
		t.Errorf("Search = %+v, %v", found, err)
	}
	listed, err := c.Recipes(ctx, "麵 包")
	if err != nil || listed.Keyword != "麵 包" {
		t.Errorf("Recipes = %+v, %v", listed, err)
	}
	reply, err := c.Chat(ctx, "hi")
	if err != nil || reply != "您說: hi" {
		t.Errorf("Chat = %q, %v", reply, err)
	}
}
