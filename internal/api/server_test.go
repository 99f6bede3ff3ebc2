package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valueproject/recipe-lookup/internal/catalog"
	"github.com/valueproject/recipe-lookup/internal/recipe"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ds := catalog.Dataset{
		Materials: []catalog.Material{
			{Code: "M001", Name: "高筋麵粉", Unit: "kg", UnitPrice: 45, Characteristic: "過敏原:小麥"},
		},
		Recipes: []catalog.Recipe{
			{ID: "G001", Name: "奶油麵包", Type: "G", Version: "1"},
			{ID: "F001", Name: "奶油餡", Type: "F"},
		},
		Steps: []catalog.Step{
			{RecipeID: "G001", Order: 1, MaterialCode: "M001", Unit: "kg", Quantity: 2.5, ProductBase: 100},
		},
	}
	if err := store.Import(context.Background(), ds); err != nil {
		t.Fatalf("Import: %v", err)
	}
	srv := httptest.NewServer(New(store, Options{
		Credentials: Credentials{Username: "admin", Password: "admin123"},
		AllowOrigin: "*",
	}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestRecipeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/recipe/G001")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	var body recipe.RecipeResponse
	decode(t, resp, &body)
	if body.RecipeDetails.RecipeName != "奶油麵包" || body.TotalCost != 112.5 {
		t.Errorf("body = %+v", body)
	}
	if len(body.Ingredients) != 1 || body.Ingredients[0].Cost.Value != 112.5 {
		t.Errorf("ingredients = %+v", body.Ingredients)
	}
}

func TestRecipeEndpointNotFound(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/recipe/G404")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body recipe.ErrorResponse
	decode(t, resp, &body)
	if body.Error != msgRecipeNotFound {
		t.Errorf("error = %q", body.Error)
	}
}

type failingCatalog struct{ Catalog }

func (failingCatalog) RecipeDetail(context.Context, string) (*recipe.RecipeResponse, error) {
	return nil, errors.New("database is locked")
}

func TestRecipeEndpointInternalError(t *testing.T) {
	srv := httptest.NewServer(New(failingCatalog{}, Options{}).Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/api/recipe/G001")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var body recipe.ErrorResponse
	decode(t, resp, &body)
	if body.Error != "database is locked" {
		t.Errorf("error = %q", body.Error)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("CORS header set without an origin: %q", got)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, http.DefaultClient, srv.URL+"/api/search", recipe.SearchRequest{Keyword: "奶油"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body recipe.SearchResponse
	decode(t, resp, &body)
	if len(body.Results) != 2 {
		t.Fatalf("results = %+v", body.Results)
	}
	if body.Results[0].Description != "F - 版本: N/A" || body.Results[1].Description != "G - 版本: 1" {
		t.Errorf("descriptions = %q, %q", body.Results[0].Description, body.Results[1].Description)
	}

	resp = postJSON(t, http.DefaultClient, srv.URL+"/api/search", recipe.SearchRequest{Keyword: "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty keyword status = %d, want 400", resp.StatusCode)
	}
	var errBody recipe.ErrorResponse
	decode(t, resp, &errBody)
	if errBody.Error != msgMissingKeyword {
		t.Errorf("error = %q", errBody.Error)
	}
}

func TestRecipesListing(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/recipes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body recipe.SearchResponse
	decode(t, resp, &body)
	if len(body.Results) != 2 {
		t.Errorf("results = %+v", body.Results)
	}
}

func TestLoginSessionLogout(t *testing.T) {
	srv := newTestServer(t)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := srv.Client()
	client.Jar = jar

	resp := postJSON(t, client, srv.URL+"/api/login", recipe.LoginRequest{Username: "admin", Password: "wrong"})
	var bad recipe.LoginResponse
	decode(t, resp, &bad)
	if bad.Success || bad.Message != msgBadLogin {
		t.Errorf("bad login = %+v", bad)
	}

	resp = postJSON(t, client, srv.URL+"/api/login", recipe.LoginRequest{Username: "admin", Password: "admin123"})
	var ok recipe.LoginResponse
	decode(t, resp, &ok)
	if !ok.Success || ok.Redirect != homepageRedirect {
		t.Fatalf("login = %+v", ok)
	}

	sessionResp, err := client.Get(srv.URL + "/api/session")
	if err != nil {
		t.Fatal(err)
	}
	var session recipe.SessionResponse
	decode(t, sessionResp, &session)
	sessionResp.Body.Close()
	if !session.LoggedIn || session.Username != "admin" {
		t.Errorf("session = %+v", session)
	}

	resp = postJSON(t, client, srv.URL+"/api/logout", struct{}{})
	var out recipe.LoginResponse
	decode(t, resp, &out)
	if !out.Success || out.Redirect != "/" {
		t.Errorf("logout = %+v", out)
	}

	sessionResp, err = client.Get(srv.URL + "/api/session")
	if err != nil {
		t.Fatal(err)
	}
	session = recipe.SessionResponse{}
	decode(t, sessionResp, &session)
	sessionResp.Body.Close()
	if session.LoggedIn {
		t.Errorf("session after logout = %+v", session)
	}
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, http.DefaultClient, srv.URL+"/api/chat", recipe.ChatRequest{Message: "你好"})
	var body recipe.ChatResponse
	decode(t, resp, &body)
	if body.Response != "您說: 你好" {
		t.Errorf("response = %q", body.Response)
	}
}

func TestMaterialEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/materials/M001")
	if err != nil {
		t.Fatal(err)
	}
	var m recipe.Material
	decode(t, resp, &m)
	resp.Body.Close()
	if m.MaterialName != "高筋麵粉" || m.UnitPrice != 45 || m.MaterialType != "A" {
		t.Errorf("material = %+v", m)
	}

	resp, err = http.Get(srv.URL + "/api/materials/M404")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing material status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/materials/M001/usage")
	if err != nil {
		t.Fatal(err)
	}
	var usage recipe.MaterialUsageResponse
	decode(t, resp, &usage)
	resp.Body.Close()
	if len(usage.Usage) != 1 || usage.Usage[0].RecipeID != "G001" {
		t.Errorf("usage = %+v", usage)
	}
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/search", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Allow-Methods = %q", resp.Header.Get("Access-Control-Allow-Methods"))
	}
}

func TestRouting(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/recipe/G001", http.StatusOK},
		{http.MethodGet, "/api/login", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/recipe/G001", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/materials/M001/usage", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.status {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, resp.StatusCode, tc.status)
		}
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("%s %s Allow-Origin = %q", tc.method, tc.path, got)
		}
	}
}
