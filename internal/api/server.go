// Package api serves the recipe lookup JSON endpoints under /api.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/valueproject/recipe-lookup/internal/catalog"
	"github.com/valueproject/recipe-lookup/internal/logger"
	"github.com/valueproject/recipe-lookup/internal/recipe"
)

// Catalog is the part of the catalog store the handlers use.
type Catalog interface {
	RecipeDetail(ctx context.Context, id string) (*recipe.RecipeResponse, error)
	SearchRecipes(ctx context.Context, keyword string) ([]catalog.Recipe, error)
	AllRecipes(ctx context.Context) ([]catalog.Recipe, error)
	Material(ctx context.Context, code string) (catalog.Material, error)
	MaterialUsage(ctx context.Context, code string) ([]catalog.Usage, error)
}

type Credentials struct {
	Username string
	Password string
}

type Options struct {
	Credentials Credentials
	// AllowOrigin is sent as Access-Control-Allow-Origin when non-empty.
	AllowOrigin string
	Logger      *logger.Logger
}

type Server struct {
	catalog  Catalog
	creds    Credentials
	origin   string
	log      *logger.Logger
	sessions *sessionStore
}

const (
	msgRecipeNotFound = "找不到該配方"
	msgMissingKeyword = "請輸入搜尋關鍵字"
	msgBadLogin       = "帳號或密碼錯誤"
	msgMaterialAbsent = "找不到該原料"
	chatEchoPrefix    = "您說: "
	homepageRedirect  = "/homepage"
)

func New(c Catalog, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		catalog:  c,
		creds:    opts.Credentials,
		origin:   opts.AllowOrigin,
		log:      log,
		sessions: newSessionStore(),
	}
}

// Handler returns the routed API with common headers applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withCommonHeaders)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/session", s.handleSession)
		r.Post("/chat", s.handleChat)
		r.Post("/search", s.handleSearch)
		r.Get("/recipes", s.handleRecipes)
		r.Get("/recipe/{id}", s.handleRecipe)
		r.Route("/materials/{code}", func(r chi.Router) {
			r.Get("/", s.handleMaterial)
			r.Get("/usage", s.handleMaterialUsage)
		})
	})
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req recipe.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username != s.creds.Username || req.Password != s.creds.Password {
		s.log.Warn("login rejected for %q", req.Username)
		writeJSON(w, http.StatusOK, recipe.LoginResponse{Success: false, Message: msgBadLogin})
		return
	}
	token, err := s.sessions.create(req.Username)
	if err != nil {
		s.log.Error("create session: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Info("login %s", req.Username)
	writeJSON(w, http.StatusOK, recipe.LoginResponse{Success: true, Redirect: homepageRedirect})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.remove(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, recipe.LoginResponse{Success: true, Redirect: "/"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	resp := recipe.SessionResponse{}
	if c, err := r.Cookie(sessionCookie); err == nil {
		if user, ok := s.sessions.lookup(c.Value); ok {
			resp = recipe.SessionResponse{LoggedIn: true, Username: user}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req recipe.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	writeJSON(w, http.StatusOK, recipe.ChatResponse{Response: chatEchoPrefix + req.Message})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req recipe.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		writeError(w, http.StatusBadRequest, msgMissingKeyword)
		return
	}
	recipes, err := s.catalog.SearchRecipes(r.Context(), keyword)
	if err != nil {
		s.log.Error("search %q: %v", keyword, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recipe.SearchResponse{Results: searchResults(recipes), Keyword: req.Keyword})
}

// handleRecipes lists recipes matching ?q=, or every recipe when q is empty.
func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	var (
		recipes []catalog.Recipe
		err     error
	)
	if query == "" {
		recipes, err = s.catalog.AllRecipes(r.Context())
	} else {
		recipes, err = s.catalog.SearchRecipes(r.Context(), query)
	}
	if err != nil {
		s.log.Error("list recipes %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recipe.SearchResponse{Results: searchResults(recipes), Keyword: query})
}

func searchResults(recipes []catalog.Recipe) []recipe.SearchResult {
	results := make([]recipe.SearchResult, 0, len(recipes))
	for _, r := range recipes {
		version := r.Version
		if version == "" {
			version = "N/A"
		}
		results = append(results, recipe.SearchResult{
			ID:          r.ID,
			Type:        "recipe",
			Code:        r.ID,
			Name:        r.Name,
			Description: fmt.Sprintf("%s - 版本: %s", r.Type, version),
		})
	}
	return results
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resp, err := s.catalog.RecipeDetail(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgRecipeNotFound)
		return
	}
	if err != nil {
		s.log.Error("recipe %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.WithField("recipe", id).Debugf("%d ingredients, total %.2f", len(resp.Ingredients), resp.TotalCost)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMaterial(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	m, err := s.catalog.Material(r.Context(), code)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgMaterialAbsent)
		return
	}
	if err != nil {
		s.log.Error("material %s: %v", code, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recipe.Material{
		MaterialCode:   m.Code,
		MaterialName:   m.Name,
		MaterialType:   m.Type,
		Specification:  m.Specification,
		Unit:           m.Unit,
		UnitPrice:      m.UnitPrice,
		Characteristic: m.Characteristic,
		SupplierID:     m.SupplierID,
		SupplierName:   m.SupplierName,
	})
}

func (s *Server) handleMaterialUsage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	usage, err := s.catalog.MaterialUsage(r.Context(), code)
	if err != nil {
		s.log.Error("material usage %s: %v", code, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := recipe.MaterialUsageResponse{MaterialCode: code, Usage: make([]recipe.MaterialUsage, 0, len(usage))}
	for _, u := range usage {
		resp.Usage = append(resp.Usage, recipe.MaterialUsage{
			RecipeID:    u.RecipeID,
			RecipeName:  u.RecipeName,
			RecipeType:  u.RecipeType,
			Version:     u.Version,
			Unit:        u.Unit,
			Quantity:    u.Quantity,
			ProductBase: u.ProductBase,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, recipe.ErrorResponse{Error: msg})
}

func (s *Server) withCommonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.origin)
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		h.ServeHTTP(w, r)
	})
}
