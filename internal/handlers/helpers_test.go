package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/vuln-kanban-api/internal/config"
	"github.com/yukikurage/vuln-kanban-api/internal/constants"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
	"github.com/yukikurage/vuln-kanban-api/internal/seed"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
)

type apiTestEnv struct {
	registry     *repository.MemoryBoardRegistry
	authService  *services.AuthService
	taskService  *services.TaskService
	boardService *services.BoardService
	dragService  *services.DragService
	handlers     Handlers
	router       *gin.Engine
}

func setupAPITestEnv(t *testing.T, extractor services.FindingExtractor) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()

	logger, _ := test.NewNullLogger()
	registry := repository.NewMemoryBoardRegistry(seed.Default, nil)
	recorder := services.NewChangeRecorder(nil, nil, logger)

	env := &apiTestEnv{registry: registry}
	env.authService = services.NewAuthService(repository.NewUserRepository(), config.AuthModeMock, 0)
	env.taskService = services.NewTaskService(registry, recorder, extractor)
	env.boardService = services.NewBoardService(registry, nil, recorder)
	env.dragService = services.NewDragService(env.taskService)
	env.handlers = Handlers{
		Auth:  NewAuthHandler(env.authService, env.boardService, env.dragService),
		Task:  NewTaskHandler(env.taskService),
		Board: NewBoardHandler(env.boardService),
		Drag:  NewDragHandler(env.dragService),
		Tasks: env.taskService,
	}

	env.router = newRouterForHandlers(env.handlers)
	return env
}

func newRouterForHandlers(h Handlers) *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	RegisterRoutes(r, h)
	return r
}

// do sends a JSON request with the given cookies.
func (e *apiTestEnv) do(t *testing.T, method, url string, payload any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login signs in through the API and returns the session cookie.
func (e *apiTestEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			return c
		}
	}
	t.Fatalf("expected %s cookie to be set", constants.SessionCookieName)
	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
