// Package testutil provides testing utilities.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"taskfuss/internal/api"
)

// BasePath is the prefix the fake mounts its routes under.
const BasePath = "/api"

// Failure is an injected error response.
type Failure struct {
	Status int
	Body   string
}

// FakeAPI is an in-memory task-fuss backend served over httptest.
type FakeAPI struct {
	mu     sync.Mutex
	server *httptest.Server

	nextID    int64
	issued    int
	users     map[string]fakeUser // email -> user
	tokens    map[string]string   // token -> email
	tasks     map[string][]api.Task
	calls     map[string]int // "METHOD /path" -> count
	lastAuth  string
	lastReqID string

	// Error injection for testing, keyed by "METHOD /path".
	Failures map[string]Failure

	tasksGate chan struct{}
}

type fakeUser struct {
	user     api.User
	password string
}

// NewFakeAPI starts a fake backend. Callers stop it with Close, normally
// through t.Cleanup.
func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{
		users:    make(map[string]fakeUser),
		tokens:   make(map[string]string),
		tasks:    make(map[string][]api.Task),
		calls:    make(map[string]int),
		Failures: make(map[string]Failure),
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/ping", f.ping)
		r.Post("/auth/register", f.register)
		r.Post("/auth/login", f.login)
		r.With(f.requireToken).Get("/profile", f.profile)
		// The gate sits in front of the token check so a held request can
		// still be rejected with the tokens current at release.
		r.With(f.waitTasksGate, f.requireToken).Get("/tasks", f.listTasks)
	})

	f.server = httptest.NewServer(r)
	return f
}

// URL returns the API base URL, including BasePath.
func (f *FakeAPI) URL() string {
	return f.server.URL + BasePath
}

// Close shuts the server down.
func (f *FakeAPI) Close() {
	f.server.Close()
}

// AddUser seeds a user and returns a valid token for it.
func (f *FakeAPI) AddUser(username, email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.createUserLocked(username, email, password)
	return f.issueTokenLocked(u.user.Email)
}

// AddTask appends a task for the user owning email.
func (f *FakeAPI) AddTask(email string, id int64, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[email] = append(f.tasks[email], api.Task{ID: id, Title: title})
}

// PutTask appends a fully populated task for the user owning email.
func (f *FakeAPI) PutTask(email string, task api.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[email] = append(f.tasks[email], task)
}

// RevokeTokens invalidates every issued token.
func (f *FakeAPI) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]string)
}

// GateTasks makes GET /tasks block until release is called or the
// request is cancelled.
func (f *FakeAPI) GateTasks() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.tasksGate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Fail makes the given route answer with status and body.
func (f *FakeAPI) Fail(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Failures[method+" "+path] = Failure{Status: status, Body: body}
}

// Calls returns how many times the route was hit.
func (f *FakeAPI) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

// TotalCalls returns the number of requests served.
func (f *FakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// LastAuthorization returns the Authorization header of the last request.
func (f *FakeAPI) LastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

// LastRequestID returns the X-Request-ID header of the last request.
func (f *FakeAPI) LastRequestID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReqID
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + strings.TrimPrefix(r.URL.Path, BasePath)

		f.mu.Lock()
		f.calls[route]++
		f.lastAuth = r.Header.Get("Authorization")
		f.lastReqID = r.Header.Get(api.RequestIDHeader)
		failure, failing := f.Failures[route]
		f.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(failure.Status)
			w.Write([]byte(failure.Body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "NO_TOKEN", "Authorization token required")
			return
		}
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "BAD_TOKEN", "Invalid token format")
			return
		}
		f.mu.Lock()
		_, ok := f.tokens[parts[1]]
		f.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) ping(w http.ResponseWriter, r *http.Request) {
	writeWrapped(w, map[string]string{"message": "pong"})
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON syntax")
		return
	}

	var details []api.FieldError
	if req.Username == "" {
		details = append(details, api.FieldError{Field: "Username", Code: "REQUIRED", Message: "Username is required"})
	}
	if !strings.Contains(req.Email, "@") {
		details = append(details, api.FieldError{Field: "Email", Code: "INVALID_EMAIL", Message: "Email should be vaild"})
	}
	if len(req.Password) < 8 {
		details = append(details, api.FieldError{Field: "Password", Code: "MIN", Message: "Field Password should be longer than 8 characters"})
	}
	if len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    api.CodeValidationFailed,
			"message": "Validation failed",
			"details": details,
		})
		return
	}

	f.mu.Lock()
	if _, exists := f.users[req.Email]; exists {
		f.mu.Unlock()
		writeError(w, http.StatusConflict, api.CodeDuplicateUser, "User already exists")
		return
	}
	u := f.createUserLocked(req.Username, req.Email, req.Password)
	token := f.issueTokenLocked(req.Email)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, api.AuthResponse{User: u.user, AuthToken: token})
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON syntax")
		return
	}

	f.mu.Lock()
	u, ok := f.users[req.Email]
	if !ok || req.Password == "" || u.password != req.Password {
		f.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}
	token := f.issueTokenLocked(req.Email)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, api.AuthResponse{User: u.user, AuthToken: token})
}

func (f *FakeAPI) profile(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	email := f.tokens[bearer(r)]
	u := f.users[email]
	f.mu.Unlock()

	writeWrapped(w, api.ProfileResponse{User: u.user})
}

func (f *FakeAPI) waitTasksGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		gate := f.tasksGate
		f.mu.Unlock()
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	email := f.tokens[bearer(r)]
	tasks := append([]api.Task{}, f.tasks[email]...)
	f.mu.Unlock()

	writeWrapped(w, api.TasksResponse{Tasks: tasks})
}

func (f *FakeAPI) createUserLocked(username, email, password string) fakeUser {
	f.nextID++
	u := fakeUser{
		user: api.User{
			ID:        f.nextID,
			Username:  username,
			Email:     email,
			CreatedAt: time.Date(2025, 7, 27, 20, 32, 29, 0, time.UTC),
		},
		password: password,
	}
	f.users[email] = u
	return u
}

func (f *FakeAPI) issueTokenLocked(email string) string {
	f.issued++
	token := "tok-" + strconv.Itoa(f.issued) + "-" + email
	f.tokens[token] = email
	return token
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeWrapped(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data":      data,
		"timestamp": time.Now().Format(time.RFC3339),
		"latency":   "1µs",
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
