package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/nhle/widgetfeed/internal/model"
)

// Route names accepted by FakeRemote.Calls.
const (
	RouteList   = "list"
	RouteUnread = "unread"
	RouteRead   = "read"
)

// FakeRemote serves the community notification API from memory.
type FakeRemote struct {
	server *httptest.Server

	mu            sync.Mutex
	notifications map[string][]model.WidgetNotification
	failStatus    int
	calls         map[string]int
	lastQuery     map[string]string
	authHeaders   []string
}

// NewFakeRemote starts a fake API server that is closed when the test ends.
func NewFakeRemote(t *testing.T) *FakeRemote {
	t.Helper()

	f := &FakeRemote{
		notifications: make(map[string][]model.WidgetNotification),
		calls:         make(map[string]int),
		lastQuery:     make(map[string]string),
	}

	r := mux.NewRouter()
	r.HandleFunc("/notifications", f.handleList).Methods(http.MethodGet)
	r.HandleFunc("/notifications/unread-count/{userId}", f.handleUnread).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", f.handleRead).Methods(http.MethodPut)
	r.Use(f.middleware)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)

	return f
}

// URL returns the base URL of the server.
func (f *FakeRemote) URL() string {
	return f.server.URL
}

// SetNotifications replaces the notifications held for userID.
func (f *FakeRemote) SetNotifications(userID string, list []model.WidgetNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications[userID] = append([]model.WidgetNotification(nil), list...)
}

// Fail makes every route respond with status until Recover is called.
func (f *FakeRemote) Fail(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = status
}

// Recover clears a previous Fail.
func (f *FakeRemote) Recover() {
	f.Fail(0)
}

// Calls returns how many requests reached the named route.
func (f *FakeRemote) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// LastQuery returns the value of a query parameter from the last list request.
func (f *FakeRemote) LastQuery(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery[name]
}

// AuthHeaders returns every Authorization header received, in order.
func (f *FakeRemote) AuthHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...)
}

func (f *FakeRemote) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		status := f.failStatus
		f.mu.Unlock()

		if status != 0 {
			// Count the attempt even though it fails.
			f.count(routeOf(r))
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func routeOf(r *http.Request) string {
	switch {
	case r.Method == http.MethodPut:
		return RouteRead
	case r.URL.Path == "/notifications":
		return RouteList
	default:
		return RouteUnread
	}
}

func (f *FakeRemote) count(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[route]++
}

func (f *FakeRemote) handleList(w http.ResponseWriter, r *http.Request) {
	f.count(RouteList)

	q := r.URL.Query()
	userID := q.Get("userId")

	f.mu.Lock()
	for _, name := range []string{"userId", "limit", "widget"} {
		f.lastQuery[name] = q.Get(name)
	}
	list := append([]model.WidgetNotification(nil), f.notifications[userID]...)
	f.mu.Unlock()

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit >= 0 && limit < len(list) {
		list = list[:limit]
	}
	if list == nil {
		list = []model.WidgetNotification{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (f *FakeRemote) handleUnread(w http.ResponseWriter, r *http.Request) {
	f.count(RouteUnread)

	userID := mux.Vars(r)["userId"]

	f.mu.Lock()
	count := model.CountUnread(f.notifications[userID])
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (f *FakeRemote) handleRead(w http.ResponseWriter, r *http.Request) {
	f.count(RouteRead)

	id := mux.Vars(r)["id"]

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.notifications[body.UserID]
	for i := range list {
		if list[i].ID == id {
			list[i].Read = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"error": "notification not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
