package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/hearth/pkg/domain"
	"github.com/aretw0/hearth/pkg/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAssistant echoes every utterance as a done reply.
type fakeAssistant struct {
	mu       sync.Mutex
	sessions map[string]*domain.Conversation
	sayErr   error
}

func newFake() *fakeAssistant {
	return &fakeAssistant{sessions: make(map[string]*domain.Conversation)}
}

func (f *fakeAssistant) Say(ctx context.Context, sessionID, text string) (*domain.Reply, error) {
	if f.sayErr != nil {
		return nil, f.sayErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := domain.NewConversation(sessionID)
	conv.Message = "heard " + text
	f.sessions[sessionID] = conv
	return &domain.Reply{SessionID: sessionID, Outcome: domain.OutcomeDone, Phase: domain.PhaseDone, Message: conv.Message}, nil
}

func (f *fakeAssistant) Forms() []domain.Form {
	return []domain.Form{{Name: "lights", Keywords: []string{"lights"}}}
}

func (f *fakeAssistant) Session(ctx context.Context, id string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return conv, nil
}

func (f *fakeAssistant) Sessions(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeAssistant) EndSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/interpret", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInterpret(t *testing.T) {
	h := NewHandler(newFake())

	w := post(t, h, `{"session_id":"s1","text":"lights on"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reply domain.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "s1", reply.SessionID)
	assert.Equal(t, domain.OutcomeDone, reply.Outcome)
	assert.Equal(t, "heard lights on", reply.Message)
}

func TestInterpret_GeneratesSessionID(t *testing.T) {
	w := post(t, NewHandler(newFake()), `{"text":"lights on"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reply domain.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Len(t, reply.SessionID, 36)
}

func TestInterpret_BadRequests(t *testing.T) {
	h := NewHandler(newFake())
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{"text":"  "}`).Code)

	f := newFake()
	f.sayErr = fmt.Errorf("%w: size=9000", lexer.ErrInputTooLarge)
	assert.Equal(t, http.StatusBadRequest, post(t, NewHandler(f), `{"text":"x"}`).Code)

	f.sayErr = errors.New("redis down")
	assert.Equal(t, http.StatusInternalServerError, post(t, NewHandler(f), `{"text":"x"}`).Code)
}

func TestSessions(t *testing.T) {
	h := NewHandler(newFake())
	require.Equal(t, http.StatusOK, post(t, h, `{"session_id":"s1","text":"lights on"}`).Code)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/sessions", nil))
	assert.JSONEq(t, `["s1"]`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/sessions/s1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"heard lights on"`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("DELETE", "/sessions/s1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/sessions/s1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFormsHealthInfoMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hearth_commands_total 0")
	})
	h := NewHandler(newFake(), WithMetrics(metrics))

	for path, want := range map[string]string{
		"/forms":   `"name":"lights"`,
		"/health":  `"status":"ok"`,
		"/info":    `"app":"hearth-http"`,
		"/metrics": "hearth_commands_total",
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}

	w := httptest.NewRecorder()
	NewHandler(newFake()).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// syncRecorder guards the body so the SSE goroutine and the test can share it.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(b)
}

func (r *syncRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestSubscribeEvents_Session(t *testing.T) {
	h := NewHandler(newFake())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(sub, httptest.NewRequest("GET", "/events?session_id=sess-1", nil).WithContext(ctx))
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(sub.String(), "event: ping")
	}, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, post(t, h, `{"session_id":"sess-1","text":"lights on"}`).Code)
	require.Equal(t, http.StatusOK, post(t, h, `{"session_id":"other","text":"lights off"}`).Code)

	require.Eventually(t, func() bool {
		return strings.Contains(sub.String(), `"message":"heard lights on"`)
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.NotContains(t, sub.String(), "heard lights off")
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(newFake()).ServeHTTP(w, httptest.NewRequest("GET", "/events", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
