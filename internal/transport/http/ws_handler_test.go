package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"actuator-quiz/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	svc := newTestService(t)
	server := httptest.NewServer(NewRouter(svc, zap.NewNop(), RouterOptions{}))
	defer server.Close()

	u, count, err := svc.Register(t.Context(), domain.UserIdentity{ID: "u1", Name: "Alice", Email: "alice@example.com"})
	if err != nil || count != 1 {
		t.Fatalf("register: %v", err)
	}
	view, err := svc.Start(t.Context(), u.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	conn := dial(t, server, "/ws?sessionId="+view.ID)
	defer conn.Close()

	// the feed snapshot and the session state arrive in either order
	session := readUntil(t, conn, "session")
	if session["id"] != view.ID {
		t.Fatalf("unexpected session payload: %v", session)
	}

	q, _ := domain.DefaultBank().Lookup(view.Question.ID)
	if err := conn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"questionIndex": 0, "answer": q.CorrectAnswer},
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	result := readUntil(t, conn, "answerResult")
	if result["isCorrect"] != true || result["questionId"] != q.ID {
		t.Fatalf("unexpected answer result: %v", result)
	}
	next := readUntil(t, conn, "session")
	if next["currentQuestionIndex"] != float64(1) {
		t.Fatalf("expected the session to advance, got %v", next["currentQuestionIndex"])
	}

	if err := conn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"questionIndex": 0, "answer": "A"},
	}); err != nil {
		t.Fatalf("write stale answer: %v", err)
	}
	errMsg := readUntil(t, conn, "error")
	if msg, _ := errMsg["message"].(string); !strings.Contains(msg, "invalid state") {
		t.Fatalf("expected invalid state error, got %v", errMsg)
	}
}

func TestWebSocketFeedIsReadOnly(t *testing.T) {
	svc := newTestService(t)
	server := httptest.NewServer(NewRouter(svc, zap.NewNop(), RouterOptions{}))
	defer server.Close()

	conn := dial(t, server, "/ws")
	defer conn.Close()

	feed := readUntil(t, conn, "feed")
	if feed["participants"] != float64(0) {
		t.Fatalf("unexpected initial feed: %v", feed)
	}

	if _, _, err := svc.Register(t.Context(), domain.UserIdentity{Name: "Bo", Email: "bo@example.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	feed = readUntil(t, conn, "feed")
	if feed["participants"] != float64(1) {
		t.Fatalf("expected participant update, got %v", feed)
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	errMsg := readUntil(t, conn, "error")
	if msg, _ := errMsg["message"].(string); !strings.Contains(msg, "read-only") {
		t.Fatalf("expected read-only error, got %v", errMsg)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	svc := newTestService(t)
	server := httptest.NewServer(NewRouter(svc, zap.NewNop(), RouterOptions{}))
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws?sessionId=missing"), nil)
	if err == nil {
		t.Fatalf("expected dial to fail for an unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", resp)
	}
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + server.URL[len("http"):] + path
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, path), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

// readUntil skips messages until one of type want arrives and returns its payload.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
	t.Fatalf("no %s message within 10 reads", want)
	return nil
}
