package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"bookingbot/models"

	"github.com/gin-gonic/gin"
)

type recordingEngine struct {
	got []models.TurnRequest
}

func (r *recordingEngine) HandleTurn(_ context.Context, req models.TurnRequest) models.TurnResponse {
	r.got = append(r.got, req)
	return models.TurnResponse{ReplyText: "ok", Structured: models.Payload{BookingID: "AB12CD34"}}
}

func newTestRouter(engine TurnHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(engine)
	r := gin.New()
	r.POST("/api/text", h.HandleText)
	r.POST("/api/voice", h.HandleVoice)
	return r
}

func TestLastUserText(t *testing.T) {
	msgs := []chatMessage{
		{Role: "user", Parts: []messagePart{{Text: "hello"}}},
		{Role: "assistant", Parts: []messagePart{{Text: "hi there"}}},
		{Role: "user", Parts: []messagePart{{Text: " book "}, {Text: "an agent"}}},
		{Role: "assistant", Content: "sure"},
	}
	if got := lastUserText(msgs); got != "book an agent" {
		t.Errorf("lastUserText = %q", got)
	}
	if got := lastUserText([]chatMessage{{Content: "plain"}}); got != "plain" {
		t.Errorf("content fallback = %q", got)
	}
	if got := lastUserText(nil); got != "" {
		t.Errorf("empty = %q", got)
	}
}

func TestHandleText(t *testing.T) {
	engine := &recordingEngine{}
	r := newTestRouter(engine)

	body := `{"session_id":"s1","frontend_phone":"+91 9876543210","messages":[{"role":"user","parts":[{"text":"hello"}]}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/text", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d body = %s", w.Code, w.Body)
	}
	if len(engine.got) != 1 || engine.got[0].Text != "hello" || engine.got[0].SeedPhone != "+91 9876543210" {
		t.Errorf("engine got %+v", engine.got)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["reply_text"] != "ok" {
		t.Errorf("response = %v", resp)
	}
	if _, ok := resp["transcript"]; !ok {
		t.Error("transcript key missing")
	}
}

func TestHandleText_BadRequests(t *testing.T) {
	engine := &recordingEngine{}
	r := newTestRouter(engine)
	for _, body := range []string{`{`, `{"messages":[]}`} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/text", strings.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: code = %d", body, w.Code)
		}
	}
	if len(engine.got) != 0 {
		t.Error("engine called for a bad request")
	}
}

func TestHandleVoice(t *testing.T) {
	engine := &recordingEngine{}
	r := newTestRouter(engine)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("session", "v1")
	_ = mw.WriteField("frontend_phone", "9876543210")
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="audio"; filename="clip.webm"`)
	hdr.Set("Content-Type", "audio/webm")
	part, _ := mw.CreatePart(hdr)
	_, _ = part.Write([]byte("fake-audio"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/voice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d body = %s", w.Code, w.Body)
	}
	got := engine.got[0]
	if got.SessionID != "v1" || string(got.Audio) != "fake-audio" || got.AudioMIME != "audio/webm" || got.SeedPhone != "9876543210" {
		t.Errorf("engine got %+v", got)
	}
}

func TestHandleVoice_MissingAudio(t *testing.T) {
	r := newTestRouter(&recordingEngine{})
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("session", "v1")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/voice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("code = %d", w.Code)
	}
}

type mapImages map[string][]byte

func (m mapImages) Get(file string) ([]byte, bool) {
	b, ok := m[file]
	return b, ok
}

func TestQRImageHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/media/qr/:file", QRImageHandler(mapImages{"booking_X.png": []byte("\x89PNG")}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/qr/booking_X.png", nil))
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("code = %d type = %q", w.Code, w.Header().Get("Content-Type"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/qr/missing.png", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing image code = %d", w.Code)
	}
}

type fixedQuota int

func (q fixedQuota) Remaining() int { return int(q) }

type fixedSessions int

func (s fixedSessions) Len() int { return int(s) }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", HealthHandler(HealthReport{LLMQuota: fixedQuota(12), Sessions: fixedSessions(3)}))
	r.GET("/bare", HealthHandler(HealthReport{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["llm_calls_remaining"] != float64(12) || body["sessions"] != float64(3) {
		t.Errorf("body = %v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bare", nil))
	body = nil
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["llm_calls_remaining"]; ok {
		t.Errorf("unexpected quota in %v", body)
	}
}
