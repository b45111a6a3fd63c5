package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"bookingbot/models"
	"bookingbot/services/speech"
	"bookingbot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TurnHandler runs one conversational turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req models.TurnRequest) models.TurnResponse
}

// ChatHandler exposes the conversation engine over HTTP.
type ChatHandler struct {
	engine TurnHandler
}

func NewChatHandler(engine TurnHandler) *ChatHandler {
	return &ChatHandler{engine: engine}
}

type messagePart struct {
	Text string `json:"text"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Parts   []messagePart `json:"parts"`
	Content string        `json:"content"`
}

// TextRequest is the body of POST /api/text.
type TextRequest struct {
	SessionID     string        `json:"session_id"`
	Messages      []chatMessage `json:"messages"`
	FrontendPhone string        `json:"frontend_phone"`
}

// lastUserText returns the text of the most recent user message.
func lastUserText(msgs []chatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Role != "" && m.Role != models.RoleUser {
			continue
		}
		var parts []string
		for _, p := range m.Parts {
			if t := strings.TrimSpace(p.Text); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) == 0 && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, strings.TrimSpace(m.Content))
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// HandleText handles POST /api/text.
func (h *ChatHandler) HandleText(c *gin.Context) {
	logger := getLogger(c)

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		utils.JSONError(c, http.StatusBadRequest, "session_id is required", "")
		return
	}

	resp := h.engine.HandleTurn(c.Request.Context(), models.TurnRequest{
		SessionID: req.SessionID,
		Text:      lastUserText(req.Messages),
		SeedPhone: req.FrontendPhone,
	})
	logger.Debug("text turn", zap.String("session", req.SessionID))
	c.JSON(http.StatusOK, resp)
}

// HandleVoice handles POST /api/voice (multipart: session, frontend_phone, audio).
func (h *ChatHandler) HandleVoice(c *gin.Context) {
	logger := getLogger(c)

	sessionID := strings.TrimSpace(c.PostForm("session"))
	if sessionID == "" {
		utils.JSONError(c, http.StatusBadRequest, "session is required", "")
		return
	}
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	if header.Size > speech.MaxAudioBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "audio file too large", "")
		return
	}
	audio, err := io.ReadAll(io.LimitReader(file, speech.MaxAudioBytes))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to read audio file", err.Error())
		return
	}

	resp := h.engine.HandleTurn(c.Request.Context(), models.TurnRequest{
		SessionID: sessionID,
		Audio:     audio,
		AudioMIME: header.Header.Get("Content-Type"),
		SeedPhone: c.PostForm("frontend_phone"),
	})
	logger.Debug("voice turn", zap.String("session", sessionID), zap.Int("bytes", len(audio)))
	c.JSON(http.StatusOK, resp)
}
