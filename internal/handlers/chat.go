package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"notedeck/internal/contextutil"
	"notedeck/internal/service"
)

// ChatHandler handles HTTP requests for the note-grounded chat assistant.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatMessage is a single message in the request history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse represents the non-streaming HTTP response payload for chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ServeHTTP handles POST /api/chat. The response streams as Server-Sent
// Events unless the caller opts out with ?stream=false.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid chat request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcReq := service.ChatRequest{
		Messages: make([]service.ChatMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		svcReq.Messages = append(svcReq.Messages, service.ChatMessage{Role: m.Role, Content: m.Content})
	}

	if r.URL.Query().Get("stream") == "false" {
		svcResp, err := h.chatService.ProcessChat(ctx, svcReq)
		if err != nil {
			handleServiceError(w, ctx, err, "Failed to process chat request")
			return
		}
		writeJSON(w, http.StatusOK, ChatResponse{Reply: svcResp.Reply})
		return
	}

	h.handleStreamingChat(w, r, svcReq)
}

// handleStreamingChat streams the assistant reply using Server-Sent Events.
func (h *ChatHandler) handleStreamingChat(w http.ResponseWriter, r *http.Request, svcReq service.ChatRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := h.chatService.StreamChat(ctx, svcReq, func(chunk string) error {
		// Write chunk as SSE format: "data: <chunk>\n\n"
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	if err != nil {
		logger.ErrorContext(ctx, "error streaming chat", "error", err)
		payload, _ := json.Marshal(ErrorResponse{Error: err.Error()})
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return
	}

	// Send done signal
	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}
