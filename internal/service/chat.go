package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks notedeck/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_retriever.go -package=mocks notedeck/internal/service NoteRetriever
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService notedeck/internal/service ChatService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"notedeck/internal/auth"
	"notedeck/internal/contextutil"
	"notedeck/internal/llm"
	"notedeck/internal/retrieval"
)

// chatHistoryLimit bounds how much of the conversation is sent to the
// model; older messages are dropped.
const chatHistoryLimit = 10

// retrievalK is how many notes the assistant's lookup tool fetches per
// question.
const retrievalK = 5

// systemPrompt frames the assistant and tells it how to cite notes.
const systemPrompt = `You are a helpful assistant that can search through the user's notes.
Use the information from the notes to answer questions and provide insights.
If the requested information is not available, respond with "Sorry, I can't find that information in your notes".
You can use markdown formatting like links, bullet points, numbered lists, and bold text.
Provide links to relevant notes using this relative URL structure (omit the base URL): '/notes?noteId=<note-id>'.
Keep your responses concise and to the point.`

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective
// (consumer-first); llm.Client implements it.
type LLMClient interface {
	// ChatWithMessages sends a message history and returns the reply.
	ChatWithMessages(ctx context.Context, messages []llm.Message) (string, error)
	// StreamChatMessages sends a message history and streams the reply via callback.
	StreamChatMessages(ctx context.Context, messages []llm.Message, callback func(chunk string) error) error
}

// NoteRetriever finds a user's notes relevant to a free-text query.
// retrieval.Retriever implements it.
type NoteRetriever interface {
	FindRelevantNotes(ctx context.Context, userID, query string, k int) ([]retrieval.RelevantNote, error)
}

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Messages []ChatMessage
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply string
}

// ChatService provides note-grounded chat functionality.
type ChatService interface {
	// ProcessChat processes a chat request and returns a response.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// StreamChat processes a chat request and streams the response via callback.
	StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) error
}

// chatService implements ChatService.
type chatService struct {
	llmClient LLMClient
	retriever NoteRetriever
	logger    *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(llmClient LLMClient, retriever NoteRetriever) ChatService {
	return &chatService{
		llmClient: llmClient,
		retriever: retriever,
		logger:    slog.Default(),
	}
}

// ProcessChat processes a chat request.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	messages, err := s.prepareMessages(ctx, req)
	if err != nil {
		return ChatResponse{}, err
	}

	reply, err := s.llmClient.ChatWithMessages(ctx, messages)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return ChatResponse{}, WrapExternal(err, "failed to get LLM response")
	}

	logger.InfoContext(ctx, "chat request processed successfully", "history_length", len(req.Messages), "reply_length", len(reply))
	return ChatResponse{
		Reply: reply,
	}, nil
}

// StreamChat processes a chat request and streams the response.
func (s *chatService) StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	messages, err := s.prepareMessages(ctx, req)
	if err != nil {
		return err
	}

	if err := s.llmClient.StreamChatMessages(ctx, messages, callback); err != nil {
		logger.ErrorContext(ctx, "failed to stream LLM response", "error", err)
		return WrapExternal(err, "failed to stream LLM response")
	}

	logger.InfoContext(ctx, "streaming chat request processed successfully", "history_length", len(req.Messages))
	return nil
}

// prepareMessages validates the request, runs the retrieval tool on the
// latest user message, and assembles the model input: system prompt, note
// context, then the truncated history.
func (s *chatService) prepareMessages(ctx context.Context, req ChatRequest) ([]llm.Message, error) {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}

	if len(req.Messages) == 0 {
		return nil, &ValidationError{Field: "messages", Message: "cannot be empty"}
	}

	history := req.Messages
	if len(history) > chatHistoryLimit {
		history = history[len(history)-chatHistoryLimit:]
	}

	question := latestUserMessage(history)
	if question == "" {
		return nil, &ValidationError{Field: "messages", Message: "must contain a user message"}
	}

	notes, err := s.retriever.FindRelevantNotes(ctx, userID, question, retrievalK)
	if err != nil {
		logger.ErrorContext(ctx, "failed to retrieve relevant notes", "error", err)
		return nil, WrapExternal(err, "failed to retrieve relevant notes")
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	if len(notes) > 0 {
		messages = append(messages, llm.Message{Role: "system", Content: formatNoteContext(notes)})
	}
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	logger.InfoContext(ctx, "chat messages prepared", "history_length", len(history), "notes_retrieved", len(notes))
	return messages, nil
}

// latestUserMessage returns the content of the most recent user message.
func latestUserMessage(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" && strings.TrimSpace(messages[i].Content) != "" {
			return messages[i].Content
		}
	}
	return ""
}

// formatNoteContext renders retrieved notes into a context block the model
// can cite from.
func formatNoteContext(notes []retrieval.RelevantNote) string {
	var b strings.Builder
	b.WriteString("Relevant notes from the user's collection:\n\n")
	for _, note := range notes {
		fmt.Fprintf(&b, "[id: %s] %s (created %s)\n%s\n\n", note.ID, note.Title, note.CreatedAt.Format("2006-01-02"), note.Body)
	}
	return strings.TrimRight(b.String(), "\n")
}
