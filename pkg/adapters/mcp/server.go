package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/hearth"
	"github.com/aretw0/hearth/internal/logging"
	"github.com/aretw0/hearth/pkg/domain"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FormsURI is the resource listing the registered forms.
const FormsURI = "hearth://forms"

// Assistant is the part of hearth.Assistant exposed over MCP.
type Assistant interface {
	Say(ctx context.Context, sessionID, text string) (*domain.Reply, error)
	Forms() []domain.Form
	EndSession(ctx context.Context, sessionID string) error
}

// Server wraps an Assistant and exposes it as an MCP server.
type Server struct {
	assistant Assistant
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for rejected calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(assistant Assistant, opts ...Option) *Server {
	s := &Server{
		assistant: assistant,
		mcpServer: server.NewMCPServer("hearth-mcp", strings.TrimSpace(hearth.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	interpretTool := mcp.NewTool("interpret",
		mcp.WithDescription("Interpret a home-automation command such as \"vpn start france\" or \"lights dim 40\". "+
			"When the reply outcome is \"clarify\", answer its question with the same session_id."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The utterance")),
		mcp.WithString("session_id", mcp.Description("Conversation to continue; omitted starts a new one")),
		mcp.WithOutputSchema[domain.Reply](),
	)
	s.mcpServer.AddTool(interpretTool, mcp.NewStructuredToolHandler(s.handleInterpret))

	s.mcpServer.AddTool(mcp.NewTool("list_forms",
		mcp.WithDescription("List the command forms, their keywords and the slots each action needs."),
	), s.handleListForms)

	s.mcpServer.AddTool(mcp.NewTool("end_session",
		mcp.WithDescription("Forget a conversation, including any pending question."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation to end")),
	), s.handleEndSession)
}

func (s *Server) handleInterpret(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Reply, error) {
	text, _ := args["text"].(string)
	if strings.TrimSpace(text) == "" {
		return domain.Reply{}, errors.New("text is required")
	}
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply, err := s.assistant.Say(ctx, sessionID, text)
	if err != nil {
		s.logger.Warn("MCP interpret failed", "session_id", sessionID, "err", err)
		return domain.Reply{}, fmt.Errorf("interpret failed: %w", err)
	}
	return *reply, nil
}

func (s *Server) handleListForms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.assistant.Forms())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode forms: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	if err := s.assistant.EndSession(ctx, sessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("end session: %v", err)), nil
	}
	return mcp.NewToolResultText("ended " + sessionID), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FormsURI, "Registered command forms",
		mcp.WithMIMEType("application/json"),
	), s.readForms)
}

func (s *Server) readForms(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.assistant.Forms())
	if err != nil {
		return nil, fmt.Errorf("failed to encode forms: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
