package llmsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/plokeai/plokecore/internal/appstate"
	"github.com/plokeai/plokecore/internal/toolcall"
)

// Config tunes one Session's behavior.
type Config struct {
	Model                string
	MaxTokens            int64
	ToolCallChainLimit   int
	MaxMessageChars      int
	FallbackWithoutTools bool
	RequestsPerSecond    float64 // rate limit applied before every outgoing request
}

// DefaultConfig mirrors the original implementation's defaults: a
// modest chain limit so a tool-call loop can't run away, and a
// conservative per-session request rate.
func DefaultConfig(model string) Config {
	return Config{
		Model:                model,
		MaxTokens:            4096,
		ToolCallChainLimit:   8,
		MaxMessageChars:      32_000,
		FallbackWithoutTools: true,
		RequestsPerSecond:    2,
	}
}

// Session drives turns against one Client with one tool registry.
type Session struct {
	Client   Client
	Tools    *toolcall.Registry
	AppState *appstate.AppState
	EventBus *appstate.EventBus
	Config   Config
	limiter  *rate.Limiter
}

// NewSession builds a Session and its internal request-pacing limiter.
func NewSession(client Client, tools *toolcall.Registry, state *appstate.AppState, bus *appstate.EventBus, cfg Config) *Session {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	return &Session{
		Client:   client,
		Tools:    tools,
		AppState: state,
		EventBus: bus,
		Config:   cfg,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// RunTurn consumes one user turn: history plus the new user message,
// optionally prefixed by an assembled-context system message. It
// returns the finalized assistant text, or an error note if the turn
// failed outright (network failure, chain-limit exhaustion).
func (s *Session) RunTurn(ctx context.Context, history []Message, userText string, assembledContext string) (string, error) {
	placeholderID := uuid.New().String()
	s.AppState.Chat.Append(appstate.ChatMessage{ID: placeholderID, Role: RoleAssistant, Status: "pending"})

	msgs := make([]Message, 0, len(history)+2)
	if assembledContext != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: assembledContext})
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, Message{Role: RoleUser, Content: userText})

	withTools := true
	for iteration := 0; iteration < s.Config.ToolCallChainLimit; iteration++ {
		select {
		case <-ctx.Done():
			s.AppState.Chat.UpdateByID(placeholderID, func(m *appstate.ChatMessage) { m.Status = "cancelled" })
			return "", ctx.Err()
		default:
		}

		msgs = capMessages(msgs, s.Config.MaxMessageChars)
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := s.Client.CreateMessage(ctx, s.buildParams(msgs, withTools))
		if err != nil {
			if withTools && s.Config.FallbackWithoutTools && isNoToolsEndpoint(err) {
				withTools = false
				iteration--
				continue
			}
			s.finalizeFailure(placeholderID, err)
			return "", err
		}

		text, toolCalls := splitResponse(resp)
		if len(toolCalls) == 0 {
			s.AppState.Chat.UpdateByID(placeholderID, func(m *appstate.ChatMessage) {
				m.Content = text
				m.Status = "completed"
			})
			return text, nil
		}

		msgs = append(msgs, Message{Role: RoleAssistant, Content: text})
		for _, call := range toolCalls {
			msgs = append(msgs, s.dispatchToolCall(ctx, call))
		}
	}

	failure := fmt.Sprintf("Request failed: tool-call chain exceeded %d iterations", s.Config.ToolCallChainLimit)
	s.AppState.Chat.UpdateByID(placeholderID, func(m *appstate.ChatMessage) {
		m.Content = failure
		m.Status = "completed"
	})
	return "", errors.New(failure)
}

func (s *Session) finalizeFailure(placeholderID string, err error) {
	failure := fmt.Sprintf("Request failed: %s", err.Error())
	s.AppState.Chat.UpdateByID(placeholderID, func(m *appstate.ChatMessage) {
		m.Content = failure
		m.Status = "completed"
	})
}

type toolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

func splitResponse(msg *anthropic.Message) (string, []toolCall) {
	var text string
	var calls []toolCall
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "tool_use":
			raw, _ := json.Marshal(block.Input)
			calls = append(calls, toolCall{ID: block.ID, Name: block.Name, Args: raw})
		}
	}
	return text, calls
}

func (s *Session) dispatchToolCall(ctx context.Context, call toolCall) Message {
	requestID := uuid.New()
	s.EventBus.Publish(appstate.Event{
		Kind:      appstate.EventToolCallRequested,
		At:        time.Now(),
		RequestID: requestID.String(),
		Payload:   appstate.ToolCallEvent{RequestID: requestID.String(), CallID: call.ID, ToolName: call.Name},
	})

	result, err := s.Tools.Dispatch(call.Name, call.Args, toolcall.Ctx{
		Context:   ctx,
		AppState:  s.AppState,
		EventBus:  s.EventBus,
		RequestID: requestID,
		CallID:    call.ID,
	})

	if err != nil {
		var te *toolcall.ToolError
		errMsg := err.Error()
		if errors.As(err, &te) {
			errMsg = te.Message
		}
		s.EventBus.Publish(appstate.Event{
			Kind:      appstate.EventToolCallFailed,
			At:        time.Now(),
			RequestID: requestID.String(),
			Payload:   appstate.ToolCallEvent{RequestID: requestID.String(), CallID: call.ID, ToolName: call.Name, ErrorMsg: errMsg},
		})
		return Message{Role: RoleTool, ToolCallID: call.ID, Name: call.Name, Content: errMsg}
	}

	s.EventBus.Publish(appstate.Event{
		Kind:      appstate.EventToolCallCompleted,
		At:        time.Now(),
		RequestID: requestID.String(),
		Payload:   appstate.ToolCallEvent{RequestID: requestID.String(), CallID: call.ID, ToolName: call.Name, Outcome: string(result)},
	})
	return Message{Role: RoleTool, ToolCallID: call.ID, Name: call.Name, Content: string(result)}
}

func (s *Session) buildParams(msgs []Message, withTools bool) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.Config.Model),
		MaxTokens: s.Config.MaxTokens,
	}

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case RoleTool:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		}
	}

	if withTools && s.Tools != nil {
		for _, def := range s.Tools.Definitions() {
			params.Tools = append(params.Tools, anthropic.ToolUnionParamOfTool(anthropic.ToolInputSchemaParam{}, def.Name))
		}
	}

	return params
}

// isNoToolsEndpoint reports whether err looks like the model rejected
// the request because the configured endpoint/model doesn't support
// tool use at all (as opposed to a transient or auth failure). The SDK
// surfaces this as a 404 whose body names the unsupported capability;
// matching on the message text is the only stable signal available
// without depending on the SDK's internal error struct layout.
func isNoToolsEndpoint(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "404") && strings.Contains(strings.ToLower(msg), "tool")
}
