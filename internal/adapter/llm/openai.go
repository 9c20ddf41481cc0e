package llm

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog/log"

	"github.com/storekeep/storekeep/internal/config"
	"github.com/storekeep/storekeep/internal/domain"
)

const (
	decideMaxTokens  = 300
	narrateMaxTokens = 200
)

// OpenAIGateway implements Gateway against the OpenAI chat completions API
// with function calling.
type OpenAIGateway struct {
	client      openai.Client
	model       shared.ChatModel
	temperature float64
}

var _ Gateway = (*OpenAIGateway)(nil)

// NewOpenAIGateway creates a gateway from the given configuration.
func NewOpenAIGateway(cfg config.OpenAI) *OpenAIGateway {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenAIGateway{
		client:      openai.NewClient(opts...),
		model:       shared.ChatModel(cfg.Model),
		temperature: cfg.Temperature,
	}
}

// Decide asks the model for either free text or one tool invocation. A
// failed or malformed model call degrades to FallbackText; this boundary
// never returns a transport error to the chat flow.
func (g *OpenAIGateway) Decide(ctx context.Context, msgs []Message, tools []domain.ToolDefinition) (Decision, error) {
	params := openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    toOpenAIMessages(msgs),
		Tools:       toOpenAITools(tools),
		Temperature: openai.Float(g.temperature),
		MaxTokens:   openai.Int(decideMaxTokens),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error().Err(err).Msg("model decide call failed")
		return Decision{Text: FallbackText}, nil
	}
	if len(resp.Choices) == 0 {
		log.Error().Msg("model decide call returned no choices")
		return Decision{Text: FallbackText}, nil
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		args := map[string]any{}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			log.Error().Err(err).Str("tool", call.Function.Name).Msg("model returned malformed tool arguments")
			return Decision{Text: FallbackText}, nil
		}
		return Decision{Invocation: &domain.ToolInvocationRequest{
			ID:        call.ID,
			Name:      domain.ToolName(call.Function.Name),
			Arguments: args,
		}}, nil
	}

	return Decision{Text: msg.Content}, nil
}

// Narrate appends the tool result as a tool-role message and asks the
// model for the final reply. On failure it falls back to the result's own
// message or error text, so the system always answers.
func (g *OpenAIGateway) Narrate(ctx context.Context, msgs []Message, inv domain.ToolInvocationRequest, result domain.ToolResult) (string, error) {
	payload, err := json.Marshal(result.Envelope())
	if err != nil {
		return result.Reply(), nil
	}

	converted := toOpenAIMessages(msgs)
	converted = append(converted, openai.ToolMessage(string(payload), inv.ID))

	params := openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    converted,
		Temperature: openai.Float(g.temperature),
		MaxTokens:   openai.Int(narrateMaxTokens),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		if err != nil {
			log.Error().Err(err).Msg("model narrate call failed")
		}
		return result.Reply(), nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		case "tool":
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func toOpenAITools(tools []domain.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, def := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        string(def.Name),
				Description: openai.String(def.Description),
				Parameters:  openai.FunctionParameters(SchemaJSON(def)),
			},
		})
	}
	return out
}
