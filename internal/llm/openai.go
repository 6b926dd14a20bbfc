package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a minimal chat message used by the core services.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Client defines the methods required by the triage pipeline.
// Chat accepts the full message history (system + latest user).
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Options configures an OpenAIClient.  Empty models fall back to defaults.
type Options struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	TranscribeModel string
	// Temperature is used for chat completions; zero selects the default.
	Temperature float32
}

const (
	DefaultChatModel       = "gpt-4o-mini"
	DefaultTranscribeModel = openai.Whisper1
	DefaultTemperature     = 0.2
)

// OpenAIClient calls the OpenAI API for chat completions and speech-to-text.
type OpenAIClient struct {
	client          *openai.Client
	chatModel       string
	transcribeModel string
	temperature     float32
}

// NewOpenAIClient constructs an OpenAI-backed LLM client from explicit
// options.  It is built once at startup and shared across requests.
func NewOpenAIClient(opts Options) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	chatModel := opts.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	transcribeModel := opts.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = DefaultTranscribeModel
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &OpenAIClient{
		client:          openai.NewClientWithConfig(cfg),
		chatModel:       chatModel,
		transcribeModel: transcribeModel,
		temperature:     temperature,
	}
}

// Chat returns the assistant reply to the message history.  An answer with
// no choices is an error so callers fall back instead of parsing nothing.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    chatMessages(messages),
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// chatMessages maps roles onto the API's; unknown roles are sent as user.
func chatMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case openai.ChatMessageRoleSystem, openai.ChatMessageRoleAssistant:
			role = m.Role
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}

// Transcribe converts a short speech recording to text.  filename is only used
// to tell the API the audio format.
func (c *OpenAIClient) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}
	if filename == "" {
		filename = "audio.wav"
	}
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcribeModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
