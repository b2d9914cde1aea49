package reply

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Placeholder is substituted for empty user text so the engine always
// receives a non-empty turn.
const Placeholder = "(no input)"

// DefaultMaxTokens bounds the reply length at the call site.
const DefaultMaxTokens = 150

// DefaultPersona is the persona/policy directive applied to every reply.
// It constrains tone and length and forbids meta-commentary.
const DefaultPersona = `You are Dada, a Pomsky.

You are playful, mischievous, energetic, slightly dramatic.
You are a real dog.

Rules:

Stay in character.

Never mention AI or being fictional.

Very short replies (1 sentence, max 10 words).

No questions.

No advice.

No explanations.

No problem solving.

No human tasks.

No describing actions.

No stage directions.

No sound effects.

If asked to do non-dog things, refuse briefly in a dog-like way.

Tone:

Simple words.

Emotional but not verbalized actions.

A little chaotic.

Cute but not human.

You ARE Dada.`

// Config contains reply adapter configuration.
type Config struct {
	APIKey    string
	BaseURL   string // optional API base URL override
	Model     string
	Persona   string
	MaxTokens int64

	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

// Client invokes the external reply-generation engine. The persona
// directive is the only system turn and the user text is the only dynamic
// turn. Every failure mode, including a missing credential, degrades to an
// empty reply; an empty reply is a valid terminal outcome, not an error.
type Client struct {
	client  openai.Client
	enabled bool
	config  Config
	logger  *slog.Logger
}

// NewClient creates a reply adapter. An empty API key is valid and
// produces a disabled adapter that always returns empty replies.
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.Model == "" {
		config.Model = string(openai.ChatModelGPT4oMini)
	}

	if config.Persona == "" {
		config.Persona = DefaultPersona
	}

	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}

	return &Client{
		client:  openai.NewClient(opts...),
		enabled: config.APIKey != "",
		config:  config,
		logger:  logger,
	}
}

// Reply generates a reply to userText. Empty user text is replaced with
// the placeholder token. The returned error is always nil; failures
// degrade to an empty reply.
func (c *Client) Reply(ctx context.Context, userText string) (string, error) {
	if !c.enabled {
		c.logger.Info("Reply generation skipped: API key not set")
		return "", nil
	}

	text := strings.TrimSpace(userText)
	if text == "" {
		text = Placeholder
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.config.Persona),
			openai.UserMessage(text),
		},
		Model:     openai.ChatModel(c.config.Model),
		MaxTokens: openai.Int(c.config.MaxTokens),
	})
	if err != nil {
		c.logger.Error("Reply request failed", slog.String("error", err.Error()))
		return "", nil
	}

	if len(resp.Choices) == 0 {
		c.logger.Error("Reply response contained no choices")
		return "", nil
	}

	replyText := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.logger.Debug("Reply generated", slog.String("text", replyText))

	return replyText, nil
}
