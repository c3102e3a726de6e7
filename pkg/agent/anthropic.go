package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/resilience"
)

// resultToolName is the structured-output tool offered to the model when
// an invocation carries a schema.
const resultToolName = "record_result"

// maxPhantomRetries bounds re-invocations after a hallucinated tool call.
const maxPhantomRetries = 2

// Config configures the Anthropic-backed invoker.
type Config struct {
	// DefaultModel is used for roles without a specific entry in Models.
	DefaultModel string
	// Models optionally assigns a model per role.
	Models map[Role]string
	// SystemPrompts optionally assigns a system prompt per role.
	SystemPrompts map[Role]string
	// MaxTokens caps the response size per invocation.
	MaxTokens int64
}

type session struct {
	history []sdk.MessageParam
}

// Usage is cumulative token consumption for one model.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Client is an Invoker backed by the official anthropic-sdk-go, keeping
// one conversational history per role.
type Client struct {
	client sdk.Client
	cfg    Config
	retry  resilience.RetryConfig

	mu       sync.Mutex
	sessions map[Role]*session
	usage    map[string]Usage
}

// NewClient creates an Anthropic-backed agent invoker.
func NewClient(apiKey string, cfg Config) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Client{
		// SDK-internal retries are disabled; the resilience layer owns
		// backoff so retries log uniformly across providers.
		client:   sdk.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0)),
		cfg:      cfg,
		retry:    resilience.DefaultRetryConfig(),
		sessions: make(map[Role]*session),
		usage:    make(map[string]Usage),
	}
}

// Usage returns a snapshot of cumulative token consumption per model.
func (c *Client) Usage() map[string]Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Usage, len(c.usage))
	for model, u := range c.usage {
		out[model] = u
	}
	return out
}

func (c *Client) recordUsage(model string, msg *sdk.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.usage[model]
	u.InputTokens += msg.Usage.InputTokens
	u.OutputTokens += msg.Usage.OutputTokens
	c.usage[model] = u
}

// shouldRetryInvoke classifies API errors: overload and rate-limit
// responses are retried, validation and auth failures are not.
func shouldRetryInvoke(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

func (c *Client) modelFor(role Role) string {
	if m, ok := c.cfg.Models[role]; ok && m != "" {
		return m
	}
	return c.cfg.DefaultModel
}

// Reset clears the role's conversational history.
func (c *Client) Reset(role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, role)
}

// Invoke sends message on the role's session. Hallucinated tool calls
// (names the model invented) are intercepted and answered with a
// corrective instruction instead of being surfaced as errors.
func (c *Client) Invoke(ctx context.Context, role Role, message string, schema map[string]any) (*Reply, error) {
	c.mu.Lock()
	sess, ok := c.sessions[role]
	if !ok {
		sess = &session{}
		c.sessions[role] = sess
	}
	c.mu.Unlock()

	sess.history = append(sess.history, sdk.NewUserMessage(sdk.NewTextBlock(message)))

	for attempt := 0; ; attempt++ {
		params := sdk.MessageNewParams{
			Model:     sdk.Model(c.modelFor(role)),
			MaxTokens: c.cfg.MaxTokens,
			Messages:  sess.history,
		}
		if sys := c.cfg.SystemPrompts[role]; sys != "" {
			params.System = []sdk.TextBlockParam{{Text: sys}}
		}
		if schema != nil {
			params.Tools = []sdk.ToolUnionParam{{
				OfTool: &sdk.ToolParam{
					Name:        resultToolName,
					Description: sdk.String("Record the final structured result of this task."),
					InputSchema: sdk.ToolInputSchemaParam{
						Properties: schema["properties"],
						Required:   schemaRequired(schema),
					},
				},
			}}
		}

		retryCfg := c.retry
		retryCfg.ShouldRetry = shouldRetryInvoke
		retryCfg.OnRetry = resilience.RetryLogger("anthropic", string(role))

		msg, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*sdk.Message, error) {
			return c.client.Messages.New(ctx, params)
		})
		if err != nil {
			return nil, eris.Wrapf(err, "agent: invoke %s", role)
		}
		c.recordUsage(string(params.Model), msg)

		reply, phantom := c.interpret(role, msg)
		if phantom == "" {
			if text := historyText(reply); text != "" {
				sess.history = append(sess.history, sdk.NewAssistantMessage(sdk.NewTextBlock(text)))
			}
			return reply, nil
		}

		if attempt >= maxPhantomRetries {
			zap.L().Warn("agent: phantom tool retries exhausted",
				zap.String("role", string(role)),
				zap.String("tool", phantom),
			)
			return reply, nil
		}

		zap.L().Warn("agent: intercepted phantom tool call",
			zap.String("role", string(role)),
			zap.String("tool", phantom),
		)
		// Answer the hallucinated call with a corrective instruction.
		// The assistant's tool_use turn is deliberately not recorded.
		sess.history = append(sess.history, sdk.NewUserMessage(sdk.NewTextBlock(phantomCorrection(phantom))))
	}
}

// interpret converts an SDK message into a Reply. It returns the phantom
// tool name when the only actionable content was a hallucinated call.
func (c *Client) interpret(role Role, msg *sdk.Message) (*Reply, string) {
	reply := &Reply{}
	phantom := ""

	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if block.Text != "" {
				reply.Blocks = append(reply.Blocks, block.Text)
			}
		case "tool_use":
			if block.Name == resultToolName {
				if structured := toolInputMap(block.Input); len(structured) > 0 {
					reply.Structured = structured
				}
				continue
			}
			if IsPhantomTool(block.Name) {
				phantom = block.Name
				continue
			}
			zap.L().Warn("agent: unexpected tool call ignored",
				zap.String("role", string(role)),
				zap.String("tool", block.Name),
			)
		}
	}

	reply.Content = strings.Join(reply.Blocks, "\n")
	if reply.Structured != nil || reply.Content != "" {
		// Usable output wins over a stray phantom call in the same turn.
		phantom = ""
	}
	return reply, phantom
}

func schemaRequired(schema map[string]any) []string {
	raw, ok := schema["required"].([]string)
	if ok {
		return raw
	}
	anys, ok := schema["required"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(anys))
	for _, v := range anys {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// historyText renders a reply for the session transcript. Structured
// output is replayed as JSON so later turns can reference it.
func historyText(r *Reply) string {
	if t := r.Text(); t != "" {
		return t
	}
	if r.Structured != nil {
		if raw, err := json.Marshal(r.Structured); err == nil {
			return string(raw)
		}
	}
	return ""
}

func toolInputMap(input json.RawMessage) map[string]any {
	if len(input) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(input, &out); err != nil {
		return nil
	}
	return out
}
