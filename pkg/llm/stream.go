package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coin-design-enrich/config"
)

const (
	chatCompletionsPath = "/v1/chat/completions"
	sseDataPrefix       = "data:"
	sseDone             = "[DONE]"
)

// Streamer returns the full text of one streamed completion.
type Streamer interface {
	Stream(ctx context.Context, prompt string) (string, error)
}

// NewStreamer picks the streaming backend configured in cfg.Provider.
func NewStreamer(ctx context.Context, cfg *config.LLMConfig, opts ...Option) (Streamer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiStreamer(ctx, cfg)
	case config.ProviderOpenAI, "":
		return NewOpenAIClient(cfg, opts...), nil
	}
	return nil, errors.Errorf("unknown llm provider %q", cfg.Provider)
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatStreamRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Stream sends prompt as a single user message.
func (c *OpenAIClient) Stream(ctx context.Context, prompt string) (string, error) {
	return c.StreamChat(ctx, []ChatMessage{{Role: "user", Content: prompt}})
}

// StreamChat runs a streaming chat completion and concatenates the deltas.
func (c *OpenAIClient) StreamChat(ctx context.Context, messages []ChatMessage) (string, error) {
	payload, err := json.Marshal(chatStreamRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    messages,
		Stream:      true,
	})
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}
	resp, err := c.send(ctx, http.MethodPost, chatCompletionsPath, "application/json", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if data == sseDone {
			break
		}
		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			zap.S().Warnf("skip undecodable stream chunk: %v", err)
			continue
		}
		if chunk.Error != nil {
			return "", errors.Errorf("stream error: %s", chunk.Error.Message)
		}
		for _, choice := range chunk.Choices {
			out.WriteString(choice.Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "read chat stream")
	}
	return out.String(), nil
}
