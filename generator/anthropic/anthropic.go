// Package anthropic provides a core.Generator implementation using the
// Anthropic Messages API. The adapter runs a non-streaming completion and
// emits each returned text block as one fragment; true delta streaming is
// not yet implemented.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/chatrelay/chatrelay/core"
)

// Options configure the Anthropic generator adapter (model id, temperature,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Generator wraps the Anthropic Messages API behind core.Generator.
type Generator struct {
	client *anthropic.Client
	opts   Options
}

// Interface compliance (compile-time assertion)
var _ core.Generator = (*Generator)(nil)

// NewGenerator creates a new Anthropic generator using the official client.
func NewGenerator(optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Generator{client: &client, opts: opts}
}

// NewGeneratorFromClient creates a new Anthropic generator from an existing client.
func NewGeneratorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Stream implements core.Generator.
func (g *Generator) Stream(ctx context.Context, req core.GenerateRequest) (<-chan string, <-chan error) {
	out := make(chan string, 4)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)

		params := anthropic.MessageNewParams{
			Model:       g.opts.Model,
			Messages:    buildMessages(req),
			MaxTokens:   g.opts.MaxTokens,
			Temperature: anthropic.Float(g.opts.Temperature),
		}
		if systemBlocks := buildSystemBlocks(req); len(systemBlocks) > 0 {
			params.System = systemBlocks
		}

		resp, err := g.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		for _, block := range resp.Content {
			if block.Type != "text" {
				continue
			}
			textBlock := block.AsText()
			if textBlock.Text == "" {
				continue
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- textBlock.Text:
			}
		}
	}()
	return out, errCh
}

// buildMessages converts the record history plus current input into
// Anthropic message format.
func buildMessages(req core.GenerateRequest) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, rec := range req.History {
		text := strings.TrimSpace(rec.Content)
		if text == "" {
			continue
		}
		switch rec.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Input)))
	return messages
}

// buildSystemBlocks assembles instruction and summary system blocks.
func buildSystemBlocks(req core.GenerateRequest) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	if req.Instructions != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: req.Instructions})
	}
	if req.Summary != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: "Conversation summary so far:\n" + req.Summary})
	}
	return blocks
}
