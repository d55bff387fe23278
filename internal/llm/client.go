// Package llm wraps the external text-generation provider behind a bounded
// call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrDeadlineExceeded reports that the generation deadline elapsed before
// the provider replied.
var ErrDeadlineExceeded = errors.New("generation deadline exceeded")

type Gateway struct {
	model   llms.Model
	timeout time.Duration
}

func New(baseURL, token, model string, timeout time.Duration) (*Gateway, error) {
	client, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &Gateway{model: client, timeout: timeout}, nil
}

// Generate sends the prompt and returns exactly one reply, racing the
// provider call against the deadline. When the deadline wins the caller is
// unblocked immediately and a late provider result is discarded; the
// downstream call is cancelled on a best-effort basis via the context.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return "", ErrDeadlineExceeded
			}
			return "", fmt.Errorf("provider call failed: %w", res.err)
		}
		return res.text, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrDeadlineExceeded
		}
		return "", ctx.Err()
	}
}
