package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// stubModel answers after an optional delay, or fails with err.
type stubModel struct {
	reply string
	err   error
	delay time.Duration
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, nil, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func TestGenerateReturnsReply(t *testing.T) {
	gateway := &Gateway{model: &stubModel{reply: "sure thing"}, timeout: time.Second}

	reply, err := gateway.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "sure thing", reply)
}

func TestGenerateDeadlineUnblocksCaller(t *testing.T) {
	gateway := &Gateway{
		model:   &stubModel{reply: "too late", delay: 5 * time.Second},
		timeout: 50 * time.Millisecond,
	}

	start := time.Now()
	_, err := gateway.Generate(context.Background(), "prompt")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrDeadlineExceeded)
	// the caller comes back at the deadline, not when the provider does
	assert.Less(t, elapsed, time.Second)
}

func TestGenerateWrapsProviderError(t *testing.T) {
	providerErr := errors.New("model overloaded")
	gateway := &Gateway{model: &stubModel{err: providerErr}, timeout: time.Second}

	_, err := gateway.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, providerErr)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestGenerateHonorsCallerCancellation(t *testing.T) {
	gateway := &Gateway{
		model:   &stubModel{reply: "never", delay: 5 * time.Second},
		timeout: time.Minute,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gateway.Generate(ctx, "prompt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeadlineExceeded)
}
