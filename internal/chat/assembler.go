package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"secondbrain/internal/models"
)

const (
	// DefaultHistoryLimit is how many recent transcript messages go into
	// the prompt.
	DefaultHistoryLimit = 5
	// DefaultDigestTokenBudget caps the saved-content digest so a large
	// collection cannot crowd the rest of the prompt out.
	DefaultDigestTokenBudget = 1024
)

const systemPrompt = `You are the assistant inside a personal "second brain" bookmarking app.
The user saves links to articles, videos, images, audio and tweets, each with a title and tags.
Below is a digest of what they have saved, followed by the conversation so far.
Answer using the saved content and the conversation; if the answer is not there, say so plainly.`

// ContentLister loads the owner's saved content.
type ContentLister interface {
	ListContentByOwner(ctx context.Context, ownerID string) ([]models.Content, error)
}

// HistoryLoader loads the tail of a session transcript, newest first.
type HistoryLoader interface {
	RecentMessages(ctx context.Context, sessionID int64, limit int) ([]models.Message, error)
}

// Assembler builds the prompt for one chat turn. The digest projects only
// title, type and tag titles; raw links never leave the store through here.
type Assembler struct {
	contents     ContentLister
	history      HistoryLoader
	historyLimit int
	digestBudget int
	countTokens  func(string) int
}

type AssemblerOption func(*Assembler)

func WithHistoryLimit(n int) AssemblerOption {
	return func(a *Assembler) { a.historyLimit = n }
}

func WithDigestBudget(n int) AssemblerOption {
	return func(a *Assembler) { a.digestBudget = n }
}

// WithTokenCounter overrides the token counter, mainly for tests.
func WithTokenCounter(fn func(string) int) AssemblerOption {
	return func(a *Assembler) { a.countTokens = fn }
}

func NewAssembler(contents ContentLister, history HistoryLoader, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		contents:     contents,
		history:      history,
		historyLimit: DefaultHistoryLimit,
		digestBudget: DefaultDigestTokenBudget,
		countTokens:  lazyTokenCounter(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildPrompt concatenates, in fixed order: the persona block, the
// saved-content digest, the most recent turns in chronological order, and
// the new user message. Ownership of the session is checked by the caller
// before this runs.
func (a *Assembler) BuildPrompt(ctx context.Context, session *models.ChatSession, userText string) (string, error) {
	contents, err := a.contents.ListContentByOwner(ctx, session.OwnerID)
	if err != nil {
		return "", fmt.Errorf("failed to load content digest: %w", err)
	}

	history, err := a.history.RecentMessages(ctx, session.ID, a.historyLimit)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	var b strings.Builder
	b.WriteString(systemPrompt)

	b.WriteString("\n\nSaved content:\n")
	used := 0
	for _, c := range contents {
		line := digestLine(c)
		used += a.countTokens(line)
		if used > a.digestBudget {
			break
		}
		b.WriteString(line)
	}

	b.WriteString("\nConversation so far:\n")
	for i := len(history) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%s: %s\n", history[i].Role, history[i].Content)
	}

	fmt.Fprintf(&b, "\nuser: %s\nassistant:", userText)
	return b.String(), nil
}

func digestLine(c models.Content) string {
	if len(c.Tags) == 0 {
		return fmt.Sprintf("- %s (%s)\n", c.Title, c.Type)
	}
	return fmt.Sprintf("- %s (%s) [tags: %s]\n", c.Title, c.Type, strings.Join(c.Tags, ", "))
}

// lazyTokenCounter prefers a real BPE count and falls back to a
// bytes-per-token estimate when the encoding is unavailable (tiktoken
// fetches its vocabulary on first use and may not have it offline). The
// encoding is resolved once, on the first count.
func lazyTokenCounter() func(string) int {
	var once sync.Once
	var enc *tiktoken.Tiktoken
	return func(s string) int {
		once.Do(func() {
			enc, _ = tiktoken.GetEncoding("cl100k_base")
		})
		if enc == nil {
			return len(s)/4 + 1
		}
		return len(enc.Encode(s, nil, nil))
	}
}
