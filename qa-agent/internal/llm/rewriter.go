package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

// Rewriter turns a question into a web-search friendly query.
type Rewriter struct {
	model ChatModel
}

func NewRewriter(m ChatModel) *Rewriter {
	return &Rewriter{model: m}
}

func (r *Rewriter) Rewrite(ctx context.Context, question string) (string, error) {
	out, err := r.model.Complete(ctx, rewriterSystemPrompt, fmt.Sprintf(rewriterUserPrompt, question))
	if err != nil {
		return "", modelError(err)
	}
	rewritten := strings.Trim(strings.TrimSpace(out), `"'`)
	if rewritten == "" {
		return "", fmt.Errorf("%w: rewriter returned nothing", graph.ErrModelInvocation)
	}
	return rewritten, nil
}
