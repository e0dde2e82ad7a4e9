package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

// Grader asks a model for a binary relevance score.
type Grader struct {
	model ChatModel
}

func NewGrader(m ChatModel) *Grader {
	return &Grader{model: m}
}

func (g *Grader) Grade(ctx context.Context, question string, doc graph.Document) (graph.Grade, error) {
	out, err := g.model.Complete(ctx, graderSystemPrompt, fmt.Sprintf(graderUserPrompt, doc.Content, question))
	if err != nil {
		return graph.Grade{}, modelError(err)
	}
	relevant, err := parseBinaryScore(out)
	if err != nil {
		return graph.Grade{}, err
	}
	return graph.Grade{Relevant: relevant}, nil
}

// parseBinaryScore accepts {"binary_score": "yes"} (optionally fenced in a
// markdown code block) or a bare yes/no.
func parseBinaryScore(out string) (bool, error) {
	score := strings.TrimSpace(out)
	if start, end := strings.Index(score, "{"), strings.LastIndex(score, "}"); start >= 0 && end > start {
		obj := score[start : end+1]
		if !gjson.Valid(obj) {
			return false, fmt.Errorf("%w: malformed grader output %q", graph.ErrModelInvocation, out)
		}
		res := gjson.Get(obj, "binary_score")
		if !res.Exists() {
			return false, fmt.Errorf("%w: grader output has no binary_score: %q", graph.ErrModelInvocation, out)
		}
		score = res.String()
	}

	switch strings.ToLower(strings.Trim(strings.TrimSpace(score), `."'`)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: unexpected grader output %q", graph.ErrModelInvocation, out)
}

// modelError makes sure err is classified as a model invocation failure.
func modelError(err error) error {
	if errors.Is(err, graph.ErrModelInvocation) {
		return err
	}
	return fmt.Errorf("%w: %w", graph.ErrModelInvocation, err)
}
