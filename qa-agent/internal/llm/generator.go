package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Divas-Gupta30/agentic-rag/qa-agent/internal/graph"
)

// Sentinel answers. Both are successful generations.
const (
	DontKnowAnswer = "I don't know the answer."
	OffTopicAnswer = "I am only able to assist with healthcare-related topics and cannot answer this question."
)

// Generator answers a question strictly from its grounding documents.
type Generator struct {
	model ChatModel
}

func NewGenerator(m ChatModel) *Generator {
	return &Generator{model: m}
}

func (g *Generator) Generate(ctx context.Context, question string, docs []graph.Document) (string, error) {
	out, err := g.model.Complete(ctx, generatorSystemPrompt, fmt.Sprintf(generatorUserPrompt, question, FormatDocs(docs)))
	if err != nil {
		return "", modelError(err)
	}
	answer := strings.TrimSpace(out)
	if answer == "" {
		return DontKnowAnswer, nil
	}
	return answer, nil
}

// FormatDocs joins document contents with a blank line.
func FormatDocs(docs []graph.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}
