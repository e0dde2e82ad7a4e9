package graph

import (
	"context"
	"fmt"
)

// Retriever fetches candidate documents for a question. An empty result is
// not an error.
type Retriever interface {
	Fetch(ctx context.Context, question string) ([]Document, error)
}

// Categorizer labels a question. It must never fail.
type Categorizer interface {
	Classify(question string) string
}

// RelevanceGrader decides whether a document helps answer a question.
type RelevanceGrader interface {
	Grade(ctx context.Context, question string, doc Document) (Grade, error)
}

// QueryRewriter produces a question better suited for web search.
type QueryRewriter interface {
	Rewrite(ctx context.Context, question string) (string, error)
}

// WebSearch looks a query up on the web.
type WebSearch interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// AnswerGenerator synthesizes the final answer from the grounding documents.
// Not knowing the answer is a successful generation, not an error.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, docs []Document) (string, error)
}

// QueryLog records question categories for analytics. Writes are best effort.
type QueryLog interface {
	Record(ctx context.Context, question, category string) error
}

// Capabilities is the set of collaborators an Engine orchestrates. The caller
// owns their lifetime; all of them must be safe for concurrent use.
type Capabilities struct {
	Retriever   Retriever
	Categorizer Categorizer
	QueryLog    QueryLog
	Grader      RelevanceGrader
	Rewriter    QueryRewriter
	WebSearch   WebSearch
	Generator   AnswerGenerator
}

func (c Capabilities) validate(categorize bool) error {
	missing := func(name string) error {
		return fmt.Errorf("%w: missing %s", ErrConfiguration, name)
	}
	switch {
	case c.Retriever == nil:
		return missing("Retriever")
	case c.Grader == nil:
		return missing("RelevanceGrader")
	case c.Rewriter == nil:
		return missing("QueryRewriter")
	case c.WebSearch == nil:
		return missing("WebSearch")
	case c.Generator == nil:
		return missing("AnswerGenerator")
	case categorize && c.Categorizer == nil:
		return missing("Categorizer")
	}
	return nil
}
