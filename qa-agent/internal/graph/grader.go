package graph

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func (e *Engine) gradeDocuments(ctx context.Context, log logrus.FieldLogger, s State) (Update, error) {
	grades, err := e.gradeAll(ctx, s.Question, s.Documents)
	if err != nil {
		return Update{}, err
	}
	filtered, decision := filterGraded(s.Documents, grades)
	log.WithFields(logrus.Fields{
		"graded":   len(s.Documents),
		"relevant": len(filtered),
	}).Debug("documents graded")
	return Update{Documents: &filtered, WebSearchNeeded: &decision}, nil
}

// gradeAll returns one grade per document, indexed by the document's
// position regardless of completion order.
func (e *Engine) gradeAll(ctx context.Context, question string, docs []Document) ([]Grade, error) {
	grades := make([]Grade, len(docs))
	if e.concurrency < 2 || len(docs) < 2 {
		for i, doc := range docs {
			g, err := e.caps.Grader.Grade(ctx, question, doc)
			if err != nil {
				return nil, err
			}
			grades[i] = g
		}
		return grades, nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)
	for i, doc := range docs {
		i, doc := i, doc
		eg.Go(func() error {
			g, err := e.caps.Grader.Grade(ctx, question, doc)
			if err != nil {
				return err
			}
			grades[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return grades, nil
}

// filterGraded keeps relevant documents in their original order. Web search is
// needed when there was nothing to grade or any document was rejected.
func filterGraded(docs []Document, grades []Grade) ([]Document, SearchDecision) {
	decision := SearchNo
	if len(docs) == 0 {
		decision = SearchYes
	}
	filtered := make([]Document, 0, len(docs))
	for i, doc := range docs {
		if grades[i].Relevant {
			filtered = append(filtered, doc)
			continue
		}
		decision = SearchYes
	}
	return filtered, decision
}
