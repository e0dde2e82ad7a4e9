package graph

import (
	"context"

	"github.com/sirupsen/logrus"
)

// generateAnswer is the terminal stage.
func (e *Engine) generateAnswer(ctx context.Context, log logrus.FieldLogger, s State) (Update, error) {
	answer, err := e.caps.Generator.Generate(ctx, s.Question, s.Documents)
	if err != nil {
		return Update{}, err
	}
	log.WithField("context_documents", len(s.Documents)).Debug("answer generated")
	return Update{Generation: &answer}, nil
}
