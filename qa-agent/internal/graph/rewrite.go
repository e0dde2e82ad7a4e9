package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

func (e *Engine) rewriteQuery(ctx context.Context, log logrus.FieldLogger, s State) (Update, error) {
	rewritten, err := e.caps.Rewriter.Rewrite(ctx, s.Question)
	if err != nil {
		return Update{}, err
	}
	if strings.TrimSpace(rewritten) == "" {
		return Update{}, fmt.Errorf("%w: rewriter returned an empty question", ErrModelInvocation)
	}
	log.WithFields(logrus.Fields{
		"original":  s.Question,
		"rewritten": rewritten,
	}).Debug("question rewritten")
	return Update{Question: &rewritten}, nil
}
