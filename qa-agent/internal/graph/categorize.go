package graph

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

func (e *Engine) categorizeQuestion(ctx context.Context, log logrus.FieldLogger, s State) (Update, error) {
	category := e.caps.Categorizer.Classify(s.Question)
	log.WithField("category", category).Debug("question categorized")

	if e.caps.QueryLog != nil {
		if e.asyncLog {
			bg := context.WithoutCancel(ctx)
			e.wg.Add(1)
			go func() {
				defer e.wg.Done()
				e.record(bg, log, s.Question, category)
			}()
		} else {
			e.record(ctx, log, s.Question, category)
		}
	}
	return Update{Category: &category}, nil
}

// record writes to the query log. Failures are logged, never returned.
func (e *Engine) record(ctx context.Context, log logrus.FieldLogger, question, category string) {
	if err := e.caps.QueryLog.Record(ctx, question, category); err != nil {
		queryLogFailures.Inc()
		log.WithError(fmt.Errorf("%w: %w", ErrLogging, err)).Warn("continuing without query log entry")
	}
}
