package graph

import (
	"context"

	"github.com/sirupsen/logrus"
)

func (e *Engine) retrieve(ctx context.Context, log logrus.FieldLogger, s State) (Update, error) {
	docs, err := e.caps.Retriever.Fetch(ctx, s.Question)
	if err != nil {
		return Update{}, err
	}
	if docs == nil {
		docs = []Document{}
	}
	log.WithField("retrieved", len(docs)).Debug("retrieved documents from vector store")
	return Update{Documents: &docs}, nil
}
