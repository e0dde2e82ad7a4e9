package graph

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Metadata keys set on the document produced by web_search.
const (
	MetaSource = "source"
	MetaQuery  = "query"
	MetaURLs   = "urls"

	SourceWebSearch = "web_search"
)

func (e *Engine) webSearch(ctx context.Context, log logrus.FieldLogger, s State) (Update, error) {
	results, err := e.caps.WebSearch.Search(ctx, s.Question)
	if err != nil {
		return Update{}, err
	}
	log.WithField("results", len(results)).Debug("web search returned")

	docs := make([]Document, 0, len(s.Documents)+1)
	docs = append(docs, s.Documents...)
	docs = append(docs, mergeResults(s.Question, results))
	return Update{Documents: &docs}, nil
}

// mergeResults folds every search hit into one document, contents separated
// by a blank line.
func mergeResults(query string, results []SearchResult) Document {
	contents := make([]string, 0, len(results))
	urls := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	meta := map[string]string{
		MetaSource: SourceWebSearch,
		MetaQuery:  query,
	}
	if len(urls) > 0 {
		meta[MetaURLs] = strings.Join(urls, " ")
	}
	return Document{Content: strings.Join(contents, "\n\n"), Metadata: meta}
}
