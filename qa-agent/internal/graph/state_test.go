package graph

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStateApplyRetainsUnsetFields(t *testing.T) {
	s := State{Question: "q", Category: "Sleep", Documents: []Document{{Content: "a"}}}
	rewritten := "better q"
	s.apply(Update{Question: &rewritten})

	assert.Equal(t, "better q", s.Question)
	assert.Equal(t, "Sleep", s.Category)
	assert.Len(t, s.Documents, 1)

	empty := []Document{}
	yes := SearchYes
	s.apply(Update{Documents: &empty, WebSearchNeeded: &yes})
	assert.Empty(t, s.Documents)
	assert.NotNil(t, s.Documents)
	assert.Equal(t, SearchYes, s.WebSearchNeeded)
}

func TestFilterGraded(t *testing.T) {
	docs := []Document{{Content: "a"}, {Content: "b"}, {Content: "c"}}

	filtered, decision := filterGraded(docs, []Grade{{true}, {false}, {true}})
	assert.Equal(t, []Document{{Content: "a"}, {Content: "c"}}, filtered)
	assert.Equal(t, SearchYes, decision)

	filtered, decision = filterGraded(docs, []Grade{{true}, {true}, {true}})
	assert.Equal(t, docs, filtered)
	assert.Equal(t, SearchNo, decision)

	filtered, decision = filterGraded(nil, nil)
	assert.Empty(t, filtered)
	assert.Equal(t, SearchYes, decision)
}

func TestRoute(t *testing.T) {
	assert.Equal(t, RouteRewrite, route(&State{WebSearchNeeded: SearchYes}))
	assert.Equal(t, RouteGenerate, route(&State{WebSearchNeeded: SearchNo}))
	assert.Equal(t, RouteGenerate, route(&State{}))
	assert.Equal(t, StageRewrite, RouteRewrite.target())
	assert.Equal(t, StageGenerate, RouteGenerate.target())
	assert.Equal(t, "rewrite_query", RouteRewrite.String())
}

func TestMergeResults(t *testing.T) {
	doc := mergeResults("q", []SearchResult{{Content: "one", URL: "u1"}, {Content: "two"}})
	assert.Equal(t, "one\n\ntwo", doc.Content)
	assert.Equal(t, map[string]string{MetaSource: SourceWebSearch, MetaQuery: "q", MetaURLs: "u1"}, doc.Metadata)

	doc = mergeResults("q", nil)
	assert.Empty(t, doc.Content)
	assert.NotContains(t, doc.Metadata, MetaURLs)
}

func TestNextRecordsRouteDecision(t *testing.T) {
	e := &Engine{logger: nil}
	before := testutil.ToFloat64(routeDecisions.WithLabelValues("rewrite_query"))
	next, ok := e.next(discard(), StageGrade, &State{WebSearchNeeded: SearchYes})
	assert.True(t, ok)
	assert.Equal(t, StageRewrite, next)
	assert.Equal(t, before+1, testutil.ToFloat64(routeDecisions.WithLabelValues("rewrite_query")))

	_, ok = e.next(discard(), StageGenerate, &State{})
	assert.False(t, ok)
}
