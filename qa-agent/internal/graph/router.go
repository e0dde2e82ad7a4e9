package graph

// Route is the outcome of the single conditional edge after grading.
type Route int

const (
	RouteGenerate Route = iota
	RouteRewrite
)

func (r Route) String() string {
	if r == RouteRewrite {
		return "rewrite_query"
	}
	return "generate_answer"
}

func (r Route) target() Stage {
	if r == RouteRewrite {
		return StageRewrite
	}
	return StageGenerate
}

// route sends the run through query rewriting and web search whenever
// grading flagged missing evidence.
func route(s *State) Route {
	if s.WebSearchNeeded == SearchYes {
		return RouteRewrite
	}
	return RouteGenerate
}
