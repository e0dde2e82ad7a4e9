package graph

// Stage names one node in the workflow graph.
type Stage string

const (
	StageRetrieve   Stage = "retrieve"
	StageCategorize Stage = "categorize_question"
	StageGrade      Stage = "grade_documents"
	StageRewrite    Stage = "rewrite_query"
	StageWebSearch  Stage = "web_search"
	StageGenerate   Stage = "generate_answer"
)

// SearchDecision is the grading verdict consumed by the router.
type SearchDecision int

const (
	SearchUnset SearchDecision = iota
	SearchNo
	SearchYes
)

func (d SearchDecision) String() string {
	switch d {
	case SearchYes:
		return "Yes"
	case SearchNo:
		return "No"
	default:
		return "unset"
	}
}

// Document is one unit of grounding evidence.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Grade is the relevance verdict for a single document.
type Grade struct {
	Relevant bool
}

// SearchResult is one hit returned by a WebSearch provider.
type SearchResult struct {
	Title   string
	URL     string
	Content string
}

// State is threaded through every stage of a run. It is owned by exactly one
// run and is never shared between concurrent invocations.
type State struct {
	Question        string
	Category        string
	Generation      string
	WebSearchNeeded SearchDecision
	Documents       []Document
	// Path lists the stages visited, in execution order.
	Path []Stage
}

// Update is a partial state produced by a stage. Nil fields leave the
// corresponding State field untouched.
type Update struct {
	Question        *string
	Category        *string
	Generation      *string
	WebSearchNeeded *SearchDecision
	Documents       *[]Document
}

func (s *State) apply(u Update) {
	if u.Question != nil {
		s.Question = *u.Question
	}
	if u.Category != nil {
		s.Category = *u.Category
	}
	if u.Generation != nil {
		s.Generation = *u.Generation
	}
	if u.WebSearchNeeded != nil {
		s.WebSearchNeeded = *u.WebSearchNeeded
	}
	if u.Documents != nil {
		s.Documents = *u.Documents
	}
}
