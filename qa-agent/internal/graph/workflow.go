package graph

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// stageFunc computes a partial update from a snapshot of the current state.
// Stages must not mutate the snapshot's slices or maps in place.
type stageFunc func(ctx context.Context, log logrus.FieldLogger, s State) (Update, error)

// Engine runs the question-answering workflow graph:
//
//	retrieve -> [categorize_question] -> grade_documents
//	grade_documents --router--> rewrite_query -> web_search -> generate_answer
//	                        \--> generate_answer
//
// The topology is fixed at construction. An Engine is safe for concurrent use;
// every Run owns its own State.
type Engine struct {
	caps        Capabilities
	categorize  bool
	concurrency int
	asyncLog    bool
	logger      logrus.FieldLogger

	entry  Stage
	edges  map[Stage]Stage
	stages map[Stage]stageFunc

	wg sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithCategorization toggles the categorize_question stage. Enabled by default.
func WithCategorization(enabled bool) Option {
	return func(e *Engine) { e.categorize = enabled }
}

// WithGradingConcurrency bounds the number of documents graded at once.
// Values below 2 grade sequentially.
func WithGradingConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// WithAsyncQueryLog makes QueryLog writes fire-and-forget. Call Wait before
// shutdown to flush them.
func WithAsyncQueryLog(enabled bool) Option {
	return func(e *Engine) { e.asyncLog = enabled }
}

// WithLogger sets the logger used for stage events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// New validates caps and builds the graph. It fails with ErrConfiguration
// when a required capability is missing.
func New(caps Capabilities, opts ...Option) (*Engine, error) {
	e := &Engine{
		caps:        caps,
		categorize:  true,
		concurrency: 1,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := caps.validate(e.categorize); err != nil {
		return nil, err
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}

	e.stages = map[Stage]stageFunc{
		StageRetrieve:   e.retrieve,
		StageCategorize: e.categorizeQuestion,
		StageGrade:      e.gradeDocuments,
		StageRewrite:    e.rewriteQuery,
		StageWebSearch:  e.webSearch,
		StageGenerate:   e.generateAnswer,
	}
	e.entry = StageRetrieve
	e.edges = map[Stage]Stage{
		StageRewrite:   StageWebSearch,
		StageWebSearch: StageGenerate,
	}
	if e.categorize {
		e.edges[StageRetrieve] = StageCategorize
		e.edges[StageCategorize] = StageGrade
	} else {
		e.edges[StageRetrieve] = StageGrade
	}
	return e, nil
}

// Stages returns the unconditional prefix of the graph, up to and including
// the branch point.
func (e *Engine) Stages() []Stage {
	out := []Stage{e.entry}
	for cur := e.entry; cur != StageGrade; {
		cur = e.edges[cur]
		out = append(out, cur)
	}
	return out
}

// Run answers question by executing the graph to its terminal stage. On a
// stage failure the partial state is discarded and a *StageError is returned.
func (e *Engine) Run(ctx context.Context, question string) (*State, error) {
	log := e.logger.WithField("run_id", uuid.NewString())
	log.WithField("question", question).Info("workflow started")

	start := time.Now()
	state := &State{Question: question}
	for stage, ok := e.entry, true; ok; stage, ok = e.next(log, stage, state) {
		if err := e.step(ctx, log, stage, state); err != nil {
			runsTotal.WithLabelValues("error").Inc()
			log.WithError(err).WithField("stage", stage).Error("workflow failed")
			return nil, err
		}
	}

	runsTotal.WithLabelValues("success").Inc()
	log.WithFields(logrus.Fields{
		"duration": time.Since(start),
		"path":     state.Path,
		"category": state.Category,
	}).Info("workflow finished")
	return state, nil
}

// Wait blocks until pending asynchronous QueryLog writes complete.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) step(ctx context.Context, log logrus.FieldLogger, stage Stage, state *State) error {
	log = log.WithField("stage", stage)
	start := time.Now()
	update, err := e.stages[stage](ctx, log, *state)
	elapsed := time.Since(start)
	stageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	if err != nil {
		stageErrors.WithLabelValues(string(stage)).Inc()
		return &StageError{Stage: stage, Err: err}
	}

	state.apply(update)
	state.Path = append(state.Path, stage)
	log.WithFields(logrus.Fields{
		"duration":  elapsed,
		"documents": len(state.Documents),
	}).Info("stage completed")
	return nil
}

// next returns the stage that follows from. ok is false once the terminal
// stage has run.
func (e *Engine) next(log logrus.FieldLogger, from Stage, state *State) (Stage, bool) {
	switch from {
	case StageGenerate:
		return "", false
	case StageGrade:
		r := route(state)
		routeDecisions.WithLabelValues(r.String()).Inc()
		log.WithFields(logrus.Fields{
			"web_search_needed": state.WebSearchNeeded.String(),
			"decision":          r.String(),
		}).Info("routing graded documents")
		return r.target(), true
	}
	to, ok := e.edges[from]
	return to, ok
}
