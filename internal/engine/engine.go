package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/portfolio-site/backend/internal/answer"
	"github.com/portfolio-site/backend/internal/cache"
	"github.com/portfolio-site/backend/internal/config"
	"github.com/portfolio-site/backend/internal/corpus"
	"github.com/portfolio-site/backend/internal/provider"
	"github.com/portfolio-site/backend/internal/search"
)

// MaxQueryLength is the longest accepted question, in characters.
const MaxQueryLength = 500

// User-facing static replies.
const (
	MsgParseError = "I couldn't quite parse that. Try sending a short question about my background."
	MsgEmptyQuery = "Try asking about my education, research, or projects!"
	MsgTooLong    = "Let's keep it concise -- ask in under 500 characters so I can respond fast."
	MsgOffline    = "Ask My Resume is offline right now. Please try again later or contact me directly."
)

// WittyFallbacks are served when nothing grounded can be said.
var WittyFallbacks = []string{
	"That's classified neural data -- ask me about AI, research, or cloud work instead!",
	"If it's not in my resume, it's probably queued for my next experiment.",
	"I'm calibrated for resume talk -- try education, projects, or research topics.",
	"That question isn't in my dataset yet, but I can dig into internships or publications.",
}

// Source says which stage produced an answer.
type Source string

const (
	SourceInvalid   Source = "invalid"
	SourceCache     Source = "cache"
	SourceOffline   Source = "offline"
	SourceFallback  Source = "fallback"
	SourceSpecial   Source = "special"
	SourceGenerated Source = "generated"
)

// Result is the outcome of one question. Status uses HTTP codes; a 500
// still carries a usable Answer.
type Result struct {
	Answer string
	Status int
	Source Source
}

// Engine orchestrates retrieval, special-case answers, generation and caching
type Engine struct {
	Config    *config.Config
	Logger    *logrus.Entry
	Corpus    *corpus.Corpus
	Cache     *cache.LRU
	Answerers []answer.Answerer
	// LLM is nil when no usable provider is configured (missing credential).
	LLM provider.LLMProvider
	// Rand picks a fallback index in [0, n).
	Rand func(n int) int

	mu   sync.Mutex
	seen map[string]struct{}

	Stats EngineStats
}

type EngineStats struct {
	StartTime   time.Time
	Questions   atomic.Int64
	CacheHits   atomic.Int64
	SpecialCase atomic.Int64
	Generated   atomic.Int64
	Fallbacks   atomic.Int64
}

// NewEngine wires the answer pipeline. llm may be nil.
func NewEngine(cfg *config.Config, logger *logrus.Entry, c *corpus.Corpus, llm provider.LLMProvider) *Engine {
	if logger == nil {
		logger = logrus.WithField("component", "engine")
	}

	e := &Engine{
		Config: cfg,
		Logger: logger,
		Corpus: c,
		Cache:  cache.New(cache.DefaultCapacity),
		Answerers: []answer.Answerer{
			answer.Graduation{},
			&answer.Cloud{
				Corpus:      c,
				FirstPerson: answer.NewFirstPerson(cfg.Resume.OwnerName),
				EducationID: cfg.Resume.EducationChunkID,
				TeachingID:  cfg.Resume.TeachingChunkID,
				SkillsID:    cfg.Resume.CloudSkillsChunkID,
			},
		},
		LLM:  llm,
		Rand: rand.Intn,
		seen: make(map[string]struct{}),
	}
	e.Stats.StartTime = time.Now()
	return e
}

// Ask answers one free-text question. It never fails: every path yields an
// answer and a status.
func (e *Engine) Ask(ctx context.Context, query string) (res Result) {
	raw := strings.TrimSpace(query)
	if raw == "" {
		return Result{Answer: MsgEmptyQuery, Status: http.StatusBadRequest, Source: SourceInvalid}
	}
	if utf8.RuneCountInString(raw) > MaxQueryLength {
		return Result{Answer: MsgTooLong, Status: http.StatusBadRequest, Source: SourceInvalid}
	}

	e.Stats.Questions.Add(1)
	e.logOnce(raw)

	if cached, ok := e.Cache.Get(raw); ok {
		e.Stats.CacheHits.Add(1)
		return Result{Answer: cached, Status: http.StatusOK, Source: SourceCache}
	}

	defer func() {
		if r := recover(); r != nil {
			e.Logger.WithField("panic", r).Error("ask-resume error")
			res = e.fallback(raw, http.StatusInternalServerError)
		}
	}()

	if e.Corpus.Len() == 0 {
		return e.fallback(raw, http.StatusInternalServerError)
	}

	if e.LLM == nil {
		e.Cache.Put(raw, MsgOffline)
		return Result{Answer: MsgOffline, Status: http.StatusInternalServerError, Source: SourceOffline}
	}

	matches := search.Rank(search.ExtractTerms(raw), e.Corpus)
	if len(matches) == 0 {
		return e.fallback(raw, http.StatusOK)
	}

	if text, by, ok := answer.Dispatch(e.Answerers, raw, matches); ok {
		e.Stats.SpecialCase.Add(1)
		e.Logger.WithField("answerer", by).Debug("Answered without generation")
		e.Cache.Put(raw, text)
		return Result{Answer: text, Status: http.StatusOK, Source: SourceSpecial}
	}

	text, err := e.generate(ctx, raw, matches)
	if errors.Is(err, provider.ErrEmptyResponse) {
		// a reply without candidates is an empty answer, not a failure
		e.Logger.WithField("provider", e.LLM.Name()).Debug("Model returned no text")
		text, err = "", nil
	}
	if err != nil {
		e.Logger.WithError(err).WithField("provider", e.LLM.Name()).Error("ask-resume error")
		return e.fallback(raw, http.StatusInternalServerError)
	}
	if text == "" {
		return e.fallback(raw, http.StatusOK)
	}

	e.Stats.Generated.Add(1)
	e.Cache.Put(raw, text)
	return Result{Answer: text, Status: http.StatusOK, Source: SourceGenerated}
}

// generate runs one bounded model call; no retries.
func (e *Engine) generate(ctx context.Context, query string, matches []corpus.Chunk) (string, error) {
	prompt := provider.BuildPrompt(e.Config.Resume.OwnerName, query, matches)

	if timeout := e.Config.LLM.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// fallback picks a witty reply, caches it under query and returns it with status.
func (e *Engine) fallback(query string, status int) Result {
	text := e.Fallback()
	e.Stats.Fallbacks.Add(1)
	e.Cache.Put(query, text)
	return Result{Answer: text, Status: status, Source: SourceFallback}
}

// Fallback returns one of WittyFallbacks chosen by e.Rand.
func (e *Engine) Fallback() string {
	i := e.Rand(len(WittyFallbacks))
	if i < 0 || i >= len(WittyFallbacks) {
		i = 0
	}
	return WittyFallbacks[i]
}

// logOnce logs each distinct normalized query once per process.
func (e *Engine) logOnce(raw string) {
	normalized := strings.ToLower(raw)

	e.mu.Lock()
	_, dup := e.seen[normalized]
	if !dup {
		e.seen[normalized] = struct{}{}
	}
	e.mu.Unlock()

	if !dup {
		e.Logger.WithField("query", raw).Info("[ASK-RESUME] new question")
	}
}

// Configured reports whether generation is available.
func (e *Engine) Configured() bool {
	return e.LLM != nil
}
