package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"examsathi/internal/apiclient"
	"examsathi/internal/logger"
	"examsathi/internal/models"
)

// Backend is the inference server as seen by the controller.
type Backend interface {
	Health(ctx context.Context, baseURL string) (*models.HealthResponse, error)
	Ask(ctx context.Context, baseURL, question string) (*models.AskResponse, error)
}

type subscriber struct {
	id int
	fn func(State)
}

// Controller owns the session state and runs the health-check and ask flows
// against a Backend. Every mutation is one atomic step followed by a
// notification to subscribers.
type Controller struct {
	backend Backend

	mu     sync.Mutex
	state  State
	subs   []subscriber
	nextID int
}

// NewController creates a controller pointed at baseURL, or at
// apiclient.DefaultBaseURL when baseURL is empty.
func NewController(backend Backend, baseURL string) *Controller {
	if baseURL == "" {
		baseURL = apiclient.DefaultBaseURL
	}
	return &Controller{
		backend: backend,
		state:   State{ServerBaseURL: baseURL},
	}
}

// Subscribe registers fn to receive a snapshot after every mutation. fn runs
// on the goroutine that made the change and must not block.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanSubmit reports whether the submit control should be enabled.
func (c *Controller) CanSubmit() bool {
	s := c.Snapshot()
	return !s.Loading && strings.TrimSpace(s.Question) != ""
}

func (c *Controller) update(fn func(*State)) State {
	c.mu.Lock()
	fn(&c.state)
	c.state.Version++
	snap := c.state
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
	return snap
}

// SetServerBaseURL stores the address used verbatim by later requests.
func (c *Controller) SetServerBaseURL(url string) {
	c.update(func(s *State) { s.ServerBaseURL = url })
}

// SetQuestion replaces the question text (free-text editing).
func (c *Controller) SetQuestion(text string) {
	c.update(func(s *State) { s.Question = text })
}

// SetQuestionFromSample overwrites the question with a sample. It does not
// look at Loading; the presentation layer disables samples while loading.
func (c *Controller) SetQuestionFromSample(text string) {
	c.update(func(s *State) { s.Question = text })
}

// CheckHealth probes GET /health once and records the outcome in
// ServerStatus and Error. Loading and Answer are left alone.
func (c *Controller) CheckHealth(ctx context.Context) {
	baseURL := c.Snapshot().ServerBaseURL

	status, errText, failure := StatusUnreachable, MsgHealthUnreachable, FailureConnectivity
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("health check panicked", zap.Any("panic", r))
			}
		}()

		resp, err := c.backend.Health(ctx, baseURL)
		if err != nil {
			logger.Debug("health check failed", zap.String("base_url", baseURL), zap.Error(err))
			return
		}
		if resp.Status == "healthy" {
			status, errText, failure = StatusHealthy, "", FailureNone
			return
		}
		logger.Debug("server reported unhealthy", zap.String("status", resp.Status))
		status, errText, failure = StatusUnreachable, MsgServerNotHealthy, FailureApplication
	}()

	c.update(func(s *State) {
		s.ServerStatus = status
		s.Error = errText
		s.Failure = failure
	})
}

// AskQuestion runs the ask flow to completion.
func (c *Controller) AskQuestion(ctx context.Context) {
	<-c.StartAsk(ctx)
}

// StartAsk validates the question and, when it is not blank, switches to
// Loading before returning. The request itself runs on its own goroutine;
// the returned channel is closed once the final state has been stored.
// Calls are not serialized against each other: overlapping asks each apply
// their own outcome and the last to finish wins.
func (c *Controller) StartAsk(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	var question, baseURL string
	rejected := false
	c.update(func(s *State) {
		if strings.TrimSpace(s.Question) == "" {
			s.Error = MsgEmptyQuestion
			s.Answer = ""
			s.Failure = FailureValidation
			rejected = true
			return
		}
		s.Loading = true
		s.Error = ""
		s.Answer = ""
		s.Failure = FailureNone
		question, baseURL = s.Question, s.ServerBaseURL
	})

	if rejected {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		c.send(ctx, baseURL, question)
	}()
	return done
}

type askOutcome struct {
	answer  string
	errText string
	failure FailureKind
}

func (c *Controller) send(ctx context.Context, baseURL, question string) {
	out := askOutcome{errText: MsgAskUnreachable, failure: FailureConnectivity}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("ask panicked", zap.Any("panic", r))
			out = askOutcome{errText: MsgAskUnreachable, failure: FailureConnectivity}
		}
		c.update(func(s *State) {
			if out.failure == FailureNone {
				s.Answer = out.answer
				s.Error = ""
			} else {
				s.Answer = ""
				s.Error = out.errText
			}
			s.Failure = out.failure
			s.Loading = false
		})
	}()

	resp, err := c.backend.Ask(ctx, baseURL, question)
	if err != nil {
		logger.Debug("ask failed", zap.String("base_url", baseURL), zap.Error(err))
		return
	}
	out = outcomeOf(resp)
}

func outcomeOf(resp *models.AskResponse) askOutcome {
	if resp.Success {
		return askOutcome{answer: resp.Answer}
	}
	msg := resp.Error
	if msg == "" {
		msg = MsgAnswerFailed
	}
	return askOutcome{errText: msg, failure: FailureApplication}
}
