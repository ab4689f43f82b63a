package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"examsathi/internal/logger"
	"examsathi/internal/session"
)

type opKind int

const (
	opAsk opKind = iota
	opHealth
)

// Terminal is the line-based front end of a session. Input lines, state
// notifications and completed requests are all handled on the goroutine
// running Run; requests themselves run in the background so input keeps
// being processed while an answer is pending.
type Terminal struct {
	ctrl *session.Controller
	in   io.Reader
	out  io.Writer

	composer Composer
	last     session.State
	pending  int

	done chan opKind
	quit chan struct{}
}

func NewTerminal(ctrl *session.Controller, in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		ctrl: ctrl,
		in:   in,
		out:  out,
		done: make(chan opKind),
		quit: make(chan struct{}),
	}
}

// Run processes input until /quit, end of input or ctx cancellation. At end
// of input it waits for in-flight requests so their results are shown.
func (t *Terminal) Run(ctx context.Context) error {
	defer close(t.quit)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go t.readLines(lines, readErr)

	changed := make(chan struct{}, 1)
	unsubscribe := t.ctrl.Subscribe(func(session.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	t.last = t.ctrl.Snapshot()
	t.print(Header(t.last))
	t.print(Help())
	t.prompt()

	inputClosed := false
	for {
		if inputClosed && t.pending == 0 {
			t.refresh()
			return <-readErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-changed:
			t.refresh()

		case kind := <-t.done:
			t.pending--
			t.refresh()
			t.showResult(kind)
			t.prompt()

		case line, ok := <-lines:
			if !ok {
				inputClosed = true
				lines = nil
				continue
			}
			quit := t.handleLine(ctx, line)
			t.refresh()
			if quit {
				return nil
			}
			t.prompt()
		}
	}
}

func (t *Terminal) readLines(lines chan<- string, readErr chan<- error) {
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-t.quit:
			readErr <- nil
			return
		}
	}
	readErr <- scanner.Err()
	close(lines)
}

// handleLine dispatches one input line. It reports whether the session
// should end.
func (t *Terminal) handleLine(ctx context.Context, line string) bool {
	if strings.TrimSpace(line) == "/cancel" {
		if !t.composer.Pending() {
			t.print(dimStyle.Render("Nothing to cancel.") + "\n")
			return false
		}
		t.composer.Reset()
		t.print(dimStyle.Render("Question discarded.") + "\n")
		return false
	}

	if !t.composer.Pending() && strings.HasPrefix(strings.TrimSpace(line), "/") {
		return t.handleCommand(ctx, strings.TrimSpace(line))
	}

	question, complete := t.composer.Feed(line)
	if !complete {
		return false
	}

	// The question field is disabled while an answer is pending.
	if t.ctrl.Snapshot().Loading {
		t.print(dimStyle.Render("Still thinking about the previous question, please wait.") + "\n")
		return false
	}

	t.ctrl.SetQuestion(question)
	t.submit(ctx)
	return false
}

func (t *Terminal) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/help":
		t.print(Help())

	case "/url":
		if len(args) == 0 {
			t.print("API URL: " + t.ctrl.Snapshot().ServerBaseURL + "\n")
			return false
		}
		t.ctrl.SetServerBaseURL(strings.Join(args, " "))

	case "/health":
		t.print(dimStyle.Render("Checking server status...") + "\n")
		t.run(opHealth, func() { t.ctrl.CheckHealth(ctx) })

	case "/samples":
		t.print(Samples())

	case "/sample":
		if t.ctrl.Snapshot().Loading {
			t.print(dimStyle.Render("Samples are disabled while an answer is pending.") + "\n")
			return false
		}
		n := 0
		if len(args) == 1 {
			n, _ = strconv.Atoi(args[0])
		}
		q, ok := session.Sample(n)
		if !ok {
			t.print(fmt.Sprintf("Choose a sample between 1 and %d.\n", len(session.SampleQuestions)))
			return false
		}
		t.ctrl.SetQuestionFromSample(q)
		t.print(dimStyle.Render("Question: ") + q + "\n" + dimStyle.Render("Type /ask to get the answer.") + "\n")

	case "/ask":
		if !t.ctrl.CanSubmit() {
			if t.ctrl.Snapshot().Loading {
				t.print(dimStyle.Render("Still thinking about the previous question, please wait.") + "\n")
			} else {
				t.print(dimStyle.Render("Type a question first.") + "\n")
			}
			return false
		}
		t.submit(ctx)

	case "/show":
		t.print(Full(t.ctrl.Snapshot()))

	default:
		t.print("Unknown command " + cmd + ". Type /help for the list.\n")
	}
	return false
}

func (t *Terminal) submit(ctx context.Context) {
	question := t.ctrl.Snapshot().Question
	done := t.ctrl.StartAsk(ctx)
	if strings.TrimSpace(question) != "" {
		// The request may already be done; show the indicator regardless.
		t.print(Thinking())
		t.last.Loading = true
	}
	t.track(opAsk, done)
}

// run starts fn in the background and reports its completion to the loop.
func (t *Terminal) run(kind opKind, fn func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	t.track(kind, done)
}

func (t *Terminal) track(kind opKind, done <-chan struct{}) {
	t.pending++
	go func() {
		<-done
		select {
		case t.done <- kind:
		case <-t.quit:
		}
	}()
}

func (t *Terminal) refresh() {
	cur := t.ctrl.Snapshot()
	if cur.Version < t.last.Version {
		return
	}
	t.print(Changes(t.last, cur))
	t.last = cur
}

func (t *Terminal) showResult(kind opKind) {
	s := t.ctrl.Snapshot()
	logger.Debug("operation finished", zap.Int("kind", int(kind)), zap.Stringer("state", s))

	switch kind {
	case opHealth:
		t.print(StatusLine(s))
		if s.Failure != session.FailureNone {
			t.print(ErrorPanel(s))
		}
	case opAsk:
		if s.Loading {
			return
		}
		t.print(Outcome(s))
	}
}

func (t *Terminal) prompt() {
	if t.composer.Pending() {
		t.print(dimStyle.Render("... "))
		return
	}
	t.print("> ")
}

func (t *Terminal) print(s string) {
	if s == "" {
		return
	}
	if _, err := io.WriteString(t.out, s); err != nil {
		logger.Warn("failed to write to terminal", zap.Error(err))
	}
}
