package session

import "fmt"

// ServerStatus is the result of the last health check.
type ServerStatus int

const (
	StatusUnknown ServerStatus = iota
	StatusHealthy
	StatusUnreachable
)

func (s ServerStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// FailureKind classifies what put the current text into State.Error.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureValidation: the question was blank, nothing was sent.
	FailureValidation
	// FailureConnectivity: transport error, bad status or undecodable body.
	FailureConnectivity
	// FailureApplication: the server answered but reported a failure.
	FailureApplication
)

func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "validation"
	case FailureConnectivity:
		return "connectivity"
	case FailureApplication:
		return "application"
	default:
		return "none"
	}
}

// User-visible messages.
const (
	MsgEmptyQuestion     = "Please enter a question"
	MsgServerNotHealthy  = "Server is not healthy"
	MsgHealthUnreachable = "Cannot connect to server. Make sure it is running."
	MsgAnswerFailed      = "Failed to get answer"
	MsgAskUnreachable    = "Failed to connect to API. Check your API URL."
)

// State is a snapshot of one interactive session.
type State struct {
	ServerBaseURL string
	Question      string
	Answer        string
	Error         string
	Loading       bool
	ServerStatus  ServerStatus
	Failure       FailureKind

	// Version increases with every mutation; subscribers receiving snapshots
	// from concurrent operations can use it to drop stale ones.
	Version uint64
}

func (s State) String() string {
	return fmt.Sprintf("status=%s loading=%t failure=%s v%d", s.ServerStatus, s.Loading, s.Failure, s.Version)
}

// SampleQuestions are offered to the user as one-step question templates.
var SampleQuestions = []string{
	"What is photosynthesis?",
	"Explain Newton's First Law of Motion",
	"What is the Pythagorean theorem?",
	"Define mitosis",
	"What is the water cycle?",
}

// Sample returns the n-th sample question, counting from 1.
func Sample(n int) (string, bool) {
	if n < 1 || n > len(SampleQuestions) {
		return "", false
	}
	return SampleQuestions[n-1], true
}
