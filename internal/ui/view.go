package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"examsathi/internal/session"
)

const panelWidth = 76

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34"))
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	busyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))

	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1).
			Width(panelWidth)

	answerPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("34")).
				Padding(0, 1).
				Width(panelWidth)
)

// Header is printed once when the interactive session starts.
func Header(s session.State) string {
	return titleStyle.Render("ExamSathi AI") + " " +
		dimStyle.Render("Your Personal Educational AI Assistant") + "\n" +
		dimStyle.Render("API URL: "+s.ServerBaseURL) + "\n"
}

// StatusLine renders the server status indicator. It is empty while the
// status is unknown.
func StatusLine(s session.State) string {
	switch s.ServerStatus {
	case session.StatusHealthy:
		return okStyle.Render("✔ Server is healthy and ready") + "\n"
	case session.StatusUnreachable:
		return badStyle.Render("✘ Server is not responding") + "\n"
	default:
		return ""
	}
}

// Thinking is shown while an answer is pending.
func Thinking() string {
	return busyStyle.Render("Thinking...") + "\n"
}

// ErrorPanel renders the error text, or nothing when there is none.
func ErrorPanel(s session.State) string {
	if s.Error == "" {
		return ""
	}
	body := badStyle.Render("Error") + "\n" + s.Error
	return errorPanelStyle.Render(body) + "\n"
}

// AnswerPanel renders the answer text, or nothing when there is none.
func AnswerPanel(s session.State) string {
	if s.Answer == "" {
		return ""
	}
	body := okStyle.Render("Answer") + "\n" + s.Answer
	return answerPanelStyle.Render(body) + "\n"
}

// Outcome renders whichever of the error and answer panels is present.
func Outcome(s session.State) string {
	return ErrorPanel(s) + AnswerPanel(s)
}

// Samples lists the sample questions with their selection numbers.
func Samples() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sample Questions") + "\n")
	for i, q := range session.SampleQuestions {
		fmt.Fprintf(&b, "  %d) %s\n", i+1, q)
	}
	return b.String()
}

// Full renders every visible element of the session.
func Full(s session.State) string {
	var b strings.Builder
	b.WriteString(Header(s))
	b.WriteString(StatusLine(s))
	if q := strings.TrimSpace(s.Question); q != "" {
		b.WriteString(dimStyle.Render("Question: ") + s.Question + "\n")
	}
	if s.Loading {
		b.WriteString(Thinking())
	}
	b.WriteString(Outcome(s))
	return b.String()
}

// Changes renders the transitions between two snapshots that the user would
// otherwise not notice: a request going in flight and a new API URL.
// Results are rendered when the operation that produced them completes.
func Changes(prev, cur session.State) string {
	var b strings.Builder
	if cur.ServerBaseURL != prev.ServerBaseURL {
		b.WriteString(dimStyle.Render("API URL: "+cur.ServerBaseURL) + "\n")
	}
	if cur.Loading && !prev.Loading {
		b.WriteString(Thinking())
	}
	return b.String()
}

const helpText = `Type a question and press Enter to ask it.
End a line with \ to continue the question on the next line,
or type /cancel to discard a question in progress.

Commands:
  /url [address]  show or change the API URL
  /health         check the server status
  /samples        list sample questions
  /sample <n>     use sample question n
  /ask            ask the current question again
  /show           redraw the session
  /help           show this help
  /quit           leave
`

// Help describes the interactive commands.
func Help() string {
	return dimStyle.Render(helpText)
}
