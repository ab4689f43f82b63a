package ui

import "strings"

// Composer assembles multi-line questions from terminal lines. A line ending
// with a backslash continues the question, like Shift+Enter in a text area;
// any other line completes it.
type Composer struct {
	lines []string
}

// Feed adds one input line. It returns the full question and true once the
// question is complete.
func (c *Composer) Feed(line string) (string, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.HasSuffix(line, `\`) {
		c.lines = append(c.lines, strings.TrimSuffix(line, `\`))
		return "", false
	}
	c.lines = append(c.lines, line)
	question := strings.Join(c.lines, "\n")
	c.lines = nil
	return question, true
}

// Pending reports whether a continued question is being assembled.
func (c *Composer) Pending() bool {
	return len(c.lines) > 0
}

// Reset drops a partially assembled question.
func (c *Composer) Reset() {
	c.lines = nil
}
