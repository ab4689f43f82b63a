package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"examsathi/internal/models"
)

func newTestServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			json.NewEncoder(w).Encode(models.HealthResponse{Status: "healthy", ModelLoaded: true})
		case "/ask":
			var req models.AskRequest
			json.NewDecoder(r.Body).Decode(&req)
			if answer == "" {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(models.AskResponse{Success: false, Error: "Error: model crashed"})
				return
			}
			json.NewEncoder(w).Encode(models.AskResponse{Success: true, Question: req.Question, Answer: answer + " (" + req.Question + ")"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestAskCommand_Args(t *testing.T) {
	srv := newTestServer(t, "Photosynthesis is how plants make food")

	out, err := execute(t, "", "--api-url", srv.URL, "ask", "What", "is", "photosynthesis?")
	if err != nil {
		t.Fatalf("ask error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "(What is photosynthesis?)") {
		t.Fatalf("answer not printed:\n%s", out)
	}
}

func TestAskCommand_Stdin(t *testing.T) {
	srv := newTestServer(t, "ok")

	out, err := execute(t, "Define mitosis\n", "--api-url", srv.URL, "ask")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(out, "(Define mitosis)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestAskCommand_Sample(t *testing.T) {
	srv := newTestServer(t, "ok")

	out, err := execute(t, "", "--api-url", srv.URL, "ask", "--sample", "3")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(out, "(Explain Newton's First Law of Motion)") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, "", "--api-url", srv.URL, "ask", "--sample", "9"); err == nil {
		t.Fatal("expected error for out of range sample")
	}
}

func TestAskCommand_ServerError(t *testing.T) {
	srv := newTestServer(t, "")

	out, err := execute(t, "", "--api-url", srv.URL, "ask", "q")
	if !errors.Is(err, errAskFailed) {
		t.Fatalf("expected errAskFailed, got %v", err)
	}
	if !strings.Contains(out, "Error: model crashed") {
		t.Fatalf("server error not printed:\n%s", out)
	}
}

func TestAskCommand_BlankQuestion(t *testing.T) {
	srv := newTestServer(t, "ok")

	out, err := execute(t, "   \n", "--api-url", srv.URL, "ask")
	if !errors.Is(err, errAskFailed) {
		t.Fatalf("expected errAskFailed, got %v", err)
	}
	if !strings.Contains(out, "Please enter a question") {
		t.Fatalf("validation message not printed:\n%s", out)
	}
}

func TestHealthCommand(t *testing.T) {
	srv := newTestServer(t, "ok")

	out, err := execute(t, "", "--api-url", srv.URL, "health")
	if err != nil {
		t.Fatalf("health error = %v", err)
	}
	if !strings.Contains(out, "Server is healthy and ready") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestHealthCommand_Unreachable(t *testing.T) {
	srv := newTestServer(t, "ok")
	url := srv.URL
	srv.Close()

	out, err := execute(t, "", "--api-url", url, "health")
	if !errors.Is(err, errUnhealthy) {
		t.Fatalf("expected errUnhealthy, got %v", err)
	}
	if !strings.Contains(out, "Server is not responding") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestChatIsDefault(t *testing.T) {
	srv := newTestServer(t, "Water evaporates")

	out, err := execute(t, "Explain the water cycle\n/quit\n", "--api-url", srv.URL)
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(out, "ExamSathi AI") {
		t.Fatalf("header not printed:\n%s", out)
	}
	if !strings.Contains(out, "Thinking...") {
		t.Fatalf("loading indicator not printed:\n%s", out)
	}
}

func TestSamplesAndVersion(t *testing.T) {
	out, err := execute(t, "", "samples")
	if err != nil {
		t.Fatalf("samples error = %v", err)
	}
	if !strings.Contains(out, "5) What is the water cycle?") {
		t.Fatalf("unexpected samples output:\n%s", out)
	}

	out, err = execute(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "examsathi dev") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestNegativeTimeoutRejected(t *testing.T) {
	if _, err := execute(t, "", "--timeout", "-1s", "health"); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}
