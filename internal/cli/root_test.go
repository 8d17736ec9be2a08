package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeGateway answers like an OpenAI-compatible endpoint, scripting each
// pipeline stage off the prompt text.
func fakeGateway(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		prompt := ""
		if len(req.Messages) > 0 {
			prompt = req.Messages[len(req.Messages)-1].Content
		}

		var content string
		switch {
		case strings.Contains(prompt, "FINAL RANKING:"):
			content = "FINAL RANKING: Response 1, Response 2"
		case strings.Contains(prompt, "chairman"):
			content = "the synthesized answer"
		default:
			content = "answer from " + req.Model
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
	}))
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := fmt.Sprintf(`api_key: test-key
api_url: %s/
council_models:
  - test/model-a
  - test/model-b
chairman_model: test/chairman
timeout: 10
`, baseURL)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_JSONOutput(t *testing.T) {
	server := fakeGateway(t)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL)

	got, err := runCommand(t, nil, "--json", "--config", cfgPath, "why?")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, got)
	}
	if doc["query"] != "why?" {
		t.Errorf("query = %v", doc["query"])
	}
	stage1, ok := doc["stage1"].([]any)
	if !ok || len(stage1) != 2 {
		t.Fatalf("stage1 = %v", doc["stage1"])
	}
	stage3, ok := doc["stage3"].(map[string]any)
	if !ok || stage3["response"] != "the synthesized answer" {
		t.Errorf("stage3 = %v", doc["stage3"])
	}
}

func TestRun_AnswerOnly(t *testing.T) {
	server := fakeGateway(t)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL)

	got, err := runCommand(t, nil, "--answer-only", "--config", cfgPath, "why?")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(got) != "the synthesized answer" {
		t.Errorf("stdout = %q, want just the answer", got)
	}
}

func TestRun_MarkdownOutput(t *testing.T) {
	server := fakeGateway(t)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL)

	got, err := runCommand(t, nil, "--markdown", "--config", cfgPath, "why?")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{
		"# Council Deliberation",
		"### test/model-a",
		"## Stage 3: Final Synthesis",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRun_QueryFromStdin(t *testing.T) {
	server := fakeGateway(t)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL)

	got, err := runCommand(t, strings.NewReader("piped question\n"),
		"--json", "--config", cfgPath)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["query"] != "piped question" {
		t.Errorf("query = %v, want trimmed stdin", doc["query"])
	}
}

func TestRun_ModelsOverride(t *testing.T) {
	server := fakeGateway(t)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL)

	got, err := runCommand(t, nil, "--json", "--config", cfgPath,
		"--models", "test/only-model", "why?")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatal(err)
	}
	stage1 := doc["stage1"].([]any)
	if len(stage1) != 1 {
		t.Fatalf("stage1 = %v, want single overridden model", stage1)
	}
	first := stage1[0].(map[string]any)
	if first["model"] != "test/only-model" {
		t.Errorf("model = %v", first["model"])
	}
}

func TestRun_NoQuery(t *testing.T) {
	server := fakeGateway(t)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL)

	_, err := runCommand(t, strings.NewReader(""), "--config", cfgPath)
	if err == nil {
		t.Fatal("Execute() succeeded with no query")
	}
	if !strings.Contains(err.Error(), "no query") {
		t.Errorf("error = %v", err)
	}
}

func TestRun_FileInclusion(t *testing.T) {
	server := fakeGateway(t)
	defer server.Close()
	cfgPath := writeConfig(t, server.URL)

	src := filepath.Join(t.TempDir(), "snippet.go")
	if err := os.WriteFile(src, []byte("package snippet"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := runCommand(t, nil, "--json", "--config", cfgPath,
		"--file", src, "review this")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatal(err)
	}
	query, _ := doc["query"].(string)
	if !strings.Contains(query, "package snippet") || !strings.Contains(query, "review this") {
		t.Errorf("query missing file content or original text:\n%s", query)
	}
}

func TestReadQuery(t *testing.T) {
	t.Run("argument wins", func(t *testing.T) {
		got, err := readQuery([]string{"from arg"}, strings.NewReader("from stdin"))
		if err != nil || got != "from arg" {
			t.Errorf("readQuery() = %q, %v", got, err)
		}
	})
	t.Run("stdin fallback", func(t *testing.T) {
		got, err := readQuery(nil, strings.NewReader("  from stdin \n"))
		if err != nil || got != "from stdin" {
			t.Errorf("readQuery() = %q, %v", got, err)
		}
	})
	t.Run("empty stdin", func(t *testing.T) {
		if _, err := readQuery(nil, strings.NewReader("")); err == nil {
			t.Error("readQuery() succeeded on empty stdin")
		}
	})
}
