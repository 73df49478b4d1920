package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/multiagent-studio/studio/internal/app"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), append([]string{"--dotenv=-"}, args...), streams{
		in:  strings.NewReader(stdin),
		out: &out,
		err: &errOut,
	})
	return code, out.String(), errOut.String()
}

func clearCredentials(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "DASHSCOPE_API_KEY", "STUDIO_LLM_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "studio") || !strings.Contains(out, app.Version) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRolesCommand(t *testing.T) {
	code, out, _ := runCLI(t, "", "roles")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"ID", "python", "Python Expert", "(default)", "custom"} {
		if !strings.Contains(out, want) {
			t.Errorf("roles output missing %q:\n%s", want, out)
		}
	}
}

func TestRolesCommandWithRolesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	data := "roles:\n  - id: sre\n    name: Site Reliability Engineer\n    description: Keeps services up\n    goal: Reduce toil\n    backstory: You carry the pager.\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, _ := runCLI(t, "", "--set", "roles.file="+path, "roles")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "Site Reliability Engineer") {
		t.Errorf("expected extra role in listing:\n%s", out)
	}
}

func TestInteractiveRun(t *testing.T) {
	clearCredentials(t)
	stdin := "2\nWrite a function that adds two numbers\n\nno\n"
	code, out, errOut := runCLI(t, stdin, "--set", "llm.model=mock/echo")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut)
	}
	for _, want := range []string{"SELECT AGENT ROLE", "AGENT RESPONSE", "[mock echo]", "Goodbye!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInteractiveEndOfInput(t *testing.T) {
	clearCredentials(t)
	code, out, _ := runCLI(t, "", "--set", "llm.model=mock/echo")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("expected farewell on end of input:\n%s", out)
	}
}

func TestInteractiveMissingCredential(t *testing.T) {
	clearCredentials(t)
	code, out, errOut := runCLI(t, "1\nanything\n\nno\n")
	if code != exitFault {
		t.Fatalf("exit code = %d, want %d", code, exitFault)
	}
	if !strings.Contains(out, "GOOGLE_API_KEY not found") {
		t.Errorf("expected credential guidance:\n%s", out)
	}
	if strings.Contains(out, "SELECT AGENT ROLE") {
		t.Errorf("no prompts expected without a credential:\n%s", out)
	}
	if errOut != "" {
		t.Errorf("guidance must not be repeated on stderr: %q", errOut)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"malformed set", []string{"--set", "llm.model", "roles"}, "Configuration"},
		{"bad temperature", []string{"--set", "llm.temperature=7", "roles"}, "Configuration"},
		{"missing file", []string{"--config", "/does/not/exist.yaml", "roles"}, "Configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, "", tt.args...)
			if code != exitConfig {
				t.Fatalf("exit code = %d, want %d", code, exitConfig)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr %q missing %q", errOut, tt.want)
			}
		})
	}
}

func TestJSONErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "", "--json-errors", "--set", "llm.model", "roles")
	if code != exitConfig {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(strings.TrimSpace(errOut), `{"error":`) {
		t.Errorf("expected JSON error, got %q", errOut)
	}
}

func TestUnknownArgument(t *testing.T) {
	code, _, errOut := runCLI(t, "", "bogus")
	if code != exitConfig {
		t.Fatalf("exit code = %d", code)
	}
	if errOut == "" {
		t.Error("expected an error message")
	}
}

func TestProfileOverlay(t *testing.T) {
	clearCredentials(t)
	dir := t.TempDir()
	base := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(base, []byte("llm:\n  model: gemini/gemini-2.5-flash\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.dev.yaml"), []byte("llm:\n  model: mock/echo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runCLI(t, "1\nhello\n\nno\n", "--config", base, "--profile", "dev")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "[mock echo]") {
		t.Errorf("expected the dev profile model to run:\n%s", out)
	}
}
