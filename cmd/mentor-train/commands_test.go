package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/mentor/internal/training"
)

func TestParseCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	data := `[{"conversation":[
		{"direction":"in","text":"a"},{"direction":"in","text":"b"},
		{"direction":"out","text":"c"},{"direction":"out","text":"d"},
		{"direction":"in","text":"e"}
	]}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"parse", path, "--samples", "1"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "1 training interactions\n") {
		t.Errorf("unexpected output %q", got)
	}
	if !strings.Contains(got, `"client_input": "a\nb"`) {
		t.Errorf("expected joined client input in output %q", got)
	}
}

func TestParseCommand_RequiresFile(t *testing.T) {
	rootCmd.SetArgs([]string{"parse"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	rootCmd.SetErr(&bytes.Buffer{})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected an argument error")
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	parseCmd.SetOut(&out)

	printSummary(parseCmd, &training.Summary{
		Samples:   3,
		Pending:   2,
		Committed: 1,
		Failed:    1,
		StatePath: "/tmp/state.json",
		Results: []training.Result{
			{Input: "hi", Predicted: "hello", Rule: "Greet warmly.", Version: 4, NewPrediction: "Hello there!"},
			{Input: "fees?", Err: errors.New("upstream down")},
		},
	})

	for _, want := range []string{"rule (v4): Greet warmly.", "new prediction: Hello there!", "error: upstream down", "Committed: 1", "State file: /tmp/state.json"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestStoreCommands_WithoutLLMKey(t *testing.T) {
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "mentor.db"))
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("NATS_URL", "")
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("STORE_READ_ATTEMPTS", "1")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	rootCmd.SetArgs([]string{"reset"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out.String(), "baseline committed as version 1") {
		t.Errorf("unexpected reset output %q", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"show"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.HasPrefix(out.String(), "# version 1\n") {
		t.Errorf("unexpected show output %q", out.String())
	}

	out.Reset()
	rootCmd.SetArgs([]string{"versions", "--limit", "5"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("versions: %v", err)
	}
	if !strings.Contains(out.String(), "Reset to baseline") {
		t.Errorf("unexpected versions output %q", out.String())
	}
}
