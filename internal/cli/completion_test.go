package cli

import (
	"bytes"
	"context"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardspace/pkg/entity"
)

// complete runs cobra's hidden completion command and returns the
// candidates it printed, without the trailing directive line.
func (e *env) complete(t *testing.T, args ...string) []string {
	t.Helper()
	var buf bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(append([]string{cobra.ShellCompRequestCmd, "--config", e.config}, args...))
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("complete %v: %v", args, err)
	}

	var got []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" || strings.HasPrefix(line, ":") || strings.HasPrefix(line, "Completion ended") {
			continue
		}
		got = append(got, line)
	}
	return got
}

func TestCompleteEntityIDs(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"show", []string{"show", "E"}, []string{"E1\tAlpha", "E2\tBeta"}},
		{"show second arg", []string{"show", "E1", ""}, nil},
		{"browse focus", []string{"browse", "--focus", "P"}, []string{"P\tParent"}},
		{"hierarchy root", []string{"hierarchy", "--root", "E2"}, []string{"E2\tBeta"}},
		{"serve focus", []string{"serve", "--focus", "x"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.complete(t, tt.args...); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("complete %v = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestCompleteModes(t *testing.T) {
	e := newEnv(t)
	if got := e.complete(t, "layout", "--mode", "a"); !reflect.DeepEqual(got, []string{"alphabetic"}) {
		t.Errorf("layout --mode a = %q", got)
	}
	if got := e.complete(t, "hierarchy", "--mode", ""); len(got) != len(modeNames) {
		t.Errorf("hierarchy --mode = %q, want %q", got, modeNames)
	}
	for _, name := range modeNames {
		if _, err := entity.ParseMode(name); err != nil {
			t.Errorf("completed mode %q does not parse: %v", name, err)
		}
	}
}

func TestCompleteFrames(t *testing.T) {
	e := newEnv(t)
	got := e.complete(t, "resolve", "")
	if len(got) == 0 {
		t.Fatal("resolve offered no frame keys")
	}
	for _, c := range got {
		if key, label, ok := strings.Cut(c, "\t"); !ok || key == "" || label == "" {
			t.Errorf("candidate %q lacks a key and label", c)
		}
	}
}

func TestCompletionScript(t *testing.T) {
	e := newEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetArgs([]string{"--config", e.config, "completion", shell})
			root.SetOut(&buf)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), "cardspace") {
				t.Errorf("%s script does not mention cardspace", shell)
			}
		})
	}
	if err := e.run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh succeeded")
	}
}
