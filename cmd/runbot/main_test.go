package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootHasCoreCommands(t *testing.T) {
	root := newRootCmd()
	for _, want := range []string{"build", "run", "stop", "selftest", "config", "version"} {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected root command to include %s", want)
		}
	}
}

func TestSelfTestRequiresFourArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"selftest", "/tmp/build", "16.0"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	if err := root.Execute(); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestRunRequiresPayload(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"run", "/tmp/build"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	if err := root.Execute(); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestVersionPrintsModule(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"version"})
	var out bytes.Buffer
	root.SetOut(&out)
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "runbot") {
		t.Fatalf("unexpected version output: %q", out.String())
	}
}
