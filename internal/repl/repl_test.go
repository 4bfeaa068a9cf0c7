package repl

import (
	"bytes"
	"strings"
	"testing"
)

func TestReplPersistsGlobalsAcrossLines(t *testing.T) {
	in := strings.NewReader("var x = 41;\nprint x + 1;\n")
	var out, errOut bytes.Buffer
	if err := Start(in, &out, &errOut, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "42") {
		t.Fatalf("got stdout %q, want it to contain 42", out.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
}

func TestReplReportsErrorAndContinues(t *testing.T) {
	in := strings.NewReader("print 1 + true;\nprint 2;\n")
	var out, errOut bytes.Buffer
	if err := Start(in, &out, &errOut, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "2") {
		t.Fatalf("expected the REPL to keep evaluating after an error, got stdout %q", out.String())
	}
	if errOut.Len() == 0 {
		t.Fatalf("expected an error to be reported to stderr")
	}
}

func TestReplSkipsEmptyLines(t *testing.T) {
	in := strings.NewReader("\n\nprint 1;\n")
	var out, errOut bytes.Buffer
	if err := Start(in, &out, &errOut, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("got stdout %q", out.String())
	}
}

func TestReplTraceModeEmitsDisassembly(t *testing.T) {
	in := strings.NewReader("print 1;\n")
	var out, errOut bytes.Buffer
	if err := Start(in, &out, &errOut, Options{Trace: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "OP_PRINT") {
		t.Fatalf("expected trace output, got %q", out.String())
	}
}
