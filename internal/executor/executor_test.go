package executor

import (
	"testing"
	"time"

	"github.com/anthropics/kodex/internal/sender"
	"github.com/anthropics/kodex/internal/store"
	"github.com/anthropics/kodex/internal/variables"
)

func newTestExecutor() (*Executor, *sender.FakeKeySender, *sender.FakeClipboard) {
	keys := &sender.FakeKeySender{}
	clip := &sender.FakeClipboard{}
	s := &sender.Sender{Keys: keys, Clipboard: clip, Sleep: func(time.Duration) {}}
	e := &Executor{Sender: s, Resolver: &variables.Resolver{}}
	return e, keys, clip
}

func TestExecuteDirectSimpleReplacement(t *testing.T) {
	e, keys, _ := newTestExecutor()
	var statsChars int
	ok := e.Execute(Request{
		Name:        "btw",
		Replacement: "by the way",
		SendMode:    store.SendModeDirect,
		TriggerChar: true,
		Stats:       func(n int) { statsChars = n },
	})
	if !ok {
		t.Fatal("expected Execute to succeed")
	}
	if len(keys.Pressed) != 4 { // len("btw") + 1 trigger char
		t.Fatalf("backspaces = %d, want 4", len(keys.Pressed))
	}
	if string(keys.Typed) != "by the way" {
		t.Fatalf("typed = %q", string(keys.Typed))
	}
	if statsChars != len("by the way") {
		t.Fatalf("statsChars = %d", statsChars)
	}
}

func TestExecuteCaretPositioning(t *testing.T) {
	e, keys, _ := newTestExecutor()
	ok := e.Execute(Request{
		Name:        "sig",
		Replacement: "Hello %| World",
		SendMode:    store.SendModeDirect,
		TriggerChar: true,
	})
	if !ok {
		t.Fatal("expected success")
	}
	if string(keys.Typed) != "Hello  World" {
		t.Fatalf("typed = %q, want %q", string(keys.Typed), "Hello  World")
	}
	leftCount := 0
	for _, k := range keys.Pressed {
		if k == sender.KeyLeft {
			leftCount++
		}
	}
	if leftCount != 6 {
		t.Fatalf("left-arrow presses = %d, want 6", leftCount)
	}
	backspaceCount := 0
	for _, k := range keys.Pressed {
		if k == sender.KeyBackspace {
			backspaceCount++
		}
	}
	if backspaceCount != 4 { // len("sig") + 1 trigger char
		t.Fatalf("backspaces = %d, want 4", backspaceCount)
	}
}

// TestExecuteCaretPositioningCursorSpelling confirms the "%cursor%" spelling
// (what the store holds after bundle import normalizes "%|") repositions
// the caret identically to the canonical "%|" marker.
func TestExecuteCaretPositioningCursorSpelling(t *testing.T) {
	e, keys, _ := newTestExecutor()
	ok := e.Execute(Request{
		Name:        "sig",
		Replacement: "Hello %cursor% World",
		SendMode:    store.SendModeDirect,
		TriggerChar: true,
	})
	if !ok {
		t.Fatal("expected success")
	}
	if string(keys.Typed) != "Hello  World" {
		t.Fatalf("typed = %q, want %q", string(keys.Typed), "Hello  World")
	}
	leftCount := 0
	for _, k := range keys.Pressed {
		if k == sender.KeyLeft {
			leftCount++
		}
	}
	if leftCount != 6 {
		t.Fatalf("left-arrow presses = %d, want 6", leftCount)
	}
}

func TestExecutePromptCancelAbortsWithoutTyping(t *testing.T) {
	e, keys, _ := newTestExecutor()
	ok := e.Execute(Request{
		Name:        "pr",
		Replacement: "Hi %prompt%!",
		SendMode:    store.SendModeDirect,
		Prompt:      func(string) (string, bool) { return "", false },
	})
	if ok {
		t.Fatal("expected cancellation to return false")
	}
	if len(keys.Typed) != 0 {
		t.Fatalf("expected no text typed after cancel, got %q", string(keys.Typed))
	}
	// Backspaces for erasing the typed hotstring still happen before the
	// prompt is shown, per §4.H step order (erase happens at step 2, the
	// prompt is step 4) -- only the injection itself is skipped.
	if len(keys.Pressed) != len("pr") {
		t.Fatalf("backspaces = %d, want %d", len(keys.Pressed), len("pr"))
	}
}

func TestExecutePromptProvidesValue(t *testing.T) {
	e, keys, _ := newTestExecutor()
	ok := e.Execute(Request{
		Name:        "pr",
		Replacement: "Hi %prompt%!",
		SendMode:    store.SendModeDirect,
		Prompt:      func(string) (string, bool) { return "Acme", true },
	})
	if !ok {
		t.Fatal("expected success")
	}
	if string(keys.Typed) != "Hi Acme!" {
		t.Fatalf("typed = %q", string(keys.Typed))
	}
}

func TestExecuteScriptModeOnlySubstitutesPrompt(t *testing.T) {
	e, keys, _ := newTestExecutor()
	ok := e.Execute(Request{
		Name:        "scr",
		Replacement: "echo %time% %prompt%",
		IsScript:    true,
		SendMode:    store.SendModeDirect,
		Prompt:      func(string) (string, bool) { return "hi", true },
	})
	if !ok {
		t.Fatal("expected success")
	}
	if string(keys.Typed) != "echo %time% hi" {
		t.Fatalf("typed = %q, want %%time%% left untouched in script mode", string(keys.Typed))
	}
}

func TestExecuteClipboardModePastesAndRestores(t *testing.T) {
	e, keys, clip := newTestExecutor()
	clip.Text = "previous clipboard"
	ok := e.Execute(Request{
		Name:        "addr",
		Replacement: "123 Main St",
		SendMode:    store.SendModeClipboard,
	})
	if !ok {
		t.Fatal("expected success")
	}
	if clip.Text != "previous clipboard" {
		t.Fatalf("clipboard not restored, got %q", clip.Text)
	}
	pasted := false
	for _, k := range keys.Pressed {
		if k == sender.KeyV {
			pasted = true
		}
	}
	if !pasted {
		t.Fatal("expected Ctrl+V paste sequence")
	}
}
