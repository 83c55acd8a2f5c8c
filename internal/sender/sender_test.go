package sender

import (
	"testing"
	"time"
)

func noSleep(time.Duration) {}

func TestSendBackspaces(t *testing.T) {
	keys := &FakeKeySender{}
	s := &Sender{Keys: keys, Sleep: noSleep}
	if err := s.SendBackspaces(3); err != nil {
		t.Fatalf("SendBackspaces: %v", err)
	}
	if len(keys.Pressed) != 3 {
		t.Fatalf("pressed %d times, want 3", len(keys.Pressed))
	}
	for _, k := range keys.Pressed {
		if k != KeyBackspace {
			t.Fatalf("expected all KeyBackspace presses, got %v", k)
		}
	}
}

func TestSendBackspacesZeroIsNoop(t *testing.T) {
	keys := &FakeKeySender{}
	s := &Sender{Keys: keys, Sleep: noSleep}
	if err := s.SendBackspaces(0); err != nil {
		t.Fatalf("SendBackspaces: %v", err)
	}
	if len(keys.Pressed) != 0 {
		t.Fatalf("expected no presses for count 0, got %d", len(keys.Pressed))
	}
}

func TestTypeTextTypesEveryRune(t *testing.T) {
	keys := &FakeKeySender{}
	s := &Sender{Keys: keys, Sleep: noSleep}
	if err := s.TypeText("hello world"); err != nil {
		t.Fatalf("TypeText: %v", err)
	}
	if string(keys.Typed) != "hello world" {
		t.Fatalf("typed = %q", string(keys.Typed))
	}
}

func TestTypeTextChunksLongText(t *testing.T) {
	keys := &FakeKeySender{}
	sleeps := 0
	s := &Sender{Keys: keys, ChunkSize: 4, Sleep: func(time.Duration) { sleeps++ }}
	if err := s.TypeText("0123456789"); err != nil {
		t.Fatalf("TypeText: %v", err)
	}
	if string(keys.Typed) != "0123456789" {
		t.Fatalf("typed = %q", string(keys.Typed))
	}
	// A char-delay sleep follows every character but the last (9), plus an
	// extra inter-chunk sleep at each of the two chunk boundaries (2).
	const want = 9 + 2
	if sleeps != want {
		t.Fatalf("sleeps = %d, want %d", sleeps, want)
	}
}

func TestPasteTextRestoresClipboard(t *testing.T) {
	keys := &FakeKeySender{}
	clip := &FakeClipboard{Text: "original"}
	s := &Sender{Keys: keys, Clipboard: clip, Sleep: noSleep}

	if err := s.PasteText("replacement"); err != nil {
		t.Fatalf("PasteText: %v", err)
	}
	if clip.Text != "original" {
		t.Fatalf("clipboard not restored, got %q", clip.Text)
	}

	wantSeq := []KeyCode{KeyCtrl, KeyV}
	if len(keys.Pressed) != len(wantSeq) {
		t.Fatalf("pressed = %v, want %v", keys.Pressed, wantSeq)
	}
	for i, k := range wantSeq {
		if keys.Pressed[i] != k {
			t.Fatalf("pressed[%d] = %v, want %v", i, keys.Pressed[i], k)
		}
	}
}

func TestMoveCursorLeft(t *testing.T) {
	keys := &FakeKeySender{}
	s := &Sender{Keys: keys, Sleep: noSleep}
	if err := s.MoveCursorLeft(5); err != nil {
		t.Fatalf("MoveCursorLeft: %v", err)
	}
	if len(keys.Pressed) != 5 {
		t.Fatalf("pressed %d times, want 5", len(keys.Pressed))
	}
}
