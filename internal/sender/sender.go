package sender

import "time"

const (
	defaultCharDelay       = 8 * time.Millisecond
	defaultChunkSize       = 30
	defaultInterChunkDelay = 20 * time.Millisecond
	clipboardSettleDelay   = 20 * time.Millisecond
	pasteCompletionDelay   = 150 * time.Millisecond
)

// Sender executes the two replacement-injection modes from §4.G: typing
// directly, or routing through the clipboard.
type Sender struct {
	Keys      KeySender
	Clipboard Clipboard

	CharDelay       time.Duration
	ChunkSize       int
	InterChunkDelay time.Duration
	Sleep           func(time.Duration) // overridable in tests
}

func (s *Sender) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (s *Sender) charDelay() time.Duration {
	if s.CharDelay > 0 {
		return s.CharDelay
	}
	return defaultCharDelay
}

func (s *Sender) chunkSize() int {
	if s.ChunkSize > 0 {
		return s.ChunkSize
	}
	return defaultChunkSize
}

func (s *Sender) interChunkDelay() time.Duration {
	if s.InterChunkDelay > 0 {
		return s.InterChunkDelay
	}
	return defaultInterChunkDelay
}

// SendBackspaces erases count characters.
func (s *Sender) SendBackspaces(count int) error {
	for i := 0; i < count; i++ {
		if err := s.Keys.PressKey(KeyBackspace); err != nil {
			return err
		}
		if err := s.Keys.ReleaseKey(KeyBackspace); err != nil {
			return err
		}
	}
	return nil
}

// TypeText types text directly, chunked with a brief pause between chunks
// so the OS input queue doesn't stall on long multi-paragraph expansions.
func (s *Sender) TypeText(text string) error {
	runes := []rune(text)
	chunk := s.chunkSize()
	for i := 0; i < len(runes); i += chunk {
		end := i + chunk
		if end > len(runes) {
			end = len(runes)
		}
		for j, r := range runes[i:end] {
			if err := s.Keys.TypeRune(r); err != nil {
				return err
			}
			if i+j+1 < len(runes) {
				s.sleep(s.charDelay())
			}
		}
		if end < len(runes) {
			s.sleep(s.interChunkDelay())
		}
	}
	return nil
}

// PasteText injects text via the clipboard: save, set, Ctrl+V, restore.
func (s *Sender) PasteText(text string) error {
	old, err := s.Clipboard.ReadText()
	if err != nil {
		old = ""
	}

	if err := s.Clipboard.WriteText(text); err != nil {
		return err
	}
	s.sleep(clipboardSettleDelay)

	if err := s.Keys.PressKey(KeyCtrl); err != nil {
		return err
	}
	if err := s.Keys.PressKey(KeyV); err != nil {
		return err
	}
	if err := s.Keys.ReleaseKey(KeyV); err != nil {
		return err
	}
	if err := s.Keys.ReleaseKey(KeyCtrl); err != nil {
		return err
	}
	s.sleep(pasteCompletionDelay)

	return s.Clipboard.WriteText(old)
}

// MoveCursorLeft sends count Left-arrow presses, for %cursor% caret positioning.
func (s *Sender) MoveCursorLeft(count int) error {
	for i := 0; i < count; i++ {
		if err := s.Keys.PressKey(KeyLeft); err != nil {
			return err
		}
		if err := s.Keys.ReleaseKey(KeyLeft); err != nil {
			return err
		}
	}
	return nil
}
