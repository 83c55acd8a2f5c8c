package sender

// FakeKeySender records calls instead of touching real input devices; used
// by tests.
type FakeKeySender struct {
	Typed   []rune
	Pressed []KeyCode
}

func (f *FakeKeySender) PressKey(k KeyCode) error {
	f.Pressed = append(f.Pressed, k)
	return nil
}

func (f *FakeKeySender) ReleaseKey(k KeyCode) error { return nil }

func (f *FakeKeySender) TypeRune(r rune) error {
	f.Typed = append(f.Typed, r)
	return nil
}

// FakeClipboard is an in-memory Clipboard for tests.
type FakeClipboard struct {
	Text string
}

func (c *FakeClipboard) ReadText() (string, error) { return c.Text, nil }
func (c *FakeClipboard) WriteText(s string) error  { c.Text = s; return nil }
