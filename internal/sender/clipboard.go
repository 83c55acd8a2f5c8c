package sender

import "github.com/atotto/clipboard"

// SystemClipboard backs Clipboard with the real OS clipboard via
// atotto/clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadText() (string, error) { return clipboard.ReadAll() }
func (SystemClipboard) WriteText(s string) error  { return clipboard.WriteAll(s) }
