package store

import "time"

// TriggerType enumerates the four ways a hotstring match can fire (§3).
type TriggerType string

const (
	TriggerEnter   TriggerType = "enter"
	TriggerTab     TriggerType = "tab"
	TriggerSpace   TriggerType = "space"
	TriggerInstant TriggerType = "instant"
)

// SendMode selects how replacement text is injected (§3 Config.send_mode).
type SendMode string

const (
	SendModeDirect    SendMode = "direct"
	SendModeClipboard SendMode = "clipboard"
)

// Hotstring is a single text-expansion rule.
type Hotstring struct {
	ID          int64
	Name        string `validate:"required,min=1"`
	Replacement string
	IsScript    bool
	BundleID    int64
	BundleName  string // convenience, not stored directly
	Triggers    map[TriggerType]bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsInstant reports whether Instant is among the registered triggers. Per
// §3's invariant, when true it is the *only* trigger.
func (h *Hotstring) IsInstant() bool {
	return h.Triggers[TriggerInstant]
}

// Bundle is a named, independently enable-able collection of hotstrings.
type Bundle struct {
	ID      int64
	Name    string `validate:"required,min=1"`
	Enabled bool
}

// DefaultBundleName is seeded on first Open and can never be renamed/deleted.
const DefaultBundleName = "Default"
