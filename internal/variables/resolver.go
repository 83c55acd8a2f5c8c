package variables

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// tokenPattern matches %name% for both built-ins and user/context names. A
// single regex pass captures the whole identifier between delimiters, so
// "time" and "time_long" are matched as entirely distinct tokens -- no
// greedy-prefix ordering trick is needed the way it would be with bare
// substring replacement (see §4.B's note on this).
var tokenPattern = regexp.MustCompile(`%([a-zA-Z_][a-zA-Z0-9_]*)%`)

// Clipboard abstracts clipboard reads so the resolver is testable without a
// real OS clipboard. internal/sender supplies the production implementation
// backed by atotto/clipboard.
type Clipboard interface {
	ReadText() (string, error)
}

// Resolver performs §4.B template substitution over the layered sources:
// built-in time/date/clipboard tokens, per-source contexts, the ledger's
// active-ticket accounting, and user-defined globals.
type Resolver struct {
	Globals   *Globals
	Contexts  *Contexts
	Ledger    LedgerLookup
	Clipboard Clipboard

	// TimeLongStrict switches %time_long% to a non-buggy 24-hour-only
	// rendering instead of reproducing the upstream HH:MM:SS %p bug
	// (see SPEC_FULL.md / DESIGN.md "time_long" decision).
	TimeLongStrict bool

	// Now, if set, overrides time.Now (tests only).
	Now func() time.Time
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// SubstituteOpts carries the per-call inputs the executor supplies.
type SubstituteOpts struct {
	// PromptValue, if non-nil, is substituted for %prompt%. If nil and the
	// template contains %prompt%, the token is left unresolved (the
	// executor is responsible for prompting first, per §4.H).
	PromptValue *string
}

// Substitute replaces every %name% token in text per the §4.B contract.
// %cursor% is deliberately left untouched; the executor strips it while
// computing caret position.
func (r *Resolver) Substitute(text string, opts SubstituteOpts) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if name == "cursor" {
			return tok
		}
		if val, ok := r.resolve(name, opts); ok {
			return val
		}
		return tok
	})
}

// SubstitutePromptOnly replaces only the %prompt% token, leaving every
// other token (including other built-ins) untouched. Script-mode
// hotstrings (§4.H step 3) get this restricted substitution instead of the
// full Substitute pass.
func (r *Resolver) SubstitutePromptOnly(text string, promptValue *string) string {
	if promptValue == nil {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if tok[1:len(tok)-1] == "prompt" {
			return *promptValue
		}
		return tok
	})
}

func (r *Resolver) resolve(name string, opts SubstituteOpts) (string, bool) {
	switch name {
	case "clipboard":
		return r.clipboardText(), true
	case "time":
		return formatShortTime(r.now()), true
	case "time_long":
		return formatLongTime(r.now(), r.TimeLongStrict), true
	case "date_short":
		return formatShortDate(r.now()), true
	case "date_long":
		return formatLongDate(r.now()), true
	case "prompt":
		if opts.PromptValue != nil {
			return *opts.PromptValue, true
		}
		return "", false
	}
	return r.resolveNamed(name)
}

// resolveNamed implements the 5-step rule for non-built-in %name% tokens.
func (r *Resolver) resolveNamed(name string) (string, bool) {
	for _, src := range KnownSources {
		prefix := src.prefix()
		if strings.HasPrefix(name, prefix) {
			key := strings.TrimPrefix(name, prefix)
			if r.Contexts != nil {
				if v, ok := r.Contexts.Get(src, key); ok {
					return valueToString(v), true
				}
			}
			return "", false
		}
	}

	if r.Contexts != nil {
		if src, ok := r.Contexts.MostRecent(); ok {
			if v, ok := r.Contexts.Get(src, name); ok {
				return valueToString(v), true
			}
		}
	}

	if name == "ticket_time" || name == "ticket_time_formatted" {
		if r.Ledger == nil {
			return "", false
		}
		ticket, _, active := r.Ledger.ActiveTicket()
		if !active {
			return "", false
		}
		seconds, found := r.Ledger.SecondsToday(ticket)
		if !found {
			return "", false
		}
		if name == "ticket_time" {
			return strconv.FormatFloat(seconds, 'f', -1, 64), true
		}
		return formatHMS(seconds), true
	}

	if r.Globals != nil {
		if v, ok := r.Globals.Get(name); ok {
			return valueToString(v), true
		}
	}

	return "", false
}

func (r *Resolver) clipboardText() string {
	if r.Clipboard == nil {
		return ""
	}
	text, err := r.Clipboard.ReadText()
	if err != nil {
		return ""
	}
	return text
}

func formatHMS(totalSeconds float64) string {
	s := int64(totalSeconds)
	h, m, sec := s/3600, (s%3600)/60, s%60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// formatShortTime renders "H:MM am/pm" (no leading zero on the hour).
func formatShortTime(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	suffix := "am"
	if t.Hour() >= 12 {
		suffix = "pm"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), suffix)
}

// formatLongTime renders %time_long%. The upstream source concatenates a
// 24-hour HH:MM:SS with a 12-hour am/pm suffix -- a documented bug (see
// SPEC_FULL.md). Reproduced by default; TimeLongStrict opts into the
// non-buggy 24-hour-only rendering instead.
func formatLongTime(t time.Time, strict bool) string {
	base := t.Format("15:04:05")
	if strict {
		return base
	}
	suffix := "AM"
	if t.Hour() >= 12 {
		suffix = "PM"
	}
	return base + " " + suffix
}

// formatShortDate renders "M/D/YYYY" (no leading zeros).
func formatShortDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

// formatLongDate renders "Month D, YYYY" (no leading zero on the day), via
// the same strip-leading-zero trick the upstream Python formatter uses.
func formatLongDate(t time.Time) string {
	s := t.Format("January 02, 2006")
	return strings.Replace(s, " 0", " ", 1)
}
