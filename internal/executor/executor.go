// Package executor implements §4.H: the end-to-end hotstring expansion —
// backspace, variable substitution, optional prompting, injection, and
// caret repositioning. Grounded in
// original_source/dist/kodex/app/kodex_py/engine/executor.py.
package executor

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/sender"
	"github.com/anthropics/kodex/internal/store"
	"github.com/anthropics/kodex/internal/variables"
)

const cursorMarker = "%cursor%"

// legacyCursorMarker is the canonical §4.H encoding and the form carried by
// imported .kodex bundles; normalized to cursorMarker before the caret step
// so both spellings reposition the caret identically.
const legacyCursorMarker = "%|"
const promptMarker = "%prompt%"

// PromptFunc prompts the user with the raw template and returns the value
// they entered, or ok=false if they cancelled.
type PromptFunc func(template string) (value string, ok bool)

// StatsFunc records how many characters were injected by one expansion.
type StatsFunc func(chars int)

// SoundFunc plays the expansion feedback sound, fire-and-forget; any
// failure is the implementation's own concern to log.
type SoundFunc func(path string)

// Request carries everything one expansion needs.
type Request struct {
	Name        string
	Replacement string
	IsScript    bool
	SendMode    store.SendMode

	PlaySound bool
	SoundPath string
	Prompt    PromptFunc
	Stats     StatsFunc

	// TriggerChar reports whether a trailing Space/Tab/Enter was already
	// typed into the field and must also be erased.
	TriggerChar bool
}

// Executor composes a Sender and a variables.Resolver to perform Execute.
type Executor struct {
	Sender    *sender.Sender
	Resolver  *variables.Resolver
	PlaySound SoundFunc
	Log       *zap.SugaredLogger
}

// Execute runs the full §4.H algorithm. Returns false if the prompt was
// cancelled; all other failures are logged and do not abort the expansion.
func (e *Executor) Execute(req Request) bool {
	if req.PlaySound && req.SoundPath != "" && e.PlaySound != nil {
		go e.PlaySound(req.SoundPath)
	}

	eraseCount := utf8.RuneCountInString(req.Name)
	if req.TriggerChar {
		eraseCount++
	}
	if err := e.Sender.SendBackspaces(eraseCount); err != nil {
		e.logWarn("backspace erase failed", err)
	}

	if req.IsScript {
		return e.executeScript(req)
	}
	return e.executeTemplate(req)
}

func (e *Executor) executeScript(req Request) bool {
	text := req.Replacement
	if strings.Contains(text, promptMarker) && req.Prompt != nil {
		val, ok := req.Prompt(text)
		if !ok {
			return false
		}
		text = e.Resolver.SubstitutePromptOnly(text, &val)
	}
	if err := e.Sender.TypeText(text); err != nil {
		e.logWarn("script injection failed", err)
	}
	return true
}

func (e *Executor) executeTemplate(req Request) bool {
	text := req.Replacement
	if req.SendMode == store.SendModeDirect {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}

	var promptValue *string
	if strings.Contains(text, promptMarker) {
		if req.Prompt != nil {
			val, ok := req.Prompt(text)
			if !ok {
				return false
			}
			promptValue = &val
		} else {
			empty := ""
			promptValue = &empty
		}
	}

	text = e.Resolver.Substitute(text, variables.SubstituteOpts{PromptValue: promptValue})
	text = strings.Replace(text, legacyCursorMarker, cursorMarker, 1)

	returnTo := 0
	if idx := strings.Index(text, cursorMarker); idx >= 0 {
		text = text[:idx] + text[idx+len(cursorMarker):]
		returnTo = utf8.RuneCountInString(text[idx:])
	}

	var injectErr error
	if req.SendMode == store.SendModeDirect {
		injectErr = e.Sender.TypeText(text)
	} else {
		injectErr = e.Sender.PasteText(text)
	}
	if injectErr != nil {
		e.logWarn("injection failed", injectErr)
	}
	if returnTo > 0 {
		if err := e.Sender.MoveCursorLeft(returnTo); err != nil {
			e.logWarn("caret repositioning failed", err)
		}
	}

	if req.Stats != nil {
		req.Stats(utf8.RuneCountInString(text))
	}
	return true
}

func (e *Executor) logWarn(msg string, err error) {
	if e.Log != nil {
		e.Log.Warnw(msg, "error", err)
	}
}
