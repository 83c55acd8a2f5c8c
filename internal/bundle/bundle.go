// Package bundle implements the §4.D .kodex bundle codec: exporting a
// bundle of hotstrings to the legacy AHK-derived flat-text format, and
// importing one back. Grounded in
// original_source/dist/kodex/app/kodex_py/storage/bundle_io.py.
package bundle

import (
	"fmt"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/hexcodec"
	"github.com/anthropics/kodex/internal/store"
)

const (
	triggerMarker = "§Triggers§"
	bundleBreak   = "%bundlebreak"
	scriptPrefix  = "::scr::"
)

// bankOrder is the fixed order of trigger banks in the trailer section.
var bankOrder = []store.TriggerType{
	store.TriggerEnter, store.TriggerTab, store.TriggerSpace, store.TriggerInstant,
}

// bankKey names the bank a trigger type belongs to; Instant's bank is named
// "notrig" in the on-disk format for historical reasons (ported verbatim).
func bankKey(t store.TriggerType) string {
	if t == store.TriggerInstant {
		return "notrig"
	}
	return string(t)
}

// Codec exports/imports .kodex bundle files against a Store.
type Codec struct {
	Store *store.Store
	Log   *zap.SugaredLogger
}

// ExportFilename slugifies a bundle name into a filesystem-safe ".kodex"
// filename, per §4.D.
func ExportFilename(bundleName string) string {
	return slug.Make(bundleName) + ".kodex"
}

// Export writes bundleName's hotstrings to outputPath in the legacy flat
// format and returns the count exported.
func (c *Codec) Export(bundleName, outputPath string) (int, error) {
	b, err := c.Store.GetBundleByName(bundleName)
	if err != nil {
		return 0, fmt.Errorf("bundle: export %q: %w", bundleName, err)
	}
	hotstrings, err := c.Store.ListHotstrings(b.ID, false)
	if err != nil {
		return 0, fmt.Errorf("bundle: export %q: %w", bundleName, err)
	}

	lines := []string{bundleName}
	banks := map[string][]string{"enter": nil, "tab": nil, "space": nil, "notrig": nil}

	for _, hs := range hotstrings {
		lines = append(lines, hs.Name)
		replacement := hs.Replacement
		if hs.IsScript {
			replacement = scriptPrefix + replacement
		}
		replacement = strings.ReplaceAll(replacement, "\r\n", bundleBreak)
		replacement = strings.ReplaceAll(replacement, "\n", bundleBreak)
		lines = append(lines, replacement)

		hexName := hexcodec.Encode(c.Log, hs.Name)
		for t := range hs.Triggers {
			key := bankKey(t)
			banks[key] = append(banks[key], hexName)
		}
	}

	lines = append(lines, triggerMarker)
	for _, t := range bankOrder {
		key := bankKey(t)
		names := banks[key]
		if len(names) == 0 {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, strings.Join(names, ",,")+",,")
	}

	if err := os.WriteFile(outputPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return 0, fmt.Errorf("bundle: writing %s: %w", outputPath, err)
	}
	return len(hotstrings), nil
}

// ImportOptions controls how Import resolves the target bundle and whether
// the file's own trigger banks are honored.
type ImportOptions struct {
	// BundleName overrides the name on line 1 of the file, if non-empty.
	BundleName string
	// UseFileTriggers, when false, assigns every imported hotstring the
	// Space trigger regardless of what the file's trailer section says.
	UseFileTriggers bool
}

// Import reads a .kodex file and inserts its hotstrings into a bundle
// (created if it doesn't already exist). Returns the count imported;
// per-hotstring save failures are logged and skipped, matching upstream. A
// name that already exists in the target bundle is such a failure: existing
// hotstrings are not updated.
func (c *Codec) Import(filePath string, opts ImportOptions) (int, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("bundle: reading %s: %w", filePath, err)
	}
	lines := strings.Split(string(raw), "\n")
	if len(lines) == 0 {
		return 0, fmt.Errorf("bundle: %s is empty", filePath)
	}

	fileBundleName := strings.TrimSpace(lines[0])
	name := opts.BundleName
	if name == "" {
		name = fileBundleName
	}
	b, err := c.Store.CreateBundle(name)
	if err != nil {
		return 0, fmt.Errorf("bundle: import into %q: %w", name, err)
	}

	type pair struct{ name, replacement string }
	var pairs []pair
	triggerSectionIdx := -1

	i := 1
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == triggerMarker {
			triggerSectionIdx = i
			break
		}
		hsName := strings.TrimSpace(lines[i])
		i++
		if i >= len(lines) {
			break
		}
		replacement := strings.ReplaceAll(lines[i], bundleBreak, "\n")
		pairs = append(pairs, pair{hsName, replacement})
		i++
	}

	fileTriggers := make(map[string]map[store.TriggerType]bool)
	if triggerSectionIdx >= 0 && opts.UseFileTriggers {
		bankLines := lines[triggerSectionIdx+1:]
		for idx, t := range bankOrder {
			if idx >= len(bankLines) {
				break
			}
			for _, hexName := range strings.Split(bankLines[idx], ",,") {
				hexName = strings.TrimSpace(hexName)
				if hexName == "" {
					continue
				}
				plain, err := hexcodec.Decode(hexName)
				if err != nil {
					if c.Log != nil {
						c.Log.Warnw("bundle import: skipping malformed hex name", "hex", hexName, "error", err)
					}
					continue
				}
				if fileTriggers[plain] == nil {
					fileTriggers[plain] = make(map[store.TriggerType]bool)
				}
				fileTriggers[plain][t] = true
			}
		}
	}

	count := 0
	for _, p := range pairs {
		if p.name == "" {
			if c.Log != nil {
				c.Log.Warnw("bundle import: skipping hotstring with empty name", "file", filePath)
			}
			continue
		}
		replacement := p.replacement
		isScript := strings.HasPrefix(replacement, scriptPrefix)
		if isScript {
			replacement = replacement[len(scriptPrefix):]
		}
		// Legacy bundles carry the canonical "%|" caret marker; normalize
		// it to "%cursor%" so the executor's caret step only has one
		// spelling to look for once a hotstring is stored.
		replacement = strings.Replace(replacement, "%|", "%cursor%", 1)

		triggers := fileTriggers[p.name]
		if triggers == nil {
			triggers = map[store.TriggerType]bool{store.TriggerSpace: true}
		}

		hs := &store.Hotstring{
			Name:        p.name,
			Replacement: replacement,
			IsScript:    isScript,
			BundleID:    b.ID,
			Triggers:    triggers,
		}
		if _, err := c.Store.SaveHotstring(hs); err != nil {
			if c.Log != nil {
				c.Log.Warnw("bundle import: failed to save hotstring", "name", p.name, "error", err)
			}
			continue
		}
		count++
	}

	return count, nil
}
