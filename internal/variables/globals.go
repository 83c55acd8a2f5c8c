package variables

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/anthropics/kodex/internal/atomicfile"
	"github.com/anthropics/kodex/internal/kerr"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Globals manages global_variables.json: CRUD plus atomic persistence.
// Safe for concurrent use; the watcher reloads it on another goroutine.
type Globals struct {
	mu   sync.RWMutex
	path string
	vars map[string]GlobalVariable
}

// NewGlobals loads path if present, or creates it empty.
func NewGlobals(path string) (*Globals, error) {
	g := &Globals{path: path, vars: make(map[string]GlobalVariable)}
	if err := g.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("variables: loading %s: %w", path, err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := g.save(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Globals) load() error {
	var f globalsFile
	if err := atomicfile.ReadJSON(g.path, &f); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if f.Variables == nil {
		f.Variables = make(map[string]GlobalVariable)
	}
	g.vars = f.Variables
	return nil
}

// Reload re-reads the file from disk; invoked by the watcher on mtime change.
func (g *Globals) Reload() error {
	return g.load()
}

// Clear empties the in-memory cache; invoked by the watcher when the file is
// deleted out from under it.
func (g *Globals) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vars = make(map[string]GlobalVariable)
}

func (g *Globals) save() error {
	g.mu.RLock()
	f := globalsFile{Variables: g.vars}
	g.mu.RUnlock()
	return atomicfile.WriteJSON(g.path, f)
}

// Get returns the variable's value and whether it exists.
func (g *Globals) Get(name string) (interface{}, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vars[name]
	if !ok {
		return nil, false
	}
	return v.Value, true
}

// Set validates the type enum and identifier pattern, then persists.
func (g *Globals) Set(name string, value interface{}, varType VarType) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("variables: %w: invalid identifier %q", kerr.ErrValidation, name)
	}
	if !validVarTypes[varType] {
		return fmt.Errorf("variables: %w: invalid type %q", kerr.ErrValidation, varType)
	}
	g.mu.Lock()
	g.vars[name] = GlobalVariable{Type: varType, Value: value}
	g.mu.Unlock()
	return g.save()
}

// Delete removes a variable, reporting whether it existed.
func (g *Globals) Delete(name string) (bool, error) {
	g.mu.Lock()
	_, existed := g.vars[name]
	delete(g.vars, name)
	g.mu.Unlock()
	if !existed {
		return false, nil
	}
	return true, g.save()
}

// List returns a snapshot of all variables.
func (g *Globals) List() map[string]GlobalVariable {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]GlobalVariable, len(g.vars))
	for k, v := range g.vars {
		out[k] = v
	}
	return out
}

// valueToString renders a typed value per §4.B's substitution contract:
// booleans as true/false, containers as compact JSON, scalars via fmt.
func valueToString(v interface{}) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case []interface{}, map[string]interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}
