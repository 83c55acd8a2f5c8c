// Package variables implements the §4.B variable resolver: layered
// name -> value lookup, %name% template substitution, and a file watcher
// that keeps globals/context/ledger caches live. Grounded in
// original_source/src/kodex_py/utils/variables.py and global_variables.py.
package variables

import "time"

// VarType enumerates the supported global-variable value types (§3).
type VarType string

const (
	VarString  VarType = "string"
	VarInt     VarType = "int"
	VarDecimal VarType = "decimal"
	VarBoolean VarType = "boolean"
	VarArray   VarType = "array"
	VarDict    VarType = "dict"
)

var validVarTypes = map[VarType]bool{
	VarString: true, VarInt: true, VarDecimal: true, VarBoolean: true, VarArray: true, VarDict: true,
}

// GlobalVariable is one user-defined %name% binding.
type GlobalVariable struct {
	Type  VarType     `json:"type"`
	Value interface{} `json:"value"`
}

// globalsFile is the on-disk shape of global_variables.json.
type globalsFile struct {
	Variables map[string]GlobalVariable `json:"variables"`
}

// Source enumerates the known context-file sources (§3 SourceContext).
type Source string

const (
	SourceFreshdesk Source = "freshdesk"
	SourceCSR       Source = "csr"
	SourceGT3       Source = "gt3"
)

// KnownSources lists every recognized IPC source, in a fixed order.
var KnownSources = []Source{SourceFreshdesk, SourceCSR, SourceGT3}

// sourcePrefix maps a source to its %name% lookup prefix ("freshdesk_" etc).
func (s Source) prefix() string { return string(s) + "_" }

// sourceContext is one source's flat key/value map plus its freshness stamp.
type sourceContext struct {
	fields    map[string]interface{}
	updatedAt time.Time
}

// LedgerLookup is the narrow view the resolver needs into the time ledger
// for the reserved ticket_time/ticket_time_formatted names (§4.B rule 3).
// Implemented by internal/ledger.Ledger; kept as an interface here so the
// two packages don't need to import each other's concrete types.
type LedgerLookup interface {
	ActiveTicket() (ticket, source string, active bool)
	SecondsToday(ticket string) (seconds float64, found bool)
}
