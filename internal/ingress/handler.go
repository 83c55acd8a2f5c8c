package ingress

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/atomicfile"
	"github.com/anthropics/kodex/internal/ledger"
)

// LedgerIngester is the narrow view Handler needs into the time ledger.
// Implemented by *ledger.Ledger; kept as an interface for testability.
type LedgerIngester interface {
	Ingest(p ledger.IngestPayload) error
}

// Handler processes one frame at a time per §4.K steps 2-5.
type Handler struct {
	ContextDir string
	Ledger     LedgerIngester
	Log        *zap.SugaredLogger

	// now, if set, overrides time.Now (tests only).
	now func() time.Time
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// response is the wire shape of every reply (§4.K step 5).
type response struct {
	Success      bool   `json:"success"`
	Pong         bool   `json:"pong,omitempty"`
	Source       string `json:"source,omitempty"`
	TicketNumber string `json:"ticket_number,omitempty"`
	WrittenTo    string `json:"written_to,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Handle processes one decoded frame and returns the reply to write back.
func (h *Handler) Handle(payload map[string]interface{}) response {
	if len(payload) == 0 {
		return response{Success: true, Pong: true}
	}

	source, _ := payload["source"].(string)
	if source == "" {
		source = "unknown"
	}
	ticket := ticketNumberOf(payload)

	contextPath := filepath.Join(h.ContextDir, source+"_context.json")
	if err := h.writeContext(contextPath, payload); err != nil {
		return response{Success: false, Error: err.Error()}
	}

	if h.Ledger != nil {
		if err := h.Ledger.Ingest(ledger.IngestPayload{Source: source, TicketNumber: ticket}); err != nil {
			return response{Success: false, Error: err.Error()}
		}
	}

	return response{
		Success:      true,
		Source:       source,
		TicketNumber: ticket,
		WrittenTo:    contextPath,
	}
}

// ticketNumberOf reads payload["ticket_number"], tolerating both a JSON
// string and a JSON number (Chrome-side code may send either).
func ticketNumberOf(payload map[string]interface{}) string {
	switch v := payload["ticket_number"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// writeContext strips leading-underscore keys, stamps _updated_at, and
// atomically writes the result, per §4.K step 3.
func (h *Handler) writeContext(path string, payload map[string]interface{}) error {
	fields := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		fields[k] = v
	}
	fields["_updated_at"] = h.clock().UTC().Format(time.RFC3339)

	if err := atomicfile.WriteJSON(path, fields); err != nil {
		return fmt.Errorf("ingress: writing context %s: %w", path, err)
	}
	return nil
}

// Run drains length-prefixed frames from r, processes each with h, and
// writes replies to w, until a clean EOF, an oversized frame, or a decode
// failure — all three are treated as connection-closed per the original's
// _read_message contract. Each invocation gets its own connection id so log
// lines from one helper-process lifetime can be grepped out of another's.
func Run(r io.Reader, w io.Writer, h *Handler) error {
	log := h.Log
	if log != nil {
		log = log.With("conn_id", uuid.New().String())
	}

	for {
		payload, err := ReadFrame(r)
		if err != nil {
			if err == io.EOF {
				if log != nil {
					log.Info("ingress: peer closed connection")
				}
				return nil
			}
			if log != nil {
				log.Warnw("ingress: frame read failed, closing", "error", err)
			}
			return err
		}

		resp := h.Handle(payload)
		if err := WriteFrame(w, resp); err != nil {
			if log != nil {
				log.Warnw("ingress: writing reply failed, closing", "error", err)
			}
			return err
		}
	}
}
