package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Stream event names.
const (
	eventResult     = "result"
	eventCompliance = "compliance"
	eventError      = "error"
	eventComplete   = "complete"
)

var errStreamingUnsupported = errors.New("response writer does not support streaming")

// eventStream writes Server-Sent Events, flushing after each one. Event IDs
// count up from 1 so clients can tell where a dropped stream stopped.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	next    int
}

// openEventStream sends the stream headers. Nothing may be written to w
// before it is called.
func openEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher, next: 1}, nil
}

func (s *eventStream) send(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", name, err)
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.next, name, data); err != nil {
		return err
	}
	s.next++
	s.flusher.Flush()
	return nil
}

// fail reports err as the final event. The client has already seen a 200.
func (s *eventStream) fail(err error) {
	_ = s.send(eventError, map[string]string{"error": err.Error()})
}

func (s *eventStream) complete(count int) error {
	return s.send(eventComplete, map[string]any{"status": "complete", "count": count})
}
