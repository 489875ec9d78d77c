package sse

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/osse101/idlegarden/internal/event"
)

// Handler streams garden events to one client. user_id narrows the stream
// to a single player and an empty value follows every player. types is a
// comma separated subset of StreamedTypes.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, ErrMsgStreamingUnsupported, http.StatusInternalServerError)
			return
		}

		userID := r.URL.Query().Get(QueryParamUserID)
		eventTypes, err := parseTypeFilter(r.URL.Query().Get(QueryParamTypes))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")

		client := hub.Register(userID, eventTypes)
		log := slog.With("client_id", client.ID, "user_id", userID)
		log.Info(LogMsgClientConnected, "filters", eventTypes)
		defer func() {
			hub.Unregister(client.ID)
			log.Info(LogMsgClientDisconnected)
		}()

		out := &streamWriter{w: w, flusher: flusher}
		hello := Event{
			ID:        client.ID,
			Type:      EventTypeConnected,
			UserID:    userID,
			Timestamp: time.Now().Unix(),
			Payload:   map[string]any{"client_id": client.ID, "filters": eventTypes},
		}
		if err := out.send(hello); err != nil {
			return
		}

		ticker := time.NewTicker(KeepaliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-client.EventChannel:
				if !ok {
					return
				}
				if err := out.send(evt); err != nil {
					log.Warn(LogMsgWriteError, "event_type", evt.Type, "error", err)
					return
				}
			case now := <-ticker.C:
				if err := out.send(Event{Type: EventTypeKeepalive, Timestamp: now.Unix()}); err != nil {
					return
				}
			}
		}
	}
}

type streamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *streamWriter) send(evt Event) error {
	msg, err := FormatSSEMessage(evt)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(msg); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// parseTypeFilter returns nil for an empty filter, meaning every streamed type
func parseTypeFilter(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var types []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !slices.ContainsFunc(StreamedTypes, func(t event.Type) bool { return string(t) == name }) {
			return nil, fmt.Errorf(ErrFmtUnknownEventType, name)
		}
		types = append(types, name)
	}
	return types, nil
}
