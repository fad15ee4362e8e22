package cql

import (
	"context"
	"fmt"

	"github.com/riverscale/cqldriver/frame"
)

// TracingInfo is the decoded result of a traced query, assembled from
// system_traces.sessions/system_traces.events the way the server itself
// populates them (grounded on original_source's tracing.rs). Fetching
// tracing data is a thin consumer of the normal Query engine, not a
// separate component.
type TracingInfo struct {
	Client        string
	Command       string
	Coordinator   frame.CqlInet
	Duration      int32
	Parameters    map[string]string
	StartedAt     int64
	Events        []TracingEvent
}

// TracingEvent is one row of system_traces.events for a given session id.
type TracingEvent struct {
	EventID     frame.UUID
	Activity    string
	Source      frame.CqlInet
	SourceElapsed int32
	Thread      string
}

// GetTracingInfo fetches the tracing session and its events for id in a
// single attempt. The server writes trace rows asynchronously after the
// traced query completes; rows not yet written yield the "no tracing
// session found" error.
func (s *Session) GetTracingInfo(ctx context.Context, id frame.UUID) (*TracingInfo, error) {
	idBytes := append([]byte(nil), id[:]...)
	idValue := frame.Value{N: frame.Int(len(idBytes)), Bytes: idBytes}

	q := s.Query("SELECT client, command, coordinator, duration, parameters, started_at " +
		"FROM system_traces.sessions WHERE session_id = ?")
	q.stmt.Values = []frame.Value{idValue}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tracing session %s: %w", id, err)
	}
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("no tracing session found for %s", id)
	}

	info := &TracingInfo{}
	row := res.Rows[0]
	if v, ok := colString(row, 0); ok {
		info.Client = v
	}
	if v, ok := colString(row, 1); ok {
		info.Command = v
	}
	if len(row) > 2 {
		if inet, ok := row[2].(frame.CqlInet); ok {
			info.Coordinator = inet
		}
	}
	if len(row) > 3 {
		if d, ok := row[3].(frame.CqlInt); ok {
			info.Duration = int32(d)
		}
	}
	if len(row) > 4 {
		if m, ok := row[4].(frame.CqlMap); ok {
			info.Parameters = make(map[string]string, len(m.Entries))
			for _, e := range m.Entries {
				k, _ := colString(frame.Row{e.Key}, 0)
				v, _ := colString(frame.Row{e.Value}, 0)
				info.Parameters[k] = v
			}
		}
	}
	if len(row) > 5 {
		if ts, ok := row[5].(frame.CqlTimestamp); ok {
			info.StartedAt = int64(ts)
		}
	}

	eq := s.Query("SELECT event_id, activity, source, source_elapsed, thread " +
		"FROM system_traces.events WHERE session_id = ?")
	eq.stmt.Values = []frame.Value{idValue}
	eres, err := eq.Exec(ctx)
	if err != nil {
		return info, fmt.Errorf("fetching tracing events %s: %w", id, err)
	}

	for _, r := range eres.Rows {
		var ev TracingEvent
		if len(r) > 0 {
			if u, ok := r[0].(frame.CqlTimeUUID); ok {
				ev.EventID = frame.UUID(u)
			}
		}
		if v, ok := colString(r, 1); ok {
			ev.Activity = v
		}
		if len(r) > 2 {
			if inet, ok := r[2].(frame.CqlInet); ok {
				ev.Source = inet
			}
		}
		if len(r) > 3 {
			if se, ok := r[3].(frame.CqlInt); ok {
				ev.SourceElapsed = int32(se)
			}
		}
		if v, ok := colString(r, 4); ok {
			ev.Thread = v
		}
		info.Events = append(info.Events, ev)
	}

	return info, nil
}

func colString(row frame.Row, i int) (string, bool) {
	if i >= len(row) || row[i] == nil {
		return "", false
	}
	switch v := row[i].(type) {
	case frame.CqlText:
		return string(v), true
	case frame.CqlAscii:
		return string(v), true
	default:
		return "", false
	}
}
