package documents

import "time"

type timelineKey struct {
	message string
	at      time.Time
}

func keyOf(e TimelineEntry) timelineKey {
	return timelineKey{message: e.Message, at: e.CreatedAt.UTC().Truncate(time.Millisecond)}
}

// MergeTimeline reconciles a client's local timeline with a fresh server
// fetch. Server entries win and keep their order. Local pending entries the
// server has not confirmed yet stay in front; entries match on message and
// millisecond timestamp. Non-pending local entries absent from the server
// are dropped.
func MergeTimeline(local, server []TimelineEntry) []TimelineEntry {
	confirmed := make(map[timelineKey]struct{}, len(server))
	for _, e := range server {
		confirmed[keyOf(e)] = struct{}{}
	}

	merged := make([]TimelineEntry, 0, len(server)+len(local))
	for _, e := range local {
		if !e.Pending {
			continue
		}
		if _, ok := confirmed[keyOf(e)]; ok {
			continue
		}
		merged = append(merged, e)
	}
	return append(merged, server...)
}
