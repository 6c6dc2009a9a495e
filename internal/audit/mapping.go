package audit

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/JaimeStill/courier/pkg/query"
	"github.com/JaimeStill/courier/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "audit_log", "a").
	Project("id", "ID").
	Project("entity", "Entity").
	Project("entity_id", "EntityID").
	Project("action", "Action").
	Project("actor", "Actor").
	Project("from_status", "FromStatus").
	Project("to_status", "ToStatus").
	Project("detail", "Detail").
	Project("deltas", "Deltas").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters narrows an audit listing. Nil fields are ignored.
type Filters struct {
	Entity   *string    `json:"entity,omitempty"`
	EntityID *string    `json:"entity_id,omitempty"`
	Action   *string    `json:"action,omitempty"`
	Actor    *string    `json:"actor,omitempty"`
	After    *time.Time `json:"after,omitempty"`
	Before   *time.Time `json:"before,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Entity", f.Entity).
		WhereEquals("EntityID", f.EntityID).
		WhereEquals("Action", f.Action).
		WhereEquals("Actor", f.Actor).
		WhereAfter("CreatedAt", f.After).
		WhereBefore("CreatedAt", f.Before)
}

// Matches reports whether e satisfies every set filter.
func (f Filters) Matches(e Entry) bool {
	switch {
	case f.Entity != nil && *f.Entity != e.Entity:
		return false
	case f.EntityID != nil && *f.EntityID != e.EntityID:
		return false
	case f.Action != nil && *f.Action != string(e.Action):
		return false
	case f.Actor != nil && *f.Actor != e.Actor:
		return false
	case f.After != nil && e.CreatedAt.Before(*f.After):
		return false
	case f.Before != nil && !e.CreatedAt.Before(*f.Before):
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Timestamps are RFC 3339; malformed values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	str := func(key string) *string {
		if v := values.Get(key); v != "" {
			return &v
		}
		return nil
	}
	ts := func(key string) *time.Time {
		if v := values.Get(key); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				return &t
			}
		}
		return nil
	}

	f.Entity = str("entity")
	f.EntityID = str("entity_id")
	f.Action = str("action")
	f.Actor = str("actor")
	f.After = ts("after")
	f.Before = ts("before")
	return f
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e      Entry
		deltas []byte
	)
	err := s.Scan(
		&e.ID,
		&e.Entity,
		&e.EntityID,
		&e.Action,
		&e.Actor,
		&e.FromStatus,
		&e.ToStatus,
		&e.Detail,
		&deltas,
		&e.CreatedAt,
	)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(deltas, &e.Deltas); err != nil {
		return e, err
	}
	return e, nil
}
