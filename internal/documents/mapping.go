package documents

import (
	"net/url"
	"time"

	"github.com/JaimeStill/courier/pkg/query"
	"github.com/JaimeStill/courier/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("barcode", "Barcode").
	Project("type", "Type").
	Project("subject", "Subject").
	Project("sender", "Sender").
	Project("receiver", "Receiver").
	Project("priority", "Priority").
	Project("document_date", "DocumentDate").
	Project("notes", "Notes").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters narrows a document listing. Nil fields are ignored.
type Filters struct {
	Type     *string    `json:"type,omitempty"`
	Priority *string    `json:"priority,omitempty"`
	Sender   *string    `json:"sender,omitempty"`
	Receiver *string    `json:"receiver,omitempty"`
	Barcode  *string    `json:"barcode,omitempty"`
	After    *time.Time `json:"after,omitempty"`
	Before   *time.Time `json:"before,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Type", f.Type).
		WhereEquals("Priority", f.Priority).
		WhereContains("Sender", f.Sender).
		WhereContains("Receiver", f.Receiver).
		WherePrefix("Barcode", f.Barcode).
		WhereAfter("CreatedAt", f.After).
		WhereBefore("CreatedAt", f.Before)
}

// FiltersFromQuery extracts filter values from URL query parameters.
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

	f.Type = str("type")
	f.Priority = str("priority")
	f.Sender = str("sender")
	f.Receiver = str("receiver")
	f.Barcode = str("barcode")
	f.After = ts("after")
	f.Before = ts("before")
	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Barcode,
		&d.Type,
		&d.Subject,
		&d.Sender,
		&d.Receiver,
		&d.Priority,
		&d.DocumentDate,
		&d.Notes,
		&d.CreatedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

const timelineColumns = "id, barcode, message, actor, created_at"

func scanTimelineEntry(s repository.Scanner) (TimelineEntry, error) {
	var e TimelineEntry
	err := s.Scan(&e.ID, &e.Barcode, &e.Message, &e.Actor, &e.CreatedAt)
	return e, err
}
