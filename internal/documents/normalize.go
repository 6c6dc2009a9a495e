package documents

import (
	"encoding/json"
	"strings"
	"time"
)

// NormalizeBarcode canonicalizes scanner or keyboard input.
func NormalizeBarcode(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// ParseType accepts the canonical names and common producer spellings.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming", "in", "وارد":
		return Incoming, nil
	case "outgoing", "out", "صادر":
		return Outgoing, nil
	default:
		return "", ErrValidationFailed
	}
}

// ParsePriority accepts canonical names or Arabic labels. Empty input is normal.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriorityNormal, nil
	}
	for p, label := range priorityLabels {
		if s == string(p) || s == label {
			return p, nil
		}
	}
	return "", ErrValidationFailed
}

// CreateCommand is the canonical shape of a new document. Its JSON decoding
// is the single place producer-specific field names are reconciled.
type CreateCommand struct {
	Type         Type
	Subject      string
	Sender       string
	Receiver     string
	Priority     Priority
	DocumentDate *time.Time
	Notes        string
}

type rawCreate struct {
	Type         string     `json:"type"`
	Subject      string     `json:"subject"`
	Title        string     `json:"title"`
	Sender       string     `json:"sender"`
	From         string     `json:"from"`
	Receiver     string     `json:"receiver"`
	Recipient    string     `json:"recipient"`
	To           string     `json:"to"`
	Priority     string     `json:"priority"`
	DocumentDate *time.Time `json:"document_date"`
	Date         *time.Time `json:"date"`
	Notes        string     `json:"notes"`
}

// UnmarshalJSON decodes any known producer shape into the canonical command.
func (c *CreateCommand) UnmarshalJSON(data []byte) error {
	var raw rawCreate
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	typ, err := ParseType(raw.Type)
	if err != nil {
		return err
	}
	priority, err := ParsePriority(raw.Priority)
	if err != nil {
		return err
	}

	*c = CreateCommand{
		Type:         typ,
		Subject:      first(raw.Subject, raw.Title),
		Sender:       first(raw.Sender, raw.From),
		Receiver:     first(raw.Receiver, raw.Recipient, raw.To),
		Priority:     priority,
		DocumentDate: raw.DocumentDate,
		Notes:        strings.TrimSpace(raw.Notes),
	}
	if c.DocumentDate == nil {
		c.DocumentDate = raw.Date
	}
	return nil
}

func (c CreateCommand) validate() error {
	if c.Type != Incoming && c.Type != Outgoing {
		return ErrValidationFailed
	}
	if c.Subject == "" {
		return ErrValidationFailed
	}
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
