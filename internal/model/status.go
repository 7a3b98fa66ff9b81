// Package model holds the Yatter domain records shared by the API client,
// the local store and the TUI converters.
package model

import "time"

// Account is the author of a status.
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar"`
	Header      string    `json:"header,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Status is a single post on a timeline.
type Status struct {
	ID               string    `json:"id"`
	Account          Account   `json:"account"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
	MediaAttachments []Media   `json:"media_attachments"`
}

// Media is an attachment of a status. Type is "image" for every
// attachment the server currently produces.
type Media struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// TimelineQuery narrows a public timeline request. Zero values are omitted.
type TimelineQuery struct {
	OnlyMedia bool
	MaxID     string
	SinceID   string
	Limit     int
}

// SyncRun records one background timeline synchronisation.
type SyncRun struct {
	RunID       string `json:"run_id"`
	StartedAt   int64  `json:"started_at"`
	FinishedAt  int64  `json:"finished_at"`
	StatusCount int    `json:"status_count"`
	Error       string `json:"error,omitempty"`
}
