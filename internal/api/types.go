package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

// flexID accepts ids encoded as JSON numbers or strings.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

// flexTime accepts RFC 3339 timestamps with or without a zone, as the
// server writes "create_at" from a MySQL DATETIME.
type flexTime time.Time

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = flexTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

type accountJSON struct {
	ID          flexID   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Avatar      string   `json:"avatar"`
	Header      string   `json:"header"`
	Note        string   `json:"note"`
	CreateAt    flexTime `json:"create_at"`
}

type mediaJSON struct {
	ID          flexID `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type statusJSON struct {
	ID               flexID      `json:"id"`
	Account          accountJSON `json:"account"`
	Content          string      `json:"content"`
	CreateAt         flexTime    `json:"create_at"`
	MediaAttachments []mediaJSON `json:"media_attachments"`
}

func (s statusJSON) toModel() model.Status {
	media := make([]model.Media, 0, len(s.MediaAttachments))
	for _, m := range s.MediaAttachments {
		media = append(media, model.Media{
			ID:          string(m.ID),
			Type:        m.Type,
			URL:         m.URL,
			Description: m.Description,
		})
	}
	return model.Status{
		ID: string(s.ID),
		Account: model.Account{
			ID:          string(s.Account.ID),
			Username:    s.Account.Username,
			DisplayName: s.Account.DisplayName,
			Avatar:      s.Account.Avatar,
			Header:      s.Account.Header,
			Note:        s.Account.Note,
			CreatedAt:   time.Time(s.Account.CreateAt),
		},
		Content:          s.Content,
		CreatedAt:        time.Time(s.CreateAt),
		MediaAttachments: media,
	}
}
