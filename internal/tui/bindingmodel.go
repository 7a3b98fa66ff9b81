package tui

import "github.com/Mr-Dark-debug/yatter/internal/model"

// StatusBindingModel is what a status row renders. Values are never
// mutated after construction; a new list replaces the old one.
type StatusBindingModel struct {
	ID                  string
	DisplayName         string
	Username            string
	Avatar              string
	Content             string
	AttachmentMediaList []MediaBindingModel
}

// MediaBindingModel is one attachment of a StatusBindingModel.
type MediaBindingModel struct {
	ID          string
	Type        string
	URL         string
	Description string
}

// PublicTimelineUiState is the whole state of the public timeline screen.
type PublicTimelineUiState struct {
	StatusList   []StatusBindingModel
	IsLoading    bool
	IsRefreshing bool

	// Err is the last fetch failure, cleared by the next success.
	Err error
}

// EmptyPublicTimelineUiState is the initial state: no statuses, idle.
func EmptyPublicTimelineUiState() PublicTimelineUiState {
	return PublicTimelineUiState{StatusList: []StatusBindingModel{}}
}

func toStatusBindingModel(s model.Status) StatusBindingModel {
	displayName := s.Account.DisplayName
	if displayName == "" {
		displayName = s.Account.Username
	}

	media := make([]MediaBindingModel, 0, len(s.MediaAttachments))
	for _, m := range s.MediaAttachments {
		media = append(media, MediaBindingModel{
			ID:          m.ID,
			Type:        m.Type,
			URL:         m.URL,
			Description: m.Description,
		})
	}

	return StatusBindingModel{
		ID:                  s.ID,
		DisplayName:         displayName,
		Username:            s.Account.Username,
		Avatar:              s.Account.Avatar,
		Content:             s.Content,
		AttachmentMediaList: media,
	}
}

func toStatusBindingModels(statuses []model.Status) []StatusBindingModel {
	out := make([]StatusBindingModel, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toStatusBindingModel(s))
	}
	return out
}
