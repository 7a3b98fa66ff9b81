package tui

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/Mr-Dark-debug/yatter/internal/model"
	"github.com/Mr-Dark-debug/yatter/internal/state"
)

// TimelineRepository is the data source of the timeline screen.
type TimelineRepository interface {
	FetchPublicTimeline(ctx context.Context) ([]model.Status, error)
	CachedPublicTimeline(ctx context.Context) ([]model.Status, error)
}

// PublicTimelineViewModel owns the timeline screen state. Its methods
// block on the network and are meant to run inside tea.Cmd goroutines;
// the screen observes the result through UiState.
type PublicTimelineViewModel struct {
	repo     TimelineRepository
	state    *state.Flow[PublicTimelineUiState]
	inFlight atomic.Bool
	logger   *slog.Logger
}

// NewPublicTimelineViewModel creates a view-model in the empty state.
func NewPublicTimelineViewModel(repo TimelineRepository, logger *slog.Logger) *PublicTimelineViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicTimelineViewModel{
		repo:   repo,
		state:  state.NewFlow(EmptyPublicTimelineUiState()),
		logger: logger,
	}
}

// UiState is the read-only state stream.
func (vm *PublicTimelineViewModel) UiState() state.Reader[PublicTimelineUiState] {
	return vm.state.ReadOnly()
}

// OnResume shows the cached timeline if nothing is on screen yet, then
// fetches with IsLoading set.
func (vm *PublicTimelineViewModel) OnResume(ctx context.Context) {
	if len(vm.state.Value().StatusList) == 0 {
		cached, err := vm.repo.CachedPublicTimeline(ctx)
		if err != nil {
			vm.logger.Warn("reading cached timeline failed", slog.String("error", err.Error()))
		} else if len(cached) > 0 {
			list := toStatusBindingModels(cached)
			vm.state.Update(func(s PublicTimelineUiState) PublicTimelineUiState {
				if len(s.StatusList) == 0 {
					s.StatusList = list
				}
				return s
			})
		}
	}

	vm.fetch(ctx, func(s *PublicTimelineUiState, on bool) { s.IsLoading = on })
}

// OnRefresh fetches with IsRefreshing set.
func (vm *PublicTimelineViewModel) OnRefresh(ctx context.Context) {
	vm.fetch(ctx, func(s *PublicTimelineUiState, on bool) { s.IsRefreshing = on })
}

// fetch loads the timeline, toggling one flag around the call. A fetch
// already in flight makes this a no-op. On failure the current list is
// kept and Err is set.
func (vm *PublicTimelineViewModel) fetch(ctx context.Context, flag func(*PublicTimelineUiState, bool)) {
	if !vm.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer vm.inFlight.Store(false)

	vm.state.Update(func(s PublicTimelineUiState) PublicTimelineUiState {
		flag(&s, true)
		return s
	})

	statuses, err := vm.repo.FetchPublicTimeline(ctx)
	if err != nil {
		vm.logger.Error("fetching public timeline failed", slog.String("error", err.Error()))
		vm.state.Update(func(s PublicTimelineUiState) PublicTimelineUiState {
			s.IsLoading = false
			s.IsRefreshing = false
			s.Err = err
			return s
		})
		return
	}

	list := toStatusBindingModels(statuses)
	vm.state.Update(func(s PublicTimelineUiState) PublicTimelineUiState {
		return PublicTimelineUiState{StatusList: list}
	})
}
