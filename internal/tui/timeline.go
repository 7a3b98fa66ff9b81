package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mr-Dark-debug/yatter/internal/imageloader"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LogoutExecutor clears the stored session.
type LogoutExecutor interface {
	Execute(ctx context.Context) error
}

// listShare is the percentage of a wide terminal given to the list.
const listShare = 60

type (
	timelineStateMsg   PublicTimelineUiState
	timelineFetchedMsg struct{}
	imageLoadedMsg     imageloader.Result
	logoutDoneMsg      struct{ err error }
)

// PublicTimelinePage shows the public timeline. It observes the
// view-model's state stream and loads images only for rows on screen.
type PublicTimelinePage struct {
	ctx    context.Context
	vm     *PublicTimelineViewModel
	loader imageloader.Loader
	logout LogoutExecutor
	logger *slog.Logger

	sub <-chan PublicTimelineUiState
	ui  PublicTimelineUiState

	selected     int
	scroll       int
	mediaOffsets map[string]int

	images    loadedImages
	requested map[string]bool

	notice string

	width  int
	height int
}

// NewPublicTimelinePage creates the timeline screen around vm.
func NewPublicTimelinePage(ctx context.Context, vm *PublicTimelineViewModel, loader imageloader.Loader, logout LogoutExecutor, logger *slog.Logger) *PublicTimelinePage {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicTimelinePage{
		ctx:          ctx,
		vm:           vm,
		loader:       loader,
		logout:       logout,
		logger:       logger,
		ui:           EmptyPublicTimelineUiState(),
		mediaOffsets: make(map[string]int),
		images:       make(loadedImages),
		requested:    make(map[string]bool),
	}
}

// Init subscribes to the state stream for the lifetime of the screen
// context and starts the first load.
func (p *PublicTimelinePage) Init() tea.Cmd {
	sub, unsubscribe := p.vm.UiState().Subscribe()
	p.sub = sub
	go func() {
		<-p.ctx.Done()
		unsubscribe()
	}()

	ctx, vm := p.ctx, p.vm
	return tea.Batch(
		waitForTimelineState(sub),
		func() tea.Msg {
			vm.OnResume(ctx)
			return timelineFetchedMsg{}
		},
	)
}

// waitForTimelineState delivers the next state. A closed subscription
// yields nil, which bubbletea drops.
func waitForTimelineState(sub <-chan PublicTimelineUiState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-sub
		if !ok {
			return nil
		}
		return timelineStateMsg(s)
	}
}

func (p *PublicTimelinePage) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.ensureVisible()
		return p, p.loadVisibleImages()

	case timelineStateMsg:
		p.ui = PublicTimelineUiState(msg)
		p.selected = clamp(p.selected, 0, maxInt(0, len(p.ui.StatusList)-1))
		p.ensureVisible()
		return p, tea.Batch(waitForTimelineState(p.sub), p.loadVisibleImages())

	case timelineFetchedMsg:
		return p, nil

	case imageLoadedMsg:
		if msg.Err != nil {
			p.logger.Debug("image load failed",
				slog.String("url", msg.URL),
				slog.String("error", msg.Err.Error()))
		}
		p.images[msg.URL] = msg.Drawable
		return p, nil

	case logoutDoneMsg:
		if msg.err != nil {
			p.notice = "Logout failed: " + msg.err.Error()
			return p, nil
		}
		return p, Navigate(RouteLogin)

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *PublicTimelinePage) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	n := len(p.ui.StatusList)

	switch msg.String() {
	case "q":
		return p, tea.Quit

	case "j", "down":
		if p.selected < n-1 {
			p.selected++
			p.ensureVisible()
		}
		return p, p.loadVisibleImages()

	case "k", "up":
		if p.selected > 0 {
			p.selected--
			p.ensureVisible()
		}
		return p, p.loadVisibleImages()

	case "g", "home":
		p.selected = 0
		p.ensureVisible()
		return p, p.loadVisibleImages()

	case "G", "end":
		p.selected = maxInt(0, n-1)
		p.ensureVisible()
		return p, p.loadVisibleImages()

	case "h", "left":
		p.scrollMedia(-1)
		return p, p.loadVisibleImages()

	case "l", "right":
		p.scrollMedia(1)
		return p, p.loadVisibleImages()

	case "r":
		p.notice = ""
		ctx, vm := p.ctx, p.vm
		return p, func() tea.Msg {
			vm.OnRefresh(ctx)
			return timelineFetchedMsg{}
		}

	case "L":
		if p.logout == nil {
			return p, nil
		}
		ctx, logout := p.ctx, p.logout
		return p, func() tea.Msg {
			return logoutDoneMsg{err: logout.Execute(ctx)}
		}
	}
	return p, nil
}

func (p *PublicTimelinePage) selectedStatus() *StatusBindingModel {
	if p.selected < 0 || p.selected >= len(p.ui.StatusList) {
		return nil
	}
	return &p.ui.StatusList[p.selected]
}

// scrollMedia moves the media window of the selected status by delta,
// keeping the stored offset within the scrollable range.
func (p *PublicTimelinePage) scrollMedia(delta int) {
	s := p.selectedStatus()
	if s == nil || len(s.AttachmentMediaList) == 0 {
		return
	}
	start, _ := visibleMedia(len(s.AttachmentMediaList), p.mediaOffsets[s.ID]+delta, rowTextWidth(p.listWidth()))
	p.mediaOffsets[s.ID] = start
}

// ────────────────────────────────────────────────────────────
// Layout
// ────────────────────────────────────────────────────────────

func (p *PublicTimelinePage) wide() bool {
	return p.width >= detailMinWidth
}

func (p *PublicTimelinePage) listWidth() int {
	if p.wide() {
		return p.width * listShare / 100
	}
	return p.width
}

// bodyHeight is the height between header and footer.
func (p *PublicTimelinePage) bodyHeight() int {
	h := p.height - 2
	if p.ui.Err != nil {
		h--
	}
	return maxInt(1, h)
}

func (p *PublicTimelinePage) row(i int) string {
	s := p.ui.StatusList[i]
	return renderStatusRow(s, rowLayout{
		width:       p.listWidth(),
		mediaOffset: p.mediaOffsets[s.ID],
		selected:    i == p.selected,
	}, p.images)
}

// ensureVisible moves the scroll position so the selected row fits.
func (p *PublicTimelinePage) ensureVisible() {
	if len(p.ui.StatusList) == 0 || p.width == 0 {
		p.scroll = 0
		return
	}
	if p.selected < p.scroll {
		p.scroll = p.selected
		return
	}
	height := p.bodyHeight()
	for p.scroll < p.selected {
		used := 0
		for i := p.scroll; i <= p.selected; i++ {
			used += lipgloss.Height(p.row(i))
		}
		if used <= height {
			break
		}
		p.scroll++
	}
}

// visibleRows returns the half-open range of rows drawn on screen. The
// last one may be cut off.
func (p *PublicTimelinePage) visibleRows() (start, end int) {
	n := len(p.ui.StatusList)
	if n == 0 {
		return 0, 0
	}
	start = clamp(p.scroll, 0, n-1)
	height := p.bodyHeight()
	used := 0
	end = start
	for end < n && used < height {
		used += lipgloss.Height(p.row(end))
		end++
	}
	return start, end
}

// loadVisibleImages starts loads for the avatars and thumbnails of the
// rows on screen that were not requested yet.
func (p *PublicTimelinePage) loadVisibleImages() tea.Cmd {
	if p.loader == nil || p.width == 0 {
		return nil
	}
	start, end := p.visibleRows()
	textWidth := rowTextWidth(p.listWidth())

	var cmds []tea.Cmd
	for _, s := range p.ui.StatusList[start:end] {
		reqs := append([]imageloader.Request{avatarRequest(s.Avatar)},
			visibleMediaRequests(s.AttachmentMediaList, p.mediaOffsets[s.ID], textWidth)...)
		for _, req := range reqs {
			// Empty URLs keep their placeholder.
			if req.URL == "" || p.requested[req.URL] {
				continue
			}
			p.requested[req.URL] = true
			cmds = append(cmds, p.loadImage(req))
		}
	}
	return tea.Batch(cmds...)
}

func (p *PublicTimelinePage) loadImage(req imageloader.Request) tea.Cmd {
	ctx, loader := p.ctx, p.loader
	return func() tea.Msg {
		res := loader.Load(ctx, req)
		if ctx.Err() != nil {
			return nil
		}
		return imageLoadedMsg(res)
	}
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (p *PublicTimelinePage) View() string {
	if p.width == 0 {
		return "Initializing..."
	}

	count := ""
	if n := len(p.ui.StatusList); n > 0 {
		count = fmt.Sprintf("%d statuses", n)
	}
	header := renderHeader(p.width, "Public Timeline", count)

	height := p.bodyHeight()
	list := lipgloss.NewStyle().
		Width(p.listWidth()).
		Height(height).
		MaxHeight(height).
		Render(p.renderList())

	body := list
	if p.wide() {
		detail := renderDetailPanel(p.selectedStatus(), p.width-p.listWidth(), height)
		body = lipgloss.NewStyle().MaxHeight(height).Render(
			lipgloss.JoinHorizontal(lipgloss.Top, list, detail))
	}

	sections := []string{header, body}
	if p.ui.Err != nil {
		sections = append(sections, errorStyle.Render(
			truncateEnd("Error: "+singleLine(p.ui.Err.Error()), p.width)))
	}
	sections = append(sections, renderFooter(p.width, p.statusText(), []hint{
		{"j/k", "select"},
		{"h/l", "media"},
		{"r", "refresh"},
		{"L", "logout"},
		{"q", "quit"},
	}))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (p *PublicTimelinePage) renderList() string {
	if len(p.ui.StatusList) == 0 {
		if p.ui.IsLoading {
			return emptyStateStyle.Render("Loading timeline…")
		}
		return emptyStateStyle.Render("No statuses yet. Press r to refresh.")
	}

	start, end := p.visibleRows()
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, p.row(i))
	}
	return strings.Join(rows, "\n")
}

func (p *PublicTimelinePage) statusText() string {
	switch {
	case p.ui.IsLoading:
		return statusBusyStyle.Render("Loading…")
	case p.ui.IsRefreshing:
		return statusBusyStyle.Render("Refreshing…")
	case p.notice != "":
		return errorStyle.Render(p.notice)
	case len(p.ui.StatusList) > 0:
		return statusOkStyle.Render(fmt.Sprintf("%d/%d", p.selected+1, len(p.ui.StatusList)))
	}
	return statusStyle.Render("")
}
