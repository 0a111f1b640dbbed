// Package tui is a terminal browser for the public gallery.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/countup"
	"github.com/artpar/portfolio/internal/estimate"
	"github.com/artpar/portfolio/internal/lightbox"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/artpar/portfolio/internal/star"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MillionViewsLabel marks the achievement shown abbreviated once counted.
const MillionViewsLabel = "Views Generated"

// CounterStagger delays each achievement counter after the previous one.
const CounterStagger = 200 * time.Millisecond

// notifyFor is how long a notification stays on screen.
const notifyFor = 2 * time.Second

// Source is the content the browser reads and stars.
type Source interface {
	Categories(ctx context.Context) ([]content.Category, error)
	Items(ctx context.Context, q portfolio.GalleryQuery) (portfolio.Gallery, error)
	Achievements(ctx context.Context) ([]content.Achievement, error)
	Progress(ctx context.Context) (portfolio.ProgressEstimate, error)
	ToggleStar(ctx context.Context, itemID string) (portfolio.StarResult, error)
}

type loadedMsg struct {
	categories   []content.Category
	gallery      portfolio.Gallery
	achievements []content.Achievement
	progress     portfolio.ProgressEstimate
	err          error
}

type galleryMsg struct {
	seq     int
	gallery portfolio.Gallery
	err     error
}

type starMsg struct {
	result portfolio.StarResult
	err    error
}

// frameMsg is one counter tick. Ticks from an earlier load carry an
// older gen and are dropped.
type frameMsg struct {
	gen int
	at  time.Time
}

type clearNotificationMsg struct{}

type counter struct {
	value     int64
	done      bool
	formatted bool
}

// Option configures a Browser.
type Option func(*Browser)

// WithClock sets the time source used for counters and banners.
func WithClock(now func() time.Time) Option {
	return func(b *Browser) {
		b.now = now
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(b *Browser) {
		b.copy = write
	}
}

// Browser is the gallery model.
type Browser struct {
	ctx    context.Context
	source Source
	styles Styles
	now    func() time.Time
	copy   func(string) error

	mode   Mode
	width  int
	height int
	search textinput.Model

	categories []content.Category
	catIndex   int
	gallery    portfolio.Gallery
	seq        int
	cursor     int
	offset     int

	scroll lightbox.ScrollState
	viewer *lightbox.Navigator

	achievements []content.Achievement
	counters     []counter
	animStart    time.Time
	animating    bool
	animGen      int

	progress     portfolio.ProgressEstimate
	notification string
	err          error
}

// NewBrowser creates a browser over source.
func NewBrowser(ctx context.Context, source Source, opts ...Option) *Browser {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search by category or tag"
	ti.CharLimit = 128
	ti.Cursor.SetMode(cursor.CursorStatic)

	b := &Browser{
		ctx:    ctx,
		source: source,
		styles: DefaultStyles(),
		now:    time.Now,
		copy:   clipboard.WriteAll,
		search: ti,
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init loads the initial content.
func (b *Browser) Init() tea.Cmd {
	return b.loadCmd()
}

// Update handles messages.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.search.Width = max(msg.Width-4, 10)
		b.clampCursor()
		return b, nil

	case loadedMsg:
		if msg.err != nil {
			b.err = msg.err
			return b, nil
		}
		b.err = nil
		b.categories = msg.categories
		b.setGallery(msg.gallery)
		b.progress = msg.progress
		b.achievements = msg.achievements
		b.counters = make([]counter, len(msg.achievements))
		b.animGen++
		b.animStart = b.now()
		b.animating = len(msg.achievements) > 0
		if b.animating {
			return b, b.frameCmd()
		}
		return b, nil

	case galleryMsg:
		if msg.seq != b.seq {
			return b, nil
		}
		if msg.err != nil {
			b.err = msg.err
			return b, nil
		}
		b.err = nil
		b.setGallery(msg.gallery)
		return b, nil

	case starMsg:
		if msg.err != nil {
			return b, b.notify(errorText(msg.err))
		}
		b.applyStar(msg.result)
		verb := "Unstarred"
		if msg.result.Item.IsStarred {
			verb = "Starred"
		}
		text := fmt.Sprintf("%s (%d/%d in category)", verb, msg.result.StarredInCategory, star.MaxPerCategory)
		return b, tea.Batch(b.notify(text), b.galleryCmd())

	case frameMsg:
		if msg.gen != b.animGen {
			return b, nil
		}
		return b, b.advanceCounters(msg.at)

	case clearNotificationMsg:
		b.notification = ""
		return b, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return b, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			b.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			b.moveCursor(1)
		}
		return b, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return b, tea.Quit
		}
		switch b.mode {
		case ModeSearch:
			return b.updateSearch(msg)
		case ModeLightbox:
			return b.updateLightbox(msg)
		default:
			return b.updateBrowse(msg)
		}
	}
	return b, nil
}

func (b *Browser) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return b, tea.Quit
	case "/":
		b.mode = ModeSearch
		return b, b.search.Focus()
	case "tab":
		b.cycleCategory(1)
		return b, b.galleryCmd()
	case "shift+tab":
		b.cycleCategory(-1)
		return b, b.galleryCmd()
	case "up", "k":
		b.moveCursor(-1)
	case "down", "j":
		b.moveCursor(1)
	case "enter":
		b.openViewer()
	case "s":
		if it, ok := b.selected(); ok {
			return b, b.starCmd(it.ID)
		}
	case "r":
		return b, b.loadCmd()
	}
	return b, nil
}

func (b *Browser) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		b.search.Blur()
		b.mode = ModeBrowse
		return b, nil
	}

	before := b.search.Value()
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	if b.search.Value() == before {
		return b, cmd
	}
	return b, tea.Batch(cmd, b.galleryCmd())
}

func (b *Browser) updateLightbox(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "y" {
		url := b.viewer.Current().Src
		if err := b.copy(url); err != nil {
			return b, b.notify("✗ Copy failed")
		}
		return b, b.notify("✓ Copied " + url)
	}

	if b.viewer.HandleKey(msg.String()) == lightbox.ActionClose {
		b.closeViewer()
	}
	return b, nil
}

func (b *Browser) openViewer() {
	items := b.gallery.Items
	if len(items) == 0 {
		return
	}
	media := make([]lightbox.Media, len(items))
	for i, it := range items {
		media[i] = lightbox.Media{
			Src:   it.FileURL,
			Alt:   strings.Join(portfolio.ItemFields(it), " "),
			Title: strings.Join(it.TagNames(), ", "),
		}
	}
	viewer, err := lightbox.Open(media, b.cursor, &b.scroll)
	if err != nil {
		b.err = err
		return
	}
	b.viewer = viewer
	b.mode = ModeLightbox
}

func (b *Browser) closeViewer() {
	b.cursor = b.viewer.Index()
	b.viewer.Close()
	b.viewer = nil
	b.mode = ModeBrowse
	b.clampCursor()
}

func (b *Browser) cycleCategory(step int) {
	n := len(b.categories) + 1
	b.catIndex = ((b.catIndex+step)%n + n) % n
}

// moveCursor does nothing while the lightbox holds the scroll lock.
func (b *Browser) moveCursor(step int) {
	if b.scroll.Locked() {
		return
	}
	b.cursor += step
	b.clampCursor()
}

func (b *Browser) clampCursor() {
	b.cursor = min(max(b.cursor, 0), max(len(b.gallery.Items)-1, 0))
	rows := b.listRows()
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+rows {
		b.offset = b.cursor - rows + 1
	}
	b.offset = max(b.offset, 0)
}

func (b *Browser) setGallery(g portfolio.Gallery) {
	b.gallery = g
	b.clampCursor()
}

func (b *Browser) applyStar(res portfolio.StarResult) {
	for i := range b.gallery.Items {
		if b.gallery.Items[i].ID == res.Item.ID {
			b.gallery.Items[i].IsStarred = res.Item.IsStarred
		}
	}
	if b.gallery.StarredCounts != nil {
		b.gallery.StarredCounts[res.Item.CategoryID] = res.StarredInCategory
	}
}

func (b *Browser) selected() (content.Item, bool) {
	if b.cursor < 0 || b.cursor >= len(b.gallery.Items) {
		return content.Item{}, false
	}
	return b.gallery.Items[b.cursor], true
}

// advanceCounters recomputes every counter at the given time and keeps
// ticking until all have finished.
func (b *Browser) advanceCounters(at time.Time) tea.Cmd {
	if !b.animating {
		return nil
	}
	elapsed := at.Sub(b.animStart)
	pending := false
	for i, a := range b.achievements {
		delay := time.Duration(i) * CounterStagger
		value, done := countup.Frame(a.Number, elapsed, delay, countup.DefaultDuration)
		c := counter{value: value, done: done}
		if a.Label == MillionViewsLabel {
			c.formatted = done && elapsed >= delay+countup.DefaultDuration+countup.FormatDelay
			pending = pending || !c.formatted
		}
		pending = pending || !done
		b.counters[i] = c
	}
	b.animating = pending
	if pending {
		return b.frameCmd()
	}
	return nil
}

func (b *Browser) notify(text string) tea.Cmd {
	b.notification = text
	return tea.Tick(notifyFor, func(time.Time) tea.Msg {
		return clearNotificationMsg{}
	})
}

func (b *Browser) query() portfolio.GalleryQuery {
	q := portfolio.GalleryQuery{Category: portfolio.AllCategories, Query: b.search.Value()}
	if b.catIndex > 0 && b.catIndex <= len(b.categories) {
		q.Category = b.categories[b.catIndex-1].Slug
	}
	return q
}

func (b *Browser) loadCmd() tea.Cmd {
	ctx, source, q := b.ctx, b.source, b.query()
	return func() tea.Msg {
		var msg loadedMsg
		if msg.categories, msg.err = source.Categories(ctx); msg.err != nil {
			return msg
		}
		if msg.gallery, msg.err = source.Items(ctx, q); msg.err != nil {
			return msg
		}
		if msg.achievements, msg.err = source.Achievements(ctx); msg.err != nil {
			return msg
		}
		msg.progress, msg.err = source.Progress(ctx)
		return msg
	}
}

func (b *Browser) galleryCmd() tea.Cmd {
	b.seq++
	ctx, source, q, seq := b.ctx, b.source, b.query(), b.seq
	return func() tea.Msg {
		g, err := source.Items(ctx, q)
		return galleryMsg{seq: seq, gallery: g, err: err}
	}
}

func (b *Browser) starCmd(itemID string) tea.Cmd {
	ctx, source := b.ctx, b.source
	return func() tea.Msg {
		res, err := source.ToggleStar(ctx, itemID)
		return starMsg{result: res, err: err}
	}
}

func (b *Browser) frameCmd() tea.Cmd {
	gen := b.animGen
	return tea.Tick(countup.DefaultInterval, func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, at: t}
	})
}

func errorText(err error) string {
	var op *portfolio.OpError
	switch {
	case errors.Is(err, star.ErrLimitReached):
		return fmt.Sprintf("You can only star up to %d items per category", star.MaxPerCategory)
	case errors.As(err, &op):
		return op.Message()
	default:
		return err.Error()
	}
}

// Mode returns the current key mode.
func (b *Browser) Mode() Mode {
	return b.mode
}

// Cursor returns the index of the selected item.
func (b *Browser) Cursor() int {
	return b.cursor
}

// Gallery returns the items on screen.
func (b *Browser) Gallery() portfolio.Gallery {
	return b.gallery
}

// Notification returns the transient status text.
func (b *Browser) Notification() string {
	return b.notification
}

// listRows is how many items fit below the header.
func (b *Browser) listRows() int {
	return max(b.height-9, 3)
}

// View renders the browser.
func (b *Browser) View() string {
	if b.mode == ModeLightbox && b.viewer != nil {
		return b.viewLightbox()
	}

	var sb strings.Builder
	sb.WriteString(b.styles.Title.Render("Portfolio"))
	sb.WriteString("\n")
	sb.WriteString(b.viewBanner())
	sb.WriteString("\n")
	sb.WriteString(b.viewCounters())
	sb.WriteString("\n")
	sb.WriteString(b.viewTabs())
	sb.WriteString("\n")
	sb.WriteString(b.search.View())
	sb.WriteString("\n\n")
	sb.WriteString(b.viewItems())
	sb.WriteString("\n")
	sb.WriteString(b.viewStatus())
	return sb.String()
}

func (b *Browser) viewBanner() string {
	est := b.progress.Estimate
	if est.TimeLabel == "" {
		est = estimate.Tier(int(b.progress.ThumbnailsInProgress))
	}
	text := fmt.Sprintf("⏱ %s · %s · %d in progress", est.TimeLabel, est.Status, b.progress.ThumbnailsInProgress)
	if !b.progress.UpdatedAt.IsZero() {
		text += " · updated " + strings.ToLower(estimate.LastUpdated(b.now(), b.progress.UpdatedAt))
	}
	return b.styles.Banner.Render(text)
}

func (b *Browser) viewCounters() string {
	parts := make([]string, 0, len(b.achievements))
	for i, a := range b.achievements {
		var c counter
		if i < len(b.counters) {
			c = b.counters[i]
		}
		suffix := a.Suffix
		if c.formatted {
			suffix = ""
		}
		value := b.styles.Counter.Render(countup.Display(c.value, suffix, c.formatted))
		parts = append(parts, strings.TrimSpace(a.Icon+" "+value+" "+b.styles.Muted.Render(a.Label)))
	}
	return strings.Join(parts, "   ")
}

func (b *Browser) viewTabs() string {
	tabs := make([]string, 0, len(b.categories)+1)
	names := []string{"All"}
	for _, c := range b.categories {
		names = append(names, c.Name)
	}
	for i, name := range names {
		style := b.styles.Tab
		if i == b.catIndex {
			style = b.styles.TabOn
		}
		tabs = append(tabs, style.Render(name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (b *Browser) viewItems() string {
	if b.err != nil {
		return b.styles.Error.Render(errorText(b.err))
	}
	if len(b.gallery.Items) == 0 {
		msg := b.gallery.Message
		if msg == "" {
			msg = "No items available"
		}
		return b.styles.Muted.Render(msg)
	}

	rows := b.listRows()
	end := min(b.offset+rows, len(b.gallery.Items))
	lines := make([]string, 0, end-b.offset)
	for i := b.offset; i < end; i++ {
		it := b.gallery.Items[i]
		marker := "  "
		if it.IsStarred {
			marker = b.styles.Starred.Render("★ ")
		}
		category := ""
		if it.Category != nil {
			category = it.Category.Name
		}
		line := fmt.Sprintf("%s [%s] %s", PadRight(category, 14), it.FileType, strings.Join(it.TagNames(), ", "))
		line = Truncate(line, max(b.width-6, 10))
		if i == b.cursor {
			line = b.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, marker+line)
	}
	return strings.Join(lines, "\n")
}

func (b *Browser) viewStatus() string {
	help := "/ search · tab category · enter view · s star · r reload · q quit"
	if b.mode == ModeSearch {
		help = "enter/esc done"
	}
	status := b.styles.Muted.Render(fmt.Sprintf("%s · %d items · %s", b.mode, len(b.gallery.Items), help))
	if b.notification != "" {
		status += "\n" + b.styles.Notice.Render(b.notification)
	}
	return status
}

func (b *Browser) viewLightbox() string {
	m := b.viewer.Current()
	body := fmt.Sprintf("%s\n\n%s\n%s\n\n%d / %d",
		b.styles.Title.Render(m.Alt),
		m.Src,
		b.styles.Muted.Render(m.Title),
		b.viewer.Index()+1, b.viewer.Len())
	out := b.styles.Viewer.Render(body)
	out += "\n" + b.styles.Muted.Render("← previous · → next · y copy url · esc close")
	if b.notification != "" {
		out += "\n" + b.styles.Notice.Render(b.notification)
	}
	return out
}
