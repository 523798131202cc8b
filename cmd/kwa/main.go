// Command kwa is a runnable Gio chat client demonstrating scroll.Engine
// driving a multi-feed, infinitely-scrollable message list - one
// history feed per demo channel, plus a shared outbox feed for
// locally-queued outgoing sends.
package main

import (
	"context"
	"flag"
	"image"
	"os"

	"gioui.org/app"
	"gioui.org/gesture"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"gioui.org/x/component"

	"github.com/andrewbaxter/kwa/async"
	kwadebug "github.com/andrewbaxter/kwa/debug"
	"github.com/andrewbaxter/kwa/feeds"
	"github.com/andrewbaxter/kwa/feeds/outboxdb"
	"github.com/andrewbaxter/kwa/feeds/sqlstore"
	"github.com/andrewbaxter/kwa/feeds/transport"
	kwaprofile "github.com/andrewbaxter/kwa/profile"
	"github.com/andrewbaxter/kwa/scroll"
	chatwidget "github.com/andrewbaxter/kwa/widget"
	chatmaterial "github.com/andrewbaxter/kwa/widget/material"
	"github.com/andrewbaxter/kwa/widget/plato"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/profile"
)

var demoChannels = []string{"general", "random"}

// rowTheme selects which row-rendering package draws the realized
// window; both are complete, independent presentations of the same
// chatwidget.Row/Message interaction state.
type rowTheme string

const (
	themeMaterial rowTheme = "material"
	themePlato    rowTheme = "plato"
)

func main() {
	configPath := flag.String("config", "kwa.hcl", "path to an HCL config file")
	doProfile := flag.Bool("profile", false, "enable CPU profiling for this run")
	debugOutline := flag.Bool("debug-outline", false, "outline each realized row for layout debugging")
	theme := flag.String("theme", string(themeMaterial), "row rendering theme: material or plato")
	flag.Parse()

	prof := &kwaprofile.Profiler{Starter: profile.CPUProfile}
	if *doProfile {
		prof.Start()
		defer prof.Stop()
	}

	log := hclog.New(&hclog.LoggerOptions{Name: "kwa", Level: hclog.Info})

	cfg, fc, err := loadConfig(*configPath)
	if err != nil {
		log.Error("loading config", "error", err)
		os.Exit(1)
	}

	store, err := sqlstore.Open(fc.Database)
	if err != nil {
		log.Error("opening message store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	obdb, err := outboxdb.Open(fc.OutboxDatabase)
	if err != nil {
		log.Error("opening outbox store", "error", err)
		os.Exit(1)
	}
	defer obdb.Close()

	if empty, err := storeIsEmpty(store); err != nil {
		log.Warn("checking demo store", "error", err)
	} else if empty {
		log.Info("seeding demo history")
		for _, ch := range demoChannels {
			if err := seedDemoHistory(context.Background(), store, ch, 2000); err != nil {
				log.Warn("seeding demo channel", "channel", ch, "error", err)
			}
		}
	}

	sched := &async.FixedWorkerPool{Workers: 4}
	a := newApp(log, cfg, fc, store, obdb, sched)
	a.debugOutline = *debugOutline
	a.theme = rowTheme(*theme)

	go func() {
		if err := a.run(); err != nil {
			log.Error("window closed with error", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

// storeIsEmpty reports whether the demo message store has no history
// yet for the first demo channel, used to decide whether to seed
// synthetic data on first run.
func storeIsEmpty(store *sqlstore.Store) (bool, error) {
	msgs, _, err := store.LoadBefore(context.Background(), demoChannels[0], feeds.MessageId(1<<62), 1)
	if err != nil {
		return false, err
	}
	return len(msgs) == 0, nil
}

// rowCache holds per-entry Gio widget state that must persist across
// frames (click/menu interaction state), pruned to the currently
// realized set after each layout pass.
type rowCache struct {
	rows  map[feeds.MessageId]*chatwidget.Row
	menus map[feeds.MessageId]*component.MenuState
}

func newRowCache() *rowCache {
	return &rowCache{
		rows:  map[feeds.MessageId]*chatwidget.Row{},
		menus: map[feeds.MessageId]*component.MenuState{},
	}
}

func (c *rowCache) get(id feeds.MessageId) (*chatwidget.Row, *component.MenuState) {
	row, ok := c.rows[id]
	if !ok {
		row = &chatwidget.Row{}
		c.rows[id] = row
	}
	menu, ok := c.menus[id]
	if !ok {
		menu = &component.MenuState{}
		c.menus[id] = menu
	}
	return row, menu
}

func (c *rowCache) prune(keep map[feeds.MessageId]struct{}) {
	for id := range c.rows {
		if _, ok := keep[id]; !ok {
			delete(c.rows, id)
			delete(c.menus, id)
		}
	}
}

type kwaApp struct {
	log   hclog.Logger
	cfg   scroll.EngineConfig
	store *sqlstore.Store
	obdb  *outboxdb.DB
	sched async.Scheduler

	engine   *scroll.Engine[feeds.MessageId]
	outbox   *feeds.OutboxFeed
	channels map[string]*feeds.ChannelFeed
	rows     *rowCache
	th       *material.Theme
	wheel    gesture.Scroll

	debugOutline bool
	theme        rowTheme
}

func newApp(log hclog.Logger, cfg scroll.EngineConfig, fc fileConfig, store *sqlstore.Store, obdb *outboxdb.DB, sched async.Scheduler) *kwaApp {
	a := &kwaApp{
		log:      log,
		cfg:      cfg,
		store:    store,
		obdb:     obdb,
		sched:    sched,
		channels: map[string]*feeds.ChannelFeed{},
		rows:     newRowCache(),
		th:       material.NewTheme(),
	}

	a.engine = scroll.New[feeds.MessageId](cfg, feeds.Less)
	handle := a.engine.Handle()

	for _, ch := range demoChannels {
		cf := feeds.NewChannelFeed(ch, store, sched, handle)
		a.channels[ch] = cf
		a.engine.AddFeed(cf)
	}

	a.outbox = feeds.NewOutboxFeed(obdb, demoSender{}, handle)
	a.engine.AddFeed(a.outbox)

	if pending, err := obdb.LoadAll(context.Background()); err != nil {
		log.Warn("loading pending outbox entries", "error", err)
	} else if len(pending) > 0 {
		log.Info("recovered pending outbox entries", "count", len(pending))
	}

	if fc.ServerURL != "" {
		client := transport.NewClient(fc.ServerURL)
		for ch, cf := range a.channels {
			client.RegisterChannel(ch, cf)
		}
		go func() {
			if err := client.Run(context.Background()); err != nil {
				log.Warn("transport stopped", "error", err)
			}
		}()
	}

	a.engine.Jump(feeds.MessageId(1), scroll.AlignEnd)

	return a
}

func (a *kwaApp) run() error {
	w := app.NewWindow(
		app.Title("kwa"),
		app.Size(unit.Dp(480), unit.Dp(800)),
	)
	defer a.engine.Close()

	var ops op.Ops
	for {
		e := <-w.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)
			a.engine.Resize(float64(gtx.Constraints.Max.Y))
			a.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (a *kwaApp) layout(gtx layout.Context) layout.Dimensions {
	snap := a.engine.Snapshot()
	keep := make(map[feeds.MessageId]struct{}, len(snap.Real))

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexible(1, func(gtx layout.Context) layout.Dimensions {
			return a.layoutRows(gtx, snap, keep)
		}),
	)
}

// layoutRows draws the realized window top-to-bottom and feeds the
// scroll wheel and each row's measured height back to the engine,
// mirroring the role gio's own widget.List plays for a single list -
// here driven by scroll.Engine's multi-feed realized window instead.
func (a *kwaApp) layoutRows(gtx layout.Context, snap scroll.Snapshot[feeds.MessageId], keep map[feeds.MessageId]struct{}) layout.Dimensions {
	defer clip.Rect(image.Rectangle{Max: gtx.Constraints.Max}).Push(gtx.Ops).Pop()
	a.wheel.Add(gtx.Ops)
	if delta := a.wheel.Scroll(gtx.Metric, gtx, gtx.Now, gesture.Vertical); delta != 0 {
		a.engine.Scroll(float64(delta))
	}

	var totalHeight int
	for _, re := range snap.Real {
		if db, ok := re.Entry.(feeds.DateBoundary); ok {
			trans := op.Offset(image.Point{Y: totalHeight}).Push(gtx.Ops)
			dims := chatmaterial.DateSeparator(a.th, db.Date).Layout(gtx)
			trans.Pop()
			totalHeight += dims.Size.Y
			a.engine.ReportHeight(db.Id, float64(dims.Size.Y))
			continue
		}
		if ub, ok := re.Entry.(feeds.UnreadBoundary); ok {
			trans := op.Offset(image.Point{Y: totalHeight}).Push(gtx.Ops)
			dims := chatmaterial.UnreadSeparator(a.th).Layout(gtx)
			trans.Pop()
			totalHeight += dims.Size.Y
			a.engine.ReportHeight(ub.Id, float64(dims.Size.Y))
			continue
		}

		msg, ok := re.Entry.(*feeds.Message)
		if !ok {
			continue
		}
		keep[msg.Id] = struct{}{}

		row, menu := a.rows.get(msg.Id)
		var layoutRow layout.Widget
		if a.theme == themePlato {
			style := plato.NewRow(a.th, row, menu, plato.RowConfig{
				Sender:  msg.Sender,
				Avatar:  senderAvatar(msg.Sender),
				Content: msg.Text.Get(),
				SentAt:  msg.SentAt,
				Local:   msg.Local,
			})
			layoutRow = style.Layout
		} else {
			style := chatmaterial.NewRow(a.th, row, menu, chatmaterial.RowConfig{
				Sender:  msg.Sender,
				Avatar:  senderAvatar(msg.Sender),
				Content: msg.Text.Get(),
				SentAt:  msg.SentAt,
				Local:   msg.Local,
				Status:  statusLabel(msg.Status),
			})
			layoutRow = style.Layout
		}

		trans := op.Offset(image.Point{Y: totalHeight}).Push(gtx.Ops)
		var dims layout.Dimensions
		if a.debugOutline {
			dims = kwadebug.Outline(gtx, layoutRow)
		} else {
			dims = layoutRow(gtx)
		}
		trans.Pop()

		a.engine.ReportHeight(msg.Id, float64(dims.Size.Y))
		totalHeight += dims.Size.Y
	}
	a.rows.prune(keep)
	return layout.Dimensions{Size: gtx.Constraints.Max}
}

func statusLabel(s feeds.SendStatus) string {
	switch s {
	case feeds.StatusPending:
		return "sending..."
	case feeds.StatusFailed:
		return "failed"
	default:
		return ""
	}
}
