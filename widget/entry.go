package widget

import (
	"gioui.org/layout"
)

// Element is a realized scroll entry ready for layout: a Gio widget
// plus the height Gio last measured it at. scroll.Engine never
// predicts this height itself (see scroll.RealizedEntry) - it is
// always the result of an actual layout pass, recorded here so the
// next pass can report it back to the engine via ReportHeight.
type Element struct {
	Widget layout.Widget
	Height float64
}

// Layout lays out the wrapped widget and returns its dimensions,
// exactly like calling the widget directly; present so Element itself
// satisfies layout.Widget-shaped call sites.
func (e Element) Layout(gtx layout.Context) layout.Dimensions {
	return e.Widget(gtx)
}
