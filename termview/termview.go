// Package termview previews the render queue in a terminal. Window pixels are
// scaled down to character cells, so this is a rough picture of what an
// overlay would show, good enough to check a capture or a live attach.
package termview

import (
	"context"
	"errors"
	"math"
	"time"

	"gosight/camera"
	"gosight/render"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// FrameInterval paces redraws at roughly 60 per second.
const FrameInterval = 16 * time.Millisecond

// ErrQuit is returned by Run when the user closes the view.
var ErrQuit = errors.New("termview: quit")

type View struct {
	screen tcell.Screen
	queue  *render.Queue
	window camera.Viewport
	frame  []render.DrawInstruction
	log    *logger.Logger
}

// New draws onto an initialised screen. window is the size of the viewport
// the instructions were projected into.
func New(screen tcell.Screen, q *render.Queue, window camera.Viewport) *View {
	return &View{
		screen: screen,
		queue:  q,
		window: window,
		log:    logger.NewLogger(coloransi.Color(coloransi.BrightBlue, coloransi.Black, "termview")),
	}
}

// Cell maps a window position to a character cell.
func (v *View) Cell(x, y float64) (int, int) {
	w, h := v.screen.Size()
	cx := int(math.Floor(x / v.window.Width * float64(w)))
	cy := int(math.Floor(y / v.window.Height * float64(h)))
	return cx, cy
}

func style(c colorful.Color) tcell.Style {
	r, g, b := c.Clamped().RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

// Frame takes whatever the queue holds and draws it. It returns the number
// of instructions drawn.
func (v *View) Frame() int {
	v.frame = v.queue.Swap(v.frame)
	v.Draw(v.frame)
	return len(v.frame)
}

// Draw replaces the screen contents with frame.
func (v *View) Draw(frame []render.DrawInstruction) {
	v.screen.Clear()
	for _, d := range frame {
		switch d.Style {
		case render.Circle:
			v.circle(d)
		case render.Box:
			v.box(d)
		case render.Text:
			v.text(d)
		}
	}
	v.screen.Show()
}

func (v *View) circle(d render.DrawInstruction) {
	x, y := v.Cell(d.X, d.Y)
	v.screen.SetContent(x, y, 'o', nil, style(d.Color))
}

// box hangs from the top centre at (X, Y).
func (v *View) box(d render.DrawInstruction) {
	x0, y0 := v.Cell(d.X-d.Width/2, d.Y)
	x1, y1 := v.Cell(d.X+d.Width/2, d.Y+d.Height)
	if x1 <= x0 || y1 <= y0 {
		v.screen.SetContent(x0, y0, '#', nil, style(d.Color))
		return
	}

	st := style(d.Color)
	for x := x0 + 1; x < x1; x++ {
		v.screen.SetContent(x, y0, tcell.RuneHLine, nil, st)
		v.screen.SetContent(x, y1, tcell.RuneHLine, nil, st)
	}
	for y := y0 + 1; y < y1; y++ {
		v.screen.SetContent(x0, y, tcell.RuneVLine, nil, st)
		v.screen.SetContent(x1, y, tcell.RuneVLine, nil, st)
	}
	v.screen.SetContent(x0, y0, tcell.RuneULCorner, nil, st)
	v.screen.SetContent(x1, y0, tcell.RuneURCorner, nil, st)
	v.screen.SetContent(x0, y1, tcell.RuneLLCorner, nil, st)
	v.screen.SetContent(x1, y1, tcell.RuneLRCorner, nil, st)
}

// text is centred on (X, Y).
func (v *View) text(d render.DrawInstruction) {
	x, y := v.Cell(d.X, d.Y)
	runes := []rune(d.Label)
	x -= len(runes) / 2
	st := style(d.Color)
	for i, r := range runes {
		v.screen.SetContent(x+i, y, r, nil, st)
	}
}

// Run redraws every FrameInterval until ctx ends or the user presses
// Escape, q or Ctrl-C.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					v.log.Infoln("closed by user")
					return ErrQuit
				}
			case *tcell.EventResize:
				v.screen.Sync()
			}
		case <-ticker.C:
			v.Frame()
		}
	}
}

// Headless drains the queue at the preview's pace without drawing, logging
// a summary every second.
func Headless(ctx context.Context, q *render.Queue, interval time.Duration) error {
	log := logger.NewLogger(coloransi.Color(coloransi.BrightBlue, coloransi.Black, "headless"))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var buf []render.DrawInstruction
	frames, draws := 0, 0
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			buf = q.Swap(buf)
			frames++
			draws += len(buf)
			if now.Sub(last) >= time.Second {
				log.Debugln("frames", frames, "draws", draws)
				frames, draws, last = 0, 0, now
			}
		}
	}
}
