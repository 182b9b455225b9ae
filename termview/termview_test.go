package termview

import (
	"context"
	"testing"
	"time"

	"gosight/camera"
	"gosight/render"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 10 window pixels per cell
var window = camera.Viewport{Width: 800, Height: 240}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func runeAt(s tcell.SimulationScreen, x, y int) (rune, tcell.Color) {
	r, _, st, _ := s.GetContent(x, y)
	fg, _, _ := st.Decompose()
	return r, fg
}

func TestCell(t *testing.T) {
	v := New(newScreen(t), render.NewQueue(1), window)

	x, y := v.Cell(400, 120)
	assert.Equal(t, 40, x)
	assert.Equal(t, 12, y)

	x, y = v.Cell(0, 0)
	assert.Zero(t, x)
	assert.Zero(t, y)

	x, y = v.Cell(799, 239)
	assert.Equal(t, 79, x)
	assert.Equal(t, 23, y)
}

func TestFrame_DrawsEachStyle(t *testing.T) {
	screen := newScreen(t)
	q := render.NewQueue(4)
	v := New(screen, q, window)

	q.Push(render.Marker(100, 50, 8, render.Green))
	q.Push(render.Label(400, 120, "XYZ", 8, render.Red))
	q.Push(render.Frame(600, 100, 40, 60, render.White))

	assert.Equal(t, 3, v.Frame())
	assert.Zero(t, q.Len())

	r, fg := runeAt(screen, 10, 5)
	assert.Equal(t, 'o', r)
	assert.Equal(t, tcell.NewRGBColor(0, 255, 0), fg)

	r, fg = runeAt(screen, 39, 12)
	assert.Equal(t, 'X', r)
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	r, _ = runeAt(screen, 41, 12)
	assert.Equal(t, 'Z', r)

	// box spans cells 58..62 by 10..16
	r, _ = runeAt(screen, 58, 10)
	assert.Equal(t, tcell.RuneULCorner, r)
	r, _ = runeAt(screen, 62, 16)
	assert.Equal(t, tcell.RuneLRCorner, r)
	r, _ = runeAt(screen, 60, 10)
	assert.Equal(t, tcell.RuneHLine, r)
	r, _ = runeAt(screen, 58, 13)
	assert.Equal(t, tcell.RuneVLine, r)
}

func TestFrame_ClearsPrevious(t *testing.T) {
	screen := newScreen(t)
	q := render.NewQueue(1)
	v := New(screen, q, window)

	q.Push(render.Marker(100, 50, 8, render.Green))
	v.Frame()
	assert.Equal(t, 0, v.Frame())

	r, _ := runeAt(screen, 10, 5)
	assert.Equal(t, ' ', r)
}

func TestRun_QuitKey(t *testing.T) {
	screen := newScreen(t)
	v := New(screen, render.NewQueue(1), window)

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQuit)
	case <-time.After(2 * time.Second):
		t.Fatal("view did not quit")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	screen := newScreen(t)
	q := render.NewQueue(1)
	v := New(screen, q, window)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	q.Push(render.Marker(100, 50, 8, render.Green))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("view did not stop")
	}
}

func TestHeadless_Drains(t *testing.T) {
	q := render.NewQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Headless(ctx, q, time.Millisecond) }()

	q.Push(render.Marker(1, 1, 8, render.Green))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
