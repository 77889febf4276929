package display

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/isabella232/moabian/internal/plant"
)

const (
	liveWidth   = 41
	liveHeight  = 21
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	trailLen    = 30
)

// LiveView draws a top-down view of the plate with the ball and its recent
// trail. Frames are throttled to frameRate; ticks in between are skipped.
type LiveView struct {
	w         io.Writer
	radius    float64
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	trail     []cell
	frames    int
}

type cell struct{ x, y int }

func NewLiveView(w io.Writer, radius float64, frameRate int) *LiveView {
	canvas := make([][]rune, liveHeight)
	for i := range canvas {
		canvas[i] = make([]rune, liveWidth)
	}
	if frameRate <= 0 {
		frameRate = 15
	}
	return &LiveView{
		w:         w,
		radius:    radius,
		frameRate: frameRate,
		canvas:    canvas,
		trail:     make([]cell, 0, trailLen),
	}
}

// Observe records the ball position and redraws if a frame is due.
func (v *LiveView) Observe(tick int, s plant.State, a plant.Action) {
	if s.Detected {
		v.trail = append(v.trail, v.toCell(s.BallX, s.BallY))
		if len(v.trail) > trailLen {
			v.trail = v.trail[1:]
		}
	}

	if time.Since(v.lastFrame) < time.Second/time.Duration(v.frameRate) {
		return
	}
	v.lastFrame = time.Now()

	v.clear()
	v.drawPlate()
	for i, c := range v.trail {
		ch := '.'
		if i == len(v.trail)-1 && s.Detected {
			ch = 'o'
		}
		v.set(c.x, c.y, ch)
	}
	v.render(tick, s, a)
}

// Frames is the number of frames drawn so far.
func (v *LiveView) Frames() int {
	return v.frames
}

func (v *LiveView) Start() { fmt.Fprint(v.w, hideCursor) }
func (v *LiveView) Stop()  { fmt.Fprint(v.w, showCursor) }

func (v *LiveView) toCell(x, y float64) cell {
	cx, cy := liveWidth/2, liveHeight/2
	return cell{
		x: cx + int(math.Round(x/v.radius*float64(cx))),
		y: cy - int(math.Round(y/v.radius*float64(cy))),
	}
}

func (v *LiveView) clear() {
	for y := range v.canvas {
		for x := range v.canvas[y] {
			v.canvas[y][x] = ' '
		}
	}
}

func (v *LiveView) set(x, y int, c rune) {
	if x >= 0 && x < liveWidth && y >= 0 && y < liveHeight {
		v.canvas[y][x] = c
	}
}

func (v *LiveView) drawPlate() {
	for i := 0; i < 120; i++ {
		th := 2 * math.Pi * float64(i) / 120
		c := v.toCell(v.radius*math.Cos(th), v.radius*math.Sin(th))
		v.set(c.x, c.y, '#')
	}
	centre := v.toCell(0, 0)
	v.set(centre.x, centre.y, '+')
}

func (v *LiveView) render(tick int, s plant.State, a plant.Action) {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  tick %d  t=%.2fs\n", tick, s.Elapsed.Seconds())

	for _, row := range v.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	status := "lost"
	if s.Detected {
		status = fmt.Sprintf("x=%+.3f y=%+.3f", s.BallX, s.BallY)
	}
	fmt.Fprintf(&b, "  %s  pitch=%+.1f roll=%+.1f\n", status, a.Pitch, a.Roll)

	fmt.Fprint(v.w, b.String())
	v.frames++
}
