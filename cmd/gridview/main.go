package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"grid-planner/config"
	"grid-planner/grid"
	"grid-planner/solve"
)

// Each grid cell is drawn two terminal columns wide.
const cellColumns = 2

var (
	wallStyle   = tcell.StyleDefault.Background(tcell.ColorGray)
	openStyle   = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	pathStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	markStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	cursorStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type viewer struct {
	screen tcell.Screen
	log    *zap.Logger

	grid    *grid.Shared
	problem *solve.Problem
	runner  *solve.Runner
	solvers []solve.Solver
	current int
	colony  *solve.Colony

	cursorX, cursorY int
	path             orb.LineString
	status           string

	chime *chime
}

func newViewer(screen tcell.Screen, g *grid.Shared, astar *solve.AnyAngle, colony *solve.Colony, first string, log *zap.Logger, opts ...solve.Option) *viewer {
	v := &viewer{
		screen:  screen,
		log:     log,
		grid:    g,
		problem: solve.NewProblem(g),
		solvers: []solve.Solver{astar, colony},
		colony:  colony,
		cursorX: g.Width() / 2,
		cursorY: g.Height() / 2,
		chime:   &chime{},
	}
	for i, s := range v.solvers {
		if s.Name() == first {
			v.current = i
		}
	}
	v.runner = solve.NewRunner(v.solvers[v.current], append(opts, solve.WithLogger(log))...)
	v.status = "arrows move, space wall, s start, g goal, r run, c cancel, t solver, x reset, q quit"
	return v
}

func (v *viewer) solver() solve.Solver { return v.solvers[v.current] }

func (v *viewer) cursorCenter() orb.Point {
	p, _ := v.grid.CellCenter(v.cursorX, v.cursorY)
	return p
}

// handleInput applies one event and reports whether the viewer keeps running.
func (v *viewer) handleInput(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}

	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.moveCursor(-1, 0)
	case tcell.KeyRight:
		v.moveCursor(1, 0)
	case tcell.KeyUp:
		v.moveCursor(0, 1)
	case tcell.KeyDown:
		v.moveCursor(0, -1)
	case tcell.KeyRune:
		return v.handleRune(key.Rune())
	}
	return true
}

func (v *viewer) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		state, _ := v.grid.Toggle(v.cursorX, v.cursorY)
		v.status = fmt.Sprintf("cell (%d,%d) %s", v.cursorX, v.cursorY, state)
	case 's':
		v.problem.SetStart(v.cursorCenter())
		v.path = nil
		v.status = fmt.Sprintf("start at (%d,%d)", v.cursorX, v.cursorY)
	case 'g':
		v.problem.SetGoal(v.cursorCenter())
		v.path = nil
		v.status = fmt.Sprintf("goal at (%d,%d)", v.cursorX, v.cursorY)
	case 'r':
		if v.runner.Start(v.problem) {
			v.status = v.solver().Name() + " running"
		} else {
			v.status = "set start and goal first"
		}
	case 'c':
		if v.runner.Cancel() {
			v.status = "cancelled"
		}
	case 't':
		v.current = (v.current + 1) % len(v.solvers)
		v.runner.SetSolver(v.solver())
		v.status = "solver " + v.solver().Name()
	case 'x':
		v.colony.Reset()
		v.log.Info("optimizer memory cleared")
		v.status = "optimizer memory cleared"
	}
	return true
}

func (v *viewer) moveCursor(dx, dy int) {
	v.cursorX = min(max(v.cursorX+dx, 0), v.grid.Width()-1)
	v.cursorY = min(max(v.cursorY+dy, 0), v.grid.Height()-1)
}

// tick drains a finished job, if any.
func (v *viewer) tick() {
	res, ok := v.runner.Poll()
	if !ok {
		return
	}
	v.path = res.Path
	v.status = fmt.Sprintf("%s: %d waypoints, length %.1f, %v",
		res.Solver, len(res.Path), solve.PathLength(res.Path), res.Elapsed.Round(time.Millisecond))
	if res.Fallback {
		v.status += " (no path, direct segment)"
	}
	v.chime.play(res.Fallback)
}

// screenPos maps a grid cell to its terminal position; row 0 is the top grid row.
func (v *viewer) screenPos(x, y int) (int, int) {
	return x * cellColumns, v.grid.Height() - 1 - y
}

func (v *viewer) draw() {
	v.screen.Clear()

	v.grid.View(func(g *grid.Grid) {
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				v.drawCell(x, y, '·', openStyle)
				if g.IsBlocked(x, y) {
					v.drawCell(x, y, ' ', wallStyle)
				}
			}
		}
		for _, c := range pathCells(g, v.path) {
			v.drawCell(c[0], c[1], '*', pathStyle)
		}
		if p := v.problem.Start; p != nil {
			if x, y, ok := g.WorldToCell(*p); ok {
				v.drawCell(x, y, 'S', markStyle)
			}
		}
		if p := v.problem.Goal; p != nil {
			if x, y, ok := g.WorldToCell(*p); ok {
				v.drawCell(x, y, 'G', markStyle)
			}
		}
	})

	sx, sy := v.screenPos(v.cursorX, v.cursorY)
	v.screen.SetContent(sx, sy, '[', nil, cursorStyle)
	v.screen.SetContent(sx+1, sy, ']', nil, cursorStyle)

	status := fmt.Sprintf("[%s] %s", v.solver().Name(), v.status)
	if v.runner.Running() {
		status = "… " + status
	}
	for i, r := range status {
		v.screen.SetContent(i, v.grid.Height()+1, r, nil, statusStyle)
	}

	v.screen.Show()
}

func (v *viewer) drawCell(x, y int, r rune, style tcell.Style) {
	sx, sy := v.screenPos(x, y)
	for i := 0; i < cellColumns; i++ {
		v.screen.SetContent(sx+i, sy, r, nil, style)
	}
}

// pathCells returns the cells touched by path, sampled at a quarter cell.
func pathCells(g *grid.Grid, path orb.LineString) [][2]int {
	seen := make(map[[2]int]bool)
	var cells [][2]int
	step := g.CellSize() / 4
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		n := int(math.Ceil(math.Hypot(b[0]-a[0], b[1]-a[1])/step)) + 1
		for k := 0; k <= n; k++ {
			f := float64(k) / float64(n)
			x, y, ok := g.WorldToCell(orb.Point{a[0] + (b[0]-a[0])*f, a[1] + (b[1]-a[1])*f})
			if !ok || seen[[2]int{x, y}] {
				continue
			}
			seen[[2]int{x, y}] = true
			cells = append(cells, [2]int{x, y})
		}
	}
	return cells
}

func (v *viewer) run(tickRate time.Duration) {
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	v.draw()
	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}
			v.draw()

		case <-ticker.C:
			v.tick()
			v.draw()
		}
	}
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	layoutPath := flag.String("layout", "", "path to a YAML layout")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if *layoutPath != "" {
		cfg.Grid.Layout = *layoutPath
	}
	if *logPath != "" {
		cfg.Logging.File = *logPath
	}

	// The terminal belongs to tcell, so logs only go to a file.
	log := zap.NewNop()
	if cfg.Logging.File != "" {
		l, err := config.NewLogger(cfg.Logging)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		log = l
	}
	defer log.Sync()

	layout, err := cfg.BuildGrid()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build grid: %v\n", err)
		os.Exit(1)
	}
	shared := grid.NewShared(layout.Grid)
	astar := solve.NewAnyAngle(shared, cfg.AnyAngle(layout.Grid.CellSize()), solve.WithLogger(log.Named("astar")))
	colony := solve.NewColony(shared, cfg.Colony(), solve.WithLogger(log.Named("aco")))

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	timers := solve.NewTimers()
	v := newViewer(screen, shared, astar, colony, cfg.Viewer.Solver, log, solve.WithTimers(timers))
	if layout.Start != nil {
		v.problem.SetStart(*layout.Start)
	}
	if layout.Goal != nil {
		v.problem.SetGoal(*layout.Goal)
	}
	if cfg.Viewer.Sound {
		v.chime = newChime(log)
	}

	v.run(cfg.Viewer.TickRate)

	v.chime.close()
	screen.Fini()
	timers.Log(log)
}
