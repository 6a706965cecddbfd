// Package render provides a terminal front-end for the core, driving a
// System and painting its framebuffer with tcell. It is a host
// front-end, not part of the emulator core: register/video state is
// read only after System.Step has returned control.
package render

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mkorman/dmgcore/dmg"
	"github.com/mkorman/dmgcore/dmg/video"
)

const (
	frameTime  = time.Second / 60
	panelWidth = 28
)

// shadeChars maps a DMG shade (White..Black) to a block character,
// darkest shade drawn densest.
var shadeChars = [4]rune{' ', '░', '▒', '█'}

// TerminalRenderer paints a System's framebuffer and CPU register state
// to a tcell screen at 60Hz, running the system one frame per tick.
type TerminalRenderer struct {
	screen  tcell.Screen
	system  *dmg.System
	running bool
}

// NewTerminalRenderer opens a tcell screen and wraps sys for interactive
// display.
func NewTerminalRenderer(sys *dmg.System) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}

	return &TerminalRenderer{screen: screen, system: sys, running: true}, nil
}

// Run drives the system one frame at a time until the user quits or the
// process receives a termination signal.
func (t *TerminalRenderer) Run() error {
	defer t.screen.Fini()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	go t.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for t.running {
		select {
		case <-ticker.C:
			t.runUntilFrame()
			t.render()
			t.screen.Show()
		case <-signals:
			t.running = false
			return nil
		}
	}

	return nil
}

// runUntilFrame steps the system for one frame's worth of machine cycles
// (17556, i.e. 154 lines of 456 T-cycles), matching the host contract: read the framebuffer only after Step has
// returned control, once per visible frame.
func (t *TerminalRenderer) runUntilFrame() {
	const machineCyclesPerFrame = 17556
	total := 0
	for total < machineCyclesPerFrame {
		total += t.system.Step()
	}
}

func (t *TerminalRenderer) handleInput() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				t.running = false
				return
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *TerminalRenderer) render() {
	t.screen.Clear()
	t.drawFrameBuffer()
	t.drawRegisters()
}

func (t *TerminalRenderer) drawFrameBuffer() {
	fb := t.system.FrameBuffer()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	for y := 0; y < video.Height; y++ {
		for x := 0; x < video.Width; x++ {
			t.screen.SetContent(x, y, shadeChars[shadeIndex(fb.At(x, y))], nil, style)
		}
	}
}

func shadeIndex(c video.Color) int {
	switch c {
	case video.White:
		return 0
	case video.LightGray:
		return 1
	case video.DarkGray:
		return 2
	default:
		return 3
	}
}

func (t *TerminalRenderer) drawRegisters() {
	cpu := t.system.CPU()
	startX := video.Width + 2
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)

	lines := []string{
		fmt.Sprintf("PC: %#04x", cpu.PC()),
		fmt.Sprintf("SP: %#04x", cpu.SP()),
		fmt.Sprintf("IME: %v", cpu.IME()),
		fmt.Sprintf("HALT: %v", cpu.Halted()),
		"",
		"ESC to quit",
	}

	for i, line := range lines {
		for j, ch := range line {
			if startX+j >= panelWidth+startX {
				break
			}
			t.screen.SetContent(startX+j, i, ch, nil, style)
		}
	}
}
