package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mkorman/dmgcore/dmg"
	"github.com/mkorman/dmgcore/dmg/cartridge"
	"github.com/mkorman/dmgcore/render"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Description = "A DMG (Game Boy) core: SM83 CPU, cartridge MBCs, timer, and background PPU"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to an optional boot ROM image (up to 256 bytes)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without the terminal display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	sys, err := loadSystem(romPath, c.String("boot-rom"))
	if err != nil {
		return err
	}

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames with a positive value")
		}
		return runHeadless(sys, frames)
	}

	renderer, err := render.NewTerminalRenderer(sys)
	if err != nil {
		return err
	}
	return renderer.Run()
}

func loadSystem(romPath, bootROMPath string) (*dmg.System, error) {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	cart, err := cartridge.New(data)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	sys := dmg.New()
	sys.Cart(cart)

	if bootROMPath != "" {
		boot, err := os.ReadFile(bootROMPath)
		if err != nil {
			return nil, fmt.Errorf("reading boot ROM: %w", err)
		}
		sys.BootROM(boot)
	}

	sys.Reset()
	slog.Info("loaded ROM", "path", romPath)
	return sys, nil
}

func runHeadless(sys *dmg.System, frames int) error {
	const machineCyclesPerFrame = 17556

	for i := 0; i < frames; i++ {
		total := 0
		for total < machineCyclesPerFrame {
			total += sys.Step()
		}
		if i%10 == 0 {
			slog.Info("frame progress", "completed", i+1, "total", frames)
		}
	}

	slog.Info("headless execution completed", "frames", frames)
	return nil
}
