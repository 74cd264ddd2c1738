// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/msp430emu/emulator"
	"github.com/ezrec/msp430emu/monitor"
	"github.com/ezrec/msp430emu/peripheral"
)

// stepper single steps the emulator from the keyboard. Space or enter runs
// one cycle, 'c' runs to completion, 'q' quits.
func stepper(ctx context.Context, emu *emulator.Emulator) (err error) {
	fd := int(os.Stdin.Fd())

	for {
		err = emu.Dump(os.Stdout)
		if err != nil {
			return
		}

		insn, err_next := emu.Cpu.Next()
		if err_next != nil {
			fmt.Printf("%05x: %v\n", emu.Cpu.Pc(), err_next)
		} else {
			fmt.Printf("%05x: %v\n", emu.Cpu.Pc(), &insn)
		}

		var key byte
		key, err = readKey(fd)
		if err != nil {
			return
		}

		switch key {
		case 'q', 0x03, 0x04:
			return
		case 'c':
			err = emu.Run(ctx)
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}

// readKey reads one keypress, with the terminal in raw mode only while
// waiting for it.
func readKey(fd int) (key byte, err error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer func() {
		_ = term.Restore(fd, state)
	}()

	var buf [1]byte
	_, err = os.Stdin.Read(buf[:])
	key = buf[0]
	return
}

func main() {
	var romFile string
	var delay time.Duration
	var limit int
	var verbose bool
	var trace bool
	var script string
	var entry string
	var uartPort int
	var uartOutput string
	var interactive bool

	flag.StringVar(&romFile, "r", "", "Intel HEX firmware image")
	flag.DurationVar(&delay, "d", 0, "Delay between cycles")
	flag.IntVar(&limit, "n", 0, "Maximum cycles to run, 0 for no limit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&trace, "t", false, "Trace registers and stack before every cycle")
	flag.StringVar(&script, "x", "", "Starlark monitor script to run instead of free running")
	flag.StringVar(&entry, "pc", "", "Start address expression, overriding the reset vector")
	flag.IntVar(&uartPort, "uart", peripheral.UART_PORT, "Port the UART is wired to")
	flag.StringVar(&uartOutput, "o", "-", "UART output")
	flag.BoolVar(&interactive, "i", false, "Single step from the terminal")

	flag.Parse()

	// The firmware image may also be given as the only argument.
	if flag.NArg() == 1 && len(romFile) == 0 {
		romFile = flag.Arg(0)
	} else if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Fatalf("%v: -i needs a terminal on stdin", os.Args[0])
	}

	emu, err := emulator.NewEmulatorUart(uartPort)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
	defer emu.Close()

	emu.Verbose = verbose
	emu.Delay = delay
	emu.Limit = limit

	if uartOutput == "-" {
		emu.Uart.Output = os.Stdout
	} else {
		ouf, err := os.Create(uartOutput)
		if err != nil {
			log.Fatalf("%v: %v", uartOutput, err)
		}
		defer ouf.Close()
		emu.Uart.Output = ouf
	}

	if len(romFile) != 0 {
		err = emu.LoadROM(romFile)
		if err != nil {
			log.Fatalf("%v: %v", romFile, err)
		}
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	mon := monitor.NewMonitor(emu, os.Stdout)
	mon.Verbose = verbose

	if len(entry) != 0 {
		pc, err := mon.Eval(entry)
		if err != nil {
			log.Fatalf("-pc %v: %v", entry, err)
		}
		err = emu.ResetAt(pc)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
	}

	if trace {
		emu.Trace = os.Stdout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case len(script) != 0:
		_, err = mon.Exec(script, nil)
	case interactive:
		err = stepper(ctx, emu)
	default:
		err = emu.Run(ctx)
	}

	if verbose {
		log.Printf("%v: %v cycles", os.Args[0], emu.Ticks)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		_ = emu.Dump(os.Stderr)
		log.Fatalf("%v: %v", os.Args[0], err)
	}
}
