package audio

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/term"
)

type pickerKey int

const (
	keyNone pickerKey = iota
	keyUp
	keyDown
	keySelect
	keyAbort
)

// decodeKey maps a raw-mode stdin read onto a picker action. Arrow keys
// arrive as three-byte escape sequences; everything else is a single byte.
func decodeKey(buf []byte) pickerKey {
	switch {
	case len(buf) == 1:
		switch buf[0] {
		case '\r':
			return keySelect
		case 3: // Ctrl+C
			return keyAbort
		case 'k':
			return keyUp
		case 'j':
			return keyDown
		}
	case len(buf) == 3 && buf[0] == 0x1b && buf[1] == '[':
		switch buf[2] {
		case 'A':
			return keyUp
		case 'B':
			return keyDown
		}
	}
	return keyNone
}

// pickerOrder returns devices ordered for the picker: wired outputs first,
// Bluetooth outputs last, enumeration order preserved within each group.
// A metronome click through a Bluetooth sink lands audibly late, so those
// outputs never get top billing even when one is the system default.
func pickerOrder(devices []DeviceInfo) []DeviceInfo {
	ordered := make([]DeviceInfo, len(devices))
	copy(ordered, devices)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !IsBluetooth(ordered[i].Name) && IsBluetooth(ordered[j].Name)
	})
	return ordered
}

// initialCursor points the picker at the system default output, wherever
// the ordering placed it, so Enter with no navigation keeps the device the
// user already hears.
func initialCursor(ordered []DeviceInfo) int {
	for i, d := range ordered {
		if d.Default {
			return i
		}
	}
	return 0
}

// SelectDevice presents an interactive output-device picker and returns the
// selected device. A single available device is returned without prompting.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no playback devices found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	ordered := pickerOrder(devices)
	cursor := initialCursor(ordered)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	renderList := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Select output device (↑/↓, Enter to confirm):\r\n\r\n")
		for i, d := range ordered {
			tag := ""
			if d.Default {
				tag += " \x1b[2m(default)\x1b[0m"
			}
			if IsBluetooth(d.Name) {
				tag += " \x1b[33m[⚠ adds latency]\x1b[0m"
			}
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m%s\r\n", d.Name, tag)
			} else {
				fmt.Printf("    %s%s\r\n", d.Name, tag)
			}
		}
		fmt.Print("\r\n\x1b[2mWired outputs keep the click tight; Bluetooth lags it.\x1b[0m\r\n")
	}

	renderList()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		switch decodeKey(buf[:n]) {
		case keyUp:
			if cursor > 0 {
				cursor--
			}
		case keyDown:
			if cursor < len(ordered)-1 {
				cursor++
			}
		case keySelect:
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			return &ordered[cursor], nil
		case keyAbort:
			fmt.Print("\r\n")
			term.Restore(fd, oldState)
			os.Exit(130)
		}

		// header + blank + devices + blank + hint
		fmt.Printf("\x1b[%dA", len(ordered)+4)
		renderList()
	}
}
