// Package inspect helps maintain layout files: it dumps foreign memory with
// pointers annotated, and searches object graphs for the offsets at which a
// known value lives.
package inspect

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"gosight/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// DumpOptions control Dump. The zero value prints 16 plain bytes per line
// with offsets starting at zero.
type DumpOptions struct {
	Width int
	Base  process.ProcessMemoryAddress
	// Pointer reports whether a qword looks like a valid foreign address.
	// Valid pointers are listed at the end of the line.
	Pointer func(process.ProcessMemoryAddress) bool
	Color   bool
}

func (o DumpOptions) paint(fg coloransi.ColorCode, s string) string {
	if !o.Color {
		return s
	}
	return coloransi.Color(fg, coloransi.Black, s)
}

// Dump writes data as a classic hex dump, one line per Width bytes.
//
//	0000000200000000  18 00 00 00 00 00 00 00 | 00 10 00 00 02 00 00 00  ........ ........  -> 0x200001000
func Dump(w io.Writer, data []byte, opts DumpOptions) {
	if opts.Width <= 0 {
		opts.Width = 16
	}
	for off := 0; off < len(data); off += opts.Width {
		end := min(off+opts.Width, len(data))
		line(w, data[off:end], opts.Base.Add(process.ProcessMemorySize(off)), opts)
	}
}

func DumpString(data []byte, opts DumpOptions) string {
	var b bytes.Buffer
	Dump(&b, data, opts)
	return b.String()
}

func line(w io.Writer, data []byte, addr process.ProcessMemoryAddress, opts DumpOptions) {
	fmt.Fprint(w, opts.paint(coloransi.Cyan, fmt.Sprintf("%016x", uint64(addr))), "  ")

	half := opts.Width / 2
	for i := 0; i < opts.Width; i++ {
		if i > 0 {
			if i == half {
				fmt.Fprint(w, " | ")
			} else {
				fmt.Fprint(w, " ")
			}
		}
		if i >= len(data) {
			fmt.Fprint(w, "  ")
			continue
		}
		fg := coloransi.Green
		if data[i] == 0 {
			fg = coloransi.BrightBlack
		}
		fmt.Fprint(w, opts.paint(fg, fmt.Sprintf("%02x", data[i])))
	}

	fmt.Fprint(w, "  ")
	for i, b := range data {
		if i == half {
			fmt.Fprint(w, " ")
		}
		if b >= 0x20 && b < 0x7f {
			fmt.Fprint(w, string(rune(b)))
		} else {
			fmt.Fprint(w, opts.paint(coloransi.Red, "."))
		}
	}

	if ptrs := pointers(data, addr, opts.Pointer); len(ptrs) > 0 {
		fmt.Fprint(w, strings.Repeat(" ", opts.Width-len(data)), "  -> ")
		fmt.Fprint(w, opts.paint(coloransi.Yellow, strings.Join(ptrs, " ")))
	}
	fmt.Fprintln(w)
}

// pointers lists the 8-byte aligned qwords of data that valid accepts.
func pointers(data []byte, addr process.ProcessMemoryAddress, valid func(process.ProcessMemoryAddress) bool) []string {
	if valid == nil {
		return nil
	}
	var out []string
	start := int((8 - uint64(addr)%8) % 8)
	for i := start; i+8 <= len(data); i += 8 {
		p := process.ProcessMemoryAddress(binary.LittleEndian.Uint64(data[i:]))
		if p != 0 && valid(p) {
			out = append(out, p.ToString())
		}
	}
	return out
}
