// Package rom reads firmware images in Intel HEX format and loads them
// onto the emulator bus.
package rom

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"os"
	"strings"

	"github.com/ezrec/msp430emu/internal"
)

const (
	RESET_VECTOR = uint32(0xfffe) // Address of the reset vector word.

	RECORD_DATA          = 0x00
	RECORD_EOF           = 0x01
	RECORD_SEGMENT       = 0x02 // Extended segment address.
	RECORD_START_SEGMENT = 0x03 // Start segment address (CS:IP).
	RECORD_LINEAR        = 0x04 // Extended linear address.
	RECORD_START_LINEAR  = 0x05 // Start linear address.

	RECORD_DATA_MAX = 16 // Data bytes per record written by WriteHex.
)

// Writer accepts the bytes of an image.
type Writer interface {
	Write8(addr uint32, value uint8) error
}

// Image is a sparse firmware image.
type Image struct {
	Verbose bool // Set to log the records as they are parsed.

	Start    uint32 // Start address from a type 03 or 05 record.
	HasStart bool   // Start was given.

	data map[uint32]uint8
}

// Len is the number of bytes in the image.
func (img *Image) Len() int {
	return len(img.data)
}

// Byte returns the image byte at addr, if the image has one.
func (img *Image) Byte(addr uint32) (value uint8, ok bool) {
	value, ok = img.data[addr]
	return
}

// Set stores a byte into the image, replacing any earlier byte at addr.
func (img *Image) Set(addr uint32, value uint8) {
	if img.data == nil {
		img.data = make(map[uint32]uint8)
	}
	img.data[addr] = value
}

// All yields the bytes of the image in address order.
func (img *Image) All() iter.Seq2[uint32, uint8] {
	return internal.IterSeq2Sorted(img.data)
}

// Load writes the image byte by byte, in address order.
func (img *Image) Load(w Writer) (err error) {
	for addr, value := range img.All() {
		err = w.Write8(addr, value)
		if err != nil {
			err = errors.Join(ErrRomLoad, err)
			return
		}
	}
	return
}

// ResetVector returns the little-endian word the image holds at 0xFFFE.
func (img *Image) ResetVector() (pc uint32, err error) {
	lo, ok_lo := img.Byte(RESET_VECTOR)
	hi, ok_hi := img.Byte(RESET_VECTOR + 1)
	if !ok_lo || !ok_hi {
		err = ErrResetVector
		return
	}

	pc = uint32(hi)<<8 | uint32(lo)
	return
}

// WriteTo writes the image as a flat binary, from address 0 to the last
// image byte. Gaps are zero filled.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	var flat []byte
	for addr, value := range img.All() {
		if int(addr) >= len(flat) {
			flat = append(flat, make([]byte, int(addr)+1-len(flat))...)
		}
		flat[addr] = value
	}

	written, err := w.Write(flat)
	n = int64(written)
	return
}

// record is one decoded line of a hex file.
type record struct {
	kind    uint8
	address uint16
	data    []byte
}

// parseRecord decodes a ':' prefixed line and verifies its checksum.
func parseRecord(line string) (rec record, err error) {
	raw, err := hex.DecodeString(line[1:])
	if err != nil || len(raw) < 5 || len(raw) != 5+int(raw[0]) {
		err = ErrRecordSyntax
		return
	}

	var sum uint8
	for _, b := range raw {
		sum += b
	}
	if sum != 0 {
		err = ErrChecksum
		return
	}

	rec = record{
		kind:    raw[3],
		address: uint16(raw[1])<<8 | uint16(raw[2]),
		data:    raw[4 : len(raw)-1],
	}
	return
}

// Parse reads an Intel HEX stream. Lines not starting with ':' are skipped,
// and parsing stops at the end of file record.
func Parse(r io.Reader) (img *Image, err error) {
	img = &Image{}
	return img, img.parse(r)
}

func (img *Image) parse(r io.Reader) (err error) {
	scanner := bufio.NewScanner(r)

	var lineno int
	defer func() {
		if err != nil {
			err = errors.Join(ErrRomLoad, &ErrLine{Line: lineno, Err: err})
		}
	}()

	var base uint32
	for scanner.Scan() {
		lineno++

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ":") {
			continue
		}

		var rec record
		rec, err = parseRecord(line)
		if err != nil {
			return
		}

		if img.Verbose {
			log.Printf("rom: %v: type %02x address 0x%04x length %v", lineno, rec.kind, rec.address, len(rec.data))
		}

		switch rec.kind {
		case RECORD_DATA:
			for n, value := range rec.data {
				img.Set(base+uint32(rec.address+uint16(n)), value)
			}
		case RECORD_EOF:
			return
		case RECORD_SEGMENT, RECORD_LINEAR:
			if len(rec.data) != 2 {
				err = ErrRecordSyntax
				return
			}
			base = uint32(rec.data[0])<<8 | uint32(rec.data[1])
			if rec.kind == RECORD_SEGMENT {
				base <<= 4
			} else {
				base <<= 16
			}
		case RECORD_START_SEGMENT, RECORD_START_LINEAR:
			if len(rec.data) != 4 {
				err = ErrRecordSyntax
				return
			}
			hi := uint32(rec.data[0])<<8 | uint32(rec.data[1])
			lo := uint32(rec.data[2])<<8 | uint32(rec.data[3])
			if rec.kind == RECORD_START_SEGMENT {
				img.Start = hi<<4 + lo
			} else {
				img.Start = hi<<16 | lo
			}
			img.HasStart = true
		default:
			err = ErrRecordType
			return
		}
	}

	err = scanner.Err()
	return
}

// ReadFile reads an Intel HEX file.
func ReadFile(name string) (img *Image, err error) {
	file, err := os.Open(name)
	if err != nil {
		err = errors.Join(ErrRomLoad, err)
		return
	}
	defer file.Close()

	img, err = Parse(file)
	return
}

// writeRecord writes one record, computing its checksum.
func writeRecord(w io.Writer, kind uint8, address uint16, data []byte) (err error) {
	raw := append([]byte{uint8(len(data)), uint8(address >> 8), uint8(address), kind}, data...)

	var sum uint8
	for _, b := range raw {
		sum += b
	}
	raw = append(raw, -sum)

	_, err = fmt.Fprintf(w, ":%s\n", strings.ToUpper(hex.EncodeToString(raw)))
	return
}

// WriteHex writes the image in Intel HEX format, using extended linear
// address records above 64KiB.
func (img *Image) WriteHex(w io.Writer) (err error) {
	var upper uint32
	var start uint32
	var data []byte

	flush := func() (err error) {
		if len(data) == 0 {
			return
		}
		err = writeRecord(w, RECORD_DATA, uint16(start), data)
		data = data[:0]
		return
	}

	for addr, value := range img.All() {
		contiguous := len(data) > 0 && addr == start+uint32(len(data)) && (addr&0xffff) != 0
		if !contiguous || len(data) == RECORD_DATA_MAX {
			err = flush()
			if err != nil {
				return
			}
			start = addr
		}

		if addr>>16 != upper {
			upper = addr >> 16
			err = writeRecord(w, RECORD_LINEAR, 0, []byte{uint8(upper >> 8), uint8(upper)})
			if err != nil {
				return
			}
		}

		data = append(data, value)
	}

	err = flush()
	if err != nil {
		return
	}

	if img.HasStart {
		err = writeRecord(w, RECORD_START_LINEAR, 0, []byte{
			uint8(img.Start >> 24), uint8(img.Start >> 16), uint8(img.Start >> 8), uint8(img.Start),
		})
		if err != nil {
			return
		}
	}

	err = writeRecord(w, RECORD_EOF, 0, nil)
	return
}
