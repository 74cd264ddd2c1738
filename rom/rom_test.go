package rom

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleHex = `; comment lines are skipped
:10C00000314000243F4080000F9308242F83834356
:04C010000F4F30405E
:02FFFE0000C041
:020000040001F9
:0400000001020304F2
:00000001FF
:040000009999999998
`

func TestParse(t *testing.T) {
	assert := assert.New(t)

	img, err := Parse(strings.NewReader(sampleHex))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(16+4+4+2, img.Len())

	table := [](struct {
		addr   uint32
		expect uint8
	}){
		{0xc000, 0x31},
		{0xc00f, 0x43},
		{0xc010, 0x0f},
		{0xc013, 0x40},
		{0x10000, 0x01},
		{0x10003, 0x04},
		{0xfffe, 0x00},
		{0xffff, 0xc0},
	}

	for _, entry := range table {
		value, ok := img.Byte(entry.addr)
		assert.True(ok, "0x%05x", entry.addr)
		assert.Equal(entry.expect, value, "0x%05x", entry.addr)
	}

	// Nothing after the end of file record.
	_, ok := img.Byte(0x10000 + 4)
	assert.False(ok)
	value, _ := img.Byte(0x10000)
	assert.Equal(uint8(0x01), value)
}

func TestParse_Errors(t *testing.T) {
	table := [](struct {
		name   string
		text   string
		line   int
		expect error
	}){
		{"checksum", ":0400000001020304F3\n", 1, ErrChecksum},
		{"short", ":0400\n", 1, ErrRecordSyntax},
		{"length", "\n:0500000001020304F2\n", 2, ErrRecordSyntax},
		{"not_hex", ":04000000010203ZZF2\n", 1, ErrRecordSyntax},
		{"linear_size", ":0300000400010BED\n", 1, ErrRecordSyntax},
		{"type", ":00000006FA\n", 1, ErrRecordType},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := Parse(strings.NewReader(entry.text))
			assert.ErrorIs(err, ErrRomLoad)
			assert.ErrorIs(err, entry.expect)

			var line *ErrLine
			if assert.True(errors.As(err, &line)) {
				assert.Equal(entry.line, line.Line)
			}
		})
	}
}

func TestParse_Start(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse(strings.NewReader(":0200000500010000F8\n"))
	assert.ErrorIs(err, ErrRecordSyntax)

	img, err := Parse(strings.NewReader(":04000005000123458E\n"))
	if assert.NoError(err) {
		assert.True(img.HasStart)
		assert.Equal(uint32(0x12345), img.Start)
	}

	img, err = Parse(strings.NewReader(":0400000310000020C9\n"))
	if assert.NoError(err) {
		assert.True(img.HasStart)
		assert.Equal(uint32(0x10020), img.Start)
	}
}

func TestParse_Segment(t *testing.T) {
	assert := assert.New(t)

	img, err := Parse(strings.NewReader(":020000021000EC\n:01001000AA45\n"))
	if assert.NoError(err) {
		value, ok := img.Byte(0x10010)
		assert.True(ok)
		assert.Equal(uint8(0xaa), value)
	}
}

func TestImage_ResetVector(t *testing.T) {
	assert := assert.New(t)

	img := &Image{}
	_, err := img.ResetVector()
	assert.ErrorIs(err, ErrResetVector)

	img.Set(RESET_VECTOR, 0x1c)
	_, err = img.ResetVector()
	assert.ErrorIs(err, ErrResetVector)

	img.Set(RESET_VECTOR+1, 0x47)
	pc, err := img.ResetVector()
	assert.NoError(err)
	assert.Equal(uint32(0x471c), pc)
}

type byteWriter map[uint32]uint8

func (bw byteWriter) Write8(addr uint32, value uint8) error {
	if addr >= 0x100 {
		return errors.New("out of range")
	}
	bw[addr] = value
	return nil
}

func TestImage_Load(t *testing.T) {
	assert := assert.New(t)

	img := &Image{}
	img.Set(0x20, 0xaa)
	img.Set(0x10, 0xbb)
	img.Set(0x11, 0xcc)

	var order []uint32
	for addr := range img.All() {
		order = append(order, addr)
	}
	assert.Equal([]uint32{0x10, 0x11, 0x20}, order)

	bw := byteWriter{}
	assert.NoError(img.Load(bw))
	assert.Equal(byteWriter{0x10: 0xbb, 0x11: 0xcc, 0x20: 0xaa}, bw)

	img.Set(0x100, 0xdd)
	assert.ErrorIs(img.Load(byteWriter{}), ErrRomLoad)
}

func TestImage_WriteTo(t *testing.T) {
	assert := assert.New(t)

	img := &Image{}
	img.Set(1, 0x11)
	img.Set(4, 0x44)

	var buf bytes.Buffer
	n, err := img.WriteTo(&buf)
	assert.NoError(err)
	assert.Equal(int64(5), n)
	assert.Equal([]byte{0, 0x11, 0, 0, 0x44}, buf.Bytes())
}

func TestImage_WriteHex(t *testing.T) {
	assert := assert.New(t)

	img, err := Parse(strings.NewReader(sampleHex))
	if !assert.NoError(err) {
		return
	}
	img.Start = 0x1c000
	img.HasStart = true

	var buf bytes.Buffer
	assert.NoError(img.WriteHex(&buf))

	again, err := Parse(&buf)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(img.Len(), again.Len())
	for addr, value := range img.All() {
		other, ok := again.Byte(addr)
		assert.True(ok, "0x%05x", addr)
		assert.Equal(value, other, "0x%05x", addr)
	}
	assert.True(again.HasStart)
	assert.Equal(img.Start, again.Start)

	var lines []string
	img = &Image{}
	img.Set(0x10000, 0x5a)
	buf.Reset()
	assert.NoError(img.WriteHex(&buf))
	lines = strings.Fields(buf.String())
	assert.Equal([]string{":020000040001F9", ":010000005AA5", ":00000001FF"}, lines)
}

func TestReadFile(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.hex"))
	assert.ErrorIs(err, ErrRomLoad)
	assert.ErrorIs(err, os.ErrNotExist)

	name := filepath.Join(t.TempDir(), "fw.hex")
	assert.NoError(os.WriteFile(name, []byte(sampleHex), 0o644))

	img, err := ReadFile(name)
	if assert.NoError(err) {
		pc, err := img.ResetVector()
		assert.NoError(err)
		assert.Equal(uint32(0xc000), pc)
	}
}
