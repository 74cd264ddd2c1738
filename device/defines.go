package device

import (
	"fmt"
	"iter"

	"github.com/ezrec/msp430emu/internal"
)

var _device_defines = map[string]uint32{
	"WDTCTL":     WDTCTL,
	"WDTPW":      0x5a00,
	"WDTHOLD":    0x0080,
	"MEMORY_END": MEMORY_SIZE - 1,
}

func init() {
	for n, pc := range PORT_CONFIG {
		for suffix, addr := range map[string]uint32{
			"REN": pc.Ren, "IN": pc.In, "OUT": pc.Out, "DIR": pc.Dir,
			"SEL": pc.Sel, "IFG": pc.Ifg, "IES": pc.Ies, "IE": pc.Ie,
		} {
			if addr != 0 {
				_device_defines[fmt.Sprintf("P%d%v", n+1, suffix)] = addr
			}
		}
	}
}

// Defines returns the register addresses of the stock devices, by name.
func Defines() iter.Seq2[string, uint32] {
	return internal.IterSeq2Sorted(_device_defines)
}
