package device

const (
	WDTCTL       = uint32(0x0120) // Watchdog timer control register.
	WDTCTL_RESET = uint16(0x6900) // WDTCTL value after reset.
)

// Watchdog models the watchdog timer control register. It holds whatever
// the firmware stores and never expires.
type Watchdog struct {
	Stub
	Control uint16
}

var _ Device = (*Watchdog)(nil)
var _ Checker = (*Watchdog)(nil)

func (wd *Watchdog) Name() string {
	return "wdog"
}

func (wd *Watchdog) Ranges() []AddressRange {
	return []AddressRange{{Start: WDTCTL, End: WDTCTL + 1}}
}

func (wd *Watchdog) Init() error {
	wd.Control = WDTCTL_RESET
	return nil
}

// Check allows only word access to WDTCTL.
func (wd *Watchdog) Check(addr uint32, width int) (err error) {
	switch {
	case width != 2:
		err = ErrNotImplemented
	case addr != WDTCTL:
		err = ErrRegisterInvalid
	}
	if err != nil {
		err = &ErrAccess{Device: wd.Name(), Addr: addr, Width: width, Err: err}
	}
	return
}

func (wd *Watchdog) Read16(addr uint32) (value uint16, err error) {
	err = wd.Check(addr, 2)
	if err != nil {
		return
	}
	value = wd.Control
	return
}

func (wd *Watchdog) Write16(addr uint32, value uint16) (err error) {
	err = wd.Check(addr, 2)
	if err != nil {
		return
	}
	wd.Control = value
	return
}
