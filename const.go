package max30100

// Register addresses
const (
	RegIntStatus  = 0x00
	RegIntEnable  = 0x01
	RegFIFOWrPtr  = 0x02
	RegOvfCounter = 0x03
	RegFIFORdPtr  = 0x04
	RegFIFOData   = 0x05
	RegModeCfg    = 0x06
	RegSpO2Cfg    = 0x07
	RegLEDCfg     = 0x09
	RegTempInt    = 0x16
	RegTempFrac   = 0x17
	RegRevID      = 0xFE
	RegPartID     = 0xFF
)

// Device constants
const (
	Addr   = 0x57
	PartID = 0x11

	// FIFODepth is the number of samples the device FIFO holds.
	FIFODepth = 16
	// BytesPerSample is the size of one IR + red sample in the FIFO.
	BytesPerSample = 4
	// MaxTransfer is the default largest read issued in one bus transaction.
	MaxTransfer = 32
)

// Mode configuration (0x06)
const (
	shutdownMask byte = ^byte(0b1000_0000)
	shutdown     byte = 0b1000_0000
	wakeup       byte = 0b0000_0000

	resetMask byte = ^byte(0b0100_0000)
	reset     byte = 0b0100_0000

	tempMask byte = ^byte(0b0000_1000)
	tempEna  byte = 0b0000_1000

	modeMask byte = ^byte(0b0000_0111)
)

// SpO2 configuration (0x07)
const (
	hiResMask byte = ^byte(0b0100_0000)
	hiResEna  byte = 0b0100_0000
	hiResDis  byte = 0b0000_0000

	srMask byte = ^byte(0b0001_1100)
	pwMask byte = ^byte(0b0000_0011)
)

// LED configuration (0x09)
const (
	irMask  byte = ^byte(0b0000_1111)
	redMask byte = ^byte(0b1111_0000)
)

// Temperature fraction (0x17)
const tempFracBits byte = 0b0000_1111

// Mode selects which LEDs are used for sampling.
type Mode byte

// LED modes
const (
	ModeHR   Mode = 0b010
	ModeSpO2 Mode = 0b011
)

func (m Mode) String() string {
	switch m {
	case ModeHR:
		return "HR"
	case ModeSpO2:
		return "SpO2"
	}
	return "invalid"
}

// SampleRate is the SpO2 sample rate control code, already shifted into
// position.
type SampleRate byte

// Sample rates in samples per second
const (
	SR50 SampleRate = iota << 2
	SR100
	SR167
	SR200
	SR400
	SR600
	SR800
	SR1000
)

var sampleRates = [...]int{50, 100, 167, 200, 400, 600, 800, 1000}

// Hz returns the number of samples per second.
func (s SampleRate) Hz() int {
	return sampleRates[(s>>2)&0b111]
}

// SampleRateFor returns the code of the fastest rate not above sps. Unmatched
// values fall back to 50 samples per second.
func SampleRateFor(sps int) SampleRate {
	switch {
	case sps < 100:
		return SR50
	case sps < 167:
		return SR100
	case sps < 200:
		return SR167
	case sps < 400:
		return SR200
	case sps < 600:
		return SR400
	case sps < 800:
		return SR600
	case sps < 1000:
		return SR800
	case sps == 1000:
		return SR1000
	}
	return SR50
}

// PulseWidth is the LED pulse width control code. Longer pulses give a longer
// detection range and a higher ADC resolution.
type PulseWidth byte

// Pulse widths in µs
const (
	PW200 PulseWidth = iota
	PW400
	PW800
	PW1600
)

// Microseconds returns the LED on time.
func (p PulseWidth) Microseconds() int {
	return 200 << (p & 0b11)
}

// Resolution returns the ADC resolution in bits, from 13 to 16.
func (p PulseWidth) Resolution() int {
	return 13 + int(p&0b11)
}

// PulseWidthFor buckets a pulse width in µs. Values above 1600 fall back to
// 200µs.
func PulseWidthFor(us int) PulseWidth {
	switch {
	case us < 400:
		return PW200
	case us < 800:
		return PW400
	case us < 1600:
		return PW800
	case us == 1600:
		return PW1600
	}
	return PW200
}

// Current is an LED drive current code (0 to 15).
type Current byte

// LED currents
const (
	MA0 Current = iota
	MA4_4
	MA7_6
	MA11
	MA14_2
	MA17_4
	MA20_8
	MA24
	MA27_1
	MA30_6
	MA33_8
	MA37
	MA40_2
	MA43_6
	MA46_8
	MA50
)

var currents = [...]float64{
	0, 4.4, 7.6, 11, 14.2, 17.4, 20.8, 24,
	27.1, 30.6, 33.8, 37, 40.2, 43.6, 46.8, 50,
}

// MilliAmps returns the typical drive current.
func (c Current) MilliAmps() float64 {
	return currents[c&0x0F]
}

// CurrentFor maps a power level to a current code. Levels saturate at 50mA.
func CurrentFor(level int) Current {
	switch {
	case level < 0:
		return MA0
	case level > int(MA50):
		return MA50
	}
	return Current(level)
}

// Interrupt is a set of interrupt flags as found in the status and enable
// registers.
type Interrupt byte

// Interrupt flags
const (
	IntAlmostFull Interrupt = 1 << 7
	IntTempReady  Interrupt = 1 << 6
	IntHRReady    Interrupt = 1 << 5
	IntSpO2Ready  Interrupt = 1 << 4
	// IntPowerReady only appears in the status register.
	IntPowerReady Interrupt = 1 << 0
)
