package max30100

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"periph.io/x/periph/conn/physic"
)

var errNack = errors.New("nack")

// stepClock is a mock clock whose Sleep advances mock time instead of blocking.
type stepClock struct{ *clock.Mock }

func (c stepClock) Sleep(d time.Duration) { c.Add(d) }

// fakeSensor emulates the register file and FIFO of a MAX30100 behind an
// i2c.Bus.
type fakeSensor struct {
	addr  uint16
	speed physic.Frequency
	regs  [256]byte
	fifo  [FIFODepth]Sample

	ptr     byte
	byteIdx int

	// resetPolls and tempPolls are the number of mode register reads during
	// which the reset and temperature bits stay set. -1 keeps them set.
	resetPolls int
	tempPolls  int

	// failBurst makes burst reads fail after that many succeed. -1 never
	// fails.
	failBurst int

	writes [][]byte
	bursts []int

	// pointerWrites holds the register of every write that only sets the
	// register pointer.
	pointerWrites []byte
}

func newFakeSensor() *fakeSensor {
	f := &fakeSensor{
		addr:       Addr,
		resetPolls: 2,
		tempPolls:  3,
		failBurst:  -1,
	}
	f.regs[RegPartID] = PartID
	f.regs[RegRevID] = 0x05
	return f
}

func (f *fakeSensor) String() string { return "fake" }

func (f *fakeSensor) SetSpeed(s physic.Frequency) error {
	f.speed = s
	return nil
}

func (f *fakeSensor) Tx(addr uint16, w, r []byte) error {
	if addr != f.addr {
		return errNack
	}
	if len(w) > 0 {
		f.ptr = w[0]
		f.byteIdx = 0
	}
	if len(w) == 1 && len(r) == 0 {
		f.pointerWrites = append(f.pointerWrites, w[0])
	}
	if len(w) > 1 {
		f.writes = append(f.writes, append([]byte(nil), w...))
		f.regs[f.ptr] = w[1]
	}
	if len(r) == 0 {
		return nil
	}
	if f.ptr == RegFIFOData {
		if f.failBurst == 0 {
			return errNack
		}
		if f.failBurst > 0 {
			f.failBurst--
		}
		f.bursts = append(f.bursts, len(r))
		for i := range r {
			r[i] = f.fifoByte()
		}
		return nil
	}
	for i := range r {
		r[i] = f.read(f.ptr + byte(i))
	}
	return nil
}

// fifoByte returns the next byte of the sample at the read pointer, IR then
// red, most significant byte first.
func (f *fakeSensor) fifoByte() byte {
	rd := f.regs[RegFIFORdPtr] & (FIFODepth - 1)
	s := f.fifo[rd]
	var b byte
	switch f.byteIdx {
	case 0:
		b = byte(s.IR >> 8)
	case 1:
		b = byte(s.IR)
	case 2:
		b = byte(s.Red >> 8)
	case 3:
		b = byte(s.Red)
	}
	f.byteIdx++
	if f.byteIdx == BytesPerSample {
		f.byteIdx = 0
		f.regs[RegFIFORdPtr] = (rd + 1) & (FIFODepth - 1)
	}
	return b
}

func (f *fakeSensor) read(reg byte) byte {
	v := f.regs[reg]
	if reg == RegModeCfg {
		if v&reset != 0 {
			if f.resetPolls == 0 {
				f.regs[reg] &^= reset
			} else if f.resetPolls > 0 {
				f.resetPolls--
			}
		}
		if v&tempEna != 0 {
			if f.tempPolls == 0 {
				f.regs[reg] &^= tempEna
			} else if f.tempPolls > 0 {
				f.tempPolls--
			}
		}
	}
	return v
}

// push adds samples to the device FIFO.
func (f *fakeSensor) push(samples ...Sample) {
	for _, s := range samples {
		wr := f.regs[RegFIFOWrPtr] & (FIFODepth - 1)
		f.fifo[wr] = s
		f.regs[RegFIFOWrPtr] = (wr + 1) & (FIFODepth - 1)
	}
}

// setPointers places both FIFO pointers at slot p.
func (f *fakeSensor) setPointers(p byte) {
	f.regs[RegFIFORdPtr] = p
	f.regs[RegFIFOWrPtr] = p
}

func newTestDevice(f *fakeSensor, opts ...Option) (*Device, *clock.Mock) {
	mock := clock.NewMock()
	d := New(f, append([]Option{WithClock(stepClock{mock})}, opts...)...)
	return d, mock
}

func samples(n int, base uint16) []Sample {
	s := make([]Sample, n)
	for i := range s {
		s[i] = Sample{IR: base + uint16(i), Red: 0x8000 + base + uint16(i)}
	}
	return s
}
