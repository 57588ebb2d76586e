package max30100

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"periph.io/x/periph/conn/physic"
)

// An Option configures a device. Applying it returns an Option that restores
// the previous value.
type Option func(d *Device) Option

// Options applies options in order and returns the Option restoring the
// previous value of the last one.
func (d *Device) Options(options ...Option) Option {
	var old Option
	for _, opt := range options {
		old = opt(d)
	}
	return old
}

// OnAddr can be used to specify an alternative I²C address.
// By default, the address is 0x57.
func OnAddr(addr uint16) Option {
	return func(d *Device) Option {
		old := d.reg.Addr
		d.reg.Addr = addr
		return OnAddr(old)
	}
}

// WithBusSpeed sets the clock frequency Begin applies to the bus.
// By default, the speed is SpeedStandard (100kHz).
func WithBusSpeed(f physic.Frequency) Option {
	return func(d *Device) Option {
		old := d.speed
		d.speed = f
		return WithBusSpeed(old)
	}
}

// WithClock sets the clock used for every wait and timeout.
func WithClock(c clock.Clock) Option {
	return func(d *Device) Option {
		old := d.clock
		d.clock = c
		d.reg.Clock = c
		return WithClock(old)
	}
}

// WithLogger sets the logger. By default, nothing is logged.
func WithLogger(l *zap.Logger) Option {
	return func(d *Device) Option {
		old := d.logger
		d.logger = l
		return WithLogger(old)
	}
}

// WithMaxTransfer sets the largest number of bytes read in one bus
// transaction while draining the FIFO. Most platforms allow 32 bytes. Values
// below one sample (4 bytes) are raised to 4.
func WithMaxTransfer(n int) Option {
	return func(d *Device) Option {
		old := d.maxTransfer
		if n < BytesPerSample {
			n = BytesPerSample
		}
		d.maxTransfer = n
		return WithMaxTransfer(old)
	}
}

// WithCapacity replaces the host sample buffer with an empty one of n slots.
// By default the buffer has FIFODepth slots. A buffer smaller than the device
// FIFO can be lapped by a single Check; see Overruns.
func WithCapacity(n int) Option {
	return func(d *Device) Option {
		old := d.buf.Cap()
		d.buf = NewSampleBuffer(n)
		return WithCapacity(old)
	}
}

// WithReadRetries sets how many times a failed register read is retried.
func WithReadRetries(n int) Option {
	return func(d *Device) Option {
		old := d.reg.Retries
		if n < 0 {
			n = 0
		}
		d.reg.Retries = n
		return WithReadRetries(old)
	}
}
