// Package register implements single-byte register access to a device on an
// I²C bus. It is the layer the max30100 driver builds on, but nothing in it is
// specific to that chip.
package register

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"periph.io/x/periph/conn/i2c"
)

// ErrReadTimeout is returned when a register read still fails after every
// retry.
var ErrReadTimeout = errors.New("register: read timed out")

const (
	// DefaultRetries is the number of extra attempts Read makes.
	DefaultRetries = 200
	// DefaultDelay separates two attempts of a read and two polls of WaitClear.
	DefaultDelay = time.Millisecond
)

// Dev accesses the registers of the device at Addr on Bus.
//
// Dev is not safe for concurrent use.
type Dev struct {
	Bus  i2c.Bus
	Addr uint16

	// Retries is the number of extra attempts Read makes after a failed
	// transaction.
	Retries int
	// Delay is the pause between attempts.
	Delay time.Duration
	Clock clock.Clock
}

// New returns a Dev with the default retry budget and a real clock.
func New(bus i2c.Bus, addr uint16) *Dev {
	return &Dev{
		Bus:     bus,
		Addr:    addr,
		Retries: DefaultRetries,
		Delay:   DefaultDelay,
		Clock:   clock.New(),
	}
}

// Read reads a single byte from a register. A failed transaction is retried up
// to d.Retries times; if all of them fail, Read returns 0 and an error
// wrapping ErrReadTimeout.
func (d *Dev) Read(reg byte) (byte, error) {
	b := make([]byte, 1)
	var err error
	for try := 0; try <= d.Retries; try++ {
		if try > 0 {
			d.Clock.Sleep(d.Delay)
		}
		if err = d.Bus.Tx(d.Addr, []byte{reg}, b); err == nil {
			return b[0], nil
		}
	}

	return 0, fmt.Errorf("register: could not read %#02x after %d tries: %w (last error: %v)",
		reg, d.Retries+1, ErrReadTimeout, err)
}

// ReadBytes reads n bytes starting at a register.
func (d *Dev) ReadBytes(reg byte, n int) ([]byte, error) {
	b := make([]byte, n)
	if err := d.Bus.Tx(d.Addr, []byte{reg}, b); err != nil {
		return nil, fmt.Errorf("register: could not read %d bytes from %#02x: %w", n, reg, err)
	}

	return b, nil
}

// Write writes a byte to a register.
func (d *Dev) Write(reg, data byte) error {
	if err := d.Bus.Tx(d.Addr, []byte{reg, data}, nil); err != nil {
		return fmt.Errorf("register: could not write %#02x to %#02x: %w", data, reg, err)
	}

	return nil
}

// BitMask reads a register, keeps the bits set in mask, sets the bits of
// value and writes the result back. mask is the complement of the field being
// changed, so every bit outside the field is preserved.
func (d *Dev) BitMask(reg, mask, value byte) error {
	cfg, err := d.Read(reg)
	if err != nil {
		return fmt.Errorf("register: could not get %#02x: %w", reg, err)
	}
	cfg &= mask
	cfg |= value
	if err := d.Write(reg, cfg); err != nil {
		return err
	}

	return nil
}

// StartBurst points the device at reg without transferring data. Reads issued
// with ReadBurst continue from there.
func (d *Dev) StartBurst(reg byte) error {
	if err := d.Bus.Tx(d.Addr, []byte{reg}, nil); err != nil {
		return fmt.Errorf("register: could not start burst at %#02x: %w", reg, err)
	}

	return nil
}

// ReadBurst fills p from the register selected by the last StartBurst.
func (d *Dev) ReadBurst(p []byte) error {
	if err := d.Bus.Tx(d.Addr, nil, p); err != nil {
		return fmt.Errorf("register: could not read %d burst bytes: %w", len(p), err)
	}

	return nil
}

// WaitClear polls reg every d.Delay until the bits of flag read as zero or
// timeout elapses. It reports whether the bits cleared in time.
func (d *Dev) WaitClear(reg, flag byte, timeout time.Duration) (bool, error) {
	start := d.Clock.Now()
	for d.Clock.Since(start) < timeout {
		state, err := d.Read(reg)
		if err != nil {
			return false, fmt.Errorf("register: could not wait for %#02x in %#02x to clear: %w", flag, reg, err)
		}
		if state&flag == 0 {
			return true, nil
		}
		d.Clock.Sleep(d.Delay)
	}

	return false, nil
}
