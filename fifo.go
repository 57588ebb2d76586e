package max30100

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// readTimeout is how long Red and IR wait for a new sample.
const readTimeout = 250 * time.Millisecond

// WritePointer returns the FIFO write pointer, the slot the device writes its
// next sample to.
func (d *Device) WritePointer() (byte, error) {
	wr, err := d.reg.Read(RegFIFOWrPtr)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not read FIFO write pointer: %w", err)
	}
	return wr, nil
}

// ReadPointer returns the FIFO read pointer, the slot of the next sample the
// host reads.
func (d *Device) ReadPointer() (byte, error) {
	rd, err := d.reg.Read(RegFIFORdPtr)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not read FIFO read pointer: %w", err)
	}
	return rd, nil
}

// OverflowCount returns how many samples the device dropped because its FIFO
// was full. The counter saturates at 15.
func (d *Device) OverflowCount() (byte, error) {
	ovf, err := d.reg.Read(RegOvfCounter)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not read overflow counter: %w", err)
	}
	return ovf, nil
}

// pending returns the number of unread samples between the device read and
// write pointers.
func pending(rd, wr byte) int {
	return (int(wr) - int(rd)) & (FIFODepth - 1)
}

// chunkSize returns how many of the remaining bytes fit in one read of at
// most limit bytes without splitting a sample.
func chunkSize(remaining, limit int) int {
	if remaining <= limit {
		return remaining
	}
	return limit - limit%BytesPerSample
}

// Check drains the device FIFO into the host buffer and returns the number of
// new samples. It returns 0 when the device has nothing new. Call it regularly;
// the device FIFO holds 16 samples.
//
// If the bus fails in the middle of a drain, Check returns the samples stored
// so far together with the error.
func (d *Device) Check() (int, error) {
	rd, err := d.ReadPointer()
	if err != nil {
		return 0, err
	}
	wr, err := d.WritePointer()
	if err != nil {
		return 0, err
	}
	n := pending(rd, wr)
	if n == 0 {
		return 0, nil
	}
	d.logger.Debug("fifo", zap.Uint8("rd", rd), zap.Uint8("wr", wr), zap.Int("samples", n))

	if err := d.reg.StartBurst(RegFIFOData); err != nil {
		return 0, fmt.Errorf("max30100: could not read FIFO: %w", err)
	}

	overruns := d.buf.Overruns()
	stored := 0
	buf := make([]byte, d.maxTransfer)
	for left := n * BytesPerSample; left > 0; {
		chunk := buf[:chunkSize(left, d.maxTransfer)]
		if err := d.reg.ReadBurst(chunk); err != nil {
			return stored, fmt.Errorf("max30100: could not read FIFO after %d samples: %w", stored, err)
		}
		left -= len(chunk)

		for p := chunk; len(p) >= BytesPerSample; p = p[BytesPerSample:] {
			d.buf.add(Sample{
				IR:  binary.BigEndian.Uint16(p[0:2]),
				Red: binary.BigEndian.Uint16(p[2:4]),
			})
			stored++
		}
	}

	if lost := d.buf.Overruns() - overruns; lost > 0 {
		d.logger.Warn("host buffer overrun",
			zap.Int("lost", lost),
			zap.Int("capacity", d.buf.Cap()),
		)
	}

	return stored, nil
}

// SafeCheck calls Check every millisecond until new samples arrive or timeout
// elapses. It reports whether new samples were found.
func (d *Device) SafeCheck(timeout time.Duration) (bool, error) {
	start := d.clock.Now()
	for {
		if d.clock.Since(start) > timeout {
			return false, nil
		}
		n, err := d.Check()
		if err != nil {
			return n > 0, err
		}
		if n > 0 {
			return true, nil
		}
		d.clock.Sleep(pollStep)
	}
}

// Red waits up to 250ms for new samples and returns the red value of the most
// recent one. Red does not consume samples. If nothing arrives in time, it
// returns an error wrapping ErrNoData.
func (d *Device) Red() (uint16, error) {
	s, err := d.latest()
	return s.Red, err
}

// IR waits up to 250ms for new samples and returns the IR value of the most
// recent one. IR does not consume samples. If nothing arrives in time, it
// returns an error wrapping ErrNoData.
func (d *Device) IR() (uint16, error) {
	s, err := d.latest()
	return s.IR, err
}

func (d *Device) latest() (Sample, error) {
	ok, err := d.SafeCheck(readTimeout)
	if err != nil {
		return Sample{}, err
	}
	if !ok {
		return Sample{}, fmt.Errorf("max30100: could not get sample in %v: %w", readTimeout, ErrNoData)
	}
	s, _ := d.buf.Latest()
	return s, nil
}

// FIFOSample returns the oldest unread sample in the host buffer without
// waiting or consuming it. It reports false when the buffer is empty.
func (d *Device) FIFOSample() (Sample, bool) {
	return d.buf.Oldest()
}

// FIFORed returns the red value of the oldest unread sample.
func (d *Device) FIFORed() (uint16, bool) {
	s, ok := d.buf.Oldest()
	return s.Red, ok
}

// FIFOIR returns the IR value of the oldest unread sample.
func (d *Device) FIFOIR() (uint16, bool) {
	s, ok := d.buf.Oldest()
	return s.IR, ok
}

// NextSample consumes the oldest unread sample, if any.
func (d *Device) NextSample() {
	d.buf.Next()
}

// Available returns the number of unread samples in the host buffer.
func (d *Device) Available() int {
	return d.buf.Available()
}

// Overruns returns how many drained samples were lost because the host buffer
// was full. A write into a full buffer loses every unread sample and itself.
func (d *Device) Overruns() int {
	return d.buf.Overruns()
}
