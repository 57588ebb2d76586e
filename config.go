package max30100

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	resetTimeout = 100 * time.Millisecond
	pollStep     = time.Millisecond
)

// Settings are the sampling parameters applied by Setup.
type Settings struct {
	// PowerLevel selects the LED drive current of both LEDs, from 0 (0mA) to
	// 15 (50mA). Higher levels saturate at 50mA.
	PowerLevel int
	Mode       Mode
	// SampleRate in samples per second, bucketed by SampleRateFor.
	SampleRate int
	// PulseWidth in µs, bucketed by PulseWidthFor.
	PulseWidth int
	HighRes    bool
}

// DefaultSettings returns full LED power in heart rate mode at 50 samples per
// second with 1600µs pulses.
func DefaultSettings() Settings {
	return Settings{
		PowerLevel: 0x0F,
		Mode:       ModeHR,
		SampleRate: 50,
		PulseWidth: 1600,
	}
}

// Validate checks that the settings can be written to the device.
func (s Settings) Validate() error {
	if s.Mode != ModeHR && s.Mode != ModeSpO2 {
		return fmt.Errorf("%w: mode %#03b", ErrInvalidSettings, byte(s.Mode))
	}
	return nil
}

// Setup resets the device and configures it from s: LED mode, pulse width,
// sample rate, LED currents, an empty FIFO and high resolution mode, in that
// order. Every call derives the whole configuration from s, so Setup can be
// repeated at any time.
func (d *Device) Setup(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	pw := PulseWidthFor(s.PulseWidth)
	sr := SampleRateFor(s.SampleRate)
	amp := CurrentFor(s.PowerLevel)
	d.logger.Debug("setup",
		zap.Stringer("mode", s.Mode),
		zap.Int("pulse_width_us", pw.Microseconds()),
		zap.Int("sample_rate_hz", sr.Hz()),
		zap.Float64("current_ma", amp.MilliAmps()),
		zap.Bool("high_res", s.HighRes),
	)

	if err := d.SoftReset(); err != nil {
		return err
	}
	if err := d.SetLEDMode(s.Mode); err != nil {
		return err
	}
	if err := d.SetPulseWidth(pw); err != nil {
		return err
	}
	if err := d.SetSampleRate(sr); err != nil {
		return err
	}
	if err := d.SetPulseAmplitudeRed(amp); err != nil {
		return err
	}
	if err := d.SetPulseAmplitudeIR(amp); err != nil {
		return err
	}
	if err := d.ClearFIFO(); err != nil {
		return err
	}
	return d.SetHighRes(s.HighRes)
}

// SoftReset resets all configuration, threshold and data registers to their
// power-on state and waits up to 100ms for the device to finish.
func (d *Device) SoftReset() error {
	if err := d.reg.BitMask(RegModeCfg, resetMask, reset); err != nil {
		return fmt.Errorf("max30100: could not reset: %w", err)
	}
	done, err := d.reg.WaitClear(RegModeCfg, reset, resetTimeout)
	if err != nil {
		return fmt.Errorf("max30100: could not reset: %w", err)
	}
	if !done {
		d.logger.Warn("reset did not complete", zap.Duration("timeout", resetTimeout))
		return fmt.Errorf("max30100: could not reset: %w", ErrTimeout)
	}

	return nil
}

// Shutdown sets the device into power-save mode. The device keeps answering on
// the bus but takes no new readings.
func (d *Device) Shutdown() error {
	if err := d.reg.BitMask(RegModeCfg, shutdownMask, shutdown); err != nil {
		return fmt.Errorf("max30100: could not shut down: %w", err)
	}
	return nil
}

// Wakeup wakes the device from power-save mode.
func (d *Device) Wakeup() error {
	if err := d.reg.BitMask(RegModeCfg, shutdownMask, wakeup); err != nil {
		return fmt.Errorf("max30100: could not wake up: %w", err)
	}
	return nil
}

// SetLEDMode selects heart rate only or SpO2 sampling.
func (d *Device) SetLEDMode(m Mode) error {
	if err := d.reg.BitMask(RegModeCfg, modeMask, byte(m)); err != nil {
		return fmt.Errorf("max30100: could not configure mode: %w", err)
	}
	return nil
}

// SetSampleRate sets the SpO2 sample rate control.
func (d *Device) SetSampleRate(sr SampleRate) error {
	if err := d.reg.BitMask(RegSpO2Cfg, srMask, byte(sr)&^srMask); err != nil {
		return fmt.Errorf("max30100: could not configure sample rate: %w", err)
	}
	return nil
}

// SetPulseWidth sets the LED pulse width.
func (d *Device) SetPulseWidth(pw PulseWidth) error {
	if err := d.reg.BitMask(RegSpO2Cfg, pwMask, byte(pw)&^pwMask); err != nil {
		return fmt.Errorf("max30100: could not configure pulse width: %w", err)
	}
	return nil
}

// SetPulseAmplitudeRed sets the red LED current.
func (d *Device) SetPulseAmplitudeRed(c Current) error {
	if err := d.reg.BitMask(RegLEDCfg, redMask, byte(c&0x0F)<<4); err != nil {
		return fmt.Errorf("max30100: could not configure red LED current: %w", err)
	}
	return nil
}

// SetPulseAmplitudeIR sets the IR LED current.
func (d *Device) SetPulseAmplitudeIR(c Current) error {
	if err := d.reg.BitMask(RegLEDCfg, irMask, byte(c&0x0F)); err != nil {
		return fmt.Errorf("max30100: could not configure IR LED current: %w", err)
	}
	return nil
}

// SetHighRes enables or disables the 16-bit ADC resolution mode.
func (d *Device) SetHighRes(enabled bool) error {
	v := hiResDis
	if enabled {
		v = hiResEna
	}
	if err := d.reg.BitMask(RegSpO2Cfg, hiResMask, v); err != nil {
		return fmt.Errorf("max30100: could not configure high resolution mode: %w", err)
	}
	return nil
}

// ClearFIFO resets the FIFO write pointer, overflow counter and read pointer
// so reading starts from a known state. The host buffer is left untouched.
func (d *Device) ClearFIFO() error {
	err := multierr.Combine(
		d.reg.Write(RegFIFOWrPtr, 0),
		d.reg.Write(RegOvfCounter, 0),
		d.reg.Write(RegFIFORdPtr, 0),
	)
	if err != nil {
		return fmt.Errorf("max30100: could not clear FIFO: %w", err)
	}
	return nil
}

// EnableInterrupts sets the enable bits of i. IntPowerReady cannot be masked
// and is ignored.
func (d *Device) EnableInterrupts(i Interrupt) error {
	i &^= IntPowerReady
	if err := d.reg.BitMask(RegIntEnable, ^byte(i), byte(i)); err != nil {
		return fmt.Errorf("max30100: could not enable interrupts %#08b: %w", byte(i), err)
	}
	return nil
}

// DisableInterrupts clears the enable bits of i.
func (d *Device) DisableInterrupts(i Interrupt) error {
	if err := d.reg.BitMask(RegIntEnable, ^byte(i), 0); err != nil {
		return fmt.Errorf("max30100: could not disable interrupts %#08b: %w", byte(i), err)
	}
	return nil
}

// Interrupts reads the interrupt status register. Reading it clears the
// pending flags on the device.
func (d *Device) Interrupts() (Interrupt, error) {
	status, err := d.reg.Read(RegIntStatus)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not read interrupt status: %w", err)
	}
	return Interrupt(status), nil
}
