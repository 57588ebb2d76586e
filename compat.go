package max30100

import "time"

// Compat is a best-effort view of a Device. Every failure is absorbed: reads
// that fail return 0, a failed Begin returns false and setup errors are
// dropped. It exists to compare against code written for that behavior; new
// code should use the Device methods and their errors.
type Compat struct {
	d *Device
}

// Compat returns the best-effort view of d.
func (d *Device) Compat() Compat {
	return Compat{d: d}
}

// Begin reports whether a MAX30100 answered.
func (c Compat) Begin() bool {
	return c.d.Begin() == nil
}

// Setup applies the settings, ignoring failures. Invalid modes are written
// as given.
func (c Compat) Setup(powerLevel byte, mode Mode, sampleRate, pulseWidth int, highRes bool) {
	d := c.d
	_ = d.SoftReset()
	_ = d.SetLEDMode(mode)
	_ = d.SetPulseWidth(PulseWidthFor(pulseWidth))
	_ = d.SetSampleRate(SampleRateFor(sampleRate))
	amp := CurrentFor(int(powerLevel))
	_ = d.SetPulseAmplitudeRed(amp)
	_ = d.SetPulseAmplitudeIR(amp)
	_ = d.ClearFIFO()
	_ = d.SetHighRes(highRes)
}

// Check returns the number of new samples, or 0 on failure.
func (c Compat) Check() uint16 {
	n, _ := c.d.Check()
	return uint16(n)
}

// SafeCheck waits up to ms milliseconds for new samples.
func (c Compat) SafeCheck(ms uint8) bool {
	ok, _ := c.d.SafeCheck(time.Duration(ms) * time.Millisecond)
	return ok
}

// GetRed returns the most recent red value, or 0 if nothing arrived.
func (c Compat) GetRed() uint16 {
	v, _ := c.d.Red()
	return v
}

// GetIR returns the most recent IR value, or 0 if nothing arrived.
func (c Compat) GetIR() uint16 {
	v, _ := c.d.IR()
	return v
}

// GetFIFORed returns the red value of the oldest unread sample, or 0.
func (c Compat) GetFIFORed() uint16 {
	v, _ := c.d.FIFORed()
	return v
}

// GetFIFOIR returns the IR value of the oldest unread sample, or 0.
func (c Compat) GetFIFOIR() uint16 {
	v, _ := c.d.FIFOIR()
	return v
}

// NextSample consumes the oldest unread sample.
func (c Compat) NextSample() {
	c.d.NextSample()
}

// Available returns the number of unread samples.
func (c Compat) Available() uint8 {
	return uint8(c.d.Available())
}

// ReadTemperature returns the die temperature in °C, even when the
// conversion timed out.
func (c Compat) ReadTemperature() float32 {
	t, _ := c.d.Temperature()
	return float32(t)
}

// ReadTemperatureF returns the die temperature in °F.
func (c Compat) ReadTemperatureF() float32 {
	t, _ := c.d.TemperatureF()
	return float32(t)
}

// ReadPartID returns the part ID, or 0.
func (c Compat) ReadPartID() uint8 {
	v, _ := c.d.ReadPartID()
	return v
}

// GetRevisionID returns the revision ID captured by Begin.
func (c Compat) GetRevisionID() uint8 {
	return c.d.RevID
}

// ReadRegister8 reads a register, or returns 0.
func (c Compat) ReadRegister8(reg byte) uint8 {
	v, _ := c.d.reg.Read(reg)
	return v
}

// WriteRegister8 writes a register, ignoring failures.
func (c Compat) WriteRegister8(reg, value byte) {
	_ = c.d.reg.Write(reg, value)
}
