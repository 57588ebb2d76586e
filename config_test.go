package max30100

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.viam.com/test"
)

func TestPulseWidthFor(t *testing.T) {
	tests := []struct {
		us   int
		want PulseWidth
	}{
		{0, PW200},
		{399, PW200},
		{400, PW400},
		{799, PW400},
		{800, PW800},
		{1599, PW800},
		{1600, PW1600},
		{1601, PW200},
	}
	for _, tt := range tests {
		test.That(t, PulseWidthFor(tt.us), test.ShouldEqual, tt.want)
	}

	test.That(t, PW200.Resolution(), test.ShouldEqual, 13)
	test.That(t, PW1600.Resolution(), test.ShouldEqual, 16)
	test.That(t, PW800.Microseconds(), test.ShouldEqual, 800)
}

func TestSampleRateFor(t *testing.T) {
	tests := []struct {
		sps  int
		want SampleRate
	}{
		{0, SR50},
		{50, SR50},
		{99, SR50},
		{100, SR100},
		{166, SR100},
		{167, SR167},
		{199, SR167},
		{200, SR200},
		{400, SR400},
		{600, SR600},
		{800, SR800},
		{999, SR800},
		{1000, SR1000},
		{1001, SR50},
	}
	for _, tt := range tests {
		got := SampleRateFor(tt.sps)
		test.That(t, got, test.ShouldEqual, tt.want)
		test.That(t, byte(got)&^srMask, test.ShouldEqual, byte(got))
	}

	test.That(t, SR167.Hz(), test.ShouldEqual, 167)
	test.That(t, SR1000.Hz(), test.ShouldEqual, 1000)
}

func TestCurrentFor(t *testing.T) {
	test.That(t, CurrentFor(0), test.ShouldEqual, MA0)
	test.That(t, CurrentFor(15), test.ShouldEqual, MA50)
	test.That(t, CurrentFor(16), test.ShouldEqual, MA50)
	test.That(t, CurrentFor(-1), test.ShouldEqual, MA0)
	test.That(t, CurrentFor(7), test.ShouldEqual, MA24)
	test.That(t, MA27_1.MilliAmps(), test.ShouldAlmostEqual, 27.1)
}

func TestSetup(t *testing.T) {
	f := newFakeSensor()
	d, _ := newTestDevice(f)
	s := Settings{
		PowerLevel: 7,
		Mode:       ModeSpO2,
		SampleRate: 100,
		PulseWidth: 400,
		HighRes:    true,
	}

	test.That(t, d.Setup(s), test.ShouldBeNil)
	test.That(t, f.regs[RegSpO2Cfg], test.ShouldEqual, 0x45)
	test.That(t, f.regs[RegLEDCfg], test.ShouldEqual, 0x77)
	test.That(t, f.regs[RegModeCfg]&0b111, test.ShouldEqual, 0b011)
	test.That(t, f.regs[RegModeCfg]&reset, test.ShouldEqual, 0)
	test.That(t, f.regs[RegFIFOWrPtr], test.ShouldEqual, 0)
	test.That(t, f.regs[RegFIFORdPtr], test.ShouldEqual, 0)
	test.That(t, f.regs[RegOvfCounter], test.ShouldEqual, 0)

	t.Run("repeatable", func(t *testing.T) {
		spo2, led, mode := f.regs[RegSpO2Cfg], f.regs[RegLEDCfg], f.regs[RegModeCfg]
		test.That(t, d.Setup(s), test.ShouldBeNil)
		test.That(t, f.regs[RegSpO2Cfg], test.ShouldEqual, spo2)
		test.That(t, f.regs[RegLEDCfg], test.ShouldEqual, led)
		test.That(t, f.regs[RegModeCfg], test.ShouldEqual, mode)
	})

	t.Run("reconfigure", func(t *testing.T) {
		test.That(t, d.Setup(DefaultSettings()), test.ShouldBeNil)
		test.That(t, f.regs[RegSpO2Cfg], test.ShouldEqual, 0x03)
		test.That(t, f.regs[RegLEDCfg], test.ShouldEqual, 0xFF)
		test.That(t, f.regs[RegModeCfg]&0b111, test.ShouldEqual, 0b010)
	})
}

func TestSetupKeepsBuffer(t *testing.T) {
	f := newFakeSensor()
	d, _ := newTestDevice(f)
	f.push(samples(3, 1)...)
	_, err := d.Check()
	test.That(t, err, test.ShouldBeNil)

	test.That(t, d.Setup(DefaultSettings()), test.ShouldBeNil)
	test.That(t, d.Available(), test.ShouldEqual, 3)
}

func TestSetupInvalidMode(t *testing.T) {
	f := newFakeSensor()
	d, _ := newTestDevice(f)
	s := DefaultSettings()
	s.Mode = 0b111

	err := d.Setup(s)
	test.That(t, errors.Is(err, ErrInvalidSettings), test.ShouldBeTrue)
	test.That(t, f.writes, test.ShouldBeEmpty)
}

func TestSoftResetTimeout(t *testing.T) {
	f := newFakeSensor()
	f.resetPolls = -1
	core, logs := observer.New(zap.WarnLevel)
	d, mock := newTestDevice(f, WithLogger(zap.New(core)))
	start := mock.Now()

	err := d.SoftReset()
	test.That(t, errors.Is(err, ErrTimeout), test.ShouldBeTrue)
	test.That(t, mock.Since(start), test.ShouldBeGreaterThanOrEqualTo, resetTimeout)
	test.That(t, logs.FilterMessage("reset did not complete").Len(), test.ShouldEqual, 1)

	err = d.Setup(DefaultSettings())
	test.That(t, errors.Is(err, ErrTimeout), test.ShouldBeTrue)
}

func TestSoftReset(t *testing.T) {
	f := newFakeSensor()
	d, mock := newTestDevice(f)
	start := mock.Now()

	test.That(t, d.SoftReset(), test.ShouldBeNil)
	test.That(t, f.regs[RegModeCfg]&reset, test.ShouldEqual, 0)
	test.That(t, mock.Since(start), test.ShouldBeLessThan, resetTimeout)
}

func TestInterrupts(t *testing.T) {
	f := newFakeSensor()
	d, _ := newTestDevice(f)

	test.That(t, d.EnableInterrupts(IntAlmostFull|IntTempReady|IntPowerReady), test.ShouldBeNil)
	test.That(t, f.regs[RegIntEnable], test.ShouldEqual, 0xC0)

	test.That(t, d.EnableInterrupts(IntHRReady), test.ShouldBeNil)
	test.That(t, f.regs[RegIntEnable], test.ShouldEqual, 0xE0)

	test.That(t, d.DisableInterrupts(IntAlmostFull), test.ShouldBeNil)
	test.That(t, f.regs[RegIntEnable], test.ShouldEqual, 0x60)

	f.regs[RegIntStatus] = byte(IntTempReady | IntPowerReady)
	got, err := d.Interrupts()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got&IntTempReady, test.ShouldNotEqual, 0)
	test.That(t, got&IntAlmostFull, test.ShouldEqual, 0)
}

func TestShutdownPreservesMode(t *testing.T) {
	f := newFakeSensor()
	d, _ := newTestDevice(f)
	test.That(t, d.Setup(DefaultSettings()), test.ShouldBeNil)

	test.That(t, d.Shutdown(), test.ShouldBeNil)
	test.That(t, f.regs[RegModeCfg]&shutdown, test.ShouldEqual, shutdown)
	test.That(t, Mode(f.regs[RegModeCfg]&0b111), test.ShouldEqual, ModeHR)

	test.That(t, d.Wakeup(), test.ShouldBeNil)
	test.That(t, f.regs[RegModeCfg]&shutdown, test.ShouldEqual, 0)
}
