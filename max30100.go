// Package max30100 drives a MAX30100 pulse oximetry sensor over I²C.
//
// The driver configures the sensor, drains its 16 sample FIFO into a host
// side circular buffer and reads the die temperature. It does not compute
// heart rate or SpO2; it only delivers raw IR and red samples. The interrupt
// line is not used: callers poll the device with Check or SafeCheck.
//
// A Device is not safe for concurrent use.
package max30100

import (
	"errors"
	"fmt"
	"io"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"

	"github.com/cgxeiji/max30100/register"
)

var (
	// ErrWrongDevice is returned by Begin when the part ID read from the bus
	// does not match a MAX30100. This usually means a broken wire, an
	// unpowered sensor or another chip at the address.
	ErrWrongDevice = errors.New("max30100: part ID does not match (0x11)")
	// ErrNoData is returned when no new sample arrived in time.
	ErrNoData = errors.New("max30100: no new data")
	// ErrTimeout is returned when the device did not finish a reset or a
	// temperature conversion in time.
	ErrTimeout = errors.New("max30100: timed out")
	// ErrInvalidSettings is returned by Setup for settings the device cannot
	// take.
	ErrInvalidSettings = errors.New("max30100: invalid settings")
)

// Bus speeds
const (
	SpeedStandard = 100 * physic.KiloHertz
	SpeedFast     = 400 * physic.KiloHertz
)

// Device defines a MAX30100 device.
type Device struct {
	bus    i2c.Bus
	closer io.Closer
	reg    *register.Dev

	speed       physic.Frequency
	maxTransfer int
	clock       clock.Clock
	logger      *zap.Logger

	buf *SampleBuffer

	// RevID is the revision ID captured by Begin.
	RevID byte
}

// New returns a MAX30100 device on bus. It does not talk to the device; call
// Begin before anything else.
func New(bus i2c.Bus, opts ...Option) *Device {
	d := &Device{
		bus:         bus,
		reg:         register.New(bus, Addr),
		speed:       SpeedStandard,
		maxTransfer: MaxTransfer,
		clock:       clock.New(),
		logger:      zap.NewNop(),
		buf:         NewSampleBuffer(FIFODepth),
	}
	d.Options(opts...)

	return d
}

// Open initializes the host drivers, opens the I²C bus busName
// ("/dev/i2c-1", "I2C1", "1") and begins the device. An empty busName selects
// the first available bus. The bus is closed by Close.
func Open(busName string, opts ...Option) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("max30100: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("max30100: could not open I2C bus: %w", err)
	}

	d := New(bus, opts...)
	d.closer = bus
	if err := d.Begin(); err != nil {
		return nil, multierr.Append(err, bus.Close())
	}

	return d, nil
}

// Begin sets the bus speed and checks that a MAX30100 answers at the
// configured address. If the part ID does not match, Begin returns an error
// wrapping ErrWrongDevice and writes nothing to the device. On success it
// captures the revision ID.
func (d *Device) Begin() error {
	if err := d.bus.SetSpeed(d.speed); err != nil {
		return fmt.Errorf("max30100: could not set bus speed to %s: %w", d.speed, err)
	}

	part, err := d.ReadPartID()
	if err != nil {
		return err
	}
	if part != PartID {
		d.logger.Warn("unexpected part ID",
			zap.Uint16("addr", d.reg.Addr),
			zap.Uint8("part", part),
		)
		return fmt.Errorf("%w: got %#02x", ErrWrongDevice, part)
	}

	if d.RevID, err = d.ReadRevisionID(); err != nil {
		return err
	}
	d.logger.Debug("device found", zap.Uint8("rev", d.RevID))

	return nil
}

// Close puts the device in power-save mode and, if the device was created by
// Open, closes the bus.
func (d *Device) Close() error {
	err := d.Shutdown()
	if d.closer != nil {
		err = multierr.Append(err, d.closer.Close())
	}
	return err
}

// ReadPartID returns the part ID register.
func (d *Device) ReadPartID() (byte, error) {
	part, err := d.reg.Read(RegPartID)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not get part ID: %w", err)
	}
	return part, nil
}

// ReadRevisionID returns the revision ID register.
func (d *Device) ReadRevisionID() (byte, error) {
	rev, err := d.reg.Read(RegRevID)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not get revision ID: %w", err)
	}
	return rev, nil
}

// Register returns the register access layer of the device.
func (d *Device) Register() *register.Dev {
	return d.reg
}

func (d *Device) String() string {
	return fmt.Sprintf("MAX30100{%s, %#02x}", d.bus, d.reg.Addr)
}
