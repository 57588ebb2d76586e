package max30100

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const tempTimeout = 100 * time.Millisecond

// Temperature starts a die temperature conversion and returns the result in
// °C, with a resolution of 1/16 °C.
//
// If the conversion does not finish within 100ms, Temperature still reads the
// temperature registers and returns that value together with an error
// wrapping ErrTimeout.
func (d *Device) Temperature() (float64, error) {
	if err := d.reg.BitMask(RegModeCfg, tempMask, tempEna); err != nil {
		return 0, fmt.Errorf("max30100: could not start temperature conversion: %w", err)
	}
	done, err := d.reg.WaitClear(RegModeCfg, tempEna, tempTimeout)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not wait for temperature conversion: %w", err)
	}

	// The fraction register follows the integer one, so one read gets both.
	b, err := d.reg.ReadBytes(RegTempInt, 2)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not read temperature: %w", err)
	}
	t := float64(int8(b[0])) + float64(b[1]&tempFracBits)*0.0625

	if !done {
		d.logger.Warn("temperature conversion did not complete",
			zap.Duration("timeout", tempTimeout),
			zap.Float64("celsius", t),
		)
		return t, fmt.Errorf("max30100: could not complete temperature conversion: %w", ErrTimeout)
	}

	return t, nil
}

// TemperatureF returns the die temperature in °F. Errors are the same as for
// Temperature.
func (d *Device) TemperatureF() (float64, error) {
	t, err := d.Temperature()
	if err != nil && !errors.Is(err, ErrTimeout) {
		return 0, err
	}
	return t*1.8 + 32, err
}
