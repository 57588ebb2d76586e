// Command max30100 probes a MAX30100 sensor on an I²C bus, reads its die
// temperature and streams raw IR and red samples.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"periph.io/x/periph/conn/physic"

	"github.com/cgxeiji/max30100"
)

const (
	// Global flags.
	flagBus   = "bus"
	flagAddr  = "addr"
	flagSpeed = "speed"
	flagDebug = "debug"

	// Command flags.
	flagPower    = "power"
	flagMode     = "mode"
	flagRate     = "rate"
	flagPulse    = "pulse"
	flagHighRes  = "highres"
	flagCount    = "count"
	flagInterval = "interval"
)

// waitStep is how long stream waits for new samples before checking again.
const waitStep = 250 * time.Millisecond

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type tool struct {
	logger *zap.Logger
}

func newApp() *cli.App {
	t := &tool{logger: zap.NewNop()}

	return &cli.App{
		Name:  "max30100",
		Usage: "talk to a MAX30100 pulse oximetry sensor",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagBus,
				Usage:   "I²C bus name, empty for the first available bus",
				EnvVars: []string{"MAX30100_BUS"},
			},
			&cli.UintFlag{
				Name:    flagAddr,
				Usage:   "I²C address of the sensor",
				Value:   max30100.Addr,
				EnvVars: []string{"MAX30100_ADDR"},
			},
			&cli.UintFlag{
				Name:  flagSpeed,
				Usage: "bus clock in kHz",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: t.setupLogger,
		After: func(c *cli.Context) error {
			_ = t.logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "print part and revision IDs and the die temperature",
				Action: t.info,
			},
			{
				Name:  "stream",
				Usage: "configure the sensor and print raw samples, oldest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagPower,
						Usage: "LED power level, 0 to 15",
						Value: 0x0F,
					},
					&cli.StringFlag{
						Name:  flagMode,
						Usage: "LED mode, hr or spo2",
						Value: "hr",
					},
					&cli.IntFlag{
						Name:  flagRate,
						Usage: "samples per second",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  flagPulse,
						Usage: "LED pulse width in µs",
						Value: 1600,
					},
					&cli.BoolFlag{
						Name:  flagHighRes,
						Usage: "enable high resolution mode",
					},
					&cli.IntFlag{
						Name:  flagCount,
						Usage: "number of samples to print, 0 for no limit",
					},
				},
				Action: t.stream,
			},
			{
				Name:  "temp",
				Usage: "print the die temperature",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagCount,
						Usage: "number of readings, 0 for no limit",
						Value: 1,
					},
					&cli.DurationFlag{
						Name:  flagInterval,
						Usage: "time between readings",
						Value: 500 * time.Millisecond,
					},
				},
				Action: t.temp,
			},
		},
	}
}

func (t *tool) setupLogger(c *cli.Context) error {
	cfg := zap.NewProductionConfig()
	if c.Bool(flagDebug) {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("could not build logger: %w", err)
	}
	t.logger = logger.Named("max30100")

	return nil
}

func (t *tool) open(c *cli.Context) (*max30100.Device, error) {
	return max30100.Open(c.String(flagBus),
		max30100.OnAddr(uint16(c.Uint(flagAddr))),
		max30100.WithBusSpeed(physic.Frequency(c.Uint(flagSpeed))*physic.KiloHertz),
		max30100.WithLogger(t.logger),
	)
}

func (t *tool) info(c *cli.Context) error {
	d, err := t.open(c)
	if err != nil {
		return err
	}
	defer d.Close()

	part, err := d.ReadPartID()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\npart:     %#02x\nrevision: %d\n", d, part, d.RevID)

	temp, err := d.Temperature()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "temp:     %.2f°C\n", temp)

	return nil
}

func (t *tool) stream(c *cli.Context) error {
	s, err := settingsFrom(c)
	if err != nil {
		return err
	}

	d, err := t.open(c)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Setup(s); err != nil {
		return err
	}

	count := c.Int(flagCount)
	for printed := 0; count == 0 || printed < count; {
		if err := c.Context.Err(); err != nil {
			return nil
		}
		if _, err := d.SafeCheck(waitStep); err != nil {
			return err
		}
		for ; d.Available() > 0 && (count == 0 || printed < count); printed++ {
			sample, _ := d.FIFOSample()
			d.NextSample()
			fmt.Fprintf(c.App.Writer, "%d\t%d\n", sample.IR, sample.Red)
		}
		if n := d.Overruns(); n > 0 {
			t.logger.Debug("overruns so far", zap.Int("samples", n))
		}
	}

	return nil
}

func (t *tool) temp(c *cli.Context) error {
	d, err := t.open(c)
	if err != nil {
		return err
	}
	defer d.Close()

	tick := time.NewTicker(c.Duration(flagInterval))
	defer tick.Stop()

	count := c.Int(flagCount)
	for i := 0; count == 0 || i < count; i++ {
		if i > 0 {
			select {
			case <-c.Context.Done():
				return nil
			case <-tick.C:
			}
		}
		temp, err := d.Temperature()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "temp = %02.2f°C (%02.2f°F)\n", temp, temp*1.8+32)
	}

	return nil
}

func settingsFrom(c *cli.Context) (max30100.Settings, error) {
	mode, err := parseMode(c.String(flagMode))
	if err != nil {
		return max30100.Settings{}, err
	}
	s := max30100.Settings{
		PowerLevel: c.Int(flagPower),
		Mode:       mode,
		SampleRate: c.Int(flagRate),
		PulseWidth: c.Int(flagPulse),
		HighRes:    c.Bool(flagHighRes),
	}

	return s, s.Validate()
}

func parseMode(s string) (max30100.Mode, error) {
	switch strings.ToLower(s) {
	case "hr":
		return max30100.ModeHR, nil
	case "spo2":
		return max30100.ModeSpO2, nil
	}
	return 0, fmt.Errorf("unknown mode %q, want hr or spo2", s)
}
