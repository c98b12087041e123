// Package cli contains the ddrctl command line: DDR bring-up, register access and QSPI
// calibration against hardware or the simulators.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/k3ddrss/logging"
)

// Flags.
const (
	flagDebug       = "debug"
	flagProfile     = "profile"
	flagSim         = "sim"
	flagWatch       = "watch"
	flagMapper      = "mapper"
	flagBlock       = "block"
	flagOffset      = "offset"
	flagValue       = "value"
	flagTemperature = "temperature"
	flagHz          = "hz"

	mapperPeriph = "periph"
	mapperDevMem = "devmem"
)

const loggerKey = "logger"

// NewApp returns the ddrctl application writing to out. A nil logger is replaced by one chosen
// by the --debug flag.
func NewApp(out io.Writer, logger logging.Logger) *cli.App {
	profileFlag := &cli.StringFlag{
		Name:     flagProfile,
		Aliases:  []string{"p"},
		Usage:    "board DDR profile `FILE`",
		Required: true,
	}
	simFlag := &cli.BoolFlag{
		Name:  flagSim,
		Usage: "run against a simulated controller instead of hardware",
	}
	mapperFlag := &cli.StringFlag{
		Name:  flagMapper,
		Value: mapperPeriph,
		Usage: "physical memory mapper, " + mapperPeriph + " or " + mapperDevMem,
	}

	return &cli.App{
		Name:            "ddrctl",
		Usage:           "bring up and calibrate K3 LPDDR4 and QSPI interfaces",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			l := logger
			if l == nil {
				if c.Bool(flagDebug) {
					l = logging.NewDebugLogger("ddrctl")
				} else {
					l = logging.NewLogger("ddrctl")
				}
			}
			if c.App.Metadata == nil {
				c.App.Metadata = map[string]interface{}{}
			}
			c.App.Metadata[loggerKey] = l
			logging.ReplaceGlobal(l)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "bringup",
				Usage:  "apply a profile, run the start sequence and report training results",
				Flags:  []cli.Flag{profileFlag, simFlag, mapperFlag, &cli.BoolFlag{Name: flagWatch, Usage: "rerun when the profile changes"}},
				Action: BringupAction,
			},
			{
				Name:            "regs",
				Usage:           "access controller registers",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:  "read",
						Usage: "read one register",
						Flags: []cli.Flag{
							profileFlag, simFlag, mapperFlag,
							&cli.StringFlag{Name: flagBlock, Value: "ctl", Usage: "register block: ctl, pi or phy"},
							&cli.UintFlag{Name: flagOffset, Required: true, Usage: "register offset"},
						},
						Action: RegsReadAction,
					},
					{
						Name:  "write",
						Usage: "write one register",
						Flags: []cli.Flag{
							profileFlag, simFlag, mapperFlag,
							&cli.StringFlag{Name: flagBlock, Value: "ctl", Usage: "register block: ctl, pi or phy"},
							&cli.UintFlag{Name: flagOffset, Required: true, Usage: "register offset"},
							&cli.Uint64Flag{Name: flagValue, Required: true, Usage: "value to write"},
						},
						Action: RegsWriteAction,
					},
				},
			},
			{
				Name:            "qspi",
				Usage:           "calibrate the QSPI read path",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:  "calibrate",
						Usage: "calibrate the read capture delay and the PHY delay lines",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: flagProfile, Aliases: []string{"p"}, Usage: "board profile `FILE` with a qspi section"},
							simFlag,
							&cli.IntFlag{Name: flagTemperature, Value: 45, Usage: "simulated die temperature in Celsius"},
							&cli.UintFlag{Name: flagHz, Usage: "bus speed; defaults to spi-max-frequency"},
						},
						Action: QSPICalibrateAction,
					},
				},
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of a profile",
				Action: SchemaAction,
			},
		},
	}
}

func loggerFrom(c *cli.Context) logging.Logger {
	if l, ok := c.App.Metadata[loggerKey].(logging.Logger); ok {
		return l
	}
	return logging.Global()
}
