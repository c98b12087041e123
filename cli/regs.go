package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"go.viam.com/k3ddrss/lpddr4"
)

func regArgs(c *cli.Context) (lpddr4.RegBlock, uint32, error) {
	block, err := lpddr4.ParseRegBlock(c.String(flagBlock))
	if err != nil {
		return 0, 0, err
	}
	off := c.Uint(flagOffset)
	if uint64(off) > uint64(^uint32(0)) {
		return 0, 0, errors.Errorf("offset %d too large", off)
	}
	return block, uint32(off), nil
}

// RegsReadAction prints one register.
func RegsReadAction(c *cli.Context) error {
	block, off, err := regArgs(c)
	if err != nil {
		return err
	}
	ctrl, _, t, err := openController(c.String(flagProfile), c.Bool(flagSim), c.String(flagMapper), loggerFrom(c))
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(t.Close)

	v, err := ctrl.ReadReg(block, off)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s[%d] = 0x%08x\n", block, off, v)
	return nil
}

// RegsWriteAction writes one register.
func RegsWriteAction(c *cli.Context) error {
	block, off, err := regArgs(c)
	if err != nil {
		return err
	}
	value := c.Uint64(flagValue)
	if value > uint64(^uint32(0)) {
		return errors.Errorf("value %#x does not fit in 32 bits", value)
	}
	ctrl, _, t, err := openController(c.String(flagProfile), c.Bool(flagSim), c.String(flagMapper), loggerFrom(c))
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(t.Close)

	if err := ctrl.WriteReg(block, off, uint32(value)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s[%d] <- 0x%08x\n", block, off, value)
	return nil
}
