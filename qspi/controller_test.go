package qspi_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/k3ddrss/qspi"
	regfake "go.viam.com/k3ddrss/regio/fake"
)

func TestControllerRegisters(t *testing.T) {
	bank := regfake.NewBank()
	ctrl := qspi.NewController(bank, testBase, testRefClkHz)

	test.That(t, ctrl.BaudDivider(1000000), test.ShouldEqual, uint32(12))
	test.That(t, ctrl.BaudDivider(testHz), test.ShouldEqual, uint32(0))
	test.That(t, ctrl.BaudDivider(1), test.ShouldEqual, uint32(15))
	test.That(t, ctrl.BaudDivider(0), test.ShouldEqual, uint32(15))

	ctrl.SetBaud(1000000)
	test.That(t, bank.Peek(testBase)>>19&0xF, test.ShouldEqual, uint32(12))
	test.That(t, ctrl.SCLK(), test.ShouldBeLessThanOrEqualTo, uint32(1000000))

	ctrl.Enable()
	test.That(t, ctrl.Enabled(), test.ShouldBeTrue)
	test.That(t, bank.Peek(testBase)&1, test.ShouldEqual, uint32(1))
	test.That(t, bank.Peek(testBase)>>19&0xF, test.ShouldEqual, uint32(12))
	ctrl.Disable()
	test.That(t, ctrl.Enabled(), test.ShouldBeFalse)

	ctrl.SetDelay(testHz, testTiming)
	test.That(t, bank.Peek(testBase+0x0C), test.ShouldEqual, uint32(0x05000007))

	ctrl.SetReadCapture(true, 9)
	test.That(t, bank.Peek(testBase+0x10), test.ShouldEqual, uint32(9<<1|1))
	test.That(t, ctrl.ReadCaptureDelay(), test.ShouldEqual, uint32(9))
	ctrl.SetReadCapture(false, 2)
	test.That(t, bank.Peek(testBase+0x10), test.ShouldEqual, uint32(2<<1))

	ctrl.SetDLL(33, 47)
	rx, tx := ctrl.DLL()
	test.That(t, rx, test.ShouldEqual, 33)
	test.That(t, tx, test.ShouldEqual, 47)
	writes := bank.Writes(testBase + 0xB4)
	test.That(t, len(writes), test.ShouldEqual, 2)
	test.That(t, writes[1]>>31, test.ShouldEqual, uint32(1))

	ctrl.SetPHY(true)
	test.That(t, ctrl.PHYEnabled(), test.ShouldBeTrue)
	ctrl.SetPHY(false)
	test.That(t, ctrl.PHYEnabled(), test.ShouldBeFalse)
}

func TestSysfsThermal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "temp")
	test.That(t, os.WriteFile(path, []byte("52750\n"), 0o600), test.ShouldBeNil)

	c, err := qspi.SysfsThermal{Path: path}.Temperature(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, 52)

	test.That(t, os.WriteFile(path, []byte("-12000"), 0o600), test.ShouldBeNil)
	c, err = qspi.SysfsThermal{Path: path}.Temperature(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, -12)

	test.That(t, os.WriteFile(path, []byte("warm"), 0o600), test.ShouldBeNil)
	_, err = qspi.SysfsThermal{Path: path}.Temperature(context.Background())
	test.That(t, err, test.ShouldBeError)

	_, err = qspi.SysfsThermal{Path: filepath.Join(dir, "missing")}.Temperature(context.Background())
	test.That(t, err, test.ShouldBeError)
}
