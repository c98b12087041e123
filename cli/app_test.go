package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/k3ddrss/logging"
	"go.viam.com/k3ddrss/lpddr4"
)

const simProfile = "testdata/sim16.json"

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(&out, logging.NewTestLogger(t))
	err := app.Run(append([]string{"ddrctl"}, args...))
	return out.String(), err
}

func TestBringupCommand(t *testing.T) {
	out, err := runApp(t, "bringup", "--profile", simProfile, "--sim")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "sim16 (PHY16)")
	test.That(t, out, test.ShouldContainSubstring, "pll lock")
	test.That(t, out, test.ShouldContainSubstring, "PASS")
	test.That(t, out, test.ShouldNotContainSubstring, "FAIL")
}

func TestBringup(t *testing.T) {
	res, err := Bringup(simProfile, true, "", logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Err, test.ShouldBeNil)
	test.That(t, res.Variant, test.ShouldEqual, "PHY16")
	test.That(t, res.Info, test.ShouldResemble, lpddr4.DebugInfo{})

	_, err = Bringup("testdata/missing.json", true, "", logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeError)
}

func TestRenderBringupFailure(t *testing.T) {
	var out bytes.Buffer
	renderBringup(&out, BringupResult{
		Profile: "board",
		Variant: "PHY32",
		Info:    lpddr4.DebugInfo{GateLevelingError: true},
		Err:     lpddr4.ErrTraining,
	})
	test.That(t, out.String(), test.ShouldContainSubstring, "FAIL")
	test.That(t, out.String(), test.ShouldContainSubstring, "board (PHY32)")
}

func TestRegsCommands(t *testing.T) {
	out, err := runApp(t, "regs", "read", "--profile", simProfile, "--sim", "--block", "pi", "--offset", "5")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "pi[5] = ")

	out, err = runApp(t, "regs", "write", "--profile", simProfile, "--sim", "--block", "phy", "--offset", "1280", "--value", "0xBEEF")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "phy[1280] <- 0x0000beef")

	_, err = runApp(t, "regs", "read", "--profile", simProfile, "--sim", "--block", "ctl", "--offset", "423")
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)

	_, err = runApp(t, "regs", "read", "--profile", simProfile, "--sim", "--block", "dram", "--offset", "1")
	test.That(t, errors.Is(err, lpddr4.ErrInvalidArgument), test.ShouldBeTrue)

	_, err = runApp(t, "regs", "write", "--profile", simProfile, "--sim", "--offset", "1", "--value", "0x100000000")
	test.That(t, err, test.ShouldBeError)
}

func TestQSPICalibrateCommand(t *testing.T) {
	out, err := runApp(t, "qspi", "calibrate", "--sim")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "RX: 22 TX: 29 RD: 2")
	test.That(t, out, test.ShouldContainSubstring, "3..7")

	out, err = runApp(t, "qspi", "calibrate", "--sim", "--temperature", "130")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "RX: 33 TX: 42 RD: 2")

	out, err = runApp(t, "qspi", "calibrate", "--sim", "--temperature", "150")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "disabled")

	_, err = runApp(t, "qspi", "calibrate")
	test.That(t, err, test.ShouldBeError)
}

func TestSchemaCommand(t *testing.T) {
	out, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"variant"`)
	test.That(t, out, test.ShouldContainSubstring, `"patches"`)
}

func TestProfileWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	test.That(t, os.WriteFile(path, []byte("{}"), 0o600), test.ShouldBeNil)

	w, err := newProfileWatcher(path)
	test.That(t, err, test.ShouldBeNil)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, logging.NewTestLogger(t), func() error {
			runs <- struct{}{}
			return errors.New("profile is not valid")
		})
	}()

	// Writes to other files in the directory are ignored.
	test.That(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(path, []byte(`{"name": "x"}`), 0o600), test.ShouldBeNil)

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("profile change not seen")
	}

	cancel()
	select {
	case err := <-done:
		test.That(t, err, test.ShouldBeNil)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
