package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"go.viam.com/k3ddrss/config"
)

var (
	passText = color.New(color.FgGreen).SprintFunc()
	failText = color.New(color.FgRed, color.Bold).SprintFunc()
)

func verdict(failed bool) string {
	if failed {
		return failText("FAIL")
	}
	return passText("PASS")
}

func renderBringup(w io.Writer, res BringupResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s (%s)", res.Profile, res.Variant))
	t.AppendHeader(table.Row{"Check", "Result"})
	for _, check := range res.Info.Checks() {
		t.AppendRow(table.Row{check.Name, verdict(check.Failed)})
	}
	t.AppendFooter(table.Row{"training", verdict(res.Err != nil)})
	t.Render()
}

func renderQSPI(w io.Writer, res QSPIResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Stage", "Result"})
	t.AppendRow(table.Row{"bus speed", fmt.Sprintf("%d Hz", res.Capture.Hz)})
	t.AppendRow(table.Row{"capture window", fmt.Sprintf("%d..%d", res.Capture.Low, res.Capture.High)})
	t.AppendRow(table.Row{"capture delay", res.Capture.Delay})
	if res.UsePHY {
		t.AppendRow(table.Row{"phy", passText(res.PHY.String())})
	} else {
		t.AppendRow(table.Row{"phy", failText("disabled")})
	}
	t.Render()
}

// SchemaAction prints the profile JSON schema.
func SchemaAction(c *cli.Context) error {
	out, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}
