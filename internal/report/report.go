// Package report prints rule results for a terminal, green for success and
// red for errors.
package report

import (
	"fmt"
	"io"

	"dynipupdater/models"

	"github.com/fatih/color"
)

var (
	colorTitle   = color.New(color.Bold)
	colorSuccess = color.New(color.FgGreen)
	colorError   = color.New(color.FgRed, color.Bold)
	colorIP      = color.New(color.FgCyan, color.Bold)
)

func PublicIP(w io.Writer, ip string) {
	fmt.Fprint(w, "Public IP: ")
	colorIP.Fprintln(w, ip)
}

// Results prints title followed by one line per result, in order.
func Results(w io.Writer, title string, results []models.RuleChangeResult) {
	colorTitle.Fprintln(w, title)
	if len(results) == 0 {
		fmt.Fprintln(w, "  no rules configured")
		return
	}
	for _, r := range results {
		c := colorSuccess
		if !r.OK() {
			c = colorError
		}
		c.Fprintf(w, "  [%s] %s\n", r.Rule.SecurityGroupID, r.Message)
	}
}
