package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bio-labs/bio/internal/branding"
)

// overview lists the verbs shown when bio is run without arguments.
var overview = [][2]string{
	{"init", "init [scaffoldName]"},
	{"run", "run <task> [-n, --no-watch]"},
	{"mock", "mock [port]"},
	{"show scaffold", "scaffold show <scaffoldName>"},
	{"create scaffold", "scaffold create"},
	{"list scaffolds", "scaffold list"},
	{"lint init", "lint init [-t, --type es6|es5]"},
	{"lint run", "lint [target] [-w, --watch] [-f, --fix]"},
	{"doctor", "doctor [--fix]"},
	{"update", "update"},
	{"help", "help [command]"},
}

func printOverview(w io.Writer) {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(branding.DisplayName()) + " " + mutedStyle.Render(branding.Description()) + "\n\n")
	for _, row := range overview {
		fmt.Fprintf(&b, " - %-18s >  %s\n", row[0], commandStyle.Render(branding.CLIName()+" "+row[1]))
	}
	b.WriteString("\n")
	fmt.Fprint(w, b.String())
}
