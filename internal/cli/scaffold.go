package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bio-labs/bio/internal/branding"
	"github.com/bio-labs/bio/internal/catalog"
	"github.com/bio-labs/bio/internal/project"
	"github.com/bio-labs/bio/internal/scaffold"
)

func init() {
	scaffoldCmd.AddCommand(scaffoldShowCmd)
	rootCmd.AddCommand(scaffoldCmd)
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Show, list and create scaffolds",
}

var scaffoldShowCmd = &cobra.Command{
	Use:   "show <scaffoldName>",
	Short: "Show a scaffold from the catalog or the project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nPlease input scaffold name you want to show: %s scaffold show <scaffoldName>\n\n", branding.CLIName())
			return nil
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}
		table, err := projectTable(root)
		if err != nil {
			return err
		}

		desc, inst, err := findScaffold(table, root, args[0])
		if err != nil {
			return err
		}
		renderScaffold(cmd.OutOrStdout(), root, desc, inst)
		return nil
	},
}

// projectTable returns the project's catalog, or the default one outside a
// project.
func projectTable(root string) (*catalog.Table, error) {
	store := newStore()
	cfg, err := store.Load(root)
	if errors.Is(err, project.ErrConfigNotFound) {
		cfg, err = store.Initialize(projectDefaults(""))
	}
	if err != nil {
		return nil, err
	}
	return cfg.Table()
}

// findScaffold looks name up as a short name, a package name and finally as
// the name of a scaffold installed in the project. inst is nil when the
// scaffold is not installed.
func findScaffold(table *catalog.Table, root, name string) (catalog.Descriptor, *scaffold.Installed, error) {
	desc, err := table.Resolve(name)
	if err != nil {
		found, ok := table.FindByFullName(name)
		if !ok {
			inst, locErr := scaffold.Locate(root, name)
			if locErr != nil {
				return catalog.Descriptor{}, nil, err
			}
			return catalog.Descriptor{FullName: inst.Name, Desc: inst.Manifest.Description, Version: inst.Version}, inst, nil
		}
		desc = found
	}
	inst, err := scaffold.Locate(root, desc.FullName)
	if err != nil {
		inst = nil
	}
	return desc, inst, nil
}

func renderScaffold(w io.Writer, root string, desc catalog.Descriptor, inst *scaffold.Installed) {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(desc.FullName) + "\n")
	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString("  " + labelStyle.Render(cases.Title(language.English).String(label)) + value + "\n")
	}
	row("short name", desc.ShortName)
	row("description", desc.Desc)
	row("version", desc.Version)

	if inst == nil {
		row("installed", mutedStyle.Render("no"))
		b.WriteString("\n")
		fmt.Fprint(w, b.String())
		return
	}

	dir := inst.Dir
	if rel, err := filepath.Rel(root, inst.Dir); err == nil {
		dir = rel
	}
	row("installed", fmt.Sprintf("%s at %s", inst.Version, dir))
	row("runtime", inst.Manifest.Runtime)
	if inst.Lock != nil {
		row("tarball", inst.Lock.Tarball)
	}
	if names := inst.Manifest.TaskNames(); len(names) > 0 {
		b.WriteString("  " + labelStyle.Render("Tasks") + "\n")
		for _, name := range names {
			task, _ := inst.Manifest.Task(name)
			line := task.Run
			if line == "" {
				line = task.Description
			}
			fmt.Fprintf(&b, "    %-12s %s\n", name, mutedStyle.Render(line))
		}
	}
	b.WriteString("\n")
	fmt.Fprint(w, b.String())
}
