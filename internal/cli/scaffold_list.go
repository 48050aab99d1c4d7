package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bio-labs/bio/internal/scaffold"
)

var listJSON bool

func init() {
	scaffoldListCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	scaffoldCmd.AddCommand(scaffoldListCmd)
}

var scaffoldListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog and installed scaffolds",
	Args:  cobra.NoArgs,
	RunE:  runScaffoldList,
}

// listEntry represents a scaffold for display.
type listEntry struct {
	ShortName   string `json:"shortName,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
	Installed   string `json:"installed,omitempty"`
}

func runScaffoldList(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	table, err := projectTable(root)
	if err != nil {
		return err
	}
	installed, err := scaffold.List(root)
	if err != nil {
		return err
	}

	byName := make(map[string]*scaffold.Installed, len(installed))
	for _, inst := range installed {
		byName[inst.Name] = inst
	}

	var entries []listEntry
	for _, d := range table.List() {
		e := listEntry{ShortName: d.ShortName, Name: d.FullName, Description: d.Desc, Version: d.Version}
		if inst, ok := byName[d.FullName]; ok {
			e.Installed = inst.Version
			delete(byName, d.FullName)
		}
		entries = append(entries, e)
	}
	// Scaffolds outside the catalog, such as ones made with `scaffold create`.
	for _, inst := range installed {
		if _, ok := byName[inst.Name]; !ok {
			continue
		}
		entries = append(entries, listEntry{
			Name:        inst.Name,
			Description: inst.Manifest.Description,
			Version:     inst.Version,
			Installed:   inst.Version,
		})
	}

	if listJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling scaffold list: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SHORT NAME\tPACKAGE\tVERSION\tINSTALLED\tDESCRIPTION")
	for _, e := range entries {
		short := e.ShortName
		if short == "" {
			short = "-"
		}
		inst := e.Installed
		if inst == "" {
			inst = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", short, e.Name, e.Version, inst, e.Description)
	}
	return w.Flush()
}
