// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"linolayout/internal/layout"
)

// PrintDescriptorHelp prints a guide to writing catalog layouts. It combines
// static prose with the predefined kinds and the registered commands.
func (a *App) PrintDescriptorHelp(w io.Writer) {
	fmt.Fprintln(w, "LAYOUT DESCRIPTOR GUIDE")
	fmt.Fprintln(w, "=======================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERVIEW")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "A catalog file (.yaml, .yml or .toml) declares data sources and the layouts")
	fmt.Fprintln(w, "built on them. Each layout has a main descriptor and optional named panels.")
	fmt.Fprintln(w, "Descriptors are turned into element trees per renderer (web or term) and")
	fmt.Fprintln(w, "cached until the catalog changes.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DESCRIPTORS")
	fmt.Fprintln(w, "-----------")
	fmt.Fprintln(w, "  title price        Horizontal: names separated by whitespace.")
	fmt.Fprintln(w, "  \"title\\nprice\"     Vertical: one row per line, each row a sub-panel")
	fmt.Fprintln(w, "                     named <panel>_1, <panel>_2, ...")
	fmt.Fprintln(w, "  title \\<newline>   A trailing backslash continues the line.")
	fmt.Fprintln(w, "  #price             Tokens starting with # are skipped; so are lines")
	fmt.Fprintln(w, "                     starting with \"# \" in vertical descriptors.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A name refers to a panel of the layout if one exists, otherwise to a field")
	fmt.Fprintln(w, "of the data source. Unknown names fail with a \"did you mean\" suggestion.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PICTURES")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "  name               Default size.")
	fmt.Fprintln(w, "  name:20            Width 20.")
	fmt.Fprintln(w, "  name:20x3          Width 20, height 3.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "WILDCARD")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "  *                  Only in main. Expands to every field not named")
	fmt.Fprintln(w, "                     explicitly, except *_ptr and virtual fields.")
	fmt.Fprintln(w, "  title *            Fields added next to explicit names are hidden.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Kinds that exclude the master key leave it out of the expansion. Otherwise a")
	fmt.Fprintln(w, "master key that is neither explicit nor hidden is appended and hidden.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "KINDS")
	fmt.Fprintln(w, "-----")
	for _, name := range layout.KindNames() {
		k, _ := layout.KindByName(name)
		var notes []string
		if k.RequireDataSource {
			notes = append(notes, "needs a source")
		}
		if k.ExcludeMasterKey {
			notes = append(notes, "master key excluded")
		}
		if k.WindowSize != nil {
			notes = append(notes, fmt.Sprintf("window width %d", k.WindowSize.Width))
		}
		fmt.Fprintf(w, "  %-18s %s\n", name, strings.Join(notes, ", "))
	}
	fmt.Fprintln(w)

	a.printCommandReference(w)

	fmt.Fprintln(w, "EXIT CODES")
	fmt.Fprintln(w, "----------")
	fmt.Fprintln(w, "  0  Success")
	fmt.Fprintln(w, "  1  Error (invalid arguments, broken catalog, failed build, etc.)")
	fmt.Fprintln(w, "  2  No running linolayout instance found (remote commands)")
}

// printCommandReference prints the registered commands and groups.
func (a *App) printCommandReference(w io.Writer) {
	fmt.Fprintln(w, "COMMAND REFERENCE")
	fmt.Fprintln(w, "-----------------")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Top-level commands:")
	for _, name := range slices.Sorted(maps.Keys(a.commands)) {
		cmd := a.commands[name]
		fmt.Fprintf(w, "  %-16s %s\n", cmd.Name, cmd.Summary)
		fmt.Fprintf(w, "                   %s\n", cmd.Usage)
	}
	fmt.Fprintln(w)

	for _, groupName := range slices.Sorted(maps.Keys(a.groups)) {
		group := a.groups[groupName]
		fmt.Fprintf(w, "%s commands: %s\n", group.Name, group.Summary)
		for _, name := range slices.Sorted(maps.Keys(group.Commands)) {
			cmd := group.Commands[name]
			fmt.Fprintf(w, "  %-16s %s\n", groupName+" "+cmd.Name, cmd.Summary)
			fmt.Fprintf(w, "                   %s\n", cmd.Usage)
		}
		fmt.Fprintln(w)
	}
}
