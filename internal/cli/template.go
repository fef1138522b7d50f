package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/templates"
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates"},
	Short:   "Browse project templates",
}

var templateListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available templates",
	Args:    cobra.NoArgs,
	RunE:    runTemplateList,
}

func init() {
	templateCmd.AddCommand(templateListCmd)
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	dir, err := config.GlobalTemplatesDir()
	if err != nil {
		return err
	}
	catalog, err := templates.Load(dir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	out := cmd.OutOrStdout()
	category := ""
	for i, t := range catalog.All() {
		if t.Category != category {
			if i > 0 {
				fmt.Fprintln(out)
			}
			category = t.Category
			fmt.Fprintln(out, styleHeader.Render(category))
		}
		fmt.Fprintf(out, "  %-20s %s\n", styleValue.Render(t.Name), styleHint.Render(t.Description))
	}
	return nil
}
