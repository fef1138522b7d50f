package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/store"
	"github.com/kindling-io/kindling/internal/templates"
	"github.com/kindling-io/kindling/internal/workspace"
)

const storeTimeout = 10 * time.Second

var (
	flagProjectAll         bool
	flagProjectName        string
	flagProjectDescription string
	flagProjectTemplate    string
	flagProjectCodeOnly    bool
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects", "p"},
	Short:   "Manage projects",
	Long:    `Manage your projects in the configured store.`,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your projects",
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project from a template",
	Args:  cobra.NoArgs,
	RunE:  runProjectCreate,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a project you own",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectDelete,
}

var projectShareCmd = &cobra.Command{
	Use:   "share [project-id]",
	Short: "Print the share link of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShare,
}

func init() {
	projectListCmd.Flags().BoolVar(&flagProjectAll, "all", false, "Include projects owned by other users")

	projectCreateCmd.Flags().StringVar(&flagProjectName, "name", "", "Project name (defaults to the template name)")
	projectCreateCmd.Flags().StringVar(&flagProjectDescription, "description", "", "Project description (defaults to the template description)")
	projectCreateCmd.Flags().StringVarP(&flagProjectTemplate, "template", "t", "", "Template to start from (see 'kindling template list')")
	_ = projectCreateCmd.MarkFlagRequired("template")

	projectShowCmd.Flags().BoolVar(&flagProjectCodeOnly, "code", false, "Print only the code")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShareCmd)
	projectCmd.AddCommand(projectShowCmd)
}

// openStore opens the store selected in settings.
func openStore() (store.Store, *models.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	st, err := store.Open(settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", settings.Store.Backend, err)
	}
	return st, settings, nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
	defer cancel()
	projects, err := st.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	shown := 0
	for _, p := range projects {
		owned := p.OwnerID == user.UID
		if !owned && !flagProjectAll {
			continue
		}
		badge := badgeOwner.Render("owner ")
		if !owned {
			badge = badgeViewer.Render("viewer")
		}
		fmt.Fprintf(out, "  %s  %s  %s  %s\n",
			styleHint.Render(p.ProjectID),
			badge,
			styleValue.Render(p.Name),
			styleLabel.Render(p.UpdatedAt.Local().Format("2006-01-02 15:04")))
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "No projects. Run "+styleCommand.Render("kindling project create --template <name>")+" to start one.")
	}
	return nil
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	dir, err := config.GlobalTemplatesDir()
	if err != nil {
		return err
	}
	catalog, err := templates.Load(dir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	tpl, ok := catalog.Find(flagProjectTemplate)
	if !ok {
		return fmt.Errorf("unknown template %q; run 'kindling template list'", flagProjectTemplate)
	}

	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	name := strings.TrimSpace(flagProjectName)
	if name == "" {
		name = tpl.Name
	}
	desc := flagProjectDescription
	if desc == "" {
		desc = tpl.Description
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
	defer cancel()
	p, err := st.Create(ctx, store.CreateOptions{Name: name, Description: desc, OwnerID: user.UID})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	if p, err = st.Update(ctx, p.ProjectID, store.CodeUpdate(tpl.Code)); err != nil {
		return fmt.Errorf("failed to write template code: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styleSuccess.Render(fmt.Sprintf("Project %q created from template %q.", p.Name, tpl.Name)))
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("ID:"), styleValue.Render(p.ProjectID))
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	st, settings, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
	defer cancel()
	p, err := st.Get(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagProjectCodeOnly {
		fmt.Fprintln(out, p.Code)
		return nil
	}

	user, err := currentUser()
	if err != nil {
		return err
	}
	role := badgeViewer.Render("viewer")
	if user != nil && user.UID == p.OwnerID {
		role = badgeOwner.Render("owner")
	}

	fmt.Fprintln(out, styleHeader.Render(p.Name))
	if p.Description != "" {
		fmt.Fprintln(out, styleHint.Render(p.Description))
	}
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("ID:      "), styleValue.Render(p.ProjectID))
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Role:    "), role)
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Created: "), styleValue.Render(p.CreatedAt.Local().Format(time.RFC1123)))
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Updated: "), styleValue.Render(p.UpdatedAt.Local().Format(time.RFC1123)))
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Lines:   "), styleValue.Render(fmt.Sprint(lineCount(p.Code))))
	fmt.Fprintf(out, "  %s %s\n", styleLabel.Render("Share:   "), styleValue.Render(workspace.ShareURL(settings.ShareOrigin, p.ProjectID)))
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
	defer cancel()
	p, err := st.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if p.OwnerID != user.UID {
		return fmt.Errorf("project %s belongs to another user", p.ProjectID)
	}
	if err := st.Delete(ctx, p.ProjectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project %q deleted.\n", p.Name)
	return nil
}

func runProjectShare(cmd *cobra.Command, args []string) error {
	st, settings, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), storeTimeout)
	defer cancel()
	p, err := st.Get(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), workspace.ShareURL(settings.ShareOrigin, p.ProjectID))
	return nil
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
