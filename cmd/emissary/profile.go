package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/azdolinski/emissary/internal/model"
	"github.com/azdolinski/emissary/internal/runner"
)

// errDuplicateName is returned when a profile name is already taken.
// Names double as references, so they must stay unique.
var errDuplicateName = errors.New("profile name already exists")

// NewSelectCmd creates the select command.
func NewSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <profile>",
		Short: "Select the profile run by default",
		Long: `Select stores the profile that 'emissary run' uses when no profile is named.
The profile may be given by ID or exact name and must be enabled.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			p, _, err := a.findProfile(ctx, args[0])
			if err != nil {
				return err
			}
			if !p.Status {
				return fmt.Errorf("%w: %s", runner.ErrProfileDisabled, p.Name)
			}

			input, err := a.repo.UserInput(ctx)
			if err != nil {
				return err
			}
			input.SelectedProfileID = p.ID
			if err := a.repo.SaveUserInput(ctx, input); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Selected profile: %s (%s)\n", p.Name, p.ID)
			return nil
		}),
	}
}

// NewProfileCmd creates the profile command group.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
		Long: `Manage profiles. A profile is a named, ordered list of actions.

Profiles are referenced by ID or exact name.`,
	}

	cmd.AddCommand(
		newProfileAddCmd(),
		newProfileListCmd(),
		newProfileShowCmd(),
		newProfileDeleteCmd(),
		newProfileToggleCmd(),
		newProfileRenameCmd(),
	)
	return cmd
}

func newProfileAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create an empty, enabled profile",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			profiles, err := a.repo.Profiles(ctx)
			if err != nil {
				return err
			}
			if _, _, ok := model.FindProfile(profiles, args[0]); ok {
				return fmt.Errorf("%w: %s", errDuplicateName, args[0])
			}

			p, err := model.NewProfile(args[0])
			if err != nil {
				return err
			}
			if err := a.repo.SaveProfiles(ctx, model.AddProfile(profiles, p)); err != nil {
				return err
			}

			a.logger.Info("profile created", "profile", p.Name, "id", p.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s (%s)\n", p.Name, p.ID)
			return nil
		}),
	}
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			state, err := a.repo.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(state.Profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No profiles found.")
				fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'emissary profile add <name>' to create one.")
				return nil
			}
			return writeProfileTable(cmd.OutOrStdout(), state.Profiles, state.Input.SelectedProfileID)
		}),
	}
}

// writeProfileTable renders profiles as a table. The selected profile is
// marked with '*'.
func writeProfileTable(w io.Writer, profiles []model.Profile, selectedID string) error {
	table := tablewriter.NewWriter(w)
	table.Header("", "ID", "Name", "Status", "Actions", "Last Run")
	for _, p := range profiles {
		mark := ""
		if p.ID == selectedID {
			mark = "*"
		}
		if err := table.Append([]string{
			mark,
			p.ID,
			p.Name,
			statusText(p.Status),
			strconv.Itoa(len(p.Actions)),
			lastRunText(p),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func statusText(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func lastRunText(p model.Profile) string {
	if p.LastRun == nil {
		return "never"
	}
	return humanize.Time(*p.LastRun)
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile>",
		Short: "Show a profile and its actions",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			p, _, err := a.findProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeProfile(cmd.OutOrStdout(), p)
		}),
	}
}

// writeProfile prints a profile with every action, headers and data sorted
// by key.
func writeProfile(w io.Writer, p model.Profile) error {
	fmt.Fprintf(w, "Name:     %s\n", p.Name)
	fmt.Fprintf(w, "ID:       %s\n", p.ID)
	fmt.Fprintf(w, "Status:   %s\n", statusText(p.Status))
	fmt.Fprintf(w, "Last run: %s\n", lastRunText(p))

	if len(p.Actions) == 0 {
		fmt.Fprintln(w, "\nNo actions.")
		return nil
	}

	for i, act := range p.Actions {
		fmt.Fprintf(w, "\n[%d] %s\n", i, act.Name)
		fmt.Fprintf(w, "    %s %s\n", act.Method, act.URL)
		writeFields(w, "Headers", act.Headers)
		writeFields(w, "Data", act.Data)
	}
	return nil
}

func writeFields(w io.Writer, label string, f model.Fields) {
	if len(f) == 0 {
		return
	}
	fmt.Fprintf(w, "    %s:\n", label)
	for _, k := range slices.Sorted(maps.Keys(f)) {
		fmt.Fprintf(w, "      %s: %s\n", k, f[k])
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <profile>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			p, profiles, err := a.findProfile(ctx, args[0])
			if err != nil {
				return err
			}
			profiles, err = model.DeleteProfile(profiles, p.ID)
			if err != nil {
				return err
			}
			if err := a.repo.SaveProfiles(ctx, profiles); err != nil {
				return err
			}

			// A dangling selection would make the next plain run fail.
			input, err := a.repo.UserInput(ctx)
			if err != nil {
				return err
			}
			if input.SelectedProfileID == p.ID {
				input.SelectedProfileID = ""
				if err := a.repo.SaveUserInput(ctx, input); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", p.Name)
			return nil
		}),
	}
}

func newProfileToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <profile>",
		Short: "Enable or disable a profile",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			p, err := a.updateProfile(cmd.Context(), args[0], func(p model.Profile) (model.Profile, error) {
				return p.WithStatus(!p.Status), nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %s is now %s\n", p.Name, statusText(p.Status))
			return nil
		}),
	}
}

func newProfileRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <profile> <name>",
		Short: "Rename a profile",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			target, profiles, err := a.findProfile(ctx, args[0])
			if err != nil {
				return err
			}
			if other, _, ok := model.FindProfile(profiles, args[1]); ok && other.ID != target.ID {
				return fmt.Errorf("%w: %s", errDuplicateName, args[1])
			}

			p, err := a.updateProfile(ctx, target.ID, func(p model.Profile) (model.Profile, error) {
				return p.Rename(args[1])
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed profile to %s\n", p.Name)
			return nil
		}),
	}
}
