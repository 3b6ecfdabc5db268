package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSettingsCmd creates the settings command group.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print stored settings and input",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				state, err := a.repo.Load(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database:  %s\n", a.db.Path())
				if a.cfg.ConfigFilePath != "" {
					fmt.Fprintf(out, "Config:    %s\n", a.cfg.ConfigFilePath)
				}
				fmt.Fprintf(out, "Dark mode: %s\n", onOff(state.Settings.IsDarkMode))
				fmt.Fprintf(out, "Tags:      %d\n", len(state.Settings.Tags))

				selected := "(none)"
				if state.Input.SelectedProfileID != "" {
					selected = state.Input.SelectedProfileID
				}
				fmt.Fprintf(out, "Selected:  %s\n", selected)
				fmt.Fprintf(out, "Params:    %s\n", state.Input.ParamInput)
				fmt.Fprintf(out, "Message:   %s\n", state.Input.TextBoxMessage)
				return nil
			}),
		},
		&cobra.Command{
			Use:       "dark-mode on|off|toggle",
			Short:     "Set the stored theme preference",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"on", "off", "toggle"},
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				ctx := cmd.Context()
				settings, err := a.repo.Settings(ctx)
				if err != nil {
					return err
				}
				switch args[0] {
				case "on":
					settings.IsDarkMode = true
				case "off":
					settings.IsDarkMode = false
				default:
					settings.IsDarkMode = !settings.IsDarkMode
				}
				if err := a.repo.SaveSettings(ctx, settings); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dark mode: %s\n", onOff(settings.IsDarkMode))
				return nil
			}),
		},
	)
	return cmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
