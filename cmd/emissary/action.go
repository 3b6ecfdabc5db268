package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azdolinski/emissary/internal/model"
)

// NewActionCmd creates the action command group.
func NewActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Manage the actions of a profile",
		Long: `Manage the actions of a profile. Actions are addressed by their zero-based
index as shown by 'emissary profile show'.

URLs may contain %key% parameter tokens. Header and data values may contain
%key% tokens and $message, $url, $page_title or $page_content. For GET the
data is sent as a query string, for POST and PUT as a JSON object.`,
	}

	cmd.AddCommand(
		newActionAddCmd(),
		newActionUpdateCmd(),
		newActionDeleteCmd(),
	)
	return cmd
}

func newActionAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <profile>",
		Short: "Append an action to a profile",
		Long: `Append an action to a profile.

Examples:
  emissary action add blog --name notify --method POST \
    --url "https://hooks.example.com/%channel%" \
    --header "Authorization=Bearer %token%" \
    --data "text=$message" --data "link=$url"`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(runActionAddCmd),
	}

	cmd.Flags().String("name", "", "Action name shown in reports")
	cmd.Flags().String("method", string(model.MethodGet), "HTTP method: GET, POST or PUT")
	cmd.Flags().String("url", "", "Request URL; may contain %key% tokens")
	cmd.Flags().StringArray("header", nil, "Header as key=value (repeatable)")
	cmd.Flags().StringArray("data", nil, "Data field as key=value (repeatable)")
	cmd.Flags().String("data-json", "", "Data as a JSON object; --data fields are applied on top")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runActionAddCmd(cmd *cobra.Command, args []string, a *app) error {
	flags := cmd.Flags()

	name, err := flags.GetString("name")
	if err != nil {
		return err
	}
	rawMethod, err := flags.GetString("method")
	if err != nil {
		return err
	}
	method, err := model.ParseMethod(rawMethod)
	if err != nil {
		return err
	}
	url, err := flags.GetString("url")
	if err != nil {
		return err
	}

	act := model.NewAction(name)
	act.Method = method
	act.URL = url

	if act.Headers, err = pairsFlag(cmd, "header"); err != nil {
		return err
	}
	if act.Data, err = dataFlags(cmd, model.Fields{}); err != nil {
		return err
	}

	p, err := a.updateProfile(cmd.Context(), args[0], func(p model.Profile) (model.Profile, error) {
		return p.AddAction(act)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added action [%d] %s to %s\n", len(p.Actions)-1, act.Name, p.Name)
	return nil
}

func newActionUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <profile> <index>",
		Short: "Change fields of an action",
		Long: `Change fields of an action. Only the given flags are applied.

Examples:
  # Switch to PUT and rename a header
  emissary action update blog 0 --method PUT --rename-header X-Token=Authorization

  # Replace the data and drop one header
  emissary action update blog 1 --data-json '{"q":"%query%"}' --unset-header X-Debug`,
		Args: cobra.ExactArgs(2),
		RunE: withApp(runActionUpdateCmd),
	}

	cmd.Flags().String("name", "", "New action name")
	cmd.Flags().String("method", "", "New HTTP method: GET, POST or PUT")
	cmd.Flags().String("url", "", "New request URL")
	cmd.Flags().StringArray("header", nil, "Set a header as key=value (repeatable)")
	cmd.Flags().StringArray("rename-header", nil, "Rename a header as old=new (repeatable)")
	cmd.Flags().StringArray("unset-header", nil, "Remove a header (repeatable)")
	cmd.Flags().StringArray("data", nil, "Set a data field as key=value (repeatable)")
	cmd.Flags().StringArray("unset-data", nil, "Remove a data field (repeatable)")
	cmd.Flags().String("data-json", "", "Replace all data with a JSON object")

	return cmd
}

func runActionUpdateCmd(cmd *cobra.Command, args []string, a *app) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	patch, err := actionPatch(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	headers, err := pairsFlag(cmd, "header")
	if err != nil {
		return err
	}
	renames, err := pairsFlag(cmd, "rename-header")
	if err != nil {
		return err
	}
	unsetHeaders, err := flags.GetStringArray("unset-header")
	if err != nil {
		return err
	}
	unsetData, err := flags.GetStringArray("unset-data")
	if err != nil {
		return err
	}

	p, err := a.updateProfile(cmd.Context(), args[0], func(p model.Profile) (model.Profile, error) {
		p, err := p.UpdateAction(index, patch)
		if err != nil {
			return p, err
		}
		for oldKey, newKey := range renames {
			act, err := p.Action(index)
			if err != nil {
				return p, err
			}
			value, ok := act.Headers[oldKey]
			if !ok {
				return p, fmt.Errorf("header %q not found", oldKey)
			}
			if p, err = p.SetHeader(index, oldKey, newKey, value); err != nil {
				return p, err
			}
		}
		for k, v := range headers {
			if p, err = p.SetHeader(index, "", k, v); err != nil {
				return p, err
			}
		}
		for _, k := range unsetHeaders {
			if p, err = p.RemoveHeader(index, k); err != nil {
				return p, err
			}
		}
		act, err := p.Action(index)
		if err != nil {
			return p, err
		}
		data, err := dataFlags(cmd, act.Data)
		if err != nil {
			return p, err
		}
		for _, k := range unsetData {
			delete(data, k)
		}
		return p.UpdateAction(index, model.ActionPatch{Data: data})
	})
	if err != nil {
		return err
	}

	act, _ := p.Action(index)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated action [%d] %s in %s\n", index, act.Name, p.Name)
	return nil
}

// actionPatch builds the scalar part of an update from the changed flags.
func actionPatch(cmd *cobra.Command) (model.ActionPatch, error) {
	flags := cmd.Flags()
	var patch model.ActionPatch

	if flags.Changed("name") {
		v, err := flags.GetString("name")
		if err != nil {
			return patch, err
		}
		patch.Name = &v
	}
	if flags.Changed("method") {
		v, err := flags.GetString("method")
		if err != nil {
			return patch, err
		}
		m, err := model.ParseMethod(v)
		if err != nil {
			return patch, err
		}
		patch.Method = &m
	}
	if flags.Changed("url") {
		v, err := flags.GetString("url")
		if err != nil {
			return patch, err
		}
		patch.URL = &v
	}
	return patch, nil
}

// pairsFlag parses a repeatable key=value flag.
func pairsFlag(cmd *cobra.Command, name string) (model.Fields, error) {
	raw, err := cmd.Flags().GetStringArray(name)
	if err != nil {
		return nil, err
	}
	return parsePairs(raw)
}

// dataFlags returns base replaced by --data-json, if given, with --data
// fields applied on top. base is not modified.
func dataFlags(cmd *cobra.Command, base model.Fields) (model.Fields, error) {
	data := base.Clone()

	rawJSON, err := cmd.Flags().GetString("data-json")
	if err != nil {
		return nil, err
	}
	if rawJSON != "" {
		if data, err = model.ParseFields(rawJSON); err != nil {
			return nil, err
		}
	}

	fields, err := pairsFlag(cmd, "data")
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		data[k] = v
	}
	return data, nil
}

func newActionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <profile> <index>",
		Aliases: []string{"rm"},
		Short:   "Remove an action from a profile",
		Args:    cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			var removed model.Action
			p, err := a.updateProfile(cmd.Context(), args[0], func(p model.Profile) (model.Profile, error) {
				if removed, err = p.Action(index); err != nil {
					return p, err
				}
				return p.DeleteAction(index)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted action %s from %s\n", removed.Name, p.Name)
			return nil
		}),
	}
}
