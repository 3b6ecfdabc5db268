package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/azdolinski/emissary/internal/tags"
)

// errInvalidTagFile is returned when a tag file is not a JSON array of strings.
var errInvalidTagFile = errors.New("tags must be an array of strings")

// NewTagsCmd creates the tags command group.
func NewTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the stored hashtag set",
		Long: `Manage the stored hashtag set. Tags are collected from run messages
and stored lower-case without the leading '#'.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print all tags",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				settings, err := a.repo.Settings(cmd.Context())
				if err != nil {
					return err
				}
				for _, t := range settings.Tags {
					fmt.Fprintf(cmd.OutOrStdout(), "#%s\n", t)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add <tag>...",
			Short: "Add tags",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				return a.updateTags(cmd, func(current []string) ([]string, error) {
					return tags.Merge(current, cleanTags(args)), nil
				})
			}),
		},
		&cobra.Command{
			Use:     "remove <tag>...",
			Aliases: []string{"rm"},
			Short:   "Remove tags",
			Args:    cobra.MinimumNArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				return a.updateTags(cmd, func(current []string) ([]string, error) {
					return tags.Remove(current, args), nil
				})
			}),
		},
		&cobra.Command{
			Use:   "set <file>",
			Short: "Replace all tags with a JSON array read from a file (- for stdin)",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				var (
					b   []byte
					err error
				)
				if args[0] == "-" {
					b, err = readAll(cmd)
				} else {
					b, err = os.ReadFile(args[0]) //nolint:gosec // User-provided path is intentional
				}
				if err != nil {
					return fmt.Errorf("failed to read tags: %w", err)
				}
				var list []string
				if err := json.Unmarshal(b, &list); err != nil {
					return fmt.Errorf("%w: %w", errInvalidTagFile, err)
				}
				return a.updateTags(cmd, func([]string) ([]string, error) {
					return tags.Merge(nil, cleanTags(list)), nil
				})
			}),
		},
		&cobra.Command{
			Use:   "suggest <query>",
			Short: "Print stored tags containing query",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				settings, err := a.repo.Settings(cmd.Context())
				if err != nil {
					return err
				}
				for _, t := range tags.Suggest(args[0], settings.Tags) {
					fmt.Fprintf(cmd.OutOrStdout(), "#%s\n", t)
				}
				return nil
			}),
		},
	)
	return cmd
}

// updateTags replaces the stored tag set with the result of fn.
func (a *app) updateTags(cmd *cobra.Command, fn func([]string) ([]string, error)) error {
	ctx := cmd.Context()
	settings, err := a.repo.Settings(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(settings.Tags)
	if err != nil {
		return err
	}
	settings.Tags = updated
	if err := a.repo.SaveSettings(ctx, settings); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d tags stored\n", len(updated))
	return nil
}

// cleanTags strips surrounding space and leading '#' and drops empty tags.
func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimLeft(strings.TrimSpace(t), "#")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
