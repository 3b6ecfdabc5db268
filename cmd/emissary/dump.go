package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/azdolinski/emissary/internal/model"
)

// errInvalidProfiles is returned when an import file is not an array of
// profiles.
var errInvalidProfiles = errors.New("profiles must be an array of profile objects")

// NewDumpCmd creates the dump command.
func NewDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print all profiles as JSON",
		Long: `Dump prints the stored profiles as an indented JSON array. The output can be
edited and loaded back with 'emissary import'.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			profiles, err := a.repo.Profiles(cmd.Context())
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No profiles found")
			}

			b, err := json.MarshalIndent(profiles, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode profiles: %w", err)
			}
			b = append(b, '\n')

			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if dir := filepath.Dir(output); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0750); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			// Headers often carry API tokens.
			if err := os.WriteFile(output, b, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d profiles to %s\n", len(profiles), output)
			return nil
		}),
	}

	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all profiles with a JSON or YAML array",
		Long: `Import replaces every stored profile with the array read from file
(- for stdin). JSON as written by 'emissary dump' and the equivalent YAML
are accepted. Profiles without an id get a new one; every profile needs a
name and every action a supported method.`,
		Args: cobra.ExactArgs(1),
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
				return fmt.Errorf("failed to read profiles: %w", err)
			}

			profiles, err := decodeProfiles(b)
			if err != nil {
				return err
			}
			if err := a.repo.SaveProfiles(cmd.Context(), profiles); err != nil {
				return err
			}

			a.logger.Info("profiles imported", "count", len(profiles))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d profiles\n", len(profiles))
			return nil
		}),
	}
}

// decodeProfiles parses a JSON or YAML array of profiles and validates it.
// YAML is converted to JSON first so both share the JSON field names.
func decodeProfiles(b []byte) ([]model.Profile, error) {
	trimmed := bytes.TrimSpace(b)
	if !bytes.HasPrefix(trimmed, []byte("[")) {
		var doc any
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidProfiles, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidProfiles, err)
		}
		trimmed = converted
	}

	var profiles []model.Profile
	if err := json.Unmarshal(trimmed, &profiles); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidProfiles, err)
	}
	if profiles == nil {
		return nil, errInvalidProfiles
	}

	seen := make(map[string]struct{}, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("profile %d: %w", i, model.ErrEmptyName)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("profile %q: duplicate id %s", p.Name, p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Actions == nil {
			p.Actions = []model.Action{}
		}
		for j := range p.Actions {
			act := &p.Actions[j]
			method, err := model.ParseMethod(string(act.Method))
			if err != nil {
				return nil, fmt.Errorf("profile %q action %d: %w", p.Name, j, err)
			}
			act.Method = method
			if act.Headers == nil {
				act.Headers = model.Fields{}
			}
			if act.Data == nil {
				act.Data = model.Fields{}
			}
		}
	}
	return profiles, nil
}

// readAll reads the command's standard input.
func readAll(cmd *cobra.Command) ([]byte, error) {
	return io.ReadAll(cmd.InOrStdin())
}
