package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/azdolinski/emissary/internal/config"
)

//go:embed templates/emissary.yaml
var configTemplate []byte

var errConfigExists = errors.New("configuration file already exists")

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented emissary configuration file",
		Long: `Init writes a configuration file listing every option with its default:
request timeout, User-Agent, response size limit, redirects, SOCKS5 proxy,
profile concurrency, run lock TTL, report format and log file.

By default the file is .emissary in the current directory. With --xdg it is
written to the XDG config directory, which emissary also searches.

Examples:
  emissary init
  emissary init --xdg
  emissary init -o /etc/emissary/config.yaml -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Path of the file to write")
	cmd.Flags().Bool("xdg", false, "Write to "+config.XDGConfigFile())
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	cmd.MarkFlagsMutuallyExclusive("output", "xdg")
	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if useXDG, _ := cmd.Flags().GetBool("xdg"); useXDG {
		path = config.XDGConfigFile()
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := writeConfigTemplate(path, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", path)
	return nil
}

// writeConfigTemplate writes the embedded template to path with mode 0600.
// Without force an existing file is left alone.
func writeConfigTemplate(path string, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600) //nolint:gosec // User-provided path is intentional
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s (use -f to overwrite)", errConfigExists, path)
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	if _, err := f.Write(configTemplate); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return f.Close()
}
