// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gemaraproj/variants-mcp/internal/tool"
	"github.com/gemaraproj/variants-mcp/internal/variant"
)

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	var (
		output   string
		idMode   string
		idPrefix string
	)

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a raw response read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("unsupported output format %q (expected json or yaml)", output)
			}

			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if !cmd.Flags().Changed("id-mode") {
				idMode = cfg.Normalizer.IDMode
			}
			if !cmd.Flags().Changed("id-prefix") {
				idPrefix = cfg.Normalizer.IDPrefix
			}
			newID, err := variant.GeneratorFor(idMode, idPrefix)
			if err != nil {
				return err
			}

			raw, source, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			variants := variant.Create(newID, string(raw))
			log.Debug("normalized response", zap.String("source", source), zap.Int("items", len(variants)))

			rendered, err := render(tool.ToItems(variants), output)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(rendered)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	cmd.Flags().StringVar(&idMode, "id-mode", "", "Identifier generation mode (uuid, sequence)")
	cmd.Flags().StringVar(&idPrefix, "id-prefix", "", "Prefix for sequence identifiers")

	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, "stdin", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input: %w", err)
	}
	return data, args[0], nil
}

func render(items []tool.Item, format string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	if format == "json" {
		return buf.Bytes(), nil
	}

	out, err := yaml.JSONToYAML(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to convert items to YAML: %w", err)
	}
	return out, nil
}
