package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	gyaml "github.com/goccy/go-yaml"

	"github.com/kevinwang15/yawn"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

type GetArgs struct {
	Output string
}

func NewGetCmd() *cobra.Command {
	args := &GetArgs{}

	cmd := &cobra.Command{
		Use:   "get FILE",
		Short: "Print the value of a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			doc, err := readDocument(argv[0])
			if err != nil {
				return err
			}
			v, err := doc.Value()
			if err != nil {
				return fmt.Errorf("load %s: %w", argv[0], err)
			}
			out, err := renderValue(v, args.Output)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&args.Output, "output", "o", outputJSON, "Output format, one of: [json, yaml]")
	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{outputJSON, outputYAML}, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	return cmd
}

func renderValue(v yawn.Value, format string) ([]byte, error) {
	switch format {
	case outputJSON:
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, fmt.Errorf("format json: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case outputYAML:
		out, err := gyaml.MarshalWithOptions(v.Interface(), gyaml.Indent(2), gyaml.IndentSequence(true))
		if err != nil {
			return nil, fmt.Errorf("format yaml: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func readDocument(path string) (*yawn.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	slog.Debug("read document", slog.String("path", path), slog.Int("bytes", len(data)))

	doc, err := yawn.Parse(data, yawn.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
