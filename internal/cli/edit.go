package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"

	"github.com/kevinwang15/yawn"
)

type EditArgs struct {
	InPlace bool
	Diff    bool
}

func (ea *EditArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&ea.InPlace, "in-place", "i", false, "Write the result back to FILE")
	cmd.Flags().BoolVar(&ea.Diff, "diff", false, "Print a unified diff instead of the new document")
}

func NewSetCmd() *cobra.Command {
	return newEditCmd(
		"set FILE VALUE_FILE",
		"Assign the value held in VALUE_FILE (YAML or JSON) to FILE",
		func(doc *yawn.Document, data []byte) error {
			v, err := yawn.ParseValue(data)
			if err != nil {
				return err
			}
			return doc.SetValue(v)
		},
	)
}

func NewPatchCmd() *cobra.Command {
	return newEditCmd(
		"patch FILE PATCH_FILE",
		"Apply a JSON Patch (RFC 6902) to FILE",
		func(doc *yawn.Document, data []byte) error {
			return doc.ApplyJSONPatchBytes(data)
		},
	)
}

func NewMergeCmd() *cobra.Command {
	return newEditCmd(
		"merge FILE PATCH_FILE",
		"Apply a JSON Merge Patch (RFC 7386) to FILE",
		func(doc *yawn.Document, data []byte) error {
			return doc.ApplyMergePatch(data)
		},
	)
}

func newEditCmd(use, short string, apply func(doc *yawn.Document, data []byte) error) *cobra.Command {
	args := &EditArgs{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, argv []string) error {
			path := argv[0]
			doc, err := readDocument(path)
			if err != nil {
				return err
			}
			input, err := readInput(cmd.InOrStdin(), argv[1])
			if err != nil {
				return err
			}

			before := doc.Text()
			if err := apply(doc, input); err != nil {
				return fmt.Errorf("edit %s: %w", path, err)
			}
			after := doc.Text()
			slog.Debug("edited document",
				slog.String("path", path),
				slog.Bool("changed", before != after),
			)

			return writeResult(cmd.OutOrStdout(), path, before, after, args)
		},
	}

	args.AddFlags(cmd)

	return cmd
}

// readInput reads a file, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func writeResult(w io.Writer, path, before, after string, args *EditArgs) error {
	if args.Diff {
		if _, err := io.WriteString(w, udiff.Unified(path, path, before, after)); err != nil {
			return err
		}
	}

	if args.InPlace {
		if before == after {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(after), info.Mode().Perm()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		slog.Info("document written", slog.String("path", path))
		return nil
	}

	if args.Diff {
		return nil
	}
	_, err := io.WriteString(w, after)
	return err
}
