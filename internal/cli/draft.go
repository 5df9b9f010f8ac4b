package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"resume-builder/internal/shared/util"
	"resume-builder/resume/model"
)

func newDraftCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect or export the local draft",
	}
	cmd.AddCommand(newDraftShowCmd(a), newDraftExportCmd(a), newDraftClearCmd(a))
	return cmd
}

func newDraftShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the local draft as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			d := e.drafts.Get(cmd.Context())
			if d == nil {
				a.printf("No local draft.\n")
				return nil
			}
			if id := e.drafts.CurrentResumeID(cmd.Context()); id != "" {
				a.printf("# resume %s\n", id)
			}
			return encodeDraft(a.out, *d, "yaml")
		},
	}
}

func newDraftExportCmd(a *app) *cobra.Command {
	var (
		format string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the local draft as YAML or JSON",
		Long: `Export the local draft as YAML or JSON.

Without --dir the draft is written to stdout. With --dir it is written to a
file named after the resume title.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported format %q (valid: yaml, json)", format)
			}
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			d := e.drafts.Get(cmd.Context())
			if d == nil {
				return fmt.Errorf("no local draft to export")
			}
			if dir == "" {
				return encodeDraft(a.out, *d, format)
			}

			name, err := util.SanitizeFileName(model.TitleFor(d.ResumeData) + "." + format)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := encodeDraft(f, *d, format); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.printf("Exported %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "yaml or json")
	cmd.Flags().StringVar(&dir, "dir", "", "write to a file in this directory")
	return cmd
}

func newDraftClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the local draft and forget the current resume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.drafts.Clear(cmd.Context()); err != nil {
				return err
			}
			if err := e.drafts.ClearCurrentResumeID(cmd.Context()); err != nil {
				return err
			}
			a.printf("Local draft cleared.\n")
			return nil
		},
	}
}

func encodeDraft(w io.Writer, d model.Draft, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
