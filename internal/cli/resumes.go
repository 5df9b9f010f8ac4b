package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"resume-builder/internal/gateway"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved resumes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			resumes, err := e.gateway.ListResumes(cmd.Context())
			if err != nil {
				return err
			}
			if len(resumes) == 0 {
				a.printf("No resumes yet.\n")
				return nil
			}
			current := e.drafts.CurrentResumeID(cmd.Context())
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			printRow(w, "", "ID", "TITLE", "TEMPLATE", "UPDATED")
			for _, r := range resumes {
				marker := ""
				if r.ID == current {
					marker = "*"
				}
				printRow(w, marker, r.ID, r.Title, r.Template, r.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func printRow(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func newDuplicateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate RESUME_ID",
		Short: "Copy a saved resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			res := e.gateway.DuplicateResume(cmd.Context(), args[0])
			if !res.Success {
				if res.Reason == gateway.ReasonLimitReached {
					a.printf("You have reached your resume limit. Upgrade your plan to create more.\n")
					return ErrLimitReached
				}
				return res.Err
			}
			a.printf("Duplicated as %s (%s)\n", res.ResumeID, res.Title)
			return nil
		},
	}
}
