package cli

import (
	"github.com/spf13/cobra"
)

func newJobCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect or clear the stored job context",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored job context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			jc := e.jobs.Get(cmd.Context())
			if jc == nil {
				a.printf("No job context.\n")
				return nil
			}
			a.printf("Title: %s\nActive: %t\nSaved: %s\n\n%s\n",
				firstSet(jc.Title, "(untitled job)"), jc.Active, jc.Timestamp.Format("2006-01-02 15:04"), jc.Description)
			return nil
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored job context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.jobs.Clear(cmd.Context()); err != nil {
				return err
			}
			a.printf("Job context cleared.\n")
			return nil
		},
	})
	return cmd
}
