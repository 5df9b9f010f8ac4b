// Package cli implements resumectl, a command-line client that drives the
// workflow router and editor session against a resume backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrLimitReached is returned when the backend refuses a new resume.
var ErrLimitReached = errors.New("resume limit reached")

type app struct {
	v   *viper.Viper
	out io.Writer
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) open(ctx context.Context) (*env, error) {
	cfg, err := loadConfig(a.v)
	if err != nil {
		return nil, err
	}
	return openEnv(ctx, cfg)
}

// NewRootCommand builds the command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{v: newViper(), out: out}

	root := &cobra.Command{
		Use:   "resumectl",
		Short: "Create, import and tailor resumes from the command line",
		Long: `resumectl keeps a local draft per session and syncs it with the resume backend.

Examples:
  resumectl new --template modern --name "Jane Doe" --save
  resumectl import ./resume.pdf
  resumectl tailor --job-url https://example.com/jobs/42 --mode scratch
  resumectl open 5f0c...`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(a.v, cmd.Root().PersistentFlags())
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("server", "", "backend API root (default http://localhost:8080/api/v1)")
	flags.String("token", "", "bearer token")
	flags.String("guest-id", "", "guest identity used when no token is set")
	flags.String("state", "", "path of the local state database")
	flags.String("session", "", "local session name (default derived from identity)")
	flags.Duration("timeout", 0, "request timeout")

	root.AddCommand(
		newNewCmd(a),
		newImportCmd(a),
		newTailorCmd(a),
		newOpenCmd(a),
		newListCmd(a),
		newDuplicateCmd(a),
		newDraftCmd(a),
		newJobCmd(a),
	)
	return root
}

// Execute runs resumectl with the process arguments.
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
