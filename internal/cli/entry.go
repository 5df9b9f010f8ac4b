package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"resume-builder/internal/editor"
	"resume-builder/internal/gateway"
	"resume-builder/internal/importer"
	"resume-builder/internal/jobfetch"
	"resume-builder/internal/workflow"
	"resume-builder/resume/model"
)

// edits are draft changes given on the command line.
type edits struct {
	title   string
	name    string
	email   string
	phone   string
	summary string
	skills  []string
	save    bool
}

func (e *edits) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&e.title, "title", "", "resume title")
	f.StringVar(&e.name, "name", "", "full name")
	f.StringVar(&e.email, "email", "", "email address")
	f.StringVar(&e.phone, "phone", "", "phone number")
	f.StringVar(&e.summary, "summary", "", "professional summary")
	f.StringSliceVar(&e.skills, "skill", nil, "skill to add (repeatable)")
	f.BoolVar(&e.save, "save", false, "persist the draft to the backend even without edits")
}

func (e *edits) any() bool {
	return e.name != "" || e.email != "" || e.phone != "" || e.summary != "" || len(e.skills) > 0
}

func (e *edits) apply(d *model.Draft) {
	if e.name != "" {
		d.PersonalInfo.FullName = e.name
	}
	if e.email != "" {
		d.PersonalInfo.Email = e.email
	}
	if e.phone != "" {
		d.PersonalInfo.Phone = e.phone
	}
	if e.summary != "" {
		d.Summary = e.summary
	}
	d.Skills = append(d.Skills, e.skills...)
}

func newNewCmd(a *app) *cobra.Command {
	var (
		ed       edits
		template string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new resume from scratch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{workflow.ParamWorkflow: {"scratch"}}
			if template != "" {
				q.Set(workflow.ParamTemplate, template)
			}
			return a.runEntry(cmd.Context(), q, nil, &ed)
		},
	}
	cmd.Flags().StringVar(&template, "template", "", "template id")
	ed.register(cmd)
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		ed       edits
		template string
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a resume from a PDF, DOCX, text or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{workflow.ParamWorkflow: {"import"}}
			if template != "" {
				q.Set(workflow.ParamTemplate, template)
			}
			imp := importer.FileImporter{Path: args[0], Template: template}
			return a.runEntry(cmd.Context(), q, imp, &ed)
		},
	}
	cmd.Flags().StringVar(&template, "template", "", "template id")
	ed.register(cmd)
	return cmd
}

func newTailorCmd(a *app) *cobra.Command {
	var (
		ed       edits
		mode     string
		file     string
		template string
		jobTitle string
		jobDesc  string
		jobURL   string
	)
	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Build a resume targeted at a job posting",
		Long: `Build a resume targeted at a job posting.

The posting comes from --job-url, or --job-title/--job-description. Without
either, the job context stored by a previous tailor run is reused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			q := url.Values{
				workflow.ParamWorkflow:     {"tailor"},
				workflow.ParamJobTargeting: {"true"},
			}
			if mode != "" {
				q.Set(workflow.ParamMode, mode)
			}
			if template != "" {
				q.Set(workflow.ParamTemplate, template)
			}

			if jobURL != "" {
				posting, err := jobfetch.Fetch(ctx, jobURL)
				if err != nil {
					return err
				}
				jobTitle = firstSet(jobTitle, posting.Title)
				jobDesc = firstSet(jobDesc, posting.Description)
			}
			if jobTitle != "" || jobDesc != "" {
				raw, err := json.Marshal(workflow.JobPayload{Title: jobTitle, Description: jobDesc})
				if err != nil {
					return err
				}
				q.Set(workflow.ParamJob, string(raw))
			} else {
				q.Set(workflow.ParamPreserveJob, "true")
			}

			var imp workflow.Importer
			if file != "" {
				imp = importer.FileImporter{Path: file, Template: template}
			}
			return a.runEntry(ctx, q, imp, &ed)
		},
	}
	f := cmd.Flags()
	f.StringVar(&mode, "mode", "", "scratch or import")
	f.StringVar(&file, "file", "", "resume file to import when --mode import")
	f.StringVar(&template, "template", "", "template id")
	f.StringVar(&jobTitle, "job-title", "", "job title")
	f.StringVar(&jobDesc, "job-description", "", "job description")
	f.StringVar(&jobURL, "job-url", "", "fetch the job posting from this URL")
	ed.register(cmd)
	return cmd
}

func newOpenCmd(a *app) *cobra.Command {
	var ed edits
	cmd := &cobra.Command{
		Use:   "open [RESUME_ID]",
		Short: "Open a saved resume, or the current local draft",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if len(args) == 1 {
				q.Set(workflow.ParamResumeID, args[0])
			}
			return a.runEntry(cmd.Context(), q, nil, &ed)
		},
	}
	ed.register(cmd)
	return cmd
}

// runEntry resolves an entry, opens the editor on the result and applies ed.
func (a *app) runEntry(ctx context.Context, q url.Values, imp workflow.Importer, ed *edits) error {
	e, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	router := e.router(imp)
	defer router.Close()

	out, err := router.Resolve(ctx, q)
	if err != nil {
		return err
	}
	if out.JobContext != nil {
		a.printf("Targeting: %s\n", firstSet(out.JobContext.Title, "(untitled job)"))
	}

	switch out.Kind {
	case workflow.OutcomePaywall:
		a.printf("You have reached your resume limit. Upgrade your plan to create more.\n")
		return ErrLimitReached
	case workflow.OutcomeChoose:
		a.printf("Choose how to start: re-run with --mode scratch or --mode import --file FILE.\n")
		return nil
	}
	if out.Notice != nil {
		a.printf("Notice: %s\n", out.Notice.Message)
	}

	sess := editor.Open(e.gateway, e.drafts, *out.Builder, editor.Options{})
	defer sess.Close()

	if ed.title != "" {
		sess.SetTitle(ed.title)
	}
	if ed.any() {
		if err := sess.Update(ctx, ed.apply); err != nil {
			return err
		}
	}
	if ed.any() || ed.save || ed.title != "" {
		res := sess.Flush(ctx)
		switch res.Status {
		case editor.StatusCreated:
			a.printf("Created resume %s (%s)\n", res.ResumeID, res.Title)
		case editor.StatusSaved:
			a.printf("Saved resume %s (%s)\n", res.ResumeID, res.Title)
		case editor.StatusFailed:
			if res.Reason == gateway.ReasonLimitReached {
				a.printf("You have reached your resume limit. Your draft is kept locally.\n")
				return ErrLimitReached
			}
			return fmt.Errorf("save failed (%s): %w", res.Reason, res.Err)
		}
	}

	a.printDraft(sess)
	return nil
}

func (a *app) printDraft(sess *editor.Session) {
	d := sess.Draft()
	id := sess.ResumeID()
	if id == "" {
		id = "(local only)"
	}
	a.printf("Resume: %s\n", id)
	a.printf("Template: %s\n", firstSet(d.Template, "(default)"))
	a.printf("Name: %s\n", firstSet(d.PersonalInfo.FullName, "-"))
	if len(d.Skills) > 0 {
		a.printf("Skills: %s\n", strings.Join(d.Skills, ", "))
	}
}

func firstSet(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
