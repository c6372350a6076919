package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// officersCmd groups officer admission commands.
func officersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "officers",
		Short: "Review officer registrations",
	}
	cmd.AddCommand(officersListCmd(a))
	cmd.AddCommand(officersDecideCmd(a, "approve", models.AdmissionApproved))
	cmd.AddCommand(officersDecideCmd(a, "reject", models.AdmissionRejected))
	return cmd
}

func officersListCmd(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List officers, optionally by admission status",
		Long: `List registered officers ordered by ward then name.

Examples:
  wardctl officers list
  wardctl officers list --status pending`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.AdmissionStatus
			if status != "" {
				s, ok := models.ParseAdmissionStatus(status)
				if !ok {
					return fmt.Errorf("--status must be pending, approved or rejected")
				}
				filter = s
			}

			env, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			officers, err := env.Admission.Officers(cmd.Context(), operator, filter)
			if err != nil {
				return fmt.Errorf("list officers: %s", errmsg.Resolve(err, errmsg.Options{Fallback: "Unable to load officers."}))
			}

			out := cmd.OutOrStdout()
			if len(officers) == 0 {
				fmt.Fprintln(out, "No officers found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tWARD\tSTATUS")
			for _, o := range officers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.Name, o.Email, o.Ward, statusLabel(o.Admission()))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "pending, approved or rejected")
	return cmd
}

func officersDecideCmd(a *app, verb string, target models.AdmissionStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <officer-id>",
		Short: fmt.Sprintf("Mark a pending officer %s", target),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := a.services(ctx)
			if err != nil {
				return err
			}

			id := args[0]
			officer, from, err := env.Admission.Transition(ctx, operator, id, target)
			if err != nil {
				return fmt.Errorf("%s %s: %s", verb, id, errmsg.Resolve(err, errmsg.Options{Fallback: "Unable to update officer."}))
			}

			out := cmd.OutOrStdout()
			if from == officer.Admission() {
				fmt.Fprintf(out, "%s is already %s\n", officer.Name, statusLabel(officer.Admission()))
				return nil
			}
			if target == models.AdmissionApproved {
				env.AuditLog.OfficerApproved(ctx, nil, operator.ID, id)
			} else {
				env.AuditLog.OfficerRejected(ctx, nil, operator.ID, id)
			}
			fmt.Fprintf(out, "%s is now %s\n", officer.Name, statusLabel(officer.Admission()))
			return nil
		},
	}
}

func statusLabel(s models.AdmissionStatus) string {
	switch s {
	case models.AdmissionApproved:
		return color.New(color.FgGreen).Sprint(string(s))
	case models.AdmissionRejected:
		return color.New(color.FgRed).Sprint(string(s))
	default:
		return color.New(color.FgYellow).Sprint(string(s))
	}
}
