package cli

import (
	"fmt"

	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	cmd.AddCommand(adminCreateCmd(a))
	return cmd
}

func adminCreateCmd(a *app) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator or promote an existing account",
		Long: `Create an administrator account. When the email already belongs to an
account it is promoted to admin and its password is reset.

Examples:
  wardctl admin create --email admin@madurai.gov.in --password 's3cret!' --name "Control Room"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := a.services(ctx)
			if err != nil {
				return err
			}

			_, lookupErr := env.Accounts.GetByEmail(ctx, email)
			existed := lookupErr == nil

			acct, promoted, err := env.Registration.EnsureAdmin(ctx, email, password, name)
			if err != nil {
				return fmt.Errorf("admin create: %s", errmsg.Resolve(err, errmsg.Options{Fallback: "Unable to provision administrator."}))
			}

			how := "created"
			switch {
			case promoted:
				how = "promoted"
			case existed:
				how = "password reset for"
			}
			if promoted || !existed {
				env.AuditLog.AdminProvisioned(ctx, acct.ID, acct.Email, promoted)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", color.New(color.FgGreen).Sprint(how), acct.Email, acct.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
