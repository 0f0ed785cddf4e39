package cli

import (
	"fmt"
	"text/tabwriter"

	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/models"

	"github.com/spf13/cobra"
)

func newUsersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users and roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var users []models.User
			if err := a.DB.WithContext(cmd.Context()).Order("id asc").Find(&users).Error; err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tROLE")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, u.Role.Label())
			}
			return tw.Flush()
		},
	}
}

func newAuditCommand() *cobra.Command {
	var (
		limit  int
		action string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the audit trail, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			logs, err := a.Audit.List(cmd.Context(), audit.ListOptions{Limit: limit, Action: action})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "AT\tACTION\tBY\tDETAIL")
			for _, l := range logs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.CreatedAt.Format("2006-01-02 15:04:05"), l.Action, l.Actor, l.Detail)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "max records")
	cmd.Flags().StringVar(&action, "action", "", "filter by action")
	return cmd
}
