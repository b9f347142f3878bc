package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *app) teamCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage teams",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <budget>",
		Short: "Register a team with an initial budget in lakhs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			budget, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("budget must be a whole number of lakhs: %w", err)
			}

			team, err := a.client().AddTeam(cmd.Context(), args[0], budget)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Team %s added with budget %s lakhs (%s)\n",
				team.Name, lakhs(team.Budget), crore(team.Budget))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List teams in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			teams, err := a.client().Teams(cmd.Context())
			if err != nil {
				return err
			}
			if len(teams) == 0 {
				fmt.Fprintln(a.out, "No teams registered")
				return nil
			}

			rows := make([][]string, 0, len(teams))
			for _, t := range teams {
				rows = append(rows, []string{
					t.Name,
					lakhs(t.Budget),
					lakhs(t.InitialBudget),
					crore(t.Budget),
				})
			}
			fmt.Fprint(a.out, table([]string{"Team", "Budget", "Initial", "Remaining"}, rows))
			return nil
		},
	})

	return cmd
}
