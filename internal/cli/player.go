package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rickgao/mock-auction/internal/auction"
	"github.com/rickgao/mock-auction/internal/model"
)

// playerFlags are the attributes shared by add and modify.
type playerFlags struct {
	amount      int
	rating      int
	team        string
	category    string
	nationality string
}

func (f *playerFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.amount, "amount", "a", 0, "sold amount in lakhs")
	cmd.Flags().IntVarP(&f.rating, "rating", "r", 0, "player rating (0-100)")
	cmd.Flags().StringVarP(&f.team, "team", "t", model.Unsold, "buying team, or Unsold")
	cmd.Flags().StringVar(&f.category, "category", "", "Batter, Bowler, Allrounder or Wicketkeeper")
	cmd.Flags().StringVar(&f.nationality, "nationality", string(model.NationalityIndian), "Indian or Foreign")
	_ = cmd.MarkFlagRequired("category")
}

func (f *playerFlags) input(name string) auction.PlayerInput {
	return auction.PlayerInput{
		Name:        name,
		SoldAmount:  f.amount,
		Rating:      f.rating,
		Team:        f.team,
		Category:    model.Category(f.category),
		Nationality: model.Nationality(f.nationality),
	}
}

func (a *app) playerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Record, change and remove players",
	}

	var add playerFlags
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Record a sale, or an unsold player with --team Unsold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := a.client().AddPlayer(cmd.Context(), add.input(args[0]))
			if err != nil {
				return err
			}
			a.printReceipt(receipt)
			return nil
		},
	}
	add.register(addCmd)

	var modify playerFlags
	modifyCmd := &cobra.Command{
		Use:   "modify <name>",
		Short: "Rewrite a player's price, rating, team and attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := a.client().ModifyPlayer(cmd.Context(), modify.input(args[0]))
			if err != nil {
				return err
			}
			a.printReceipt(receipt)
			return nil
		},
	}
	modify.register(modifyCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a player and refund the buying team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := a.client().DeletePlayer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printReceipt(receipt)
			return nil
		},
	}

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List players, latest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := a.client().Players(cmd.Context(), status)
			if err != nil {
				return err
			}
			if len(players) == 0 {
				fmt.Fprintln(a.out, "No players")
				return nil
			}

			rows := make([][]string, 0, len(players))
			for _, p := range players {
				rows = append(rows, []string{
					strconv.Itoa(p.ID),
					p.Name,
					lakhs(p.SoldAmount),
					strconv.Itoa(p.Rating),
					p.TeamBought,
					string(p.Category),
					string(p.Nationality),
				})
			}
			fmt.Fprint(a.out, table([]string{"ID", "Name", "Amount", "Rating", "Team", "Category", "Nationality"}, rows))
			return nil
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "filter: sold or unsold")

	cmd.AddCommand(addCmd, modifyCmd, deleteCmd, listCmd)
	return cmd
}

func (a *app) printReceipt(r *auction.Receipt) {
	p := r.Player
	switch r.Op {
	case auction.OpDeletePlayer:
		fmt.Fprintf(a.out, "Deleted %s (#%d)\n", p.Name, p.ID)
	case auction.OpModifyPlayer:
		fmt.Fprintf(a.out, "Updated %s (#%d): %s lakhs to %s\n", p.Name, p.ID, lakhs(p.SoldAmount), p.TeamBought)
	default:
		if p.IsSold() {
			fmt.Fprintf(a.out, "Sold %s (#%d) to %s for %s lakhs\n", p.Name, p.ID, p.TeamBought, lakhs(p.SoldAmount))
		} else {
			fmt.Fprintf(a.out, "Recorded %s (#%d) as unsold\n", p.Name, p.ID)
		}
	}

	for _, team := range slices.Sorted(maps.Keys(r.Budgets)) {
		budget := r.Budgets[team]
		fmt.Fprintf(a.out, "  %s budget: %s lakhs (%s)\n", team, lakhs(budget), crore(budget))
	}
	if r.Notice != nil {
		fmt.Fprintln(a.out, popupStyle.Render(r.Notice.Message()))
	}
}
