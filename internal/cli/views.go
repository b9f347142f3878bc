package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rickgao/mock-auction/internal/model"
)

func (a *app) standingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Rank teams by squad rating total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.client().Standings(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(a.out, "No teams registered")
				return nil
			}

			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, []string{
					strconv.Itoa(r.Rank),
					r.Team,
					strconv.Itoa(r.RatingTotal),
					strconv.Itoa(r.Players),
					crore(r.Budget),
				})
			}
			fmt.Fprint(a.out, table([]string{"Rank", "Team", "Rating", "Players", "Remaining"}, cells))
			return nil
		},
	}
}

func (a *app) squadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "squad <team>",
		Short: "Show a team's squad and spend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sq, err := a.client().Squad(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, titleStyle.Render(sq.Team))
			if len(sq.Entries) > 0 {
				rows := make([][]string, 0, len(sq.Entries))
				for _, e := range sq.Entries {
					name := e.Name
					if e.Nationality == model.NationalityForeign {
						name = foreignStyle.Render(name + " *")
					}
					rows = append(rows, []string{
						name,
						string(e.Category),
						strconv.Itoa(e.Rating),
						lakhs(e.SoldAmount),
					})
				}
				fmt.Fprint(a.out, table([]string{"Player", "Category", "Rating", "Amount"}, rows))
			} else {
				fmt.Fprintln(a.out, mutedStyle.Render("No players bought"))
			}

			fmt.Fprintf(a.out, "Players: %d  Rating: %d  Spent: %s  Remaining: %s\n",
				sq.Players, sq.TotalRating, crore(sq.TotalSpent), crore(sq.Remaining))
			for _, c := range model.Categories {
				fmt.Fprintf(a.out, "  %s: %d\n", c, sq.ByCategory[c])
			}
			for _, n := range model.Nationalities {
				fmt.Fprintf(a.out, "  %s: %d\n", n, sq.ByNationality[n])
			}
			return nil
		},
	}
}

func (a *app) tickerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ticker",
		Short: "Print the sold-player ticker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.client().Ticker(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				name := it.Player
				if it.Foreign {
					name = foreignStyle.Render(name + " *")
				}
				fmt.Fprintf(a.out, "%s (%d) | %s (%d)\n", name, it.Rating, it.Team, it.TeamRatingTotal)
			}
			return nil
		},
	}
}
