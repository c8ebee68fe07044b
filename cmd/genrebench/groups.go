package main

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/genrebench/genre"
)

func newGroupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "Prints the genre similarity groups",
		Long: `Prints the genre groups used for similar-genre matching. Two labels
count as similar when they resolve to the same group.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"Group", "Members"})

			for _, group := range genre.DefaultTaxonomy().Groups() {
				row := []string{group.Name, strings.Join(group.Members, ", ")}
				if err := table.Append(row); err != nil {
					return err
				}
			}

			return table.Render()
		},
	}
}
