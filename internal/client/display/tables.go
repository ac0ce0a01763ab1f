package display

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Leaderboard prints ranked standings in tabular form
func Leaderboard(rows [][]string) {
	printTable([]string{"#", "Player", "Rating", "W", "L", "Games"}, rows)
}

// Matches prints ledger entries in tabular form
func Matches(rows [][]string) {
	printTable([]string{"Match", "Winner", "Loser", "Score", "Played At"}, rows)
}

// Players prints roster entries in tabular form
func Players(rows [][]string) {
	printTable([]string{"ID", "Name", "Rating", "W", "L", "Games"}, rows)
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s%s%s\n", Cyan, strings.Join(headers, "\t"), Reset)
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
