package notifier

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"TrendRadar/internal/model"
)

// RenderTable renders ranked results as a console table.
func RenderTable(title string, results []model.RankedResult) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Market", "Close", "RSI", "Cross", "Signal", "Score"})
	for i, res := range results {
		t.AppendRow(table.Row{
			i + 1,
			res.Market,
			formatPrice(res.Close),
			res.RSI.String(),
			res.Cross.String(),
			string(res.Signal),
			fmt.Sprintf("%+.2f", res.Score),
		})
	}
	if len(results) == 0 {
		t.AppendRow(table.Row{"", "(none)", "", "", "", "", ""})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	return t.Render()
}
