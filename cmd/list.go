package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagListSearch   string
	flagListCategory string
	flagListType     string
	flagListLimit    int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List transactions grouped by day",
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "Filter by name or category (substring match)")
	listCmd.Flags().StringVarP(&flagListCategory, "category", "c", "", "Filter by exact category")
	listCmd.Flags().StringVarP(&flagListType, "type", "t", "", "Filter by type: income or expense")
	listCmd.Flags().IntVarP(&flagListLimit, "limit", "n", 0, "Show at most N transactions (0 = all)")
	rootCmd.AddCommand(listCmd)
}

// listFilter selects the transactions the list command prints.
type listFilter struct {
	search   string
	category string
	typ      model.TransactionType
	limit    int
}

func (f listFilter) apply(txs []model.Transaction) []model.Transaction {
	search := strings.ToLower(strings.TrimSpace(f.search))
	var out []model.Transaction
	for _, t := range txs {
		if f.typ != "" && t.Type != f.typ {
			continue
		}
		if f.category != "" && !strings.EqualFold(t.CategoryOr(""), f.category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.CategoryOr("")), search) {
			continue
		}
		out = append(out, t)
		if f.limit > 0 && len(out) == f.limit {
			break
		}
	}
	return out
}

func runList(_ *cobra.Command, _ []string) error {
	filter := listFilter{search: flagListSearch, category: flagListCategory, limit: flagListLimit}
	if flagListType != "" {
		typ, err := model.ParseTransactionType(flagListType)
		if err != nil {
			return err
		}
		filter.typ = typ
	}

	ctx := context.Background()
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	txs := filter.apply(l.Transactions())
	if len(txs) == 0 {
		fmt.Println("\n  No transactions found.")
		fmt.Println("  Record one with `savemoney add NAME AMOUNT`.")
		return nil
	}

	money := moneyFormat()
	now := l.Now()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TRANSACTIONS  %s", cli.FormatCount(len(txs)))))
	fmt.Println()

	for _, group := range ledger.GroupByDate(txs, l.Location()) {
		net := decimal.Zero
		rows := make([][]string, 0, len(group.Transactions)+2)
		for _, t := range group.Transactions {
			net = net.Add(t.Signed())
			rows = append(rows, txRow(t, money, l))
		}
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{"", "", "Net", "", cli.FormatMoney(net, money)})

		fmt.Print(cli.RenderTable(cli.Table{
			Title:    cli.SectionHeader(group.Date, now, appCfg.Display.TodayLabel),
			Headers:  []string{"Time", "ID", "Name", "Category", "Amount"},
			Rows:     rows,
			LeftCols: []int{1, 2, 3},
		}))
		fmt.Println()
	}
	return nil
}

func txRow(t model.Transaction, money cli.MoneyFormat, l *ledger.Ledger) []string {
	return []string{
		t.Date.In(l.Location()).Format("15:04"),
		cli.ShortID(t.ID),
		t.Name,
		t.CategoryOr("-"),
		signedStyled(t, money),
	}
}
