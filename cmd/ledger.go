package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"inventory-ledger/core/ledger"
	"inventory-ledger/feature/history"

	"github.com/spf13/cobra"
)

var ledgerParams history.Params
var (
	ledgerDesc bool
	ledgerJSON bool
)

// ledgerCmd prints one page of the ledger.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Print ledger entries of a shop",
	Long: `Prints the entries of a shop between two shop-local dates (inclusive),
sorted by event timestamp.

Examples:
  ledger --shop example.myshopify.com --from 2024-05-01 --to 2024-05-31
  ledger --shop example.myshopify.com --from 2024-05-01 --to 2024-05-01 --items 42 --desc --json`,
	RunE: runLedger,
}

func init() {
	f := ledgerCmd.Flags()
	f.StringVar(&ledgerParams.Shop, "shop", "", "Shop domain")
	f.StringVar(&ledgerParams.From, "from", "", "First date (YYYY-MM-DD)")
	f.StringVar(&ledgerParams.To, "to", "", "Last date (YYYY-MM-DD)")
	f.StringVar(&ledgerParams.Locations, "locations", "", "Comma-separated location ids")
	f.StringVar(&ledgerParams.Items, "items", "", "Comma-separated inventory item ids")
	f.StringVar(&ledgerParams.Activities, "activities", "", "Comma-separated activities")
	f.IntVar(&ledgerParams.Page, "page", 1, "Page number")
	f.BoolVar(&ledgerDesc, "desc", false, "Newest first")
	f.BoolVar(&ledgerJSON, "json", false, "Print the page as JSON")
	RootCmd.AddCommand(ledgerCmd)
}

func runLedger(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if ledgerDesc {
		ledgerParams.Sort = string(ledger.SortDesc)
	}
	service := history.NewService(rt.store, rt.cfg.Ledger.PageSize, rt.logger)
	page, err := service.Query(ctx, ledgerParams)
	if err != nil {
		return err
	}

	if ledgerJSON {
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OCCURRED AT\tLOCATION\tSKU\tACTIVITY\tDELTA\tAFTER\tSOURCE")
	for _, e := range page.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.OccurredAt.Format("2006-01-02 15:04:05"),
			e.LocationName,
			e.SKU,
			e.Activity,
			optionalInt("%+d", e.Delta),
			optionalInt("%d", e.QuantityAfter),
			e.SourceType,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nPage %d, %d of %d entries\n", page.Page, len(page.Entries), page.Total)
	return nil
}

func optionalInt(format string, v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
