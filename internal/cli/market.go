package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/krishi-ai/krishi-go/internal/models"
)

var (
	marketState     string
	marketDistrict  string
	marketName      string
	marketCommodity string
	marketLimit     int
)

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Look up mandi commodity prices",
	Long: `Look up daily mandi commodity prices from the open government
data portal.

Examples:
  krishi market --state Karnataka --commodity Tomato
  krishi market --district Pune -l hi`,
	RunE: runMarket,
}

func init() {
	marketCmd.Flags().StringVar(&marketState, "state", "", "filter by state")
	marketCmd.Flags().StringVar(&marketDistrict, "district", "", "filter by district")
	marketCmd.Flags().StringVar(&marketName, "market", "", "filter by market name")
	marketCmd.Flags().StringVar(&marketCommodity, "commodity", "", "filter by commodity")
	marketCmd.Flags().IntVarP(&marketLimit, "limit", "n", 10, "max records")
}

func runMarket(cmd *cobra.Command, args []string) error {
	records, err := apiClient.MarketPrices(cmd.Context(), models.MarketQuery{
		State:     marketState,
		District:  marketDistrict,
		Market:    marketName,
		Commodity: marketCommodity,
		Limit:     marketLimit,
		Language:  language,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(dimStyle.Render("no price records found"))
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-20s %-20s %-12s %10s %10s %10s",
		"Market", "Commodity", "Date", "Min", "Max", "Modal")))
	for _, r := range records {
		fmt.Printf("%-20s %-20s %-12s %10s %10s %10s\n",
			r.Market, r.Commodity, r.ArrivalDate, r.MinPrice, r.MaxPrice, r.ModalPrice)
	}
	return nil
}
