package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/krishi-ai/krishi-go/internal/models"
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show the five-day forecast for each of your farms",
	RunE:  runWeather,
}

func runWeather(cmd *cobra.Command, args []string) error {
	if userID == "" {
		return fmt.Errorf("--user is required")
	}
	reports, err := apiClient.Weather(cmd.Context(), userID)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		printFarmWeather(name, reports[name])
	}
	return nil
}

func printFarmWeather(farmName string, report models.FarmWeather) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("%s (%s, %s)", farmName, report.District, report.State)))
	fmt.Printf("now: %.1f°C (feels %.1f°C), %s, humidity %d%%\n",
		report.Current.TempC, report.Current.FeelslikeC,
		report.Current.Condition, report.Current.Humidity)

	for _, day := range report.Forecast {
		rain := ""
		if day.Day.DailyWillItRain == 1 {
			rain = fmt.Sprintf("  rain %d%%", day.Day.DailyChanceOfRain)
		}
		fmt.Printf("%s  %5.1f°C / %5.1f°C  %s%s\n",
			day.Date, day.Day.MintempC, day.Day.MaxtempC, day.Day.Condition, rain)
	}
	fmt.Println()
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse the community feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := apiClient.Feed(cmd.Context(), 20)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Println(dimStyle.Render("the feed is empty"))
			return nil
		}
		for _, p := range posts {
			fmt.Printf("%s %s\n", userStyle.Render(p.UserID), dimStyle.Render(p.Created.Format("2006-01-02")))
			if p.ContentDesc != "" {
				fmt.Println("  " + p.ContentDesc)
			}
			if p.ContentURL != "" {
				fmt.Println("  " + dimStyle.Render(p.ContentURL))
			}
			fmt.Printf("  %d likes\n", p.Likes)
		}
		return nil
	},
}
