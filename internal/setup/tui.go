package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tanonw/paperdesk/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

const allAssets = "BTC,ETH,SOL,BNB,XRP,ADA,DOGE,MATIC,LTC,AVAX"

// RunTUI launches the terminal configuration wizard and writes config.yaml.
func RunTUI() error {
	var (
		platform        string
		assets          []string
		cashStr         string
		pollIntervalStr string
		listenAddr      string
		confirm         bool
	)

	// defaults
	cashStr = "2500"
	pollIntervalStr = "15s"
	listenAddr = ":8087"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's set up your simulated trading desk.\n"))

	// platform
	fmt.Println(stepStyle.Render("STEP 1: MARKET DATA PLATFORM"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select market data source").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	// assets
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: ASSETS"))
	assetOptions := huh.NewOptions(splitAssets(allAssets)...)
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Choose the tradable assets (quote is USDT)").
				Options(assetOptions...).
				Value(&assets),
		),
	).Run()
	if err != nil {
		return err
	}

	// desk parameters
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: DESK PARAMETERS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Starting cash balance (USDT)").
				Value(&cashStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Price poll interval (e.g. 15s, 1m)").
				Value(&pollIntervalStr).
				Validate(validateDuration),
			huh.NewInput().
				Title("Dashboard listen address").
				Value(&listenAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	pollInterval, err := time.ParseDuration(pollIntervalStr)
	if err != nil {
		return err
	}

	tmp := config.ConfigTmp{
		Platform:          platform,
		Assets:            assets,
		StartingCashStr:   cashStr,
		PollPriceInterval: pollInterval,
		ListenAddr:        listenAddr,
	}
	if _, err := config.FromTmp(tmp); err != nil {
		return err
	}

	// confirm and write
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERDESK CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: SAVE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write config.yaml to the current directory?").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Println("Aborted, nothing written.")
		return nil
	}

	payload, err := yaml.Marshal(tmp)
	if err != nil {
		return err
	}
	if err := os.WriteFile("config.yaml", payload, 0o644); err != nil {
		return err
	}
	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("config.yaml written. Start the desk with: paperdesk --config config.yaml"))
	return nil
}

func validateDecimal(s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a decimal number")
	}
	if v.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateDuration(s string) error {
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration like 15s or 1m")
	}
	return nil
}

func splitAssets(csv string) []string {
	return strings.Split(csv, ",")
}
