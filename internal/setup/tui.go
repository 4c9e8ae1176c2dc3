// Package setup implements the first-run terminal wizard that generates a
// YAML config file.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/config"
	"gopkg.in/yaml.v3"
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

// GeneratedConfigFile is where the wizard writes its result.
const GeneratedConfigFile = "config.gen.yaml"

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		cashStr         string
		feeStr          string
		quoteProvider   string
		pollIntervalStr string
		predictionURL   string
		predictionKey   string
		listenAddr      string
		confirm         bool
	)

	// defaults
	cashStr = config.DefaultStartingCash.String()
	feeStr = config.DefaultFeeRate.String()
	pollIntervalStr = "5s"
	listenAddr = ":8080"

	// step 1: welcome + cash
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("PAPERTRADE CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's set up your paper trading account.\n"))

	fmt.Println(stepStyle.Render("STEP 1: ACCOUNT"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Starting Cash").
				Description("Virtual funds to trade with (e.g. 100000)").
				Value(&cashStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Fee Rate").
				Description("Flat rate per trade, 0.001 means 0.1%").
				Value(&feeStr).
				Validate(validateFeeRate),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: quotes
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERTRADE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: MARKET DATA"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Live crypto quotes").
				Description("Overrides simulated crypto prices with real tickers").
				Options(
					huh.NewOption("Simulation only", ""),
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
				).
				Value(&quoteProvider),
			huh.NewInput().
				Title("Price Animation Interval").
				Description("Duration string (e.g. 5s, 10s)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: predictions
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERTRADE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: PREDICTIONS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Prediction API URL").
				Description("Leave empty to use the built-in local estimator").
				Value(&predictionURL),
			huh.NewInput().
				Title("Prediction API Key").
				Value(&predictionKey).
				EchoMode(huh.EchoModePassword),
			huh.NewInput().
				Title("HTTP Listen Address").
				Value(&listenAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERTRADE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	provider := quoteProvider
	if provider == "" {
		provider = "simulation"
	}
	summary := fmt.Sprintf(
		"Starting cash: %s\nFee rate: %s\nQuotes: %s\nInterval: %s\nListen: %s\n",
		cashStr, feeStr, provider, pollIntervalStr, listenAddr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	pollInterval, _ := time.ParseDuration(pollIntervalStr)

	cfgTmp := config.ConfigTmp{
		StartingCash:      cashStr,
		FeeRate:           feeStr,
		PollPriceInterval: pollInterval,
		QuoteProvider:     quoteProvider,
		PredictionURL:     predictionURL,
		PredictionAPIKey:  predictionKey,
		ListenAddr:        listenAddr,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	if err := os.WriteFile(GeneratedConfigFile, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting simulator...", GeneratedConfigFile)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validatePositiveDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateFeeRate(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("must be in [0, 1)")
	}
	return nil
}
