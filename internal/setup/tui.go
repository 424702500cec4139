package setup

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/walletboard/config"
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

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		platform   string
		listenAddr string
		dataDir    string
		tlsDomains string
		confirm    bool
	)

	// defaults
	listenAddr = ":8080"
	dataDir = "."

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("WALLETBOARD CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's wire up your dashboard.\n"))

	// platform
	fmt.Println(stepStyle.Render("STEP 1: EXCHANGE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Description("Credentials are read from the environment, not stored here").
				Options(
					huh.NewOption("Binance", config.PlatformBinance),
					huh.NewOption("Bybit", config.PlatformBybit),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	// server
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("WALLETBOARD CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: SERVER"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen Address").
				Description("host:port, e.g. :8080").
				Value(&listenAddr).
				Validate(func(s string) error {
					if _, _, err := net.SplitHostPort(s); err != nil {
						return fmt.Errorf("must be host:port (e.g. :8080)")
					}
					return nil
				}),
			huh.NewInput().
				Title("Data Directory").
				Description("Where comments.json and balance_history.json live").
				Value(&dataDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("data dir cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("TLS Domains").
				Description("Comma-separated; leave empty for plain HTTP").
				Value(&tlsDomains),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("WALLETBOARD CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Platform: %s\nListen: %s\nData dir: %s\nTLS: %s\n",
		platform, listenAddr, dataDir, orNone(tlsDomains),
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
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

	cfgTmp := config.ConfigTmp{
		ListenAddr: listenAddr,
		Platform:   platform,
		DataDir:    dataDir,
		TLSDomains: splitDomains(tlsDomains),
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s\nRun: walletboard --config %s", filename, filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func splitDomains(s string) []string {
	var domains []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			domains = append(domains, part)
		}
	}
	return domains
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
