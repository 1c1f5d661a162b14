package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// the given path, and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to ragdesk! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Primary provider.
	primaryPrompt := promptui.Select{
		Label: "Select primary LLM provider",
		Items: []string{string(ProviderOpenAI), string(ProviderAnthropic)},
	}
	_, primaryStr, err := primaryPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("primary provider selection: %w", err)
	}
	cfg.LLM.Primary.Provider = ProviderType(primaryStr)
	cfg.LLM.Primary.Model = defaultModelFor(cfg.LLM.Primary.Provider)

	// 2. Fallback provider, preselecting the other vendor.
	fallbackPrompt := promptui.Select{
		Label: "Select fallback LLM provider",
		Items: []string{string(otherProvider(cfg.LLM.Primary.Provider)), string(cfg.LLM.Primary.Provider)},
	}
	_, fallbackStr, err := fallbackPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("fallback provider selection: %w", err)
	}
	cfg.LLM.Fallback.Provider = ProviderType(fallbackStr)
	cfg.LLM.Fallback.Model = defaultModelFor(cfg.LLM.Fallback.Provider)

	// 3. Ticketing platform domain.
	domainPrompt := promptui.Prompt{
		Label:   "Helpdesk domain (yourcompany in yourcompany.freshdesk.com, blank to use the in-memory adapter)",
		Default: "",
	}
	domain, err := domainPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("helpdesk domain: %w", err)
	}
	cfg.Ticketing.Domain = strings.TrimSpace(domain)
	if cfg.Ticketing.Domain == "" {
		cfg.Ticketing.Platform = "memory"
	}

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 5. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration written to %s\n", path)
	fmt.Printf("Remember to export %s", APIKeyEnvVar(cfg.LLM.Primary.Provider))
	if cfg.LLM.Fallback.Provider != cfg.LLM.Primary.Provider {
		fmt.Printf(" and %s", APIKeyEnvVar(cfg.LLM.Fallback.Provider))
	}
	fmt.Println(".")

	return cfg, nil
}

func otherProvider(p ProviderType) ProviderType {
	if p == ProviderOpenAI {
		return ProviderAnthropic
	}
	return ProviderOpenAI
}

func defaultModelFor(p ProviderType) string {
	if p == ProviderAnthropic {
		return "claude-3-5-sonnet-latest"
	}
	return "gpt-4o-mini"
}
