package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anirudh/sutra/internal/gateway"
	"github.com/anirudh/sutra/internal/governance"
	"github.com/anirudh/sutra/internal/kernel"
	"github.com/anirudh/sutra/internal/memory"
	"github.com/anirudh/sutra/internal/observability"
	"github.com/anirudh/sutra/internal/planner"
	"github.com/anirudh/sutra/internal/runner"
	"github.com/anirudh/sutra/internal/skills"
	"github.com/anirudh/sutra/internal/store"
	"github.com/anirudh/sutra/pkg/config"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	ask := flag.String("ask", "", "run a single ask and exit")
	history := flag.Int("history", 0, "print the N most recent runs and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if *history > 0 {
		printHistory(cfg.Memory.Path, *history)
		return
	}

	oneShot := *ask != ""
	if !oneShot {
		observability.PrintBanner()
		observability.InitializeTerminal()

		// Route all log output through the terminal mutex so it never
		// interrupts the dashboard's cursor save/restore sequence.
		log.SetOutput(observability.NewTermWriter())
	}

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var llm *openai.LLM
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	case "azure", "azure-openai":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
			openai.WithBaseURL(pCfg.BaseURL),
			openai.WithAPIType(openai.APITypeAzure),
		}
		if pCfg.APIVersion != "" {
			opts = append(opts, openai.WithAPIVersion(pCfg.APIVersion))
		}
		llm, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	runStore, err := store.NewRunStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}

	logger := observability.NewLogger()

	// Skill inventory: semantic collection first, then natives.
	registry := kernel.NewRegistry()
	registry.Register(skills.NewSummarizeSkill(llm, logger))
	registry.Register(skills.NewWriteSkill(llm, logger))

	library := skills.NewLibrary(cfg.App.SkillsDir, llm, logger)
	if err := library.RegisterAll(registry); err != nil {
		log.Printf("Warning: Failed to load skill templates: %v", err)
	}

	registry.Register(skills.NewClockSkill())
	registry.Register(skills.NewFilesystemSkill(cfg.App.Workspace))
	registry.Register(skills.NewScraperSkill())
	registry.Register(skills.NewShellSkill(cfg.App.Workspace))
	registry.Register(skills.NewBrowserSkill(cfg.App.Workspace))
	registry.Register(skills.NewScheduleSkill(runStore))

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Printf("Warning: Failed to initialize embedder, memory skills disabled: %v", err)
	} else {
		index := memory.NewIndex(embedder)
		registry.Register(skills.NewMemorizeSkill(index))
		registry.Register(skills.NewRecallSkill(index))
	}

	searchSkill, err := skills.NewSearchSkill()
	if err != nil {
		log.Printf("Warning: Failed to initialize search skill: %v", err)
	} else {
		registry.Register(searchSkill)
	}

	policy := governance.NewDefaultPolicyEngine()
	// Default safety rules: Block dangerous destructive commands
	_ = policy.DenyInput(`rm\s+-rf`)
	_ = policy.DenyInput(`mkfs`)
	_ = policy.DenyInput(`shutdown`)
	_ = policy.DenyInput(`reboot`)

	modelPlanner := planner.NewModelPlanner(llm, registry, policy, logger)
	modelPlanner.Temperature = cfg.Planner.Temperature

	newTrace := func() runner.Trace { return newStoreTrace(runStore, logger) }

	if oneShot {
		service := runner.NewService(modelPlanner, cfg.Planner.MaxSteps, os.Stdout, newTrace)
		reply, err := service.RunAsk(context.Background(), *ask)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply)
		return
	}

	service := runner.NewService(modelPlanner, cfg.Planner.MaxSteps, log.Writer(), newTrace)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gateways []gateway.Messenger
	if tgCfg, ok := cfg.GetGateway("telegram"); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, service)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, tg)
	}
	if dcCfg, ok := cfg.GetGateway("discord"); ok {
		dc, err := gateway.NewDiscordGateway(dcCfg.Token, service)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, dc)
	}
	if len(gateways) == 0 {
		log.Fatal("No gateway is enabled; use -ask for one-shot mode or enable a gateway in config")
	}

	// Scheduled asks report back through the first gateway.
	scheduler := runner.NewScheduler(service, runStore, gateways[0])
	go scheduler.Start(ctx)

	// Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
			}
		}
	}()

	for _, gw := range gateways {
		gw := gw
		go func() {
			if err := gw.Start(); err != nil {
				log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
				stop() // stop everything if a gateway dies
			}
		}()
	}

	// Wait for shutdown signal
	<-ctx.Done()

	for _, gw := range gateways {
		_ = gw.Stop()
	}

	// Reset terminal aesthetics
	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] ENGINE DE-INITIALIZED. GOODBYE.\033[0m")
}

func printHistory(dbPath string, limit int) {
	runStore, err := store.NewRunStore(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	runs, err := runStore.RecentRuns(limit)
	if err != nil {
		log.Fatal(err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}
	for _, r := range runs {
		fmt.Printf("#%d [%s] %s (%d steps)\n", r.ID, r.Outcome, r.Ask, r.Steps)
	}
}
