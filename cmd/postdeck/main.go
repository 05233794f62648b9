package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/postdeck/internal/api"
	"github.com/glabrego/postdeck/internal/app"
	"github.com/glabrego/postdeck/internal/cache"
	"github.com/glabrego/postdeck/internal/config"
	"github.com/glabrego/postdeck/internal/resolve"
	"github.com/glabrego/postdeck/internal/storage"
	"github.com/glabrego/postdeck/internal/tui"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	roster, err := config.LoadRoster(cfg.RosterPath)
	if err != nil {
		log.Fatalf("roster error: %v", err)
	}

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}

	client := api.NewClient(cfg.APIBaseURL, nil)
	service := app.NewService(client, repo)
	store := cache.New(0)
	resolver := resolve.New(client, store)

	posts, err := service.ListCached(ctx, cfg.FeedLimit)
	if err != nil {
		log.Fatalf("cannot load post snapshot: %v", err)
	}

	state, err := service.LoadFilterState(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load saved filters (%v), using defaults\n", err)
		state = app.FilterState{}
	}

	model := tui.NewModel(tui.Params{
		Service:    service,
		Resolver:   resolver,
		Cache:      store,
		Roster:     roster,
		FeedLimit:  cfg.FeedLimit,
		Interweave: cfg.Interweave,
		Posts:      posts,
		State:      state,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
