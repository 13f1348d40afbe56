package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"hackathon/internal/config"
	"hackathon/internal/db"
	"hackathon/internal/errors"
	"hackathon/internal/logger"
	"hackathon/internal/repository"
	"hackathon/internal/service"
)

const fetchTimeout = 30 * time.Second

func main() {
	source := flag.String("source", "teams.json", "JSON file path or http(s) URL holding an array of teams")
	flag.Parse()

	cfg := config.Load()
	log := logger.New("hackathon-seed", cfg.LogLevel)
	log.Info("starting seed", "source", *source)

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	teams, err := loadTeams(*source)
	if err != nil {
		log.Error("failed to load teams", "error", err)
		os.Exit(1)
	}
	log.Info("loaded teams", "count", len(teams))

	teamRepo := repository.NewTeamRepository(gormDB)
	validator := service.NewValidator()
	teamService := service.NewTeamService(teamRepo, service.NewTeamValidator(validator, teamRepo), nil, nil, cfg.MaxTeams, log)

	registered, skipped, err := seedTeams(context.Background(), teamService, teams)
	if err != nil {
		log.Error("seed aborted", "error", err, "registered", registered, "skipped", skipped)
		os.Exit(1)
	}
	log.Info("seed completed", "registered", registered, "skipped", skipped)
}

// loadTeams reads a JSON array of team submissions from a file or URL.
func loadTeams(source string) ([]service.TeamInput, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := &http.Client{Timeout: fetchTimeout}
		resp, err := client.Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status code %d", source, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", source, err)
		}
		r = f
	}
	defer r.Close()

	var teams []service.TeamInput
	if err := json.NewDecoder(r).Decode(&teams); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return teams, nil
}

// seedTeams registers each team through the normal workflow. Teams rejected by
// validation are skipped; reaching capacity stops the run without error.
func seedTeams(ctx context.Context, teams service.TeamService, inputs []service.TeamInput) (registered, skipped int, err error) {
	for _, input := range inputs {
		_, _, err := teams.RegisterTeam(ctx, input, nil)
		switch {
		case err == nil:
			registered++
		case stderrors.Is(err, errors.ErrRegistrationClosed):
			return registered, skipped + 1, nil
		default:
			var appErr *errors.AppError
			if stderrors.As(err, &appErr) && appErr.Kind != errors.KindInternal {
				skipped++
				continue
			}
			return registered, skipped, fmt.Errorf("register %q: %w", input.TeamName, err)
		}
	}
	return registered, skipped, nil
}
