// File: cmd/summarize/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"lecture-summary/internal/config"
	"lecture-summary/internal/domain"
	"lecture-summary/internal/domain/model"
	"lecture-summary/internal/infra/api"
	"lecture-summary/internal/infra/apiclient"
	"lecture-summary/internal/infra/sched"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "lecture-summary API base URL")
	token := flag.String("token", os.Getenv("LECTURE_SUMMARY_TOKEN"), "API bearer token")
	authSecret := flag.String("auth-secret", "", "mint a token locally from the API's http.auth_secret")
	lessonID := flag.String("lesson", "", "echo360 lesson id")
	mediaID := flag.String("media", "", "echo360 media id")
	bearer := flag.String("bearer", os.Getenv("ECHO360_TOKEN"), "echo360 bearer token")
	apiKey := flag.String("api-key", os.Getenv("GEMINI_API_KEY"), "generation provider API key")
	interval := flag.Duration("interval", config.DefaultPollInterval, "status poll interval")
	out := flag.String("out", "", "write the summary to this file instead of stdout")
	history := flag.Bool("history", false, "list archived summaries and exit")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *authSecret != "" {
		t, err := api.NewAuthManager(*authSecret, time.Hour).Mint("summarize-cli")
		if err != nil {
			logger.Fatal().Err(err).Msg("mint token")
		}
		*token = t
	}
	client := apiclient.NewClient(*server, *token)

	if *history {
		if err := printHistory(ctx, client); err != nil {
			logger.Fatal().Err(err).Msg("history")
		}
		return
	}

	if *lessonID == "" || *mediaID == "" {
		fmt.Fprintln(os.Stderr, "usage: summarize -lesson ID -media ID [-bearer TOKEN] [-api-key KEY]")
		os.Exit(2)
	}

	jobID, err := client.Submit(ctx, apiclient.SubmitRequest{
		LessonID:    *lessonID,
		MediaID:     *mediaID,
		BearerToken: *bearer,
		APIKey:      *apiKey,
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyInProgress):
		logger.Fatal().Msg("a generation is already running; try again when it finishes")
	case err != nil:
		logger.Fatal().Err(err).Msg("submit")
	}
	logger.Info().Str("job_id", jobID).Msg("generation started")

	poller := sched.NewStatusPoller(*interval, client, func(_ model.GenerationStatus, msg string) {
		logger.Info().Msg(msg)
	}, &logger)
	summary, err := poller.Wait(ctx)
	if err != nil {
		var je *sched.JobError
		if errors.As(err, &je) {
			logger.Fatal().Msgf("generation failed: %s", je.Message)
		}
		logger.Fatal().Err(err).Msg("wait for summary")
	}

	if *out == "" {
		fmt.Println(summary)
		return
	}
	if err := os.WriteFile(*out, []byte(summary), 0o644); err != nil {
		logger.Fatal().Err(err).Msg("write summary")
	}
	logger.Info().Str("file", *out).Msg("summary saved")
}

func printHistory(ctx context.Context, c *apiclient.Client) error {
	entries, err := c.History(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no archived summaries")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  %s\n", e.ID, time.UnixMilli(e.Timestamp).Local().Format("2006-01-02 15:04"), e.Title)
	}
	return nil
}
