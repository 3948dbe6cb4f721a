package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/msoica/redis-jwt-hash-store-validator/internal/config"
	"github.com/msoica/redis-jwt-hash-store-validator/tokenstate"
	"github.com/msoica/redis-jwt-hash-store-validator/tokenstate/rediskv"
)

const appName = "tokenstatectl"

const (
	exitOK          = 0
	exitError       = 1
	exitBlacklisted = 2
	exitNotFound    = 3
)

const connectTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return exitError
	}

	log := newLogger(cfg.LogLevel)

	client := rediskv.New(rediskv.Config{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		ScanCount: cfg.ScanBatchSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		log.Error().Err(err).Str("addr", cfg.RedisAddr).Msg("redis connect failed")
		return exitError
	}
	defer client.Close()

	store := tokenstate.New(client, tokenstate.Options{
		ValidPrefix:       cfg.ValidPrefix,
		BlacklistedPrefix: cfg.BlacklistedPrefix,
		Logger:            log,
	})

	return dispatch(context.Background(), log, store, args[0], args[1:])
}

func dispatch(ctx context.Context, log zerolog.Logger, store *tokenstate.Store, command string, args []string) int {
	switch command {
	case "record-valid", "record-blacklisted":
		return runRecord(ctx, log, store, command, args)
	case "validate":
		return runValidate(ctx, log, store, args)
	case "delete":
		return runDelete(ctx, log, store, args)
	case "purge":
		return runPurge(ctx, log, store, args)
	default:
		usage()
		return exitError
	}
}

func runRecord(ctx context.Context, log zerolog.Logger, store *tokenstate.Store, command string, args []string) int {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	id := fs.String("id", "", "identifier the token belongs to")
	token := fs.String("token", "", "raw token")
	tokenContext := fs.String("context", "", "context string stored with the record (e.g. origin IP)")
	ttl := fs.Int64("ttl", 0, "expiration in seconds; 0 means no expiration")
	_ = fs.Parse(args)

	record := store.RecordValid
	if command == "record-blacklisted" {
		record = store.RecordBlacklisted
	}
	if err := record(ctx, *id, *token, *tokenContext, *ttl); err != nil {
		log.Error().Err(err).Msg("record failed")
		return exitError
	}
	log.Info().Str("identifier", *id).Msg("token recorded")
	return exitOK
}

func runValidate(ctx context.Context, log zerolog.Logger, store *tokenstate.Store, args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	id := fs.String("id", "", "identifier the token belongs to")
	token := fs.String("token", "", "raw token")
	_ = fs.Parse(args)

	switch err := store.Validate(ctx, *id, *token); {
	case err == nil:
		log.Info().Str("identifier", *id).Msg("token valid")
		return exitOK
	case errors.Is(err, tokenstate.ErrTokenBlacklisted):
		log.Warn().Str("identifier", *id).Msg("token blacklisted")
		return exitBlacklisted
	case errors.Is(err, tokenstate.ErrTokenNotFound):
		log.Warn().Str("identifier", *id).Msg("token not found")
		return exitNotFound
	default:
		log.Error().Err(err).Msg("validate failed")
		return exitError
	}
}

func runDelete(ctx context.Context, log zerolog.Logger, store *tokenstate.Store, args []string) int {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "identifier the token belongs to")
	token := fs.String("token", "", "raw token")
	category := fs.String("category", "valid", "category to delete from: valid or blacklisted")
	_ = fs.Parse(args)

	if err := store.DeleteRecord(ctx, tokenstate.Category(*category), *id, *token); err != nil {
		log.Error().Err(err).Msg("delete failed")
		return exitError
	}
	log.Info().Str("identifier", *id).Str("category", *category).Msg("record deleted")
	return exitOK
}

func runPurge(ctx context.Context, log zerolog.Logger, store *tokenstate.Store, args []string) int {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	id := fs.String("id", "", "identifier whose records are purged")
	category := fs.String("category", "valid", "category to purge: valid or blacklisted")
	_ = fs.Parse(args)

	if err := store.DeleteAllByIdentifier(ctx, tokenstate.Category(*category), *id); err != nil {
		log.Error().Err(err).Msg("purge failed")
		return exitError
	}
	log.Info().Str("identifier", *id).Str("category", *category).Msg("records purged")
	return exitOK
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
}

func usage() {
	figure.NewFigure(appName, "cybermedium", true).Print()
	fmt.Println()
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [flags]

Commands:
  record-valid        record a token under the valid category
  record-blacklisted  record a token under the blacklisted category
  validate            check a token (exit %d blacklisted, %d not found)
  delete              delete one record
  purge               delete every record for an identifier

Run "%s <command> -h" for the command's flags.
`, appName, exitBlacklisted, exitNotFound, appName)
}
