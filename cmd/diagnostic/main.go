// File: cmd/diagnostic/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/iyunix/go-agentdesk/internal/config"
	"github.com/iyunix/go-agentdesk/internal/logging"
	"github.com/iyunix/go-agentdesk/internal/repository/kv"
	"github.com/iyunix/go-agentdesk/internal/services/ai"
)

const usage = `usage: diagnostic <command>

commands:
  llm [message]   send one message through the configured responder
  kv              write, read and remove a scratch key on the configured backend`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}
	cfg := config.Load()
	logger := logging.NewLogger("diagnostic", cfg.Environment, "debug")

	var err error
	switch os.Args[1] {
	case "llm":
		err = checkResponder(cfg, logger, strings.Join(os.Args[2:], " "))
	case "kv":
		err = checkKV(cfg, logger)
	default:
		fmt.Println(usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Diagnostic %s failed: %v", os.Args[1], err)
	}
}

func checkResponder(cfg *config.Config, logger logging.Logger, message string) error {
	if message == "" {
		message = "What is the answer to life, universe and everything?"
	}

	aiConfig := ai.DefaultConfig()
	aiConfig.Provider = ai.Provider(cfg.ResponderProvider)
	aiConfig.LLMKey = cfg.LLMAPIKey
	aiConfig.LLMBaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.LLMModel
	aiConfig.SystemPrompt = cfg.SystemPrompt
	aiConfig.AgentURL = cfg.AgentAPIURL
	aiConfig.AgentKey = cfg.AgentAPIKey
	aiConfig.MaxRetries = 1

	responder, err := ai.NewResponder(aiConfig, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	reply, err := responder.SendMessage(ctx, message, "diagnostic")
	if err != nil {
		return err
	}
	fmt.Printf("provider:        %s\n", aiConfig.Provider)
	fmt.Printf("latency:         %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("conversation id: %s\n", reply.ConversationID)
	fmt.Printf("response:        %s\n", reply.Response)
	return nil
}

func checkKV(cfg *config.Config, logger logging.Logger) error {
	kind, err := kv.ParseKind(cfg.KVBackend)
	if err != nil {
		return err
	}
	opts := kv.Options{PebblePath: cfg.PebblePath, RedisURL: cfg.RedisURL}
	if kind == kv.KindSQLite {
		db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		opts.DB = db
	}
	backend, err := kv.Open(kind, opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	store := kv.NewStore(backend, logger)
	ctx := context.Background()
	token := fmt.Sprintf("roundtrip-%d", time.Now().UnixNano())

	if !store.Save(ctx, "diagnostic", "roundtrip", token) {
		return fmt.Errorf("write to %s backend failed", kind)
	}
	if got := store.LoadString(ctx, "diagnostic", "roundtrip", ""); got != token {
		return fmt.Errorf("read back %q, want %q", got, token)
	}
	if !store.Remove(ctx, "diagnostic", "roundtrip") {
		return fmt.Errorf("remove from %s backend failed", kind)
	}
	fmt.Printf("kv backend %s ok (key %s)\n", kind, kv.Key("diagnostic", "roundtrip"))
	return nil
}
