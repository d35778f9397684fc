// The worker consumes queued evaluation jobs, runs the LLM judge on the
// recorded conversation and writes the judgment back to the store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/techstore/support-api/internal/ai"
	"github.com/techstore/support-api/internal/config"
	"github.com/techstore/support-api/internal/db"
	"github.com/techstore/support-api/internal/eval"
	"github.com/techstore/support-api/internal/store/gormstore"
	"github.com/techstore/support-api/internal/store/rabbitmq"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()

	if cfg.RabbitURL == "" {
		log.Fatalf("RABBIT_URL is required for the worker")
	}
	driver := strings.ToLower(cfg.StoreDriver)
	if driver != "mysql" && driver != "sqlite" {
		// Jobs must be visible to both server and worker processes.
		log.Fatalf("worker requires a database store, got STORE_DRIVER=%q", cfg.StoreDriver)
	}

	gdb := db.Connect(driver, cfg.DBDSN)
	store := gormstore.New(gdb)
	if err := store.AutoMigrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	judge := eval.NewJudge(ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.JudgeModel))

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m rabbitmq.JobMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := handleJob(ctx, store, judge, m); err != nil {
					log.Printf("worker=%d job %s failed cost=%s err=%v", workerID, m.JobID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed job=%s err=%v", workerID, m.JobID, err)
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func handleJob(ctx context.Context, store *gormstore.Store, judge *eval.Judge, m rabbitmq.JobMessage) error {
	if err := store.MarkJobRunning(ctx, m.JobID); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	job, err := store.GetJob(ctx, m.JobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}

	conversationID := m.ConversationID
	if conversationID == "" {
		conversationID = job.ConversationID
	}

	rec, err := store.GetEvaluation(ctx, conversationID)
	if err != nil {
		_ = store.MarkJobFailed(ctx, m.JobID, err.Error())
		return fmt.Errorf("load conversation: %w", err)
	}

	judgment, err := judge.Evaluate(ctx, rec.UserQuery, rec.AgentResponse)
	if err != nil {
		_ = store.MarkJobFailed(ctx, m.JobID, err.Error())
		return fmt.Errorf("judge: %w", err)
	}

	if err := store.SubmitJudgment(ctx, conversationID, *judgment); err != nil {
		_ = store.MarkJobFailed(ctx, m.JobID, err.Error())
		return fmt.Errorf("store judgment: %w", err)
	}

	return store.MarkJobSucceeded(ctx, m.JobID)
}
