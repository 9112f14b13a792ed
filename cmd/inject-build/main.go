// Operator tool: put a work item for an existing course build back on the
// queue, typically after reset-build.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/logger"
	"github.com/openstax/rope/internal/model"
	"github.com/openstax/rope/internal/queue"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <course_build_id>\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	buildID, err := strconv.ParseInt(flag.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid course build id: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	sqsClient, err := queue.NewSQSClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to SQS")
	}
	producer := queue.NewProducer(sqsClient)

	item := model.BuildWorkItem{CourseBuildID: buildID}
	if err := producer.EnqueueBuildWorkItem(context.Background(), item); err != nil {
		log.Fatal().Err(err).Int64("course_build_id", buildID).Msg("Failed to enqueue work item")
	}

	log.Info().Int64("course_build_id", buildID).Msg("Work item enqueued")
}
