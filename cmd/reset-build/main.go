// Operator tool: force a failed course build back to created so a
// re-injected work item can process it again.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/db"
	"github.com/openstax/rope/internal/logger"
	"github.com/openstax/rope/internal/model"
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

	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repo := db.NewRepository(database)

	ctx := context.Background()
	if _, err := repo.GetCourseBuild(ctx, buildID); err != nil {
		log.Fatal().Err(err).Int64("course_build_id", buildID).Msg("Course build not found")
	}
	if err := repo.SetCourseBuildStatus(ctx, buildID, model.BuildStatusCreated); err != nil {
		log.Fatal().Err(err).Int64("course_build_id", buildID).Msg("Failed to reset course build status")
	}

	log.Info().Int64("course_build_id", buildID).Msg("Course build status reset to created")
}
