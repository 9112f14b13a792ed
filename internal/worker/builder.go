package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/db"
	"github.com/openstax/rope/internal/ledger"
	"github.com/openstax/rope/internal/logger"
	"github.com/openstax/rope/internal/model"
	"github.com/openstax/rope/internal/moodle"
	"github.com/openstax/rope/internal/queue"
	roperrors "github.com/openstax/rope/pkg/errors"

	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/rs/zerolog"
)

// BuildProcessor drains build work items from the queue and drives each
// referenced course build to a terminal status. One message is processed end
// to end at a time; concurrency comes from running multiple processes.
type BuildProcessor struct {
	cfg      *config.Config
	repo     db.Repository
	moodle   moodle.Client
	roles    *moodle.RoleCache
	ledger   *ledger.Ledger
	consumer queue.Consumer
	log      zerolog.Logger
}

func NewBuildProcessor(
	cfg *config.Config,
	repo db.Repository,
	moodleClient moodle.Client,
	roles *moodle.RoleCache,
	completionLedger *ledger.Ledger,
	consumer queue.Consumer,
) *BuildProcessor {
	return &BuildProcessor{
		cfg:      cfg,
		repo:     repo,
		moodle:   moodleClient,
		roles:    roles,
		ledger:   completionLedger,
		consumer: consumer,
		log:      logger.Get(),
	}
}

// Run polls the queue. In daemon mode it sleeps the configured interval
// between empty polls until the context is cancelled; otherwise it drains a
// single receive batch and returns.
func (w *BuildProcessor) Run(ctx context.Context, daemonize bool) error {
	for {
		messages, err := w.consumer.ReceiveMessages(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to receive messages: %w", err)
		}

		for _, message := range messages {
			w.handleMessage(ctx, message)
		}

		if !daemonize {
			return nil
		}

		if len(messages) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.cfg.Worker.PollInterval):
			}
		} else {
			w.log.Info().Int("count", len(messages)).Msg("Received messages")
		}
	}
}

// handleMessage deletes the message only after a clean pass. Failed and
// retryable outcomes both leave the message for the queue's own redelivery;
// the distinction is informational.
func (w *BuildProcessor) handleMessage(ctx context.Context, message *sqs.Message) {
	start := time.Now()

	if err := w.processMessage(ctx, message); err != nil {
		if roperrors.IsRetryable(err) {
			w.log.Warn().Err(err).Msg("Build deferred, message left for redelivery")
		} else {
			w.log.Error().Err(err).Msg("Build failed, message left for redelivery")
		}
		return
	}

	if err := w.consumer.DeleteMessage(ctx, *message.ReceiptHandle); err != nil {
		w.log.Error().Err(err).Msg("Failed to delete message")
		return
	}

	w.log.Info().Dur("duration", time.Since(start)).Msg("Course build step finished")
}

func (w *BuildProcessor) processMessage(ctx context.Context, message *sqs.Message) error {
	var item model.BuildWorkItem
	if err := json.Unmarshal([]byte(*message.Body), &item); err != nil {
		return fmt.Errorf("failed to unmarshal work item: %w", err)
	}
	return w.ProcessCourseBuild(ctx, item.CourseBuildID)
}

// ProcessCourseBuild advances one build through the status state machine.
//
//	created    -> processing, then the remote build runs
//	processing -> retryable conflict, nothing mutated
//	terminal   -> no-op, so redelivered messages are idempotent
func (w *BuildProcessor) ProcessCourseBuild(ctx context.Context, buildID int64) error {
	build, err := w.repo.GetCourseBuild(ctx, buildID)
	if err != nil {
		return fmt.Errorf("course build id %d: %w", buildID, err)
	}

	if build.Status.Terminal() {
		w.log.Info().
			Int64("course_build_id", buildID).
			Str("status", string(build.Status)).
			Msg("Course build already terminal, nothing to do")
		return nil
	}

	if build.Status == model.BuildStatusProcessing {
		return roperrors.NewRetryableError(
			fmt.Errorf("course build id %d status is processing", buildID),
			"build already in progress")
	}

	claimed, err := w.repo.ClaimCourseBuild(ctx, buildID)
	if err != nil {
		return err
	}
	if !claimed {
		// Another worker won the claim between our read and the update.
		return roperrors.NewRetryableError(
			fmt.Errorf("course build id %d was claimed concurrently", buildID),
			"build already in progress")
	}

	newCourse, err := w.buildCourse(ctx, build)
	if err != nil {
		if statusErr := w.repo.SetCourseBuildStatus(ctx, buildID, model.BuildStatusFailed); statusErr != nil {
			w.log.Error().Err(statusErr).Int64("course_build_id", buildID).Msg("Failed to mark build failed")
		}
		return fmt.Errorf("failed to build course %d: %w", buildID, err)
	}

	// The build is already completed at this point; a ledger failure keeps
	// the message around for a retry without touching the status.
	if err := w.recordCompletion(ctx, build, newCourse); err != nil {
		return err
	}

	w.log.Info().
		Int64("course_build_id", build.ID).
		Int64("course_id", newCourse.CourseID).
		Str("course_shortname", build.CourseShortname).
		Msg("Course build completed")

	return nil
}

func (w *BuildProcessor) buildCourse(ctx context.Context, build *model.CourseBuild) (*moodle.NewCourse, error) {
	instructorRoleID, err := w.roles.RoleID(ctx, moodle.RoleTeacher)
	if err != nil {
		return nil, err
	}
	studentRoleID, err := w.roles.RoleID(ctx, moodle.RoleStudent)
	if err != nil {
		return nil, err
	}

	instructor, err := w.moodle.GetUserByEmail(ctx, build.InstructorEmail)
	if err != nil {
		return nil, err
	}
	if instructor == nil {
		return nil, fmt.Errorf("no Moodle user with email %s", build.InstructorEmail)
	}

	newCourse, err := w.moodle.CreateCourse(ctx, moodle.CreateCourseParams{
		BaseCourseID:     build.BaseCourseID,
		Name:             build.CourseName,
		Shortname:        build.CourseShortname,
		CategoryID:       build.CourseCategory,
		InstructorRoleID: instructorRoleID,
		InstructorUserID: instructor.ID,
		StudentRoleID:    studentRoleID,
	})
	if err != nil {
		return nil, err
	}

	if err := w.repo.CompleteCourseBuild(ctx, build.ID,
		newCourse.CourseID, newCourse.EnrolmentURL, newCourse.EnrolmentKey); err != nil {
		return nil, err
	}

	return newCourse, nil
}

func (w *BuildProcessor) recordCompletion(ctx context.Context, build *model.CourseBuild, newCourse *moodle.NewCourse) error {
	district, err := w.repo.GetDistrictByID(ctx, build.SchoolDistrictID)
	if err != nil {
		return err
	}
	return w.ledger.AppendCompletion(ctx, newCourse.CourseID, district.Name)
}
