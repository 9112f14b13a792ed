package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/openstax/rope/internal/logger"
	"github.com/openstax/rope/internal/storage"

	"github.com/rs/zerolog"
)

// researchParticipationFlag is fixed for every row this system writes.
const researchParticipationFlag = "0"

var header = []string{"course_id", "district", "research_participation"}

// Ledger is the append-only CSV of completed course builds, held as a single
// object in storage. Appending is a read-modify-write of the whole object;
// rows are never rewritten or dropped.
type Ledger struct {
	storage storage.Storage
	key     string
	log     zerolog.Logger
}

func New(store storage.Storage, key string) *Ledger {
	return &Ledger{
		storage: store,
		key:     key,
		log:     logger.Get(),
	}
}

// AppendCompletion records one successfully built course. A missing ledger
// object is seeded with the header row.
func (l *Ledger) AppendCompletion(ctx context.Context, courseID int64, districtName string) error {
	records, err := l.read(ctx)
	if err != nil {
		return err
	}

	records = append(records, []string{
		strconv.FormatInt(courseID, 10),
		districtName,
		researchParticipationFlag,
	})

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := l.storage.Upload(ctx, l.key, &buf); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}

	l.log.Info().
		Int64("course_id", courseID).
		Str("district", districtName).
		Msg("Course completion recorded in ledger")

	return nil
}

func (l *Ledger) read(ctx context.Context) ([][]string, error) {
	exists, err := l.storage.Exists(ctx, l.key)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger object: %w", err)
	}
	if !exists {
		return [][]string{header}, nil
	}

	body, err := l.storage.Download(ctx, l.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	defer body.Close()

	records, err := csv.NewReader(body).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}
	if len(records) == 0 {
		records = [][]string{header}
	}
	return records, nil
}
