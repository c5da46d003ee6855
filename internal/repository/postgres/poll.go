package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akorchagin/pollster/internal/apperrors"
	"github.com/akorchagin/pollster/internal/models"
)

type PollRepo struct {
	DB DBTX
}

const createPoll = `-- name: CreatePoll
INSERT INTO polls (id, question, creator_id, created_at, modified_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id
`

const createPollChoices = `-- name: CreatePollChoices
INSERT INTO poll_choices (id, poll_id, position, text, votes)
SELECT c.id, $1, c.position, c.text, 0
FROM unnest($2::uuid[], $3::int[], $4::text[]) AS c(id, position, text)
`

func (r *PollRepo) CreatePoll(ctx context.Context, poll models.Poll) (created models.Poll, err error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return created, fmt.Errorf("db tx error: %w", err)
	}
	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	rows, _ := tx.Query(ctx, createPoll, poll.ID, poll.Question, poll.CreatorID)
	pollID, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, apperrors.ErrDuplicateQuestion
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	ids := make([]uuid.UUID, len(poll.Choices))
	positions := make([]int32, len(poll.Choices))
	texts := make([]string, len(poll.Choices))
	for i, c := range poll.Choices {
		ids[i] = c.ID
		positions[i] = int32(i)
		texts[i] = c.Text
	}

	_, err = tx.Exec(ctx, createPollChoices, pollID, ids, positions, texts)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return getPoll(ctx, tx, pollID)
}

func (r *PollRepo) GetPoll(ctx context.Context, pollID uuid.UUID) (models.Poll, error) {
	return getPoll(ctx, r.DB, pollID)
}

// One statement per read, so the choices and the voter set always come from
// the same snapshot of the poll
const getPollQuery = `-- name: GetPoll
SELECT p.id, p.question, p.creator_id, p.created_at, p.modified_at,
    (SELECT COALESCE(jsonb_agg(jsonb_build_object('id', c.id, 'text', c.text, 'votes', c.votes) ORDER BY c.position), '[]'::jsonb)
     FROM poll_choices c
     WHERE c.poll_id = p.id) AS choices,
    (SELECT COALESCE(array_agg(v.user_id), '{}'::uuid[])
     FROM poll_voters v
     WHERE v.poll_id = p.id) AS voter_ids
FROM polls p
WHERE p.id = $1
`

func getPoll(ctx context.Context, db DBTX, pollID uuid.UUID) (models.Poll, error) {
	rows, _ := db.Query(ctx, getPollQuery, pollID)
	poll, err := pgx.CollectOneRow(rows, rowToPoll)

	switch {
	case err == nil:
		return poll, nil
	case errors.Is(err, pgx.ErrNoRows):
		return poll, apperrors.ErrPollNotFound
	default:
		return poll, fmt.Errorf("db error: %w", err)
	}
}

// The filter requires the choice to belong to the poll; the voter insert
// relies on the (poll_id, user_id) primary key, so a duplicate vote collapses
// the whole statement to zero rows. Counter bump and voter append commit
// together or not at all.
const castVote = `-- name: CastVote
WITH target AS (
    SELECT c.poll_id, c.id AS choice_id
    FROM poll_choices c
    WHERE c.poll_id = $1 AND c.id = $2
), voter AS (
    INSERT INTO poll_voters (poll_id, user_id)
    SELECT poll_id, $3 FROM target
    ON CONFLICT (poll_id, user_id) DO NOTHING
    RETURNING poll_id
), bump AS (
    UPDATE poll_choices c
    SET votes = votes + 1
    FROM voter
    WHERE c.id = $2 AND c.poll_id = voter.poll_id
    RETURNING c.poll_id
)
UPDATE polls p
SET modified_at = now()
FROM bump
WHERE p.id = bump.poll_id
RETURNING p.id
`

func (r *PollRepo) CastVote(ctx context.Context, pollID uuid.UUID, choiceID uuid.UUID, userID uuid.UUID) (models.Poll, error) {
	rows, _ := r.DB.Query(ctx, castVote, pollID, choiceID, userID)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	switch {
	case err == nil:
		return getPoll(ctx, r.DB, pollID)
	case errors.Is(err, pgx.ErrNoRows):
		return models.Poll{}, r.classifyRejectedVote(ctx, pollID, choiceID, userID)
	default:
		return models.Poll{}, fmt.Errorf("db error: %w", err)
	}
}

// The cast statement reports only "nothing matched"; re-read the poll to tell
// the caller which precondition actually failed. The race already lost at
// this point, so the read is purely diagnostic.
func (r *PollRepo) classifyRejectedVote(ctx context.Context, pollID uuid.UUID, choiceID uuid.UUID, userID uuid.UUID) error {
	poll, err := getPoll(ctx, r.DB, pollID)
	switch {
	case errors.Is(err, apperrors.ErrPollNotFound):
		return apperrors.ErrPollNotFound
	case err != nil:
		return err
	}

	if _, ok := poll.FindChoice(choiceID); !ok {
		return apperrors.ErrChoiceNotFound
	}
	if poll.HasVoted(userID) {
		return apperrors.ErrAlreadyVoted
	}

	return apperrors.ErrVoteConflict
}

func rowToPoll(row pgx.CollectableRow) (models.Poll, error) {
	var p models.Poll
	var choices []byte

	err := row.Scan(&p.ID, &p.Question, &p.CreatorID, &p.CreatedAt, &p.ModifiedAt, &choices, &p.VoterIDs)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(choices, &p.Choices); err != nil {
		return p, fmt.Errorf("decode choices: %w", err)
	}

	return p, nil
}
