package scoreservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Black-And-White-Club/tcr-bot/app/apperrors"
	scoredb "github.com/Black-And-White-Club/tcr-bot/app/modules/score/infrastructure/repositories"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// GetUserScore returns the player's score for the round, or nil.
func (s *ScoreService) GetUserScore(ctx context.Context, userID sharedtypes.DiscordID, roundID sharedtypes.RoundID) (*sharedtypes.ScoreInfo, error) {
	const op = "GetUserScore"
	if userID == "" {
		return nil, apperrors.EmptyIdentifier(op)
	}
	row, err := s.repo.GetScore(ctx, nil, roundID, userID)
	if errors.Is(err, scoredb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence(op, err)
	}
	info := row.ToInfo()
	return &info, nil
}

// GetScoresForRound returns the round's scores in the order they were recorded.
func (s *ScoreService) GetScoresForRound(ctx context.Context, roundID sharedtypes.RoundID) ([]sharedtypes.ScoreInfo, error) {
	return s.GetScoresForRoundInTx(ctx, nil, roundID)
}

// GetScoresForRoundInTx reads the round's scores on db.
func (s *ScoreService) GetScoresForRoundInTx(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]sharedtypes.ScoreInfo, error) {
	rows, err := s.repo.GetScoresForRound(ctx, db, roundID)
	if err != nil {
		return nil, apperrors.Persistence("GetScoresForRound", err)
	}
	out := make([]sharedtypes.ScoreInfo, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToInfo())
	}
	return out, nil
}

// UpdateScore corrects an existing score while its round is in progress.
// The tag is only replaced when given.
func (s *ScoreService) UpdateScore(ctx context.Context, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, score sharedtypes.Score, tag *sharedtypes.TagNumber) error {
	const op = "UpdateScore"
	_, err := withTelemetry(s, ctx, op, roundID, func(ctx context.Context) (struct{}, error) {
		if userID == "" {
			return struct{}{}, apperrors.EmptyIdentifier(op)
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			if err := s.requireInProgress(ctx, db, op, roundID); err != nil {
				return struct{}{}, err
			}
			err := s.repo.UpdateScore(ctx, db, roundID, userID, score, tag)
			if errors.Is(err, scoredb.ErrNoRowsAffected) {
				return struct{}{}, apperrors.NotFound(op, "no score for %s in round %d", userID, roundID)
			}
			if err != nil {
				return struct{}{}, apperrors.Persistence(op, err)
			}
			return struct{}{}, nil
		})
	})
	return err
}

// ProcessScores records a whole round's scores at once. The round must be in
// progress, and the call is rejected if any player already has a score for
// the round or appears twice.
func (s *ScoreService) ProcessScores(ctx context.Context, roundID sharedtypes.RoundID, scores []sharedtypes.ScoreInfo) error {
	const op = "ProcessScores"
	_, err := withTelemetry(s, ctx, op, roundID, func(ctx context.Context) (struct{}, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			if err := s.requireInProgress(ctx, db, op, roundID); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, s.insert(ctx, db, op, roundID, scores, scoredb.SourceLedger)
		})
	})
	return err
}

// InsertScoreInTx records a single submitted score on the caller's transaction.
func (s *ScoreService) InsertScoreInTx(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, score sharedtypes.ScoreInfo) error {
	return s.insert(ctx, db, "SubmitScore", roundID, []sharedtypes.ScoreInfo{score}, scoredb.SourceSubmission)
}

// DeleteScoresForRoundInTx removes every score of the round on db.
func (s *ScoreService) DeleteScoresForRoundInTx(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) error {
	n, err := s.repo.DeleteScoresForRound(ctx, db, roundID)
	if err != nil {
		return apperrors.Persistence("DeleteScoresForRound", err)
	}
	s.logger.DebugContext(ctx, "Removed round scores",
		slog.String("round_id", roundID.String()),
		slog.Int("count", n),
	)
	return nil
}

// requireInProgress holds the round row until db's transaction ends.
func (s *ScoreService) requireInProgress(ctx context.Context, db bun.IDB, op string, roundID sharedtypes.RoundID) error {
	state, err := s.rounds.LockRoundState(ctx, db, roundID)
	if err != nil {
		return apperrors.Persistence(op, err)
	}
	switch state {
	case "", roundtypes.RoundStateDeleted:
		return apperrors.NotFound(op, "round %d not found", roundID)
	case roundtypes.RoundStateInProgress:
		return nil
	default:
		return apperrors.InvalidState(op, "Scores can only be recorded while the round is in progress")
	}
}

func (s *ScoreService) insert(ctx context.Context, db bun.IDB, op string, roundID sharedtypes.RoundID, scores []sharedtypes.ScoreInfo, source string) error {
	rows := make([]scoredb.Score, 0, len(scores))
	seen := make(map[sharedtypes.DiscordID]struct{}, len(scores))
	for _, sc := range scores {
		if sc.UserID == "" {
			return apperrors.EmptyIdentifier(op)
		}
		if _, dup := seen[sc.UserID]; dup {
			return apperrors.DuplicateScore(op, string(sc.UserID), int64(roundID))
		}
		seen[sc.UserID] = struct{}{}

		if _, err := s.repo.GetScore(ctx, db, roundID, sc.UserID); err == nil {
			return apperrors.DuplicateScore(op, string(sc.UserID), int64(roundID))
		} else if !errors.Is(err, scoredb.ErrNotFound) {
			return apperrors.Persistence(op, err)
		}

		rows = append(rows, scoredb.Score{
			UserID:    sc.UserID,
			RoundID:   roundID,
			Score:     sc.Score,
			TagNumber: sc.TagNumber,
			Source:    source,
		})
	}

	if err := s.repo.InsertScores(ctx, db, rows); err != nil {
		if errors.Is(err, scoredb.ErrDuplicate) {
			return apperrors.Duplicate(op, "score already recorded for round %d", roundID)
		}
		return apperrors.Persistence(op, err)
	}
	return nil
}
