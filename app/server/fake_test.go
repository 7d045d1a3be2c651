package server

import (
	"context"

	roundservice "github.com/Black-And-White-Club/tcr-bot/app/modules/round/application"
	leaderboardtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/leaderboard"
	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	usertypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/user"
)

type FakeRoundService struct {
	GetRoundFn                  func(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error)
	GetRoundsFn                 func(ctx context.Context, limit, offset int) ([]*roundtypes.Round, error)
	ScheduleRoundFn             func(ctx context.Context, input roundservice.ScheduleRoundInput) (*roundtypes.Round, error)
	EditRoundFn                 func(ctx context.Context, roundID sharedtypes.RoundID, input roundservice.EditRoundInput) (*roundtypes.Round, error)
	JoinRoundFn                 func(ctx context.Context, input roundservice.JoinRoundInput) (*roundtypes.Round, error)
	UpdateParticipantResponseFn func(ctx context.Context, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, response roundtypes.Response) (*roundtypes.Round, error)
	StartRoundFn                func(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error)
	SubmitScoreFn               func(ctx context.Context, input roundservice.SubmitScoreInput) (*roundtypes.Round, error)
	FinalizeFn                  func(ctx context.Context, roundID sharedtypes.RoundID) (*roundservice.FinalizeResult, error)
	DeleteRoundFn               func(ctx context.Context, roundID sharedtypes.RoundID, requesterID sharedtypes.DiscordID) (bool, error)
}

func (f *FakeRoundService) GetRound(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error) {
	if f.GetRoundFn != nil {
		return f.GetRoundFn(ctx, roundID)
	}
	return &roundtypes.Round{ID: roundID}, nil
}

func (f *FakeRoundService) GetRounds(ctx context.Context, limit, offset int) ([]*roundtypes.Round, error) {
	if f.GetRoundsFn != nil {
		return f.GetRoundsFn(ctx, limit, offset)
	}
	return nil, nil
}

func (f *FakeRoundService) ScheduleRound(ctx context.Context, input roundservice.ScheduleRoundInput) (*roundtypes.Round, error) {
	if f.ScheduleRoundFn != nil {
		return f.ScheduleRoundFn(ctx, input)
	}
	return &roundtypes.Round{}, nil
}

func (f *FakeRoundService) EditRound(ctx context.Context, roundID sharedtypes.RoundID, input roundservice.EditRoundInput) (*roundtypes.Round, error) {
	if f.EditRoundFn != nil {
		return f.EditRoundFn(ctx, roundID, input)
	}
	return &roundtypes.Round{ID: roundID}, nil
}

func (f *FakeRoundService) JoinRound(ctx context.Context, input roundservice.JoinRoundInput) (*roundtypes.Round, error) {
	if f.JoinRoundFn != nil {
		return f.JoinRoundFn(ctx, input)
	}
	return &roundtypes.Round{ID: input.RoundID}, nil
}

func (f *FakeRoundService) UpdateParticipantResponse(ctx context.Context, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, response roundtypes.Response) (*roundtypes.Round, error) {
	if f.UpdateParticipantResponseFn != nil {
		return f.UpdateParticipantResponseFn(ctx, roundID, userID, response)
	}
	return &roundtypes.Round{ID: roundID}, nil
}

func (f *FakeRoundService) StartRound(ctx context.Context, roundID sharedtypes.RoundID) (*roundtypes.Round, error) {
	if f.StartRoundFn != nil {
		return f.StartRoundFn(ctx, roundID)
	}
	return &roundtypes.Round{ID: roundID, State: roundtypes.RoundStateInProgress}, nil
}

func (f *FakeRoundService) SubmitScore(ctx context.Context, input roundservice.SubmitScoreInput) (*roundtypes.Round, error) {
	if f.SubmitScoreFn != nil {
		return f.SubmitScoreFn(ctx, input)
	}
	return &roundtypes.Round{ID: input.RoundID}, nil
}

func (f *FakeRoundService) FinalizeAndProcessScores(ctx context.Context, roundID sharedtypes.RoundID) (*roundservice.FinalizeResult, error) {
	if f.FinalizeFn != nil {
		return f.FinalizeFn(ctx, roundID)
	}
	return &roundservice.FinalizeResult{Round: &roundtypes.Round{ID: roundID}}, nil
}

func (f *FakeRoundService) DeleteRound(ctx context.Context, roundID sharedtypes.RoundID, requesterID sharedtypes.DiscordID) (bool, error) {
	if f.DeleteRoundFn != nil {
		return f.DeleteRoundFn(ctx, roundID, requesterID)
	}
	return true, nil
}

type FakeLeaderboardService struct {
	GetLeaderboardFn     func(ctx context.Context, page, limit int) ([]leaderboardtypes.LeaderboardEntry, error)
	GetUserTagFn         func(ctx context.Context, userID sharedtypes.DiscordID) (*leaderboardtypes.LeaderboardEntry, error)
	GetUserByTagNumberFn func(ctx context.Context, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error)
	LinkTagFn            func(ctx context.Context, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error)
	UpdateTagFn          func(ctx context.Context, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error)
	ProcessScoresFn      func(ctx context.Context, scores []sharedtypes.ScoreInfo) ([]leaderboardtypes.TagChange, error)
}

func (f *FakeLeaderboardService) GetLeaderboard(ctx context.Context, page, limit int) ([]leaderboardtypes.LeaderboardEntry, error) {
	if f.GetLeaderboardFn != nil {
		return f.GetLeaderboardFn(ctx, page, limit)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) GetUserTag(ctx context.Context, userID sharedtypes.DiscordID) (*leaderboardtypes.LeaderboardEntry, error) {
	if f.GetUserTagFn != nil {
		return f.GetUserTagFn(ctx, userID)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) GetUserByTagNumber(ctx context.Context, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error) {
	if f.GetUserByTagNumberFn != nil {
		return f.GetUserByTagNumberFn(ctx, tag)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) LinkTag(ctx context.Context, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error) {
	if f.LinkTagFn != nil {
		return f.LinkTagFn(ctx, userID, tag)
	}
	return &leaderboardtypes.LeaderboardEntry{UserID: userID, TagNumber: tag}, nil
}

func (f *FakeLeaderboardService) UpdateTag(ctx context.Context, userID sharedtypes.DiscordID, tag sharedtypes.TagNumber) (*leaderboardtypes.LeaderboardEntry, error) {
	if f.UpdateTagFn != nil {
		return f.UpdateTagFn(ctx, userID, tag)
	}
	return &leaderboardtypes.LeaderboardEntry{UserID: userID, TagNumber: tag}, nil
}

func (f *FakeLeaderboardService) ProcessScores(ctx context.Context, scores []sharedtypes.ScoreInfo) ([]leaderboardtypes.TagChange, error) {
	if f.ProcessScoresFn != nil {
		return f.ProcessScoresFn(ctx, scores)
	}
	return nil, nil
}

type FakeScoreService struct {
	GetUserScoreFn      func(ctx context.Context, userID sharedtypes.DiscordID, roundID sharedtypes.RoundID) (*sharedtypes.ScoreInfo, error)
	GetScoresForRoundFn func(ctx context.Context, roundID sharedtypes.RoundID) ([]sharedtypes.ScoreInfo, error)
	UpdateScoreFn       func(ctx context.Context, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, score sharedtypes.Score, tag *sharedtypes.TagNumber) error
	ProcessScoresFn     func(ctx context.Context, roundID sharedtypes.RoundID, scores []sharedtypes.ScoreInfo) error
}

func (f *FakeScoreService) GetUserScore(ctx context.Context, userID sharedtypes.DiscordID, roundID sharedtypes.RoundID) (*sharedtypes.ScoreInfo, error) {
	if f.GetUserScoreFn != nil {
		return f.GetUserScoreFn(ctx, userID, roundID)
	}
	return nil, nil
}

func (f *FakeScoreService) GetScoresForRound(ctx context.Context, roundID sharedtypes.RoundID) ([]sharedtypes.ScoreInfo, error) {
	if f.GetScoresForRoundFn != nil {
		return f.GetScoresForRoundFn(ctx, roundID)
	}
	return nil, nil
}

func (f *FakeScoreService) UpdateScore(ctx context.Context, roundID sharedtypes.RoundID, userID sharedtypes.DiscordID, score sharedtypes.Score, tag *sharedtypes.TagNumber) error {
	if f.UpdateScoreFn != nil {
		return f.UpdateScoreFn(ctx, roundID, userID, score, tag)
	}
	return nil
}

func (f *FakeScoreService) ProcessScores(ctx context.Context, roundID sharedtypes.RoundID, scores []sharedtypes.ScoreInfo) error {
	if f.ProcessScoresFn != nil {
		return f.ProcessScoresFn(ctx, roundID, scores)
	}
	return nil
}

type FakeUserService struct {
	Roles map[sharedtypes.DiscordID]usertypes.UserRoleEnum

	GetUserByDiscordIDFn func(ctx context.Context, userID sharedtypes.DiscordID) (*usertypes.UserData, error)
	CreateUserFn         func(ctx context.Context, data usertypes.UserData) (*usertypes.UserData, error)
	UpdateUserRoleFn     func(ctx context.Context, requesterID, targetID sharedtypes.DiscordID, role usertypes.UserRoleEnum) error
}

func (f *FakeUserService) GetUserByDiscordID(ctx context.Context, userID sharedtypes.DiscordID) (*usertypes.UserData, error) {
	if f.GetUserByDiscordIDFn != nil {
		return f.GetUserByDiscordIDFn(ctx, userID)
	}
	return nil, nil
}

func (f *FakeUserService) GetUserRole(_ context.Context, userID sharedtypes.DiscordID) (usertypes.UserRoleEnum, error) {
	return f.Roles[userID], nil
}

func (f *FakeUserService) CreateUser(ctx context.Context, data usertypes.UserData) (*usertypes.UserData, error) {
	if f.CreateUserFn != nil {
		return f.CreateUserFn(ctx, data)
	}
	return &data, nil
}

func (f *FakeUserService) UpdateUserRole(ctx context.Context, requesterID, targetID sharedtypes.DiscordID, role usertypes.UserRoleEnum) error {
	if f.UpdateUserRoleFn != nil {
		return f.UpdateUserRoleFn(ctx, requesterID, targetID, role)
	}
	return nil
}
