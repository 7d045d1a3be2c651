package scoreservice

import (
	"context"

	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	sharedtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/shared"
	"github.com/uptrace/bun"
)

// RoundStates reads a round's lifecycle state and holds the round row until
// db's transaction ends. An unknown round reports an empty state.
type RoundStates interface {
	LockRoundState(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) (roundtypes.RoundState, error)
}
