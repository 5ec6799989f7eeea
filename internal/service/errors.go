package service

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidAccessCode    = errors.New("no child matches that access code")
	ErrNoParentRecord       = errors.New("no parent record to reconcile into")
	ErrNotLoggedIn          = errors.New("no active session")
	ErrNotParentSession     = errors.New("operation requires a parent session")
	ErrNotChildSession      = errors.New("operation requires a child session")
	ErrChildNotFound        = errors.New("child not found")
	ErrQuestNotFound        = errors.New("quest not found")
	ErrQuestAlreadyComplete = errors.New("quest already completed")
	ErrRewardNotFound       = errors.New("reward not found")
	ErrInsufficientFunds    = errors.New("not enough points for this reward")
)
