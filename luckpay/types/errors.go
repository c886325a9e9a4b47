package types

import "errors"

var (
	ErrInvalidBetAmount          = errors.New("Invalid bet amount")
	ErrBetTooHigh                = errors.New("Bet amount exceeds maximum allowed")
	ErrInvalidGameState          = errors.New("Invalid game state for this operation")
	ErrRandomnessNotReady        = errors.New("Randomness not ready")
	ErrInsufficientEscrowBalance = errors.New("Insufficient balance in escrow treasury")
	ErrGameNotFound              = errors.New("The game does not exist or has been closed")
	ErrGameExists                = errors.New("You already have an open game, close it first")
	ErrConfigExists              = errors.New("The protocol config has already been initialized")
	ErrConfigNotFound            = errors.New("The protocol config has not been initialized")
	ErrInitConfigAddr            = errors.New("You don't have permission to initialize the protocol config")
)
