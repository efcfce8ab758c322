package main

import "errors"

var (
	ErrServerFull     = errors.New("server full")
	ErrNameTaken      = errors.New("name is already taken")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrUnknownZombie  = errors.New("unknown zombie")
	ErrNotHost        = errors.New("only the host can do that")
	ErrAlreadyRunning = errors.New("game already running")
	ErrGameStopped    = errors.New("game loop stopped")
)

// joinErrorText is the message shown to a player whose name is taken
const joinErrorText = "Name is already taken. Please choose another."
