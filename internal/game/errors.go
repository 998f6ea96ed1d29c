package game

import "errors"

var (
	// ErrOffline means no network reachability was detected before the
	// engine attempted a fetch. No state was mutated.
	ErrOffline = errors.New("device is offline")

	// ErrExhausted means the catalog cannot supply an unseen trade for
	// today. Terminal for the run until the daily reset.
	ErrExhausted = errors.New("all trades used today")
)
