package model

import (
	"time"

	"github.com/google/uuid"
)

// JobKind says what a queued job refreshes.
type JobKind string

const (
	// JobGame refreshes the in-game tables of a single game.
	JobGame JobKind = "game"
	// JobBatch runs a named collector.
	JobBatch JobKind = "batch"
)

// Job is a unit of work for the worker pool.
type Job struct {
	ID         string
	Kind       JobKind
	Name       string
	GameID     string
	EnqueuedAt time.Time
}

// NewGameJob builds a job that refreshes one game.
func NewGameJob(gameID string) Job {
	return Job{ID: uuid.NewString(), Kind: JobGame, Name: "game", GameID: gameID, EnqueuedAt: time.Now()}
}

// NewBatchJob builds a job that runs the named collector.
func NewBatchJob(name string) Job {
	return Job{ID: uuid.NewString(), Kind: JobBatch, Name: name, EnqueuedAt: time.Now()}
}

// Key identifies equivalent jobs; two jobs with the same key do the same work.
func (j Job) Key() string {
	return string(j.Kind) + ":" + j.Name + ":" + j.GameID
}
