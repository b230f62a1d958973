// Package lifecycle holds the activate-once / deactivate-once contract shared by
// every stateful entity of a save profile, plus the event bus those entities
// subscribe to while they are loaded.
package lifecycle

import (
	"fmt"
	"io"
	"log/slog"
)

// Logger is the sink kernel code reports to. *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Discard returns a Logger that drops every record.
func Discard() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// State is the loaded flag of one entity. The zero value is unloaded.
type State struct {
	loaded bool
}

func (s *State) Loaded() bool { return s.loaded }

// LoadOnce runs hook inside a fault boundary unless the entity is already
// loaded. The flag flips to loaded even when the hook fails.
func (s *State) LoadOnce(log Logger, entity string, hook func() error) {
	if s.loaded {
		return
	}
	Guard(log, "load", entity, hook)
	s.loaded = true
}

// UnloadOnce is the mirror of LoadOnce.
func (s *State) UnloadOnce(log Logger, entity string, hook func() error) {
	if !s.loaded {
		return
	}
	Guard(log, "unload", entity, hook)
	s.loaded = false
}

// Guard calls fn, converting a panic into an error, and logs any failure.
// It reports whether fn succeeded.
func Guard(log Logger, op, entity string, fn func() error) (ok bool) {
	if fn == nil {
		return true
	}
	if log == nil {
		log = Discard()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("lifecycle hook panicked", "op", op, "entity", entity, "error", fmt.Sprint(r))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		log.Error("lifecycle hook failed", "op", op, "entity", entity, "error", err.Error())
		return false
	}
	return true
}
