// Package command is the effect vocabulary applications speak. Commands and
// subscriptions are inert values; only a runtime interprets them.
package command

import (
	"context"

	"github.com/odvcencio/lattice/pkg/ui/element"
)

// AppID names an application registered with the orchestrator.
type AppID string

// Command represents a side effect requested by an application's update.
// A nil Command means "nothing to do".
type Command[Msg any] interface {
	isCommand(Msg)
}

// None returns the empty command.
func None[Msg any]() Command[Msg] {
	return nil
}

// Batch runs its commands in order. Nested batches are flattened and
// execution stops after the first Quit.
type Batch[Msg any] struct {
	Commands []Command[Msg]
}

func (Batch[Msg]) isCommand(Msg) {}

// Sequence builds a batch, dropping nils. It returns nil for no commands and
// the command itself for exactly one.
func Sequence[Msg any](cmds ...Command[Msg]) Command[Msg] {
	kept := make([]Command[Msg], 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Batch[Msg]{Commands: kept}
}

// Quit stops the host loop.
type Quit[Msg any] struct{}

func (Quit[Msg]) isCommand(Msg) {}

// NavigateTo switches the active application, creating it if needed.
type NavigateTo[Msg any] struct {
	Target AppID
}

func (NavigateTo[Msg]) isCommand(Msg) {}

// StartApp recreates Target with fresh parameters and switches to it.
type StartApp[Msg any] struct {
	Target AppID
	Params any
}

func (StartApp[Msg]) isCommand(Msg) {}

// Publish broadcasts payload on topic to every live application.
type Publish[Msg any] struct {
	Topic   string
	Payload any
}

func (Publish[Msg]) isCommand(Msg) {}

// Perform runs Op off the poll loop and feeds its result back to update.
// The context is cancelled when the owning runtime is destroyed.
type Perform[Msg any] struct {
	Name string
	Op   func(ctx context.Context) Msg
}

func (Perform[Msg]) isCommand(Msg) {}

// Task is one unit of a parallel task set. Its result is type-erased; the
// Combine function of the set knows the concrete type for each index.
type Task struct {
	Name string
	Run  func(ctx context.Context) any
}

// ParallelConfig controls the surfaces shown around a task set.
type ParallelConfig struct {
	Title string
	// Loading is shown while tasks are outstanding. Empty means the
	// built-in loading application.
	Loading AppID
	// OnComplete is navigated to once every result is delivered. Empty
	// means returning to the application that started the set.
	OnComplete  AppID
	Cancellable bool
}

// PerformParallel runs every task concurrently and delivers
// Combine(i, result_i) for i in index order once all have finished.
type PerformParallel[Msg any] struct {
	Tasks   []Task
	Config  ParallelConfig
	Combine func(index int, result any) Msg
}

func (PerformParallel[Msg]) isCommand(Msg) {}

// SetFocus moves keyboard focus to ID.
type SetFocus[Msg any] struct {
	ID element.FocusID
}

func (SetFocus[Msg]) isCommand(Msg) {}

// ClearFocus removes keyboard focus.
type ClearFocus[Msg any] struct{}

func (ClearFocus[Msg]) isCommand(Msg) {}

// Flatten expands nested batches depth first. The result ends at the first
// Quit, which is included.
func Flatten[Msg any](cmd Command[Msg]) []Command[Msg] {
	var out []Command[Msg]
	flatten(cmd, &out)
	return out
}

func flatten[Msg any](cmd Command[Msg], out *[]Command[Msg]) bool {
	switch c := cmd.(type) {
	case nil:
		return false
	case Batch[Msg]:
		for _, sub := range c.Commands {
			if flatten(sub, out) {
				return true
			}
		}
		return false
	case Quit[Msg]:
		*out = append(*out, c)
		return true
	default:
		*out = append(*out, c)
		return false
	}
}
