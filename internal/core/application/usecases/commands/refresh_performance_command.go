package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrRefreshPerformanceCommandIsNotConstructed = errors.New(
	"RefreshPerformanceCommand must be created via NewRefreshPerformanceCommand constructor",
)

// RefreshPerformanceCommand recomputes every driver's period snapshot from the ledger.
type RefreshPerformanceCommand struct {
	guard guard.ConstructorGuard
}

// NewRefreshPerformanceCommand creates the command.
func NewRefreshPerformanceCommand() RefreshPerformanceCommand {
	return RefreshPerformanceCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c RefreshPerformanceCommand) Validate() error {
	return c.guard.Validate(ErrRefreshPerformanceCommandIsNotConstructed)
}
