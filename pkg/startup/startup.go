// Package startup brings up external dependencies in order, retrying the
// whole set with fibonacci backoff until they are all healthy.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

type StartupDependency interface {
	GetName() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type StartupStatus int

const (
	StartupStatusPending StartupStatus = iota
	StartupStatusStarted
	StartupStatusStopped
	StartupStatusFailed
)

type Startup struct {
	order        []string
	dependencies map[string]StartupDependency
	logger       ectologger.Logger
	statuses     map[string]StartupStatus
	maxAttempts  int
}

func NewStartup(logger ectologger.Logger, maxAttempts int) *Startup {
	return &Startup{
		logger:       logger,
		dependencies: make(map[string]StartupDependency),
		statuses:     make(map[string]StartupStatus),
		maxAttempts:  maxAttempts,
	}
}

func (s *Startup) AddDependency(dependency StartupDependency) {
	name := dependency.GetName()
	if _, exists := s.dependencies[name]; !exists {
		s.order = append(s.order, name)
	}
	s.dependencies[name] = dependency
}

// Start brings up every registered dependency in registration order,
// resolving DependsOn first. A failed attempt retries the remaining
// dependencies after a fibonacci-spaced wait, up to maxAttempts.
func (s *Startup) Start(ctx context.Context) error {
	var lastErr error

	a, b := 1, 1
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.logger.WithField("attempt", attempt).Infof("Beginning startup attempt %d", attempt)

		lastErr = nil
		for _, name := range s.order {
			if err := s.startDependency(ctx, s.dependencies[name]); err != nil {
				s.logger.WithError(err).Errorf("Startup dependency '%s' attempt %d failed", name, attempt)
				lastErr = err
				break
			}
		}

		if lastErr == nil {
			return nil
		}

		if attempt == s.maxAttempts {
			break
		}

		s.logger.Infof("Retrying in %d seconds (attempt %d/%d)", a, attempt, s.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(a) * time.Second):
		}
		a, b = b, a+b
	}

	return fmt.Errorf("startup failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Startup) startDependency(ctx context.Context, dependency StartupDependency) error {
	name := dependency.GetName()
	if s.statuses[name] == StartupStatusStarted {
		return nil
	}

	for _, parent := range dependency.DependsOn() {
		if s.statuses[parent] != StartupStatusStarted {
			if err := s.startDependency(ctx, s.dependencies[parent]); err != nil {
				return err
			}
		}
	}

	s.logger.WithField("dependency", name).Infof("Starting dependency '%s'", name)
	s.statuses[name] = StartupStatusPending
	if err := dependency.Start(ctx); err != nil {
		s.statuses[name] = StartupStatusFailed
		s.logger.WithError(err).WithField("dependency", name).Errorf("Failed to start dependency '%s'", name)
		return err
	}
	s.statuses[name] = StartupStatusStarted
	return nil
}

// Stop tears down started dependencies in reverse registration order
func (s *Startup) Stop(ctx context.Context) error {
	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if s.statuses[name] != StartupStatusStarted {
			continue
		}

		s.logger.WithField("dependency", name).Infof("Stopping dependency '%s'", name)
		if err := s.dependencies[name].Stop(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Errorf("Failed to stop dependency '%s'", name)
			return err
		}
		s.statuses[name] = StartupStatusStopped
	}
	return nil
}
