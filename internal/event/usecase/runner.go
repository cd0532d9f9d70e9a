package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	authdomain "mailpilot-backend/internal/auth/domain"
	authrepo "mailpilot-backend/internal/auth/repository"
	eventdomain "mailpilot-backend/internal/event/domain"
	"mailpilot-backend/internal/event/repository"
	"mailpilot-backend/pkg/config"
	"mailpilot-backend/pkg/crypto"

	"golang.org/x/oauth2"
)

// Runner fans a processing run out over users and records each run in the
// run history.
type Runner struct {
	cfg          *config.Config
	users        authrepo.UserRepository
	runLogs      repository.RunLogRepository
	orchestrator *Orchestrator
}

func NewRunner(cfg *config.Config, users authrepo.UserRepository, runLogs repository.RunLogRepository, orchestrator *Orchestrator) *Runner {
	return &Runner{
		cfg:          cfg,
		users:        users,
		runLogs:      runLogs,
		orchestrator: orchestrator,
	}
}

// ScheduledOptions are the knobs of the background trigger: the current
// calendar day, a small per-user budget.
func (r *Runner) ScheduledOptions() RunOptions {
	return RunOptions{
		Trigger:      eventdomain.TriggerScheduled,
		ListQuery:    "in:inbox newer_than:1d",
		ListMax:      10,
		MaxProcessed: r.cfg.ScheduledMaxThreads,
	}
}

// ManualOptions are the knobs of the interactive trigger: a trailing
// lookback window and a larger budget.
func (r *Runner) ManualOptions() RunOptions {
	return RunOptions{
		Trigger:      eventdomain.TriggerManual,
		ListQuery:    "in:inbox newer_than:1d",
		ListMax:      10,
		MaxProcessed: r.cfg.ManualMaxThreads,
		Lookback:     r.cfg.ManualLookback,
	}
}

// RunAll processes every active connected user with a bounded worker pool
// and appends one run history entry summarizing the whole run.
func (r *Runner) RunAll(ctx context.Context, opts RunOptions) ([]*eventdomain.RunResult, error) {
	users, err := r.users.FindActiveWithTokens()
	if err != nil {
		r.logRun(opts.Trigger, "error", fmt.Sprintf("listing users failed: %v", err), 0)
		return nil, fmt.Errorf("list users: %w", err)
	}
	log.Printf("[Runner] %s run over %d users", opts.Trigger, len(users))

	results := make([]*eventdomain.RunResult, len(users))
	sem := make(chan struct{}, r.cfg.WorkerLimit)
	var wg sync.WaitGroup

	for i, user := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, user *authdomain.User) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.runUser(ctx, user, opts)
		}(i, user)
	}
	wg.Wait()

	created, existed, processed, failures := tally(results)
	status := "success"
	if failures > 0 {
		status = "error"
	}
	message := fmt.Sprintf("Processed %d threads for %d users, created %d new events, %d already existed", processed, len(users), created, existed)
	if failures > 0 {
		message = fmt.Sprintf("%s, %d failures", message, failures)
	}
	r.logRun(opts.Trigger, status, message, processed)
	return results, nil
}

// RunForUser processes a single user, for the interactive trigger.
func (r *Runner) RunForUser(ctx context.Context, userID string, opts RunOptions) (*eventdomain.RunResult, error) {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	result := r.runUser(ctx, user, opts)
	status := "success"
	if result.Error != "" {
		status = "error"
	}
	r.logRun(opts.Trigger, status,
		fmt.Sprintf("%s: %d threads processed", user.Email, result.Processed),
		result.Processed)
	return result, nil
}

func (r *Runner) runUser(ctx context.Context, user *authdomain.User, opts RunOptions) *eventdomain.RunResult {
	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout*time.Duration(opts.MaxProcessed+1))
	defer cancel()

	sess, err := r.newSession(user)
	if err != nil {
		log.Printf("[Runner] %s: session setup failed: %v", user.Email, err)
		return &eventdomain.RunResult{UserEmail: user.Email, Error: err.Error()}
	}

	result, err := r.orchestrator.ProcessUser(runCtx, sess, opts)
	if err != nil {
		log.Printf("[Runner] %s: run failed: %v", user.Email, err)
		return &eventdomain.RunResult{UserEmail: user.Email, Error: err.Error()}
	}
	return result
}

// newSession decrypts the user's stored OAuth tokens and wires the refresh
// callback that re-encrypts and persists rotated credentials.
func (r *Runner) newSession(user *authdomain.User) (*UserSession, error) {
	accessToken, err := crypto.Decrypt(user.AccessToken, r.cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	refreshToken, err := crypto.Decrypt(user.RefreshToken, r.cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}

	onRefresh := func(token *oauth2.Token) error {
		encAccess, err := crypto.Encrypt(token.AccessToken, r.cfg.EncryptionKey)
		if err != nil {
			return fmt.Errorf("encrypt access token: %w", err)
		}
		user.AccessToken = encAccess
		if token.RefreshToken != "" {
			encRefresh, err := crypto.Encrypt(token.RefreshToken, r.cfg.EncryptionKey)
			if err != nil {
				return fmt.Errorf("encrypt refresh token: %w", err)
			}
			user.RefreshToken = encRefresh
		}
		expiry := token.Expiry
		user.TokenExpiry = &expiry
		return r.users.Update(user)
	}

	return &UserSession{
		UserID:         user.ID,
		Email:          user.Email,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		OnTokenRefresh: onRefresh,
	}, nil
}

func (r *Runner) logRun(trigger, status, message string, processed int) {
	entry := &eventdomain.RunLog{
		Trigger:   trigger,
		Status:    status,
		Message:   message,
		Processed: processed,
	}
	if err := r.runLogs.Append(entry); err != nil {
		log.Printf("[Runner] failed to append run log: %v", err)
	}
}

// RecentRuns exposes the trailing run history.
func (r *Runner) RecentRuns(limit int) ([]*eventdomain.RunLog, error) {
	return r.runLogs.Recent(limit)
}

func tally(results []*eventdomain.RunResult) (created, existed, processed, failures int) {
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Error != "" {
			failures++
		}
		processed += res.Processed
		for _, out := range res.Outcomes {
			switch out.Status {
			case eventdomain.OutcomeCreated:
				created++
			case eventdomain.OutcomeAlreadyExists:
				existed++
			case eventdomain.OutcomeError:
				failures++
			}
		}
	}
	return created, existed, processed, failures
}
