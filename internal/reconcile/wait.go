package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

var errJobRunning = errors.New("job still running")

// WaitOptions bounds a job wait.
type WaitOptions struct {
	Timeout  time.Duration
	Interval time.Duration
	// Notify is called after every poll that found the job still running.
	Notify func(err error, next time.Duration)
}

// Wait polls the job until it reaches a terminal state. Expiry of the
// timeout yields a *errors.TimeoutError; a failed job or a status call
// failure yields a *errors.CollaboratorError. Cancelling ctx returns the
// context error.
func Wait(ctx context.Context, client cloud.Client, jobID string, opts WaitOptions) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	poll := func() error {
		state, err := client.JobStatus(waitCtx, jobID)
		if err != nil {
			if waitCtx.Err() != nil {
				return backoff.Permanent(waitCtx.Err())
			}
			return backoff.Permanent(apperrors.NewCollaboratorError("job_status", "", err))
		}
		switch state {
		case cloud.JobCompleted:
			return nil
		case cloud.JobFailed:
			return backoff.Permanent(apperrors.NewCollaboratorError("wait", "", fmt.Errorf("job %s failed", jobID)))
		default:
			return errJobRunning
		}
	}

	notify := opts.Notify
	if notify == nil {
		notify = func(error, time.Duration) {}
	}

	err := backoff.RetryNotify(poll, backoff.WithContext(backoff.NewConstantBackOff(interval), waitCtx), notify)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errJobRunning) {
		return apperrors.NewTimeoutError(jobID, timeout, err)
	}
	return err
}
