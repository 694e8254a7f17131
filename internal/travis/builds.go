package travis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// BuildsResult reports what EnableBuilds managed to do. Problems that do not
// stop the pipeline are listed in Warnings.
type BuildsResult struct {
	SyncAttempts  int
	Synced        bool
	HookActivated bool
	Warnings      []string
}

// SyncWithRetry triggers a sync, retrying failed attempts with a constant
// delay. It returns the attempt count and the last error when every attempt
// failed. After a successful sync it waits one delay so Travis can pick up
// the new repository.
func (c *Client) SyncWithRetry(ctx context.Context) (int, error) {
	attempts := 0
	op := func() error {
		attempts++
		err := c.Sync(ctx)
		if err != nil {
			c.log.Debug("travis sync failed", zap.Int("attempt", attempts), zap.Error(err))
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), c.retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return attempts, err
	}

	if err := sleep(ctx, c.delay); err != nil {
		return attempts, err
	}
	return attempts, nil
}

// EnableBuilds syncs the account and activates the hook of owner/repo. An
// exhausted sync budget or a missing hook is reported as a warning.
func (c *Client) EnableBuilds(ctx context.Context, owner, repo string) (*BuildsResult, error) {
	res := &BuildsResult{}

	attempts, err := c.SyncWithRetry(ctx)
	res.SyncAttempts = attempts
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if err != nil {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("travis sync failed after %d attempts: %v", attempts, err))
	} else {
		res.Synced = true
	}

	hooks, err := c.Hooks(ctx)
	if err != nil {
		return res, err
	}

	for _, h := range hooks {
		if !strings.EqualFold(h.OwnerName, owner) || !strings.EqualFold(h.Name, repo) {
			continue
		}
		if !h.Active {
			if err := c.ActivateHook(ctx, h.ID); err != nil {
				return res, err
			}
		}
		res.HookActivated = true
		return res, nil
	}

	res.Warnings = append(res.Warnings,
		fmt.Sprintf("travis hook for %s/%s not found, enable builds manually", owner, repo))
	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
