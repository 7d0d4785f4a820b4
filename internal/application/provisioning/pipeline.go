// Package provisioning orchestrates the full account lifecycle against
// external services: activation, the per-task reconciliation pipeline the
// dispatcher runs, deprovisioning and escalation of permanently failing
// accounts.
package provisioning

import (
	"context"
	"errors"
	"fmt"

	"aegis/internal/domain/authstate"
	"aegis/internal/domain/group"
	"aegis/internal/domain/permission"
	"aegis/internal/domain/sync"
	"aegis/internal/domain/user"
	"aegis/internal/infrastructure/notify"
	"aegis/internal/shared/logger"
)

// Pipeline is the reconciliation pass executed for one (user, service) task.
// It resolves the user's state, computes entitlements, provisions the remote
// account on first run, and diffs remote groups against the desired set.
type Pipeline struct {
	users        user.Repository
	states       *authstate.Service
	affiliations authstate.AffiliationSource
	calculator   *group.Calculator
	engine       *sync.Engine
	links        sync.LinkRepository
	registry     sync.Registry
	enforcer     permission.Enforcer
	notifier     notify.Notifier
	logger       logger.Interface
}

func NewPipeline(
	users user.Repository,
	states *authstate.Service,
	affiliations authstate.AffiliationSource,
	calculator *group.Calculator,
	engine *sync.Engine,
	links sync.LinkRepository,
	registry sync.Registry,
	enforcer permission.Enforcer,
	notifier notify.Notifier,
	log logger.Interface,
) *Pipeline {
	return &Pipeline{
		users:        users,
		states:       states,
		affiliations: affiliations,
		calculator:   calculator,
		engine:       engine,
		links:        links,
		registry:     registry,
		enforcer:     enforcer,
		notifier:     notifier,
		logger:       log.Named("pipeline"),
	}
}

// SyncUser runs one reconciliation pass. Errors carry a failure kind so the
// dispatcher can route between retry and escalation.
func (p *Pipeline) SyncUser(ctx context.Context, userID uint, service string) error {
	adapter, ok := p.registry.Get(service)
	if !ok {
		return sync.Unrecoverable(fmt.Errorf("service %s is not configured", service))
	}

	link, err := p.links.GetByUserAndService(ctx, userID, service)
	if err != nil {
		if errors.Is(err, sync.ErrLinkNotFound) {
			// Nothing was activated for this pair; spurious task.
			return nil
		}
		return fmt.Errorf("failed to load account link: %w", err)
	}

	account, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	allowed, err := p.enforcer.CanUseService(userID, service)
	if err != nil {
		return fmt.Errorf("failed to check service grant: %w", err)
	}

	// An inactive user or a revoked grant strips the remote account.
	if !account.IsActive() || !allowed {
		return p.deprovision(ctx, adapter, link, account)
	}

	state, err := p.states.ResolveUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve state: %w", err)
	}

	aff, err := p.affiliations.MainAffiliation(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load affiliation: %w", err)
	}

	entitlements, err := p.calculator.Entitlements(ctx, userID, state, aff)
	if err != nil {
		return fmt.Errorf("failed to compute entitlements: %w", err)
	}
	if len(entitlements.Stale) > 0 {
		// The remote-minus-desired diff below strips these; record which
		// previously generated groups this pass takes away.
		p.logger.Infow("stale managed groups to strip",
			"user_id", userID,
			"service", service,
			"groups", entitlements.Stale,
		)
	}

	if !link.IsProvisioned() {
		if err := p.provision(ctx, adapter, link, account); err != nil {
			return p.recordFailure(ctx, link, err)
		}
	}

	outcome, err := p.engine.Reconcile(ctx, adapter, link.RemoteID(), entitlements.Desired)
	if err != nil {
		return p.recordFailure(ctx, link, err)
	}
	if outcome.HasFailures() {
		// The diff is idempotent; a retry reapplies only what failed.
		return p.recordFailure(ctx, link, sync.Transient(
			fmt.Errorf("%d group operations failed on %s", outcome.Failed(), service)))
	}

	link.MarkSynced()
	if err := p.links.Update(ctx, link); err != nil {
		return fmt.Errorf("failed to persist sync result: %w", err)
	}
	return nil
}

// provision creates the remote account and delivers generated credentials.
func (p *Pipeline) provision(ctx context.Context, adapter sync.Adapter, link *sync.AccountLink, account *user.User) error {
	remoteID, creds, err := adapter.CreateAccount(ctx, sync.AccountProfile{
		UserID:   account.ID(),
		Username: account.Name(),
		Email:    account.Email(),
	})
	if err != nil {
		return fmt.Errorf("failed to create remote account: %w", err)
	}

	if err := link.Provisioned(remoteID, account.Name()); err != nil {
		return err
	}
	if err := p.links.Update(ctx, link); err != nil {
		return fmt.Errorf("failed to persist provisioned link: %w", err)
	}

	p.logger.Infow("remote account provisioned",
		"user_id", account.ID(),
		"service", adapter.Name(),
		"remote_id", remoteID,
	)

	if creds != nil {
		p.notify(ctx, account.ID(),
			fmt.Sprintf("Your %s account is ready", adapter.Name()),
			credentialsBody(adapter.Name(), creds))
	}
	return nil
}

// deprovision disables the remote account and removes the link. The link is
// only deleted after the remote side confirmed, so a transient remote error
// leaves the pair schedulable for another pass.
func (p *Pipeline) deprovision(ctx context.Context, adapter sync.Adapter, link *sync.AccountLink, account *user.User) error {
	if link.IsProvisioned() {
		if err := adapter.DisableAccount(ctx, link.RemoteID()); err != nil && sync.KindOf(err) != sync.KindIdentityMismatch {
			return fmt.Errorf("failed to disable remote account: %w", err)
		}
	}
	if err := p.links.Delete(ctx, link.ID()); err != nil {
		return fmt.Errorf("failed to delete account link: %w", err)
	}

	p.logger.Infow("remote account deprovisioned",
		"user_id", link.UserID(),
		"service", adapter.Name(),
	)

	p.notify(ctx, link.UserID(),
		fmt.Sprintf("Your %s account was removed", adapter.Name()),
		fmt.Sprintf("Your account on **%s** has been deactivated and unlinked.", adapter.Name()))
	return nil
}

// recordFailure bumps the link's failure streak before returning the original
// error to the dispatcher.
func (p *Pipeline) recordFailure(ctx context.Context, link *sync.AccountLink, cause error) error {
	link.RecordFailure()
	if err := p.links.Update(ctx, link); err != nil {
		p.logger.Warnw("failed to persist failure count",
			"user_id", link.UserID(),
			"service", link.Service(),
			"error", err,
		)
	}
	return cause
}

func (p *Pipeline) notify(ctx context.Context, userID uint, subject, body string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, userID, subject, body); err != nil {
		p.logger.Warnw("notification failed", "user_id", userID, "subject", subject, "error", err)
	}
}

func credentialsBody(service string, creds *sync.Credentials) string {
	return fmt.Sprintf(
		"An account was created for you on **%s**.\n\n"+
			"- Username: `%s`\n"+
			"- Password: `%s`\n\n"+
			"Please log in and change the password.",
		service, creds.Username, creds.Password)
}
