package searchspace

import (
	"context"

	"github.com/goliatone/go-searchspace/pkg/audit"
)

type auditHookSet = audit.Hooks

const (
	auditVerbParameterAdded   = "searchspace.parameter.added"
	auditVerbParameterUpdated = "searchspace.parameter.updated"
	auditVerbConstraintsSet   = "searchspace.constraints.set"
	auditVerbConstraintsAdded = "searchspace.constraints.added"
)

// WithAuditHooks registers hooks notified on every search space mutation:
// parameter adds and updates, constraint list changes. Hook errors do not
// roll the mutation back; they surface through the hooks' joined error, which
// emitAudit discards. Callers needing delivery guarantees should wrap hooks
// that record failures.
func WithAuditHooks(hooks ...audit.Hook) Option {
	return func(cfg *spaceConfig) {
		for _, hook := range hooks {
			if hook != nil {
				cfg.auditHooks = append(cfg.auditHooks, hook)
			}
		}
	}
}

// AuditHooks returns the hooks registered on the space.
func (s *SearchSpace) AuditHooks() audit.Hooks {
	return append(audit.Hooks{}, s.cfg.auditHooks...)
}

// emitParameterAudit reports a committed parameter mutation. It runs only
// after the mutation (and, on hierarchical spaces, re-validation) succeeds,
// so rolled-back mutations never notify hooks.
func (s *SearchSpace) emitParameterAudit(verb string, parameter Parameter) {
	s.emitAudit(verb, parameter.Name(), map[string]any{
		"kind": parameter.Kind().String(),
		"type": parameter.Type().String(),
	})
}

// emitAudit fans a mutation event out to the registered hooks. Mutations are
// in-memory and already applied by the time hooks run, so hook failures are
// dropped rather than propagated to the mutator's caller.
func (s *SearchSpace) emitAudit(verb, parameter string, metadata map[string]any) {
	if !s.cfg.auditHooks.Enabled() {
		return
	}
	_ = s.cfg.auditHooks.Notify(context.Background(), audit.Event{
		Verb:       verb,
		ObjectType: "searchspace",
		ObjectID:   s.id,
		Parameter:  parameter,
		Metadata:   metadata,
	})
}
