package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agentworks/console/pkg/authz"
)

// Context carries the invariants of one audited request: which workspace,
// which actor, which resource kind. It is a value bundle, not stateful; the
// per-event parts (action, name, outcome) come in at emission time.
type Context struct {
	sink Sink

	Workspace    string
	Namespace    string
	Actor        string
	Role         string
	ResourceKind string
}

// NewContext creates an audit context for one request.
func NewContext(sink Sink, workspaceName, namespace, actor string, role *authz.WorkspaceRole, resourceKind string) Context {
	roleName := ""
	if role != nil {
		roleName = role.String()
	}
	if sink == nil {
		sink = NopSink{}
	}
	return Context{
		sink:         sink,
		Workspace:    workspaceName,
		Namespace:    namespace,
		Actor:        actor,
		Role:         roleName,
		ResourceKind: resourceKind,
	}
}

// Success records a completed operation.
func (c Context) Success(ctx context.Context, action, resourceName, detail string) {
	c.emit(ctx, &Event{
		Action:       action,
		ResourceName: resourceName,
		Outcome:      OutcomeSuccess,
		Detail:       detail,
	})
}

// Denied records a permission denial.
func (c Context) Denied(ctx context.Context, action, resourceName, reason string) {
	c.emit(ctx, &Event{
		Action:       action,
		ResourceName: resourceName,
		Outcome:      OutcomeDenied,
		Detail:       reason,
	})
}

// Error records a failed operation.
func (c Context) Error(ctx context.Context, action, resourceName string, err error, statusCode int) {
	event := &Event{
		Action:       action,
		ResourceName: resourceName,
		Outcome:      OutcomeError,
		StatusCode:   statusCode,
	}
	if err != nil {
		event.Error = err.Error()
	}
	c.emit(ctx, event)
}

// emit fills the shared fields and hands the event to the sink. An audit
// failure must never fail the request, so sink errors and panics are
// swallowed and logged at debug.
func (c Context) emit(ctx context.Context, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Debug("audit sink panicked")
		}
	}()

	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	event.Workspace = c.Workspace
	event.Namespace = c.Namespace
	event.Actor = c.Actor
	event.Role = c.Role
	event.ResourceKind = c.ResourceKind

	if err := c.sink.Emit(ctx, event); err != nil {
		logrus.WithError(err).Debug("failed to emit audit event")
	}
}
