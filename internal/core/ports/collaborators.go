// internal/core/ports/collaborators.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// Action names an operation guarded by the authorization gate
type Action string

const (
	ActionOrderView       Action = "order.view"
	ActionOrderEdit       Action = "order.edit"
	ActionOrderApprove    Action = "order.approve"
	ActionInventoryView   Action = "inventory.view"
	ActionInventoryManage Action = "inventory.manage"
	ActionCatalogView     Action = "catalog.view"
	ActionCatalogManage   Action = "catalog.manage"
	ActionEmployeeManage  Action = "employee.manage"
)

// Authorizer is the boolean gate in front of every core operation.
// kind is empty for actions that are not about an order.
type Authorizer interface {
	IsAuthorized(ctx context.Context, principal domain.Principal, action Action, kind domain.OrderKind) bool
}

// Clock supplies default timestamps
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// TaskQueue enqueues background work. *asynq.Client satisfies it.
type TaskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// FileStorage stores uploaded import files
type FileStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// ListBefore returns keys under prefix last modified before cutoff.
	ListBefore(ctx context.Context, prefix string, cutoff time.Time) ([]string, error)
}
