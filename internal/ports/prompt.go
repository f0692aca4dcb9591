package ports

import "context"

type PromptPort interface {
	Confirm(ctx context.Context, question string) (bool, error)
}
