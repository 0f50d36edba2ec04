package port

import (
	"context"
	"errors"
)

// ErrParamNotFound means no value is stored under the requested name.
var ErrParamNotFound = errors.New("parameter not found")

// ParamRepository is a read-only key to value lookup for runtime secrets
// and deployment parameters (provider API key, public base URL).
type ParamRepository interface {
	GetParam(ctx context.Context, name string) (string, error)
}
