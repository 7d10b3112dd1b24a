package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a background loop owned by the application. Run blocks until ctx
// is cancelled and returns once the worker has fully stopped.
type Worker interface {
	Run(ctx context.Context) error
}
