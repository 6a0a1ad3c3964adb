package worker

import (
	"github.com/spec-kit/task-service/internal/service"
)

// StartRecomputeWorker registers the derived-field handlers on the dispatcher.
func StartRecomputeWorker(recomputeService *service.RecomputeService) {
	if recomputeService == nil {
		return
	}
	recomputeService.RegisterHandlers()
}
