package worker

import (
	"github.com/spec-kit/facility-service/internal/service"
)

// StartNotificationWorker hooks the notification service into the request
// lifecycle events. Delivery is synchronous on the dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
