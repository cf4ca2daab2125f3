// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/app"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/config"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/firebase"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/jobs"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/notification"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/platform/database"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/platform/logger"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/ride"
	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		provideCleanup,

		// Auth boundary
		firebase.NewService,

		// Collaborator boundaries
		user.NewGORMRepository,
		user.NewNotificationAdapter,
		wire.Bind(new(notification.UserSource), new(*user.NotificationAdapter)),
		ride.NewGORMRepository,
		ride.NewNotificationAdapter,
		wire.Bind(new(notification.RideSource), new(*ride.NotificationAdapter)),
		ride.NewService,
		wire.Bind(new(ride.Service), new(*ride.ServiceImplementation)),
		ride.NewHandler,

		// Notification core
		notification.NewGORMRepository,
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		notification.NewEmitter,
		wire.Bind(new(ride.Notifier), new(*notification.Emitter)),
		notification.NewHandler,

		// Jobs
		jobs.NewRideReminderJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
