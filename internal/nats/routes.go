package nats

import (
	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/api/handlers/user"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
)

func Routes(files *handlers.FileEventHandler, users *user.Handler) []Route {
	return []Route{
		// User events
		{Subject: models.SubjectUserDeleted, Durable: "image-service-user-cleanup", Handler: users.HandleUserDeleted},

		// File events
		{Subject: models.SubjectFileUploaded, Durable: "image-service-scanner", Handler: files.HandleFileUploaded},
	}
}
