package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
)

// Deps is what the HTTP and event handlers need from the outside world.
type Deps struct {
	Config     *configuration.Config
	HTTPClient *http.Client
	// Publish sends an event; nil disables publishing.
	Publish func(subject string, payload any) error
}

func (d Deps) httpClient() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// PublicStore returns an anonymous store client. The store location is read
// from the configuration on every call.
func (d Deps) PublicStore() (*backend.Client, error) {
	return backend.NewClient(d.Config.BackendURL(), backend.WithHTTPClient(d.httpClient()))
}

// ServiceStore returns a store client authorized with the service token,
// when one is configured.
func (d Deps) ServiceStore(ctx context.Context) (*backend.Client, error) {
	opts := []backend.Option{backend.WithHTTPClient(d.httpClient())}
	if token := d.Config.Backend.ServiceToken; token != "" {
		auth := backend.NewAuthStore(nil)
		if err := auth.Save(ctx, token, nil); err != nil {
			return nil, err
		}
		opts = append(opts, backend.WithAuthStore(auth))
	}
	return backend.NewClient(d.Config.BackendURL(), opts...)
}

// PublishEvent sends an event and only logs failures.
func (d Deps) PublishEvent(subject string, payload any) {
	if d.Publish == nil {
		return
	}
	if err := d.Publish(subject, payload); err != nil {
		log.Printf("[NATS] failed to publish %s: %v", subject, err)
	}
}
