package playback

import (
	"context"
	"log/slog"
)

// Controller resolves a device through the registry and runs the command
// on its session. It never touches a session other than the one resolved.
type Controller struct {
	registry *Registry
	log      *slog.Logger
}

func NewController(registry *Registry, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		registry: registry,
		log:      log.With("component", "playback"),
	}
}

func (c *Controller) Registry() *Registry {
	return c.registry
}

func (c *Controller) Play(ctx context.Context, deviceID string, src Source) (string, error) {
	session, err := c.registry.Lookup(deviceID)
	if err != nil {
		return "", err
	}
	sentenceID, err := session.Play(ctx, src)
	if err != nil {
		c.log.Warn("play rejected", "device_id", deviceID, "kind", KindOf(err), "error", err)
		return "", err
	}
	c.log.Info("play accepted", "device_id", session.DeviceID(), "sentence_id", sentenceID)
	return sentenceID, nil
}

func (c *Controller) Stop(ctx context.Context, deviceID string) error {
	session, err := c.registry.Lookup(deviceID)
	if err != nil {
		return err
	}
	if err := session.Stop(ctx); err != nil {
		return err
	}
	c.log.Info("playback stopped", "device_id", session.DeviceID())
	return nil
}

func (c *Controller) Pause(ctx context.Context, deviceID string) error {
	session, err := c.registry.Lookup(deviceID)
	if err != nil {
		return err
	}
	return session.Pause(ctx)
}

func (c *Controller) Resume(ctx context.Context, deviceID string) error {
	session, err := c.registry.Lookup(deviceID)
	if err != nil {
		return err
	}
	return session.Resume(ctx)
}

func (c *Controller) Status(ctx context.Context, deviceID string) (Status, error) {
	session, err := c.registry.Lookup(deviceID)
	if err != nil {
		return Status{}, err
	}
	return session.Status(ctx)
}

// Send delivers a control message, such as music_control, to the device.
func (c *Controller) Send(ctx context.Context, deviceID string, msg any) error {
	session, err := c.registry.Lookup(deviceID)
	if err != nil {
		return err
	}
	return session.Send(ctx, msg)
}

// Statuses snapshots every registered session.
func (c *Controller) Statuses(ctx context.Context) []Status {
	sessions := c.registry.List()
	out := make([]Status, 0, len(sessions))
	for _, s := range sessions {
		st, err := s.Status(ctx)
		if err != nil {
			continue
		}
		out = append(out, st)
	}
	return out
}
