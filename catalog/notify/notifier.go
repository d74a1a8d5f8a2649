package notify

import (
	"context"
	"fmt"

	"github.com/viant/lifecycle/config"
	"github.com/viant/lifecycle/factory"
	"github.com/viant/lifecycle/key"
)

const Kind = "notifier"

var (
	Email = key.Named(Kind, "email")
	SMS   = key.Named(Kind, "sms")
	Push  = key.Named(Kind, "push")
)

// Notifier sends a message to a user over a channel
type Notifier interface {
	Send(ctx context.Context, user, message string) (string, error)
}

type channel string

func (c channel) Send(ctx context.Context, user, message string) (string, error) {
	return format(string(c), user, message), nil
}

func format(channel, user, message string) string {
	return fmt.Sprintf("[%v] To %v: %v", channel, user, message)
}

// Register registers built-in notifiers
func Register(registry *factory.Registry[Notifier], cfg *config.Push) error {
	if err := registry.Register(Email, func(ctx context.Context, args ...interface{}) (Notifier, error) {
		return channel("EMAIL"), nil
	}, factory.WithDoc("email notifier")); err != nil {
		return err
	}
	if err := registry.Register(SMS, func(ctx context.Context, args ...interface{}) (Notifier, error) {
		return channel("SMS"), nil
	}, factory.WithDoc("sms notifier")); err != nil {
		return err
	}
	return registry.Register(Push, func(ctx context.Context, args ...interface{}) (Notifier, error) {
		return NewPush(cfg), nil
	}, factory.WithDoc("push notifier, delivers to configured URL"))
}
