package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var (
	ErrValidation         = errors.New("validation")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCart          = errors.New("empty cart")
)

// StockError reports the first cart line that could not be reserved.
type StockError struct {
	ProductID   uint
	ProductName string
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s. Available: %d", e.ProductName, e.Available)
}

// Error carries a message meant for the person using the site.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, msg string) error { return &Error{Kind: kind, Msg: msg} }

// Message returns the user facing text of err, or fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	var se *StockError
	if errors.As(err, &se) {
		return se.Error()
	}
	return fallback
}

// emit publishes ev and logs a failure. Events never fail the caller.
func emit(ctx context.Context, pub events.Publisher, topic, key string, ev events.Event) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pub.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("event_publish_error", "topic", topic, "type", ev.Type, "error", err)
	}
}
