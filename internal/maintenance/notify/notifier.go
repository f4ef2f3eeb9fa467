package notify

import "context"

// StockAlert is a low-stock notification payload.
type StockAlert struct {
	BladeTypeID string `json:"blade_type_id"`
	TotalActive int    `json:"total_active"`
	Threshold   int    `json:"threshold"`
}

// Notifier sends stock alerts.
type Notifier interface {
	Notify(ctx context.Context, alert StockAlert) error
}

// MultiNotifier fans an alert out to several channels. Failures are collected
// but delivery to the remaining channels continues.
type MultiNotifier struct {
	channels []Notifier
}

// NewMultiNotifier constructs a fan-out notifier.
func NewMultiNotifier(channels ...Notifier) *MultiNotifier {
	return &MultiNotifier{channels: channels}
}

// Notify delivers the alert to every channel.
func (m *MultiNotifier) Notify(ctx context.Context, alert StockAlert) error {
	var firstErr error
	for _, channel := range m.channels {
		if channel == nil {
			continue
		}
		if err := channel.Notify(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
