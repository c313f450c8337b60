package observability

// NoOpObserver discards every notification.
type NoOpObserver struct{}

// ObserveOperation does nothing.
func (n *NoOpObserver) ObserveOperation(ctx OperationContext) {}

// NewNoOpObserver returns an Observer that discards every notification.
func NewNoOpObserver() Observer {
	return &NoOpObserver{}
}

// Multi fans a notification out to several observers in order.
// Nil entries are skipped.
type Multi []Observer

// ObserveOperation forwards ctx to every observer in m.
func (m Multi) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		if o != nil {
			o.ObserveOperation(ctx)
		}
	}
}
