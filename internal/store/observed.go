package store

import (
	"context"
	"time"
)

// Change operations carried by ChangeEvent.
const (
	OpSet    = "set"
	OpDelete = "delete"
	OpClear  = "clear"
	// OpReload tells clients to drop everything they hold and refetch.
	OpReload = "reload"
)

// ChangeEvent describes one successful mutation.
type ChangeEvent struct {
	Key string    `json:"key,omitempty"`
	Op  string    `json:"op"`
	At  time.Time `json:"at"`
}

// Publisher receives change events. Implementations must not block.
type Publisher interface {
	Publish(ChangeEvent)
}

// Observed decorates a Store and publishes a ChangeEvent after every
// successful write.
type Observed struct {
	Store
	pub Publisher
}

func NewObserved(s Store, pub Publisher) *Observed {
	return &Observed{Store: s, pub: pub}
}

func (o *Observed) Set(ctx context.Context, key, value string) error {
	if err := o.Store.Set(ctx, key, value); err != nil {
		return err
	}
	o.emit(key, OpSet)
	return nil
}

func (o *Observed) Delete(ctx context.Context, key string) error {
	if err := o.Store.Delete(ctx, key); err != nil {
		return err
	}
	o.emit(key, OpDelete)
	return nil
}

func (o *Observed) Clear(ctx context.Context) error {
	if err := o.Store.Clear(ctx); err != nil {
		return err
	}
	o.emit("", OpClear)
	return nil
}

// Notify publishes an event that did not come from a single write, such as a
// finished import.
func (o *Observed) Notify(op string) {
	o.emit("", op)
}

func (o *Observed) emit(key, op string) {
	if o.pub == nil {
		return
	}
	o.pub.Publish(ChangeEvent{Key: key, Op: op, At: time.Now()})
}
