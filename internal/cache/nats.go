package cache

import (
	"context"
	"errors"
	"fmt"

	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"feedsync/internal/core"
)

// NATS stores values in a JetStream key-value bucket, so several clients of
// the same user can share them.
type NATS struct {
	js jetstream.JetStream
	kv jetstream.KeyValue
}

var _ core.KeyValue = (*NATS)(nil)

// OpenNATS connects to url and creates the bucket when it does not exist.
func OpenNATS(ctx context.Context, url, bucket string) (*NATS, error) {
	nc, err := libnats.Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucket, err)
	}

	return &NATS{js: js, kv: kv}, nil
}

func (n *NATS) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry.Value(), nil
}

func (n *NATS) Put(ctx context.Context, key string, value []byte) error {
	_, err := n.kv.Put(ctx, key, value)
	if err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}
	return nil
}

func (n *NATS) Delete(ctx context.Context, key string) error {
	err := n.kv.Delete(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (n *NATS) HealthCheck(context.Context) error {
	_, err := n.js.Conn().RTT()
	return err
}

func (n *NATS) Close() error {
	return n.js.Conn().Drain()
}
