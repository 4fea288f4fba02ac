// Package redis provides a Redis-backed invite snapshot store,
// so invite use counts survive bot restarts.
package redis

import (
	"context"

	"emperror.dev/errors"
	"github.com/mediocregopher/radix/v4"
	"github.com/starshine-sys/inviteroles/store"
)

var _ store.SnapshotStore = (*Store)(nil)

type Store struct {
	client radix.Client
}

func New(ctx context.Context, url string) (*Store, error) {
	client, err := (&radix.PoolConfig{}).New(ctx, "tcp", url)
	if err != nil {
		return nil, errors.Wrap(err, "creating radix client")
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
