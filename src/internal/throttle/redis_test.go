package throttle

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"account-admin-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers GET, INCR, EXPIRE and DEL from a map instead of a server.
type fakeRedis struct {
	values  map[string]int64
	expires map[string]int64
	err     error
}

func newFakeRedis(t *testing.T) (*fakeRedis, *redis.Client) {
	fake := &fakeRedis{values: map[string]int64{}, expires: map[string]int64{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(fake)
	t.Cleanup(func() { _ = client.Close() })
	return fake, client
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (f *fakeRedis) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if f.err != nil {
			return f.err
		}
		key, _ := cmd.Args()[1].(string)

		switch c := cmd.(type) {
		case *redis.StringCmd:
			value, ok := f.values[key]
			if !ok {
				return redis.Nil
			}
			c.SetVal(strconv.FormatInt(value, 10))
		case *redis.IntCmd:
			switch cmd.Name() {
			case "incr":
				f.values[key]++
				c.SetVal(f.values[key])
			case "del":
				_, ok := f.values[key]
				delete(f.values, key)
				delete(f.expires, key)
				if ok {
					c.SetVal(1)
				}
			}
		case *redis.BoolCmd:
			seconds, _ := cmd.Args()[2].(int64)
			f.expires[key] = seconds
			c.SetVal(true)
		}
		return nil
	}
}

func (f *fakeRedis) ProcessPipelineHook(_ redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return errors.New("pipelines not supported")
	}
}

func TestRedisBlocksAfterLimit(t *testing.T) {
	ctx := context.Background()
	fake, client := newFakeRedis(t)
	r := NewRedis(client, Settings{Limit: 2, Window: 15 * time.Minute})
	key := Key("admin", "10.0.0.1", "root@example.com")

	blocked, err := r.Blocked(ctx, key)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, r.Fail(ctx, key))
	assert.Equal(t, int64(900), fake.expires[key])

	// a later failure must not push the window out
	fake.expires[key] = 1
	require.NoError(t, r.Fail(ctx, key))
	assert.Equal(t, int64(1), fake.expires[key])

	blocked, err = r.Blocked(ctx, key)
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, r.Reset(ctx, key))
	assert.NotContains(t, fake.values, key)

	blocked, err = r.Blocked(ctx, key)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestRedisErrors(t *testing.T) {
	ctx := context.Background()
	fake, client := newFakeRedis(t)
	fake.err = errors.New("connection reset")
	r := NewRedis(client, Settings{Limit: 2, Window: time.Minute})

	_, err := r.Blocked(ctx, "k")
	assert.ErrorIs(t, err, models.ErrRedisGet)
	assert.ErrorIs(t, r.Fail(ctx, "k"), models.ErrRedisSet)
	assert.ErrorIs(t, r.Reset(ctx, "k"), models.ErrRedisSet)
}
