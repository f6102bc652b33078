package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps connectivity and protocol failures talking to
// the backing store.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrNotFound is returned when the named identity holds no record.
var ErrNotFound = errors.New("session record not found")

// ErrCorruptRecord is returned when a stored profile blob cannot be decoded.
var ErrCorruptRecord = errors.New("session record corrupt")

// ErrEmptyIdentity is returned for operations on a blank identity name.
var ErrEmptyIdentity = errors.New("empty identity")

// Clear must remove the credential and profile together and drop the
// last-active pointer only when it names the cleared identity. One script
// keeps the three keys consistent under concurrent clears.
const clearRecordScript = `
local existed = redis.call("EXISTS", KEYS[1]) + redis.call("EXISTS", KEYS[2])
redis.call("DEL", KEYS[1], KEYS[2])
if redis.call("GET", KEYS[3]) == ARGV[1] then
  redis.call("DEL", KEYS[3])
end
if existed > 0 then
  return 1
end
return 0
`

var clearRecordLua = redis.NewScript(clearRecordScript)

// The pointer must never dangle: verify both halves of the record and set
// the pointer in one atomic step.
const setLastActiveScript = `
if redis.call("EXISTS", KEYS[1]) == 1 and redis.call("EXISTS", KEYS[2]) == 1 then
  redis.call("SET", KEYS[3], ARGV[1])
  return 1
end
return 0
`

var setLastActiveLua = redis.NewScript(setLastActiveScript)

// Store is a Redis-backed multi-identity session store. All identities
// share one keyspace under a common namespace; operations on one identity
// never touch another's keys.
type Store struct {
	redis redis.UniversalClient
	ns    string
}

// NewStore creates a [Store] on the given Redis client. ns is the keyspace
// namespace ("ktx" in the original deployment).
func NewStore(client redis.UniversalClient, ns string) *Store {
	return &Store{
		redis: client,
		ns:    ns,
	}
}

func (s *Store) tokenKey(identity string) string {
	return s.ns + ":token:" + identity
}

func (s *Store) userKey(identity string) string {
	return s.ns + ":user:" + identity
}

func (s *Store) lastActiveKey() string {
	return s.ns + ":lastActiveUser"
}

// Save persists the record, overwriting any prior record for the same
// identity, and points last-active at it. Credential and profile land in
// one MULTI/EXEC so no reader observes a half-written record. Idempotent
// for identical inputs.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if rec.Identity == "" {
		return ErrEmptyIdentity
	}
	data, err := encodeProfile(rec.Profile)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(rec.Identity), rec.Credential, 0)
		pipe.Set(ctx, s.userKey(rec.Identity), data, 0)
		pipe.Set(ctx, s.lastActiveKey(), rec.Identity, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Clear removes the identity's credential and profile and, when the
// last-active pointer names this identity, the pointer too. No-op when the
// identity holds no record.
func (s *Store) Clear(ctx context.Context, identity string) error {
	if identity == "" {
		return ErrEmptyIdentity
	}

	keys := []string{s.tokenKey(identity), s.userKey(identity), s.lastActiveKey()}
	if err := clearRecordLua.Run(ctx, s.redis, keys, identity).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Read returns the stored record for the identity. Pure lookup, no side
// effects. A record missing either half is treated as absent.
func (s *Store) Read(ctx context.Context, identity string) (Record, error) {
	if identity == "" {
		return Record{}, ErrEmptyIdentity
	}

	values, err := s.redis.MGet(ctx, s.tokenKey(identity), s.userKey(identity)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	credential, okTok := stringValue(values[0])
	blob, okUser := stringValue(values[1])
	if !okTok || !okUser {
		return Record{}, ErrNotFound
	}

	profile, err := decodeProfile([]byte(blob))
	if err != nil {
		return Record{}, err
	}

	return Record{
		Identity:   identity,
		Credential: credential,
		Profile:    profile,
	}, nil
}

// List returns the identities currently holding a record, in ascending
// lexicographic order. The order is deterministic so callers can render a
// stable session-switcher list.
func (s *Store) List(ctx context.Context) ([]string, error) {
	prefix := s.userKey("")
	pattern := prefix + "*"

	seen := map[string]struct{}{}
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		for _, key := range keys {
			seen[strings.TrimPrefix(key, prefix)] = struct{}{}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	identities := make([]string, 0, len(seen))
	for identity := range seen {
		identities = append(identities, identity)
	}
	sort.Strings(identities)

	return identities, nil
}

// LastActive returns the identity named by the last-active pointer, or ""
// when the pointer is unset.
func (s *Store) LastActive(ctx context.Context) (string, error) {
	identity, err := s.redis.Get(ctx, s.lastActiveKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return identity, nil
}

// SetLastActive points the last-active pointer at the identity. The
// identity must hold a live record; the pointer never dangles.
func (s *Store) SetLastActive(ctx context.Context, identity string) error {
	if identity == "" {
		return ErrEmptyIdentity
	}

	keys := []string{s.tokenKey(identity), s.userKey(identity), s.lastActiveKey()}
	set, err := setLastActiveLua.Run(ctx, s.redis, keys, identity).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if set == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping returns a point-in-time availability check of the backing store.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func stringValue(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case []byte:
		return string(value), true
	default:
		return "", false
	}
}
