// Package artifacts keeps named binary blobs per onboarding session in Redis.
package artifacts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"pos-onboarding-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound      = errors.New("artifact not found")
	ErrInvalidInline = errors.New("inline file is not valid base64")
)

const (
	InboundFileName = "user:inbound_file"
	UserPOSImage    = "user:user_pos_image.png"
	InStorePOSImage = "user:pos_in_store_image.png"

	DefaultKeyPrefix = "artifact"
	DefaultTTL       = 24 * time.Hour

	fieldData     = "data"
	fieldMimeType = "mime_type"
)

// SearchResultImageName names an image attached to a knowledge answer.
func SearchResultImageName(index int, ext string) string {
	return fmt.Sprintf("user:search_result_image_%d.%s", index, ext)
}

type Artifact struct {
	Name      string
	Data      []byte
	MediaType string
}

// InboundFile is the document or photo uploaded in the current user turn.
type InboundFile struct {
	Data      []byte
	MediaType string
}

// Store is the capability the KYC and image workers get for one session.
type Store interface {
	LoadInboundFile(ctx context.Context) (*InboundFile, error)
	LoadArtifact(ctx context.Context, name string) (*Artifact, error)
	SaveArtifact(ctx context.Context, name string, data []byte, mediaType string) error
}

// Sessions hands out per-session stores.
type Sessions interface {
	Session(sessionID string) Store
}

// RedisStore stores each artifact as a hash under {prefix}:{session}:{name}.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Session scopes the store to one onboarding session.
func (s *RedisStore) Session(sessionID string) Store {
	return &sessionStore{store: s, sessionID: sessionID}
}

func (s *RedisStore) key(sessionID, name string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, sessionID, name)
}

type sessionStore struct {
	store     *RedisStore
	sessionID string
}

func (s *sessionStore) LoadInboundFile(ctx context.Context) (*InboundFile, error) {
	a, err := s.LoadArtifact(ctx, InboundFileName)
	if err != nil {
		return nil, err
	}
	return &InboundFile{Data: a.Data, MediaType: a.MediaType}, nil
}

func (s *sessionStore) LoadArtifact(ctx context.Context, name string) (*Artifact, error) {
	fields, err := s.store.client.HGetAll(ctx, s.store.key(s.sessionID, name)).Result()
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", name, err)
	}
	data, ok := fields[fieldData]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &Artifact{Name: name, Data: []byte(data), MediaType: fields[fieldMimeType]}, nil
}

// SaveArtifact overwrites any previous artifact with the same name.
func (s *sessionStore) SaveArtifact(ctx context.Context, name string, data []byte, mediaType string) error {
	key := s.store.key(s.sessionID, name)
	_, err := s.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldData, data, fieldMimeType, mediaType)
		pipe.Expire(ctx, key, s.store.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save artifact %s: %w", name, err)
	}
	metrics.ArtifactsSaved.Inc()
	return nil
}

// InlineFile is a file passed directly in job variables.
type InlineFile struct {
	MimeType string `json:"mimeType" jsonschema:"description=Media type of the file"`
	Data     string `json:"data" jsonschema:"description=Base64-encoded file content"`
}

func (f *InlineFile) Decode() (*InboundFile, error) {
	data, err := base64.StdEncoding.DecodeString(f.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInline, err)
	}
	return &InboundFile{Data: data, MediaType: f.MimeType}, nil
}

// Resolve finds the document a job refers to: the inline file when given,
// else the named artifact, else the session's inbound upload. A document that
// is nowhere to be found yields (nil, nil).
func Resolve(ctx context.Context, store Store, inline *InlineFile, name string) (*InboundFile, error) {
	if inline != nil && inline.Data != "" {
		return inline.Decode()
	}

	var (
		file *InboundFile
		err  error
	)
	if name != "" {
		var a *Artifact
		if a, err = store.LoadArtifact(ctx, name); err == nil {
			file = &InboundFile{Data: a.Data, MediaType: a.MediaType}
		}
	} else {
		file, err = store.LoadInboundFile(ctx)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return file, err
}
