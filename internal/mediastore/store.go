// Package mediastore persists artwork payloads under a per-owner prefix of
// the blob store and maps between storage paths and public URLs.
package mediastore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"gallery-la/internal/domain/media"
	"gallery-la/internal/errs"
	"gallery-la/internal/ports"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// safeExt is the shape a client extension must have to end up in a key.
var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// File is an uploaded payload as received from the client. Size is -1 when
// unknown.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Payload is a sniffed file ready to be stored.
type Payload struct {
	File
	Kind media.Kind
	MIME string
	Ext  string
}

type Variant int

const (
	Primary Variant = iota
	Cover
)

// Object is a stored payload.
type Object struct {
	Path string
	URL  string
}

type Store struct {
	blobs    ports.BlobStore
	log      *zap.Logger
	maxBytes int64
	// bucket is the last path segment before owner prefixes in legacy
	// public URLs, e.g. ".../object/public/artworks/<owner>/<file>".
	bucket string
}

type Option func(*Store)

func WithMaxBytes(n int64) Option { return func(s *Store) { s.maxBytes = n } }

func WithBucket(name string) Option { return func(s *Store) { s.bucket = name } }

func New(blobs ports.BlobStore, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{blobs: blobs, log: log, bucket: "artworks"}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sniff detects the media kind from the payload's leading bytes and returns
// a payload whose body still yields the complete content. Files that are not
// images, videos or audio are rejected.
func (s *Store) Sniff(f File) (Payload, error) {
	const op = "mediastore.Sniff"
	if f.Body == nil {
		return Payload{}, errs.Validation(op, "file is required")
	}
	if s.maxBytes > 0 && f.Size > s.maxBytes {
		return Payload{}, errs.Validation(op, "file exceeds the %d byte upload limit", s.maxBytes)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Payload{}, errs.Storage(op, err)
	}
	head = head[:n]
	if n == 0 {
		return Payload{}, errs.Validation(op, "file is empty")
	}

	mt := mimetype.Detect(head)
	kind, ok := media.KindFromMIME(mt.String())
	if !ok {
		return Payload{}, errs.Validation(op, "unsupported file type %s: upload an image, video or audio file", mt.String())
	}

	ext := strings.ToLower(path.Ext(f.Name))
	if !safeExt.MatchString(ext) {
		ext = mt.Extension()
	}

	f.Body = io.MultiReader(bytes.NewReader(head), f.Body)
	mime, _, _ := strings.Cut(mt.String(), ";")
	return Payload{File: f, Kind: kind, MIME: mime, Ext: ext}, nil
}

// Put stores p under ownerID with a fresh random name. Existing objects are
// never overwritten.
func (s *Store) Put(ctx context.Context, ownerID string, p Payload, v Variant) (Object, error) {
	const op = "mediastore.Put"
	if ownerID == "" {
		return Object{}, errs.AuthRequired(op)
	}

	name := uuid.NewString()
	if v == Cover {
		name += "_cover"
	}
	key := ownerID + "/" + name + p.Ext

	if err := s.blobs.Put(ctx, key, p.Body, p.Size, p.MIME); err != nil {
		return Object{}, errs.Storage(op, err)
	}
	s.log.Debug("stored media", zap.String("path", key), zap.String("mime", p.MIME))
	return Object{Path: key, URL: s.blobs.PublicURL(key)}, nil
}

// PathFromURL derives the storage path of a public URL. It understands URLs
// produced by the configured blob store as well as legacy URLs that carry
// the bucket name as a path segment.
func (s *Store) PathFromURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if base := s.blobs.PublicURL(""); base != "" {
		if p, ok := strings.CutPrefix(raw, base); ok && p != "" {
			return strings.TrimPrefix(p, "/"), true
		}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "", false
	}
	_, after, found := strings.Cut(u.Path, "/"+s.bucket+"/")
	if !found || after == "" {
		return "", false
	}
	return after, true
}

// Remove deletes the object behind a public URL. Failures only produce an
// orphaned object, so they are logged and not returned.
func (s *Store) Remove(ctx context.Context, raw string) {
	p, ok := s.PathFromURL(raw)
	if !ok {
		s.log.Warn("cannot derive storage path", zap.String("url", raw))
		return
	}
	s.RemovePath(ctx, p)
}

func (s *Store) RemovePath(ctx context.Context, p string) {
	if err := s.Delete(ctx, p); err != nil {
		s.log.Warn("failed to remove media object", zap.String("path", p), zap.Error(err))
	}
}

// Delete removes the object at path and reports failures. Compensating
// steps use it so the saga can log which undo failed.
func (s *Store) Delete(ctx context.Context, p string) error {
	if err := s.blobs.Remove(ctx, p); err != nil {
		return errs.Storage("mediastore.Delete", err)
	}
	return nil
}
