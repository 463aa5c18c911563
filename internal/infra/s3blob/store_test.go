package s3blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeAPI struct {
	puts    []*s3.PutObjectInput
	bodies  []string
	deletes []*s3.DeleteObjectsInput
	putErr  error
	delOut  *s3.DeleteObjectsOutput
}

func (f *fakeAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(data))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, opts ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.deletes = append(f.deletes, in)
	if f.delOut != nil {
		return f.delOut, nil
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func TestPutDoesNotOverwrite(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, "artworks", "https://cdn.test/artworks")

	if err := s.Put(context.Background(), "owner/a.png", strings.NewReader("png"), 3, "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	in := api.puts[0]
	if aws.ToString(in.IfNoneMatch) != "*" {
		t.Fatal("put must be conditional on the key being absent")
	}
	if aws.ToString(in.Bucket) != "artworks" || aws.ToString(in.Key) != "owner/a.png" || aws.ToString(in.ContentType) != "image/png" {
		t.Fatalf("unexpected input %+v", in)
	}
	if aws.ToInt64(in.ContentLength) != 3 || api.bodies[0] != "png" {
		t.Fatalf("body not forwarded: %q", api.bodies[0])
	}
}

func TestPutWrapsFailure(t *testing.T) {
	cause := errors.New("precondition failed")
	s := New(&fakeAPI{putErr: cause}, "b", "https://cdn.test")
	if err := s.Put(context.Background(), "k", strings.NewReader(""), -1, ""); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	s := New(&fakeAPI{}, "b", "https://cdn.test/b/")
	if got := s.PublicURL("owner/x.mp3"); got != "https://cdn.test/b/owner/x.mp3" {
		t.Fatalf("PublicURL = %s", got)
	}
}

func TestRemoveBatchesAndReportsPerKeyErrors(t *testing.T) {
	api := &fakeAPI{delOut: &s3.DeleteObjectsOutput{Errors: []types.Error{{Key: aws.String("b"), Message: aws.String("denied")}}}}
	s := New(api, "bucket", "https://cdn.test")

	if err := s.Remove(context.Background()); err != nil || len(api.deletes) != 0 {
		t.Fatal("empty remove should not call the api")
	}
	err := s.Remove(context.Background(), "a", "b")
	if err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected per-key failure, got %v", err)
	}
	if n := len(api.deletes[0].Delete.Objects); n != 2 {
		t.Fatalf("expected one request with 2 keys, got %d", n)
	}
}
