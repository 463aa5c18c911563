package testkit

import (
	"bytes"
	"context"

	"gallery-la/internal/mediastore"
	"gallery-la/internal/ports"
)

// Identity is a fixed identity provider. An empty ID means signed out.
type Identity struct {
	ID string
}

func (i *Identity) CurrentIdentity(ctx context.Context) (ports.Identity, bool) {
	if i == nil || i.ID == "" {
		return ports.Identity{}, false
	}
	return ports.Identity{ID: i.ID, Email: i.ID + "@example.test"}, true
}

// Payload headers recognised by content sniffing.
var (
	PNGHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	MP3Header = []byte("ID3\x04\x00\x00\x00\x00\x00\x00")
	// OggVorbisHeader is an Ogg page whose first packet is a Vorbis header.
	OggVorbisHeader = append(append([]byte("OggS\x00"), make([]byte, 23)...), []byte("\x01vorbis\x00\x00\x00\x00\x00\x00")...)
)

func file(name string, header []byte) mediastore.File {
	data := append(append([]byte(nil), header...), bytes.Repeat([]byte{0x42}, 64)...)
	return mediastore.File{Name: name, Size: int64(len(data)), Body: bytes.NewReader(data)}
}

func PNGFile(name string) mediastore.File { return file(name, PNGHeader) }

func MP3File(name string) mediastore.File { return file(name, MP3Header) }

func OggAudioFile(name string) mediastore.File { return file(name, OggVorbisHeader) }

func TextFile(name string) mediastore.File {
	return mediastore.File{Name: name, Size: 11, Body: bytes.NewReader([]byte("hello world"))}
}
