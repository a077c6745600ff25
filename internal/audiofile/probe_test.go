package audiofile

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"flac magic", "clip", []byte("fLaC\x00\x00"), FormatFLAC},
		{"id3 magic", "clip", []byte("ID3\x04\x00"), FormatMP3},
		{"mpeg frame sync", "clip", []byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3},
		{"wav magic", "clip", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), FormatWAV},
		{"ogg magic", "clip", []byte("OggS\x00"), FormatOgg},
		{"extension fallback", "clip.wav", []byte("garbage"), FormatWAV},
		{"unknown", "clip.bin", []byte("garbage"), FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.file, tt.data); got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProbeID3(t *testing.T) {
	tag := id3v2.NewEmptyTag()
	tag.SetArtist("Olivia Rodrigo")
	tag.SetTitle("good 4 u")
	tag.SetAlbum("SOUR")
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Front cover",
		Picture:     []byte{0xFF, 0xD8, 0xFF},
	})

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("Failed to write ID3 tag: %v", err)
	}
	buf.Write([]byte{0xFF, 0xFB, 0x90, 0x00})

	res := Probe(&Sample{Name: "clip.mp3", Data: buf.Bytes()})

	if res.Format != FormatMP3 {
		t.Errorf("Expected mp3, got %s", res.Format)
	}
	if res.Artist != "Olivia Rodrigo" || res.Title != "good 4 u" || res.Album != "SOUR" {
		t.Errorf("Unexpected tags: %+v", res)
	}
	if !res.HasPicture || res.PictureMIME != "image/jpeg" {
		t.Errorf("Expected jpeg picture, got %+v", res)
	}
	if res.TagError != "" {
		t.Errorf("Unexpected tag error: %s", res.TagError)
	}
}

func TestProbeFLAC(t *testing.T) {
	cmt := flacvorbis.New()
	if err := cmt.Add(flacvorbis.FIELD_ARTIST, "Olivia Rodrigo"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := cmt.Add(flacvorbis.FIELD_TITLE, "good 4 u"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	block := cmt.Marshal()

	// fLaC marker + one final VORBIS_COMMENT block header + body
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	n := len(block.Data)
	buf.Write([]byte{0x80 | 4, byte(n >> 16), byte(n >> 8), byte(n)})
	buf.Write(block.Data)

	res := Probe(&Sample{Name: "clip.flac", Data: buf.Bytes()})

	if res.Format != FormatFLAC {
		t.Errorf("Expected flac, got %s", res.Format)
	}
	if res.Artist != "Olivia Rodrigo" || res.Title != "good 4 u" {
		t.Errorf("Unexpected tags: %+v", res)
	}
	if res.HasPicture {
		t.Error("Expected no picture")
	}
}

func TestProbeWithoutTags(t *testing.T) {
	res := Probe(&Sample{Name: "clip.wav", Data: []byte("RIFF\x24\x00\x00\x00WAVEfmt ")})

	if res.Format != FormatWAV {
		t.Errorf("Expected wav, got %s", res.Format)
	}
	if res.Artist != "" || res.Title != "" {
		t.Errorf("Expected no tags, got %+v", res)
	}
	if res.Size != 16 || res.SizeHuman == "" {
		t.Errorf("Unexpected size fields: %+v", res)
	}
}

func TestProbeCorruptFLAC(t *testing.T) {
	res := Probe(&Sample{Name: "clip.flac", Data: []byte("fLaC\x84\xff\xff")})
	if res.TagError == "" {
		t.Error("Expected a tag error for a truncated FLAC header")
	}
}

func TestProbeFLACStreamInfo(t *testing.T) {
	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	// 44.1 kHz, 2 channels, 16 bits, 88200 samples
	packed := uint64(44100)<<44 | uint64(2-1)<<41 | uint64(16-1)<<36 | uint64(88200)
	binary.BigEndian.PutUint64(info[10:18], packed)

	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0, 0, byte(len(info))})
	buf.Write(info)

	res := Probe(&Sample{Name: "clip.flac", Data: buf.Bytes()})

	if res.SampleRate != 44100 || res.Channels != 2 {
		t.Errorf("Unexpected stream info: %+v", res)
	}
	if res.Duration != 2 {
		t.Errorf("Expected 2s duration, got %v", res.Duration)
	}
	if res.TagError != "" {
		t.Errorf("Unexpected tag error: %s", res.TagError)
	}
}
