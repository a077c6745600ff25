package audiofile

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
	flacstream "github.com/mewkiz/flac"
)

const (
	FormatMP3     = "mp3"
	FormatFLAC    = "flac"
	FormatWAV     = "wav"
	FormatOgg     = "ogg"
	FormatUnknown = "unknown"
)

// ProbeResult describes a sample without sending it anywhere. Tag fields are
// whatever the file itself claims and are never used as recognition results.
type ProbeResult struct {
	Name        string  `json:"filename"`
	Format      string  `json:"format"`
	SizeHuman   string  `json:"size_human"`
	Artist      string  `json:"tag_artist,omitempty"`
	Title       string  `json:"tag_title,omitempty"`
	Album       string  `json:"tag_album,omitempty"`
	PictureMIME string  `json:"picture_mime,omitempty"`
	TagError    string  `json:"tag_error,omitempty"`
	Size        int64   `json:"size"`
	Duration    float64 `json:"duration_seconds,omitempty"`
	SampleRate  uint32  `json:"sample_rate,omitempty"`
	Channels    uint8   `json:"channels,omitempty"`
	HasPicture  bool    `json:"has_picture"`
}

// Probe detects the container format and reads embedded tags when the format
// carries them. Tag parse failures are reported in TagError, not returned.
func Probe(s *Sample) *ProbeResult {
	res := &ProbeResult{
		Name:      s.Name,
		Format:    DetectFormat(s.Name, s.Data),
		Size:      s.Size(),
		SizeHuman: humanize.Bytes(uint64(s.Size())),
	}

	switch res.Format {
	case FormatMP3:
		if bytes.HasPrefix(s.Data, []byte("ID3")) {
			probeID3(s.Data, res)
		}
	case FormatFLAC:
		probeFLAC(s.Data, res)
		probeStreamInfo(s.Data, res)
	}
	return res
}

// DetectFormat sniffs magic bytes first and falls back to the extension.
func DetectFormat(name string, data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOgg
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	case ".wav":
		return FormatWAV
	case ".ogg", ".oga":
		return FormatOgg
	default:
		return FormatUnknown
	}
}

func probeID3(data []byte, res *ProbeResult) {
	tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true})
	if err != nil {
		res.TagError = err.Error()
		return
	}

	res.Artist = tag.Artist()
	res.Title = tag.Title()
	res.Album = tag.Album()

	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		if pic, ok := f.(id3v2.PictureFrame); ok {
			res.HasPicture = true
			res.PictureMIME = pic.MimeType
			break
		}
	}
}

func probeFLAC(data []byte, res *ProbeResult) {
	file, err := flac.ParseMetadata(bytes.NewReader(data))
	if err != nil {
		res.TagError = err.Error()
		return
	}

	for _, block := range file.Meta {
		switch block.Type {
		case flac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				res.TagError = err.Error()
				continue
			}
			res.Artist = firstComment(cmt, flacvorbis.FIELD_ARTIST)
			res.Title = firstComment(cmt, flacvorbis.FIELD_TITLE)
			res.Album = firstComment(cmt, flacvorbis.FIELD_ALBUM)
		case flac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err != nil {
				res.TagError = err.Error()
				continue
			}
			res.HasPicture = true
			res.PictureMIME = pic.MIME
		}
	}
}

// probeStreamInfo fills audio properties from the mandatory STREAMINFO block.
// Streams that do not start with one are left without them.
func probeStreamInfo(data []byte, res *ProbeResult) {
	stream, err := flacstream.New(bytes.NewReader(data))
	if err != nil {
		return
	}
	defer stream.Close()

	info := stream.Info
	res.SampleRate = info.SampleRate
	res.Channels = info.NChannels
	if info.SampleRate > 0 {
		res.Duration = float64(info.NSamples) / float64(info.SampleRate)
	}
}

func firstComment(cmt *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := cmt.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}
