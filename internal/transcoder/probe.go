package transcoder

import (
	"encoding/json"
	"fmt"
	"strconv"

	"media-resizer/internal/resolution"
)

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecType string            `json:"codec_type"`
	CodecName string            `json:"codec_name"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Tags      map[string]string `json:"tags"`
	SideData  []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	Rotation int `json:"rotation"`
}

// parseProbe extracts display dimensions from ffprobe JSON output. Streams
// rotated by 90 or 270 degrees have their width and height swapped, since
// ffmpeg auto-rotates before the scale filter runs.
func parseProbe(data []byte) (resolution.Size, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return resolution.Size{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	for _, s := range raw.Streams {
		if s.CodecType != "" && s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			continue
		}
		size := resolution.Size{Width: s.Width, Height: s.Height}
		if quarterTurn(s.rotation()) {
			size.Width, size.Height = size.Height, size.Width
		}
		return size, nil
	}
	return resolution.Size{}, ErrNoVideoStream
}

func (s ffprobeStream) rotation() int {
	for _, sd := range s.SideData {
		if sd.Rotation != 0 {
			return sd.Rotation
		}
	}
	if v, ok := s.Tags["rotate"]; ok {
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func quarterTurn(deg int) bool {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg == 90 || deg == 270
}
