package speech

import (
	"bytes"
	"encoding/binary"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
)

func wavHeader(rate uint32, channels, bits uint16) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, channels)
	binary.Write(&b, binary.LittleEndian, rate)
	binary.Write(&b, binary.LittleEndian, rate*uint32(channels)*uint32(bits/8))
	binary.Write(&b, binary.LittleEndian, channels*bits/8)
	binary.Write(&b, binary.LittleEndian, bits)
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(0))
	return b.Bytes()
}

func TestRecognitionConfig(t *testing.T) {
	cfg, err := RecognitionConfig(wavHeader(16000, 1, 16), "audio/wav", "en-US")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Encoding != speechpb.RecognitionConfig_LINEAR16 || cfg.SampleRateHertz != 16000 || cfg.AudioChannelCount != 1 {
		t.Errorf("wav config = %+v", cfg)
	}

	cfg, err = RecognitionConfig(nil, "audio/webm;codecs=opus", "en-IN")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Encoding != speechpb.RecognitionConfig_WEBM_OPUS || cfg.SampleRateHertz != 48000 || cfg.LanguageCode != "en-IN" {
		t.Errorf("webm config = %+v", cfg)
	}
}

func TestRecognitionConfig_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		audio []byte
		mime  string
	}{
		{"short wav", []byte("RIFF"), "audio/wav"},
		{"not riff", bytes.Repeat([]byte{0}, 44), "audio/wav"},
		{"8 bit", wavHeader(8000, 1, 8), "audio/x-wav"},
		{"mp3", []byte{1, 2, 3}, "audio/mpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RecognitionConfig(tt.audio, tt.mime, "en-US"); err == nil {
				t.Error("expected error")
			}
		})
	}
}
