package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// MaxAudioBytes caps uploads passed to the recognizer.
const MaxAudioBytes = 5 * 1024 * 1024

const (
	opusSampleRate    = 48000
	defaultSampleRate = 16000
)

// Transcriber converts audio to text. An empty transcript is not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mime string) (string, error)
}

// GoogleTranscriber uses Google Cloud Speech-to-Text.
type GoogleTranscriber struct {
	client   *gspeech.Client
	language string
}

func NewGoogleTranscriber(ctx context.Context, credentialsFile, language string) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gspeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech client: %w", err)
	}
	if language == "" {
		language = "en-US"
	}
	return &GoogleTranscriber{client: client, language: language}, nil
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, mime string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	if len(audio) > MaxAudioBytes {
		return "", fmt.Errorf("audio too large: %d bytes", len(audio))
	}
	cfg, err := RecognitionConfig(audio, mime, g.language)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript + " ")
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}

func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

// RecognitionConfig picks the encoding for an upload from its MIME type, and
// for WAV reads sample rate and channels from the header.
func RecognitionConfig(audio []byte, mime, language string) (*speechpb.RecognitionConfig, error) {
	mime = strings.ToLower(mime)
	switch {
	case strings.Contains(mime, "webm"):
		return &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz: opusSampleRate,
			LanguageCode:    language,
		}, nil
	case strings.Contains(mime, "ogg"):
		return &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_OGG_OPUS,
			SampleRateHertz: opusSampleRate,
			LanguageCode:    language,
		}, nil
	case strings.Contains(mime, "wav"), mime == "":
		h, err := parseWaveHeader(audio)
		if err != nil {
			return nil, err
		}
		if h.AudioFormat != 1 || h.BitsPerSample != 16 {
			return nil, fmt.Errorf("unsupported wav: format %d, %d bits", h.AudioFormat, h.BitsPerSample)
		}
		rate := int32(h.SampleRate)
		if rate <= 0 {
			rate = defaultSampleRate
		}
		return &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   rate,
			AudioChannelCount: int32(h.NumChannels),
			LanguageCode:      language,
		}, nil
	}
	return nil, fmt.Errorf("unsupported audio type %q", mime)
}

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 36 {
		return nil, errors.New("invalid WAV header length")
	}
	var h waveHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read WAV header: %w", err)
	}
	if string(h.RiffTag[:]) != "RIFF" || string(h.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	return &h, nil
}
