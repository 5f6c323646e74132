package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	lastInput *polly.SynthesizeSpeechInput
	output    *polly.SynthesizeSpeechOutput
	err       error
}

func (f *fakeSynth) SynthesizeSpeech(_ context.Context, params *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.lastInput = params
	return f.output, f.err
}

func TestPollySpeakReturnsAudioBytes(t *testing.T) {
	fake := &fakeSynth{output: &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(bytes.NewReader([]byte("mp3-bytes"))),
	}}
	client := NewPollyClientWithAPI(PollyConfig{VoiceID: "Matthew", Engine: "neural"}, fake)

	audio, err := client.Speak(context.Background(), "hello class")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)

	require.NotNil(t, fake.lastInput)
	assert.Equal(t, pollytypes.VoiceId("Matthew"), fake.lastInput.VoiceId)
	assert.Equal(t, pollytypes.EngineNeural, fake.lastInput.Engine)
	assert.Equal(t, pollytypes.OutputFormatMp3, fake.lastInput.OutputFormat)
	assert.Equal(t, "hello class", *fake.lastInput.Text)
}

func TestPollySpeakDefaultsConfig(t *testing.T) {
	fake := &fakeSynth{output: &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(bytes.NewReader([]byte("x"))),
	}}
	client := NewPollyClientWithAPI(PollyConfig{}, fake)

	_, err := client.Speak(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, pollytypes.VoiceId("Joanna"), fake.lastInput.VoiceId)
	assert.Equal(t, pollytypes.EngineNeural, fake.lastInput.Engine)
}

func TestPollySpeakStandardEngine(t *testing.T) {
	fake := &fakeSynth{output: &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(bytes.NewReader([]byte("x"))),
	}}
	client := NewPollyClientWithAPI(PollyConfig{Engine: "standard"}, fake)

	_, err := client.Speak(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, pollytypes.EngineStandard, fake.lastInput.Engine)
}

func TestPollySpeakPropagatesProviderError(t *testing.T) {
	fake := &fakeSynth{err: errors.New("TooManyRequestsException")}
	client := NewPollyClientWithAPI(PollyConfig{}, fake)

	_, err := client.Speak(context.Background(), "text")
	require.Error(t, err)
}

func TestPollySpeakEmptyStreamIsAnError(t *testing.T) {
	fake := &fakeSynth{output: &polly.SynthesizeSpeechOutput{}}
	client := NewPollyClientWithAPI(PollyConfig{}, fake)

	_, err := client.Speak(context.Background(), "text")
	require.Error(t, err)
}
