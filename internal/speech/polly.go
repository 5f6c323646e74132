// Package speech provides the pipeline's text-to-speech capability. Two
// providers are supported: Amazon Polly (dedicated speech API with voice
// selection) and a generic OpenAI-style HTTP TTS endpoint.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
)

// PollyMaxChars is the synchronous SynthesizeSpeech input ceiling. Callers
// must chunk below this; the pipeline uses a safety margin under it.
const PollyMaxChars = 3000

type synthClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyConfig selects the voice and engine for synthesis.
type PollyConfig struct {
	Region  string
	VoiceID string
	Engine  string
	Timeout time.Duration
}

func (c *PollyConfig) defaults() {
	if strings.TrimSpace(c.Region) == "" {
		c.Region = "us-east-1"
	}
	if strings.TrimSpace(c.VoiceID) == "" {
		c.VoiceID = "Joanna"
	}
	if strings.TrimSpace(c.Engine) == "" {
		c.Engine = "neural"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// PollyClient synthesizes mp3 audio through Amazon Polly. The underlying
// AWS client is created lazily on first use.
type PollyClient struct {
	mu     sync.Mutex
	client synthClient
	cfg    PollyConfig
}

// NewPollyClient creates a PollyClient with the given configuration.
func NewPollyClient(cfg PollyConfig) *PollyClient {
	cfg.defaults()
	return &PollyClient{cfg: cfg}
}

// NewPollyClientWithAPI injects a synthesis client, for tests.
func NewPollyClientWithAPI(cfg PollyConfig, client synthClient) *PollyClient {
	cfg.defaults()
	return &PollyClient{cfg: cfg, client: client}
}

// Speak synthesizes text into mp3 bytes.
func (p *PollyClient) Speak(ctx context.Context, text string) ([]byte, error) {
	client, err := p.resolveClient(ctx)
	if err != nil {
		return nil, err
	}

	engine := pollytypes.EngineStandard
	if strings.EqualFold(p.cfg.Engine, "neural") {
		engine = pollytypes.EngineNeural
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	output, err := client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Engine:       engine,
		OutputFormat: pollytypes.OutputFormatMp3,
		Text:         &text,
		TextType:     pollytypes.TextTypeText,
		VoiceId:      pollytypes.VoiceId(p.cfg.VoiceID),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("polly synthesis failed (%s): %w", apiErr.ErrorCode(), err)
		}
		return nil, fmt.Errorf("polly synthesis failed: %w", err)
	}
	if output == nil || output.AudioStream == nil {
		return nil, fmt.Errorf("polly returned an empty audio stream")
	}
	defer output.AudioStream.Close()

	audio, err := io.ReadAll(output.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read polly audio stream: %w", err)
	}
	return audio, nil
}

func (p *PollyClient) resolveClient(ctx context.Context) (synthClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	p.client = polly.NewFromConfig(awsCfg)
	return p.client, nil
}
