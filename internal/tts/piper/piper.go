// Package piper implements the TTS Synthesizer using a Piper Wyoming protocol server.
//
// Piper is a fast, local neural text-to-speech system. The linuxserver/piper
// container exposes the Wyoming protocol on TCP port 10200.
//
// Wyoming protocol format (per event):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
package piper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/nadzzz/parley/internal/audio"
	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/language"
	"github.com/nadzzz/parley/internal/tts"
)

// defaultVoices maps ISO-639-1 base codes to Piper voice model names.
var defaultVoices = map[string]string{
	"ar": "ar_JO-kareem-medium",
	"ca": "ca_ES-upc_ona-medium",
	"cs": "cs_CZ-jirka-medium",
	"da": "da_DK-talesyntese-medium",
	"de": "de_DE-thorsten-medium",
	"el": "el_GR-rapunzelina-low",
	"en": "en_US-lessac-medium",
	"es": "es_ES-mls_10246-low",
	"fa": "fa_IR-amir-medium",
	"fi": "fi_FI-harri-medium",
	"fr": "fr_FR-siwis-medium",
	"hu": "hu_HU-anna-medium",
	"is": "is_IS-bui-medium",
	"it": "it_IT-riccardo-x_low",
	"ka": "ka_GE-natia-medium",
	"kk": "kk_KZ-issai-high",
	"nb": "no_NO-talesyntese-medium",
	"nl": "nl_NL-mls-medium",
	"no": "no_NO-talesyntese-medium",
	"pl": "pl_PL-darkman-medium",
	"pt": "pt_BR-faber-medium",
	"ro": "ro_RO-mihai-medium",
	"ru": "ru_RU-ruslan-medium",
	"sk": "sk_SK-lili-medium",
	"sr": "sr_RS-serbski_institut-medium",
	"sv": "sv_SE-nst-medium",
	"sw": "sw_CD-lanfrica-medium",
	"tr": "tr_TR-dfki-medium",
	"uk": "uk_UA-ukrainian_tts-medium",
	"vi": "vi_VN-vais1000-medium",
	"zh": "zh_CN-huayan-medium",
}

// Synthesizer implements tts.Synthesizer using the Wyoming protocol.
type Synthesizer struct {
	endpoint  string            // default host:port of the Piper Wyoming server
	endpoints map[string]string // base language -> host:port for per-language instances
	voices    map[string]string // base language -> voice name
	dialer    func(ctx context.Context, network, addr string) (net.Conn, error)
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// New creates a new Piper synthesizer from config.
func New(cfg config.PiperConfig) *Synthesizer {
	voices := make(map[string]string, len(defaultVoices))
	for k, v := range defaultVoices {
		voices[k] = v
	}
	for k, v := range cfg.Voices {
		voices[language.Base(k)] = v
	}

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[language.Base(lang)] = cleanEndpoint(ep)
	}

	d := &net.Dialer{Timeout: 10 * time.Second}
	return &Synthesizer{
		endpoint:  cleanEndpoint(cfg.Endpoint),
		endpoints: endpoints,
		voices:    voices,
		dialer:    d.DialContext,
	}
}

func cleanEndpoint(ep string) string {
	ep = strings.TrimPrefix(ep, "tcp://")
	ep = strings.TrimPrefix(ep, "http://")
	return ep
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "piper" }

// Synthesize sends text to the Piper server and returns the PCM it streams back.
// Languages without a Piper voice are rejected rather than read with the
// wrong phonemes.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	base := language.Base(opts.Language)
	voice := opts.Voice
	if voice == "" {
		voice = s.voices[base]
	}
	if voice == "" {
		return nil, fmt.Errorf("no piper voice for language %q", opts.Language)
	}

	endpoint := s.endpoints[base]
	if endpoint == "" {
		endpoint = s.endpoint
	}
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured for language %q", opts.Language)
	}

	slog.Debug("piper synthesize", "text_length", len(text), "voice", voice, "language", opts.Language, "endpoint", endpoint)

	conn, err := s.dialer(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	synthEvent := wyomingEvent{
		Type: "synthesize",
		Data: map[string]any{
			"text": text,
			"voice": map[string]any{
				"name": voice,
			},
		},
	}
	if err := writeEvent(conn, synthEvent, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	// audio-start -> audio-chunk* -> audio-stop
	var (
		pcmBuf bytes.Buffer
		format = audio.Format{SampleRate: 22050, Channels: 1, Width: 2}
		r      = bufio.NewReader(conn)
	)

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			applyFormat(&format, evt.Data)
			slog.Debug("piper audio-start", "rate", format.SampleRate, "channels", format.Channels, "width", format.Width)

		case "audio-chunk":
			pcmBuf.Write(payload)

		case "audio-stop":
			slog.Debug("piper audio-stop", "pcm_bytes", pcmBuf.Len())
			return &tts.SynthesizeResult{PCM: pcmBuf.Bytes(), Format: format}, nil

		case "error":
			msg := "unknown error"
			if t, ok := evt.Data["text"].(string); ok {
				msg = t
			}
			return nil, fmt.Errorf("piper error: %s", msg)

		default:
			slog.Debug("piper unknown event", "type", evt.Type)
		}
	}
}

// Close is a no-op; connections are per-request.
func (s *Synthesizer) Close() error { return nil }

func applyFormat(f *audio.Format, data map[string]any) {
	if rate, ok := data["rate"].(float64); ok {
		f.SampleRate = int(rate)
	}
	if ch, ok := data["channels"].(float64); ok {
		f.Channels = int(ch)
	}
	if w, ok := data["width"].(float64); ok {
		f.Width = int(w)
	}
}

// --- Wyoming protocol helpers ---

type wyomingEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// writeEvent sends a Wyoming event over the connection.
func writeEvent(w io.Writer, evt wyomingEvent, payload []byte) error {
	jsonBytes, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(jsonBytes), len(payload))
	buf.Write(jsonBytes)
	buf.WriteByte('\n')
	buf.Write(payload)

	_, err = w.Write(buf.Bytes())
	return err
}

// readEvent reads a Wyoming event from the connection.
func readEvent(r *bufio.Reader) (*wyomingEvent, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	header = strings.TrimSuffix(header, "\n")

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", header)
	}

	jsonLen, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing json_length: %w", err)
	}
	payloadLen, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing payload_length: %w", err)
	}

	// JSON plus its trailing newline.
	jsonBuf := make([]byte, jsonLen+1)
	if _, err := io.ReadFull(r, jsonBuf); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt wyomingEvent
	if err := json.Unmarshal(jsonBuf[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}

	return &evt, payload, nil
}
