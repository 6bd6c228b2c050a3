package voice

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	protocolVersion = 0x1
	headerSize      = 0x1 // in words of 4 bytes

	msgTypeFullClientRequest  = 0x1
	msgTypeAudioOnlyRequest   = 0x2
	msgTypeFullServerResponse = 0x9
	msgTypeErrorResponse      = 0xF

	flagNoSequence  = 0x0
	flagPosSequence = 0x1

	serializationNone = 0x0
	serializationJSON = 0x1

	compressionNone = 0x0
	compressionGzip = 0x1

	// 0.2 seconds of 16kHz 16-bit mono audio
	audioChunkSize = 3200

	streamResultTimeout = 30 * time.Second
)

type streamConfig struct {
	User    streamUser    `json:"user"`
	Audio   streamAudio   `json:"audio"`
	Request streamRequest `json:"request"`
}

type streamUser struct {
	UID string `json:"uid"`
}

type streamAudio struct {
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	Bits       int    `json:"bits"`
	Channel    int    `json:"channel"`
	Codec      string `json:"codec"`
}

type streamRequest struct {
	ModelName  string `json:"model_name"`
	EnablePunc bool   `json:"enable_punc"`
}

type streamResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  struct {
		Text string `json:"text"`
	} `json:"result"`
}

// buildFrame constructs one binary protocol frame: a 4-byte header, an
// optional sequence number, the payload size and the payload itself.
func buildFrame(msgType, flags, serialization, compression byte, sequence int32, payload []byte) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte((protocolVersion << 4) | headerSize)
	buf.WriteByte((msgType << 4) | flags)
	buf.WriteByte((serialization << 4) | compression)
	buf.WriteByte(0x0) // reserved

	if flags == flagPosSequence {
		binary.Write(buf, binary.BigEndian, sequence)
	}
	binary.Write(buf, binary.BigEndian, int32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// parseFrame splits a binary frame into message type, sequence and payload,
// decompressing the payload when the header says it is gzipped.
func parseFrame(frame []byte) (msgType byte, sequence int32, payload []byte, err error) {
	if len(frame) < 12 {
		return 0, 0, nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}

	msgType = (frame[1] >> 4) & 0x0F
	compression := frame[2] & 0x0F

	buf := bytes.NewReader(frame[4:])
	binary.Read(buf, binary.BigEndian, &sequence)
	var payloadSize int32
	binary.Read(buf, binary.BigEndian, &payloadSize)

	payload = frame[12:]
	if compression == compressionGzip {
		payload, err = gunzip(payload)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("failed to decompress payload: %w", err)
		}
	}

	return msgType, sequence, payload, nil
}

func gunzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// streamURL derives the websocket endpoint from the API base URL.
func (c *Client) streamURL() string {
	base := c.baseURL
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/voice/asr"
}

// StreamASR transcribes raw PCM audio over the streaming websocket endpoint.
// The input is 16kHz 16-bit mono PCM; a leading RIFF header is stripped.
func (c *Client) StreamASR(ctx context.Context, audioData []byte) (string, error) {
	pcmData := audioData
	if len(pcmData) > 44 && string(pcmData[0:4]) == "RIFF" {
		pcmData = pcmData[44:]
	}
	log.Printf("Streaming ASR: %d bytes of PCM", len(pcmData))

	wsURL := c.streamURL()

	header := http.Header{}
	header.Add("Authorization", "Bearer "+c.apiKey)
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return "", fmt.Errorf("failed to connect to websocket: %w", err)
	}
	defer conn.Close()

	cfg := streamConfig{
		User: streamUser{UID: uuid.New().String()},
		Audio: streamAudio{
			Format:     "pcm",
			SampleRate: 16000,
			Bits:       16,
			Channel:    1,
			Codec:      "raw",
		},
		Request: streamRequest{ModelName: "asr", EnablePunc: true},
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	configFrame := buildFrame(msgTypeFullClientRequest, flagNoSequence, serializationJSON, compressionNone, 0, cfgJSON)
	if err := conn.WriteMessage(websocket.BinaryMessage, configFrame); err != nil {
		return "", fmt.Errorf("failed to send config frame: %w", err)
	}

	_, ack, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("failed to read config ack: %w", err)
	}
	ackType, _, ackPayload, err := parseFrame(ack)
	if err != nil {
		return "", fmt.Errorf("failed to parse config ack: %w", err)
	}
	if ackType == msgTypeErrorResponse {
		return "", fmt.Errorf("config rejected: %s", string(ackPayload))
	}

	resultChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		var fullText string
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					resultChan <- fullText
					return
				}
				errChan <- fmt.Errorf("failed to read message: %w", err)
				return
			}

			_, _, payload, err := parseFrame(message)
			if err != nil {
				log.Printf("Failed to parse frame: %v", err)
				continue
			}
			if len(payload) == 0 {
				continue
			}

			var response streamResponse
			if json.Unmarshal(payload, &response) == nil && response.Result.Text != "" {
				fullText = response.Result.Text
			}
		}
	}()

	// Sequences 0 and 1 are reserved for the handshake.
	sequence := int32(2)
	for offset := 0; offset < len(pcmData); offset += audioChunkSize {
		end := offset + audioChunkSize
		if end > len(pcmData) {
			end = len(pcmData)
		}

		audioFrame := buildFrame(msgTypeAudioOnlyRequest, flagPosSequence, serializationNone, compressionNone, sequence, pcmData[offset:end])
		if err := conn.WriteMessage(websocket.BinaryMessage, audioFrame); err != nil {
			return "", fmt.Errorf("failed to send audio frame: %w", err)
		}
		sequence++
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	select {
	case result := <-resultChan:
		if result == "" {
			return "", fmt.Errorf("no recognition result received")
		}
		return result, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(streamResultTimeout):
		return "", fmt.Errorf("timeout waiting for recognition result")
	}
}
