package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

type message struct {
	Type      string `json:"type"`
	State     string `json:"state,omitempty"`
	Text      string `json:"text,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
	Action    string `json:"action,omitempty"`
}

var (
	gatewayURL string
	deviceID   string
	clientID   string
	storyText  string
	storyURL   string
	outPath    string
)

var rootCmd = &cobra.Command{
	Use:          "devicesim",
	Short:        "Connect to the gateway as a device and print what it sends",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&gatewayURL, "url", "ws://localhost:8003/xiaozhi/v1/", "device websocket endpoint")
	rootCmd.Flags().StringVar(&deviceID, "device-id", "AA:BB:CC:DD:EE:FF", "device id sent in the Device-Id header")
	rootCmd.Flags().StringVar(&clientID, "client-id", "devicesim", "client id sent in the Client-Id header")
	rootCmd.Flags().StringVar(&storyText, "story-text", "", "request a story with this text after hello")
	rootCmd.Flags().StringVar(&storyURL, "story-url", "", "request a story from this audio url after hello")
	rootCmd.Flags().StringVar(&outPath, "out", "", "append received audio frames to this file")
}

func run(cmd *cobra.Command, _ []string) error {
	header := http.Header{}
	header.Set("Device-Id", deviceID)
	header.Set("Client-Id", clientID)

	fmt.Printf("[DEVICE] Connecting to %s as %s\n", gatewayURL, deviceID)

	conn, resp, err := websocket.DefaultDialer.Dial(gatewayURL, header)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("dial failed: %w, status=%d, body=%s", err, resp.StatusCode, string(body))
		}
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	var out io.Writer
	if outPath != "" {
		f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("[DEVICE] Shutting down...")
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	if err := conn.WriteJSON(map[string]any{"type": "hello"}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	if storyText != "" || storyURL != "" {
		req := map[string]any{"type": "story"}
		if storyText != "" {
			req["text"] = storyText
		}
		if storyURL != "" {
			req["audio_url"] = storyURL
		}
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("send story: %w", err)
		}
	}

	var frames, total uint64
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Printf("[DEVICE] Connection closed after %d frames (%s): %v\n", frames, humanize.Bytes(total), err)
			return nil
		}

		if kind == websocket.BinaryMessage {
			frames++
			total += uint64(len(data))
			fmt.Printf("[DEVICE] Audio frame #%d: %d bytes\n", frames, len(data))
			if out != nil {
				if _, err := out.Write(data); err != nil {
					return fmt.Errorf("write audio: %w", err)
				}
			}
			continue
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			fmt.Printf("[DEVICE] Unparsed message: %s\n", string(data))
			continue
		}

		switch msg.Type {
		case "tts":
			fmt.Printf("[DEVICE] tts %s %s\n", msg.State, msg.Text)
			if msg.State == "stop" {
				fmt.Printf("[DEVICE] Utterance finished: %d frames, %s\n", frames, humanize.Bytes(total))
			}
		case "music_control":
			fmt.Printf("[DEVICE] music_control %s\n", msg.Action)
		default:
			fmt.Printf("[DEVICE] %s\n", string(data))
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
