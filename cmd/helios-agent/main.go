// Command helios-agent maintains the authenticated connection between one
// installed service and the control plane.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/helios-home/helios/internal/protocol"
	sharedconfig "github.com/helios-home/helios/internal/shared/config"
	"github.com/helios-home/helios/internal/shared/logger"
)

const (
	initialBackoff = time.Second
	maxBackoff     = time.Minute
	maxFrameSize   = 64 * 1024
)

type agentConfig struct {
	ServerURL string `mapstructure:"server_url"`
	ServiceID string `mapstructure:"service_id"`
	Token     string `mapstructure:"token"`
	LogLevel  string `mapstructure:"log_level"`
}

func main() {
	cmd := &cobra.Command{
		Use:   "helios-agent",
		Short: "Helios service agent",
		Long:  `Connects to the Helios control plane over WebSocket, authenticates with the service token and answers liveness pings. Reconnects with backoff when the connection drops.`,
		RunE:  run,
	}

	cmd.Flags().String("server-url", "", "Base URL of the control plane (env HELIOS_AGENT_SERVER_URL)")
	cmd.Flags().String("service-id", "", "Service id this agent authenticates as (env HELIOS_AGENT_SERVICE_ID)")
	cmd.Flags().String("token", "", "Service token (env HELIOS_AGENT_TOKEN)")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*agentConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("HELIOS_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for flag, key := range map[string]string{
		"server-url": "server_url",
		"service-id": "service_id",
		"token":      "token",
		"log-level":  "log_level",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, err
		}
	}

	var cfg agentConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.ServerURL == "" || cfg.ServiceID == "" || cfg.Token == "" {
		return nil, errors.New("server-url, service-id and token are required")
	}
	return &cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	serviceID, err := uuid.Parse(cfg.ServiceID)
	if err != nil {
		return fmt.Errorf("invalid service id: %w", err)
	}

	wsURL, err := websocketURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	log, err := logger.New(&sharedconfig.LoggerConfig{
		Level:      cfg.LogLevel,
		Format:     "console",
		OutputPath: "stdout",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log = log.With("service_id", serviceID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backoff := initialBackoff
	for {
		err := connectOnce(ctx, wsURL, serviceID, cfg.Token, log)
		switch {
		case errors.Is(err, context.Canceled):
			log.Infow("agent stopped")
			return nil
		case errors.Is(err, protocol.ErrAlreadyConnected):
			// Another agent holds this service id; retrying would only
			// bounce the pair forever.
			return err
		case err != nil:
			log.Warnw("connection lost", "error", err, "retry_in", backoff)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// connectOnce dials, authenticates and runs one session to completion.
func connectOnce(ctx context.Context, wsURL string, serviceID uuid.UUID, token string, log logger.Interface) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}
	stream := newWSStream(conn)
	defer func() {
		if err := stream.Close(); err != nil {
			log.Debugw("stream close failed", "error", err)
		}
	}()

	if err := protocol.InitiateHandshake(ctx, stream, serviceID, token); err != nil {
		return err
	}
	log.Infow("connected to control plane")

	return protocol.NewAgentSession(stream, log).Run(ctx)
}

// websocketURL rewrites the control plane base URL to the agent endpoint.
func websocketURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/agents/websocket"
	return u.String(), nil
}

// wsStream adapts a gorilla WebSocket connection to the protocol's frame
// transport.
type wsStream struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	once    sync.Once
}

func newWSStream(conn *websocket.Conn) *wsStream {
	conn.SetReadLimit(maxFrameSize)
	return &wsStream{conn: conn}
}

func (s *wsStream) ReadFrame(ctx context.Context) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			return "", err
		}
	}

	msgType, data, err := s.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	if msgType != websocket.TextMessage {
		return "", protocol.ErrBinaryFrame
	}
	return string(data), nil
}

func (s *wsStream) WriteFrame(_ context.Context, frame string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (s *wsStream) Close() error {
	var err error
	s.once.Do(func() { err = s.conn.Close() })
	return err
}
