// Package e2e runs end-to-end scenarios against a fully assembled
// server: HTTP API, websocket chat, storage, and search together.
package e2e

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"grant-desk/api"
	"grant-desk/auth"
	"grant-desk/domain"
	"grant-desk/observability"
	"grant-desk/relay"
	"grant-desk/repositories"
	"grant-desk/search"
	"grant-desk/services"
	"grant-desk/ws"
)

const readTimeout = 2 * time.Second

// BaseSuite assembles the whole server once per suite, backed by an
// in-memory Badger and a throwaway Bluge index.
type BaseSuite struct {
	suite.Suite

	server *httptest.Server
	tokens *auth.TokenService

	db     *badger.DB
	writer *bluge.Writer

	conns []*websocket.Conn
}

func (s *BaseSuite) SetupSuite() {
	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	s.Require().NoError(err)
	s.db = db

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(s.T().TempDir()))
	s.Require().NoError(err)
	s.writer = writer

	stats := observability.NewRelayStats()
	messageLog := relay.NewMessageLog(repositories.NewMessageRepository(db, log), log)
	s.Require().NoError(messageLog.Load())

	chatRelay := relay.NewRelay(log, relay.NewDirectory(), messageLog, stats)

	s.tokens = auth.NewTokenService("e2e-secret", time.Hour)
	chatHandler := ws.NewHandler(log, chatRelay, s.tokens, stats, 32).
		WithSearcher(search.NewMessageIndex(writer, log))

	authService := services.NewAuthService(repositories.NewUserRepository(db), s.tokens)
	applicationService := services.NewApplicationService(repositories.NewApplicationRepository(db))

	server := api.NewServer(log, authService, applicationService, s.tokens, chatHandler, stats)
	s.server = httptest.NewServer(server.Router())
}

func (s *BaseSuite) TearDownTest() {
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
}

func (s *BaseSuite) TearDownSuite() {
	s.server.Close()
	_ = s.writer.Close()
	_ = s.db.Close()
}

// register creates an applicant account over HTTP and returns its token.
func (s *BaseSuite) register(email string) string {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": "ComplexPass123!",
	})
	s.Require().NoError(err)

	resp, err := http.Post(s.server.URL+"/api/register", "application/json", bytes.NewReader(body))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var decoded struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded.Token
}

func (s *BaseSuite) adminToken(id string) string {
	token, err := s.tokens.Generate(id, domain.RoleAdmin)
	s.Require().NoError(err)
	return token
}

// wsClient is one live websocket participant.
type wsClient struct {
	suite *BaseSuite
	conn  *websocket.Conn
}

// dial opens a websocket connection and authenticates it, consuming
// the history replay frame.
func (s *BaseSuite) dial(token string) *wsClient {
	c := s.dialRaw(token)

	replay := c.read()
	s.Require().Equal("history", replay["type"])
	return c
}

// dialRaw authenticates but leaves the history replay on the wire for
// the caller to inspect.
func (s *BaseSuite) dialRaw(token string) *wsClient {
	c := s.dialUnauthenticated()
	c.send(map[string]any{"type": "auth", "token": token})
	return c
}

func (s *BaseSuite) dialUnauthenticated() *wsClient {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	// Track on the suite rather than s.T().Cleanup: inside s.Run the
	// suite's T is the subtest's, which would close the connection as
	// soon as that step finishes.
	s.conns = append(s.conns, conn)

	return &wsClient{suite: s, conn: conn}
}

func (c *wsClient) send(frame map[string]any) {
	c.suite.Require().NoError(c.conn.WriteJSON(frame))
}

func (c *wsClient) read() map[string]any {
	c.suite.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(readTimeout)))

	var frame map[string]any
	c.suite.Require().NoError(c.conn.ReadJSON(&frame))
	return frame
}
