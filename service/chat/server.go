package chat

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Piyash1/AstroChat-Mobile/logger"
	"github.com/Piyash1/AstroChat-Mobile/service/storage"
	"github.com/Piyash1/AstroChat-Mobile/tools/errs"
	"github.com/Piyash1/AstroChat-Mobile/tools/ids"
	"github.com/Piyash1/AstroChat-Mobile/tools/safe"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServerConf tunes per-connection behavior.
type ServerConf struct {
	GatewayID     string
	SendQueueSize int
	WriteTimeout  time.Duration
}

// Server accepts websocket connections, runs the authentication handshake and
// supervises each resulting session.
type Server struct {
	conf      ServerConf
	verifier  TokenVerifier
	directory UserDirectory
	store     ConversationStore
	presence  *PresenceTable
	router    *Router
	mirror    *storage.PresenceMirror
	publisher EventPublisher
}

func NewServer(conf ServerConf, verifier TokenVerifier, directory UserDirectory, store ConversationStore,
	mirror *storage.PresenceMirror, publisher EventPublisher) *Server {
	presence := NewPresenceTable()
	return &Server{
		conf:      conf,
		verifier:  verifier,
		directory: directory,
		store:     store,
		presence:  presence,
		router:    NewRouter(presence),
		mirror:    mirror,
		publisher: publisher,
	}
}

func (s *Server) Presence() *PresenceTable { return s.presence }
func (s *Server) Router() *Router          { return s.router }

// HandleWS is the gin handler for the websocket endpoint. The handshake runs
// against the upgrade request before the protocol switch, so a failed attempt
// is rejected with a plain 401 and no session ever exists. No retries: the
// client reconnects with a fresh token.
func (s *Server) HandleWS(c *gin.Context) {
	userID, err := s.handshake(c.Request)
	if err != nil {
		logger.Info("handshake rejected",
			zap.String("remote", c.ClientIP()), zap.Error(err))
		body := errs.CodeOf(err)
		if body == nil || body.Code == errs.ServerInternalError {
			body = errs.ErrAuthentication
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, &errs.CodeError{Code: body.Code, Msg: body.Msg})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[HandleWS] upgrade websocket error: %v", err)
		return
	}

	client := NewClient(ids.GenerateString(), userID, ws, s.conf.SendQueueSize, s.conf.WriteTimeout)
	safe.Go(client.Run)

	session := NewSession(client, s.store, s.router, s.publisher)
	s.register(client)

	s.readLoop(client, session)

	s.cleanup(client, session)
}

// handshake: bearer token -> subject -> user record. Unknown-but-valid-token
// subjects fail exactly like invalid tokens.
func (s *Server) handshake(r *http.Request) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", errs.ErrAuthentication.WrapMsg("missing token")
	}
	subject, err := s.verifier.VerifyToken(token)
	if err != nil {
		return "", err
	}
	u, err := s.directory.FindBySubject(r.Context(), subject)
	if err != nil {
		return "", err
	}
	return u.UserID(), nil
}

// bearerToken reads the handshake credential: Authorization: Bearer takes
// precedence, ?token= is the fallback for browser websocket clients that
// cannot set headers.
func bearerToken(r *http.Request) string {
	if authz := strings.TrimSpace(r.Header.Get("Authorization")); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return strings.TrimSpace(authz[len("bearer "):])
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// register promotes the connection to Active: snapshot to self, then the
// presence insert, then the connect announcement to everyone else. The
// snapshot is taken before the insert, so it excludes the connecting user.
func (s *Server) register(client *Client) {
	snapshot := s.presence.Snapshot()
	client.Deliver(BuildOnlineUsers(snapshot))

	if replaced := s.presence.Set(client.UserID, client); replaced != nil {
		// last-connect-wins; the old connection just stops receiving
		logger.Info("presence entry replaced",
			zap.String("userID", client.UserID),
			zap.String("oldConnID", replaced.ConnID),
			zap.String("newConnID", client.ConnID))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.mirror.Online(ctx, client.UserID); err != nil {
		logger.Warn("presence mirror online", zap.String("userID", client.UserID), zap.Error(err))
	}

	s.router.DeliverToAllExcept(BuildUserConnected(client.UserID), client)

	logger.Info("connection active",
		zap.String("userID", client.UserID), zap.String("connID", client.ConnID))
}

func (s *Server) readLoop(client *Client, session *Session) {
	ws := client.conn
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Debug("peer closed", zap.String("connID", client.ConnID), zap.Error(rerr))
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Debug("read timeout", zap.String("connID", client.ConnID), zap.Error(rerr))
			} else {
				logger.Debug("read error", zap.String("connID", client.ConnID), zap.Error(rerr))
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrameJSON(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[readLoop] parse frame err connID=%s err=%v sample=%q", client.ConnID, perr, sample)
			continue
		}

		// one action at a time, in arrival order
		session.HandleFrame(context.Background(), frame)
	}
}

// cleanup runs the full Closed transition exactly once per connection: the
// conditional presence removal, the subscription drop and the departure
// announcement. It does not depend on which action was in flight.
func (s *Server) cleanup(client *Client, session *Session) {
	client.Close()
	session.DropSubscriptions()

	if s.presence.RemoveIfMatches(client.UserID, client) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.mirror.Offline(ctx, client.UserID); err != nil {
			logger.Warn("presence mirror offline", zap.String("userID", client.UserID), zap.Error(err))
		}

		s.router.DeliverToAllExcept(BuildUserDisconnected(client.UserID), client)
	}

	logger.Info("connection closed",
		zap.String("userID", client.UserID), zap.String("connID", client.ConnID))
}
