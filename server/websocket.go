package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/locks"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	actionEcho    = "echo"
	actionMessage = "message"
	actionCreate  = "create"

	msgThrottled     = "Request was throttled."
	msgUnknownAction = "Unknown action."
	msgInvalidFrame  = "Invalid frame."
)

// frame is the envelope of every message exchanged over a socket.
type frame struct {
	Action string                `json:"action,omitempty"`
	Data   any                   `json:"data,omitempty"`
	Error  *apperrors.FieldError `json:"error,omitempty"`
}

type inboundFrame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type chatMessage struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

// socket is one accepted connection. Reads are rate limited, writes time out.
type socket struct {
	conn         *websocket.Conn
	limiter      *rate.Limiter
	writeTimeout time.Duration
}

func (s *Server) accept(w http.ResponseWriter, r *http.Request) (*socket, error) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns()})
	if err != nil {
		return nil, errors.Wrap(err, "Server.accept")
	}
	if s.metrics != nil {
		s.metrics.WSConnected()
	}
	return &socket{
		conn:         conn,
		limiter:      rate.NewLimiter(rate.Limit(s.config.GetWSMessageRate()), s.config.GetWSMessageBurst()),
		writeTimeout: s.config.GetWSWriteTimeout(),
	}, nil
}

func (s *Server) release(sk *socket) {
	if s.metrics != nil {
		s.metrics.WSDisconnected()
	}
	_ = sk.conn.CloseNow()
}

// originPatterns turns the CORS origins into host patterns for the handshake.
func (s *Server) originPatterns() []string {
	origins := s.config.GetAllowedOrigins()
	if origins.Any() {
		return []string{"*"}
	}
	var patterns []string
	for origin := range origins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}

// socketRequest reads the token from the "auth" query parameter, falling back
// to the Authorization header.
func (s *Server) socketRequest(r *http.Request) *auth.Request {
	header := r.Header.Get("Authorization")
	if raw := r.URL.Query().Get("auth"); raw != "" {
		header = s.services.Authn.Keyword() + " " + raw
	}
	return auth.NewRequest(header, locks.ClientIP(r))
}

func (sk *socket) send(ctx context.Context, f frame) error {
	ctx, cancel := context.WithTimeout(ctx, sk.writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, sk.conn, f)
}

func (sk *socket) sendError(ctx context.Context, action string, err error) error {
	fieldErrors, ok := apperrors.FieldErrors(err)
	if !ok || len(fieldErrors) == 0 {
		log.Error().Err(err).Str("action", action).Msg("websocket action failed")
		fieldErrors = []apperrors.FieldError{{Message: msgServerError}}
	}
	return sk.send(ctx, frame{Action: action, Error: &fieldErrors[0]})
}

// receive returns the next frame. Frames over the rate limit and frames that
// are not valid JSON are answered with an error frame and skipped.
func (sk *socket) receive(ctx context.Context) (inboundFrame, error) {
	for {
		_, data, err := sk.conn.Read(ctx)
		if err != nil {
			return inboundFrame{}, err
		}
		if !sk.limiter.Allow() {
			if err := sk.send(ctx, frame{Error: &apperrors.FieldError{Field: "throttle", Message: msgThrottled}}); err != nil {
				return inboundFrame{}, err
			}
			continue
		}
		var in inboundFrame
		if err := json.Unmarshal(data, &in); err != nil {
			if err := sk.send(ctx, frame{Error: &apperrors.FieldError{Message: msgInvalidFrame}}); err != nil {
				return inboundFrame{}, err
			}
			continue
		}
		return in, nil
	}
}

func closedNormally(err error) bool {
	status := websocket.CloseStatus(err)
	return status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
		errors.Is(err, context.Canceled)
}

func logSocketEnd(name string, err error) {
	if err == nil || closedNormally(err) {
		return
	}
	log.Debug().Err(err).Str("socket", name).Msg("websocket closed")
}

// EchoSocket sends every frame back. Authentication is optional.
func (s *Server) EchoSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := s.socketRequest(r)
		sk, err := s.accept(w, r)
		if err != nil {
			log.Debug().Err(err).Msg("echo handshake failed")
			return
		}
		defer s.release(sk)

		ctx := r.Context()
		if _, err := s.services.Authn.AuthenticateOptional(ctx, req); err != nil {
			log.Error().Err(err).Msg("echo authentication failed")
			_ = sk.conn.Close(websocket.StatusInternalError, msgServerError)
			return
		}
		for {
			in, err := sk.receive(ctx)
			if err != nil {
				logSocketEnd("echo", err)
				return
			}
			action := in.Action
			if action == "" {
				action = actionEcho
			}
			if err := sk.send(ctx, frame{Action: action, Data: in.Data}); err != nil {
				logSocketEnd("echo", err)
				return
			}
		}
	}
}

// RoomSocket joins the room named in the path and broadcasts every message
// it receives to the whole room, tagged with the sender.
func (s *Server) RoomSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := chi.URLParam(r, "id")
		req := s.socketRequest(r)
		sk, err := s.accept(w, r)
		if err != nil {
			log.Debug().Err(err).Str("room", room).Msg("room handshake failed")
			return
		}
		defer s.release(sk)

		ctx := r.Context()
		principal, err := s.services.Authn.AuthenticateOptional(ctx, req)
		if err != nil {
			log.Error().Err(err).Str("room", room).Msg("room authentication failed")
			_ = sk.conn.Close(websocket.StatusInternalError, msgServerError)
			return
		}

		s.rooms.join(room, sk)
		defer s.rooms.leave(room, sk)

		for {
			in, err := sk.receive(ctx)
			if err != nil {
				logSocketEnd("room", err)
				return
			}
			var body messageRequest
			if err := json.Unmarshal(in.Data, &body); err != nil || body.Message == "" {
				if err := sk.sendError(ctx, actionMessage, apperrors.NewValidationError("message", "This field is required.")); err != nil {
					return
				}
				continue
			}
			s.rooms.broadcast(room, chatMessage{User: displayName(principal), Message: body.Message})
		}
	}
}

// NotesSocket requires an access token at connect time and creates a note
// for every "create" frame.
func (s *Server) NotesSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := s.socketRequest(r)
		sk, err := s.accept(w, r)
		if err != nil {
			log.Debug().Err(err).Msg("notes handshake failed")
			return
		}
		defer s.release(sk)

		ctx := r.Context()
		if _, err := s.services.Authn.Authenticate(ctx, req, token.Access); err != nil {
			code, ok := auth.CloseCode(err)
			if !ok {
				log.Error().Err(err).Msg("notes authentication failed")
				_ = sk.conn.Close(websocket.StatusInternalError, msgServerError)
				return
			}
			_ = sk.conn.Close(code, err.Error())
			return
		}

		for {
			in, err := sk.receive(ctx)
			if err != nil {
				logSocketEnd("notes", err)
				return
			}
			if err := s.notesAction(ctx, sk, req, in); err != nil {
				logSocketEnd("notes", err)
				return
			}
		}
	}
}

// notesAction answers one frame. Only failures to write end the connection.
func (s *Server) notesAction(ctx context.Context, sk *socket, req *auth.Request, in inboundFrame) error {
	if in.Action != actionCreate {
		return sk.sendError(ctx, in.Action, apperrors.NewValidationError("action", msgUnknownAction))
	}
	var body noteRequest
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, &body); err != nil {
			return sk.sendError(ctx, in.Action, apperrors.NewValidationError("data", msgInvalidFrame))
		}
	}
	var content string
	if body.Content != nil {
		content = *body.Content
	}

	inv := &auth.Invocation{Request: req, Args: map[string]any{}}
	note, err := s.services.Accounts.CreateNote(ctx, inv, content)
	if err != nil {
		return sk.sendError(ctx, in.Action, err)
	}
	return sk.send(ctx, frame{Action: in.Action, Data: note})
}

func displayName(principal *auth.Principal) string {
	if principal == nil || !principal.IsAuthenticated() {
		return "anonymous"
	}
	return principal.Username
}

// roomHub tracks the sockets joined to each room.
type roomHub struct {
	lock  sync.RWMutex
	rooms map[string]map[*socket]struct{}
}

func newRoomHub() *roomHub {
	return &roomHub{rooms: make(map[string]map[*socket]struct{})}
}

func (h *roomHub) join(room string, sk *socket) {
	h.lock.Lock()
	defer h.lock.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*socket]struct{})
		h.rooms[room] = members
	}
	members[sk] = struct{}{}
}

func (h *roomHub) leave(room string, sk *socket) {
	h.lock.Lock()
	defer h.lock.Unlock()

	delete(h.rooms[room], sk)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

func (h *roomHub) members(room string) []*socket {
	h.lock.RLock()
	defer h.lock.RUnlock()

	members := make([]*socket, 0, len(h.rooms[room]))
	for sk := range h.rooms[room] {
		members = append(members, sk)
	}
	return members
}

// broadcast writes msg to every member. A member that cannot be written to
// is left for its own read loop to clean up.
func (h *roomHub) broadcast(room string, msg chatMessage) {
	for _, sk := range h.members(room) {
		if err := sk.send(context.Background(), frame{Action: actionMessage, Data: msg}); err != nil {
			log.Debug().Err(err).Str("room", room).Msg("broadcast write failed")
		}
	}
}
