package board

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kifudb/internal/domain/board"
	"kifudb/internal/httpresponse"
	boarduc "kifudb/internal/usecase/board"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// BoardRequest is one client message: play, pass, undo or redo.
type BoardRequest struct {
	Action string `json:"action"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type BoardResponse struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	boarduc.Step
	SGF   string `json:"sgf,omitempty"`
	Error string `json:"error,omitempty"`
}

type BoardHandler struct {
	log *zap.SugaredLogger

	mu       sync.RWMutex
	sessions map[string]*boarduc.Session
}

func NewBoardHandler(log *zap.SugaredLogger) *BoardHandler {
	return &BoardHandler{
		log:      log,
		sessions: make(map[string]*boarduc.Session),
	}
}

// ActiveSessions returns the number of open boards.
func (b *BoardHandler) ActiveSessions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

// HandleBoard godoc
// @Summary Доска для живой игры
// @Description Открывает websocket; клиент шлёт ходы, сервер отвечает легальностью хода, снятыми камнями и текущим SGF
// @Tags board
// @Param size query int false "Размер доски" default(19)
// @Param komi query number false "Коми"
// @Router /board [get]
func (b *BoardHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	size := board.DefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
				httpresponse.ErrorResponse{ErrorDescription: "size must be a number"})
			return
		}
		size = n
	}
	var komi float64
	if v := r.URL.Query().Get("komi"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
				httpresponse.ErrorResponse{ErrorDescription: "komi must be a number"})
			return
		}
		komi = f
	}

	session, err := boarduc.NewSession(size, komi)
	if err != nil {
		b.log.Infow("board rejected", "size", size, "error", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Error("upgrade error:", err)
		return
	}

	b.mu.Lock()
	b.sessions[session.ID] = session
	b.mu.Unlock()
	b.log.Infow("board session opened", "session", session.ID, "size", size)

	defer func() {
		conn.Close()
		b.mu.Lock()
		delete(b.sessions, session.ID)
		b.mu.Unlock()
		b.log.Infow("board session closed", "session", session.ID)
	}()

	for {
		var req BoardRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.log.Warnw("read error", "session", session.ID, "error", err)
			}
			return
		}

		resp := b.apply(session, req)
		if err := conn.WriteJSON(resp); err != nil {
			b.log.Warnw("write error", "session", session.ID, "error", err)
			return
		}
	}
}

func (b *BoardHandler) apply(s *boarduc.Session, req BoardRequest) BoardResponse {
	resp := BoardResponse{SessionID: s.ID, Action: req.Action}

	switch req.Action {
	case "play":
		resp.Step = s.Play(req.X, req.Y)
	case "pass":
		resp.Step = s.Pass()
	case "undo":
		resp.Step = s.Undo()
	case "redo":
		resp.Step = s.Redo()
	default:
		resp.Error = "unknown action " + strconv.Quote(req.Action)
		return resp
	}

	text, err := s.SGF()
	if err != nil {
		b.log.Errorw("failed to encode session", "session", s.ID, "error", err)
		resp.Error = "failed to encode record"
		return resp
	}
	resp.SGF = text
	return resp
}
