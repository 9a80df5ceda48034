package handlers

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"storyhouse/internal/models"
	"storyhouse/internal/slug"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 20 // 1 MB, a whole draft per message
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// editorDraft is what the editor page sends on every keystroke.
type editorDraft struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
}

type editorStats struct {
	Words          int    `json:"words"`
	ReadingTime    int    `json:"reading_time"`
	TitleLength    int    `json:"title_length"`
	SubtitleLength int    `json:"subtitle_length"`
	Slug           string `json:"slug"`
}

// Same-origin upgrades only; the connection rides on the session cookie.
var upgrader = websocket.Upgrader{}

func draftStats(d editorDraft) editorStats {
	return editorStats{
		Words:          models.WordCount(d.Content),
		ReadingTime:    models.ReadingTime(d.Content),
		TitleLength:    utf8.RuneCountInString(d.Title),
		SubtitleLength: utf8.RuneCountInString(d.Subtitle),
		Slug:           slug.Make(d.Title),
	}
}

// editorConnect answers every draft with its word count, reading time,
// field lengths and the slug the title would get.
func (h *Handler) editorConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine feeds raw messages; this goroutine is the only writer.
	incoming := make(chan []byte)
	done := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go h.startReader(conn, incoming, done, stop)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case msg := <-incoming:
			if err := h.sendStats(conn, msg); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// Helper: startReader forwards text messages until the peer goes away.
func (h *Handler) startReader(conn *websocket.Conn, incoming chan<- []byte, done chan<- struct{}, stop <-chan struct{}) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		select {
		case incoming <- msg:
		case <-stop:
			return
		}
	}
}

// Helper: sendStats answers one draft message with stats or an error envelope.
func (h *Handler) sendStats(conn *websocket.Conn, msg []byte) error {
	var draft editorDraft
	env := wsEnvelope{Type: "stats"}
	if err := json.Unmarshal(msg, &draft); err != nil {
		env = wsEnvelope{Type: "error", Error: "invalid draft: " + err.Error()}
	} else {
		env.Data = draftStats(draft)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
