package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/skillvee/Skillvee-ai-studio/internal/chat"
	"github.com/skillvee/Skillvee-ai-studio/internal/recording"
	"github.com/skillvee/Skillvee-ai-studio/internal/rtc"
	"github.com/skillvee/Skillvee-ai-studio/internal/session"
	"github.com/skillvee/Skillvee-ai-studio/internal/voice"
)

// Server is the HTTP/WebSocket surface the browser shell talks to.
type Server struct {
	Echo     *echo.Echo
	registry *session.Registry
	bridge   *rtc.Bridge
}

// New wires routes and middleware. bridge may be nil in deployments without
// voice transport; the call route then reports unavailable.
func New(registry *session.Registry, bridge *rtc.Bridge) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{Echo: e, registry: registry, bridge: bridge}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := e.Group("/api")
	api.POST("/sessions", s.createSession)
	api.GET("/sessions/:id", s.getSession)
	api.DELETE("/sessions/:id", s.deleteSession)
	api.POST("/sessions/:id/start", s.startAssessment)
	api.POST("/sessions/:id/complete", s.completeAssessment)
	api.POST("/sessions/:id/messages", s.sendMessage)
	api.GET("/sessions/:id/coworkers/:coworkerId/messages", s.getHistory)
	api.POST("/sessions/:id/recording/start", s.startRecording)
	api.POST("/sessions/:id/recording/stop", s.stopRecording)
	api.POST("/sessions/:id/recording/resume", s.resumeRecording)
	api.POST("/sessions/:id/recording/chunks", s.pushChunk)
	api.POST("/sessions/:id/recording/frames", s.pushFrame)
	api.POST("/sessions/:id/recording/revoke", s.revokeRecording)
	api.GET("/sessions/:id/recording", s.recordingStatus)
	api.GET("/sessions/:id/evaluation", s.evaluationStatus)
	api.GET("/sessions/:id/events", s.streamEvents)
	api.GET("/sessions/:id/call/:coworkerId", s.serveCall)

	return s
}

func (s *Server) lookup(c echo.Context) (*session.Session, error) {
	sess, ok := s.registry.Get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}
	return sess, nil
}

func (s *Server) createSession(c echo.Context) error {
	sess := s.registry.Create()
	return c.JSON(http.StatusCreated, s.sessionView(sess))
}

func (s *Server) getSession(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.sessionView(sess))
}

func (s *Server) deleteSession(c echo.Context) error {
	s.registry.Remove(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) sessionView(sess *session.Session) map[string]any {
	view := map[string]any{
		"state":     sess.Machine.Snapshot(),
		"scenario":  sess.Team.Scenario,
		"coworkers": sess.Team.Coworkers,
	}
	if from := sess.IncomingCallFrom(); from != "" {
		view["incomingCallFrom"] = from
	}
	if call := sess.Call(); call != nil {
		view["callStatus"] = call.Status()
		view["speaking"] = call.IsSpeaking()
	}
	return view
}

func (s *Server) startAssessment(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	sess.Machine.StartAssessment()
	return c.JSON(http.StatusOK, sess.Machine.Snapshot())
}

func (s *Server) completeAssessment(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	sess.Complete(context.Background())
	return c.JSON(http.StatusOK, sess.Machine.Snapshot())
}

type sendMessageRequest struct {
	CoworkerID string `json:"coworkerId"`
	Text       string `json:"text"`
}

func (s *Server) sendMessage(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.CoworkerID == "" || req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "coworkerId and text required")
	}
	sess.SendMessage(c.Request().Context(), req.CoworkerID, req.Text)
	return c.JSON(http.StatusOK, map[string]any{
		"messages": sess.Store.History(req.CoworkerID),
	})
}

func (s *Server) getHistory(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	coworkerID := c.Param("coworkerId")
	return c.JSON(http.StatusOK, map[string]any{
		"messages": sess.Store.History(coworkerID),
		"typing":   sess.Store.Typing(coworkerID),
	})
}

func (s *Server) startRecording(c echo.Context) error {
	return s.recordingOp(c, func(sess *session.Session) bool {
		return sess.Recorder.Start(context.Background())
	})
}

func (s *Server) resumeRecording(c echo.Context) error {
	return s.recordingOp(c, func(sess *session.Session) bool {
		return sess.Recorder.Resume(context.Background())
	})
}

func (s *Server) recordingOp(c echo.Context, op func(*session.Session) bool) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	if sess.Recorder == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no capture device")
	}
	ok := op(sess)
	return c.JSON(http.StatusOK, map[string]any{
		"ok":     ok,
		"status": sess.Recorder.Status(),
		"error":  sess.Recorder.ErrMsg(),
	})
}

func (s *Server) stopRecording(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	if sess.Recorder == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no capture device")
	}
	art := sess.Recorder.Stop()
	return c.JSON(http.StatusOK, map[string]any{
		"status":      sess.Recorder.Status(),
		"videoBytes":  len(art.Video),
		"mimeType":    art.MimeType,
		"screenshots": len(art.Screenshots),
	})
}

// pushChunk takes one recorded media chunk from the browser's recorder. The
// body is the raw chunk bytes.
func (s *Server) pushChunk(c echo.Context) error {
	return s.intakeOp(c, func(in *recording.Intake, data []byte) error {
		return in.PushChunk(data)
	})
}

// pushFrame takes the latest still frame for screenshot evidence.
func (s *Server) pushFrame(c echo.Context) error {
	return s.intakeOp(c, func(in *recording.Intake, data []byte) error {
		return in.PushFrame(data)
	})
}

func (s *Server) intakeOp(c echo.Context, op func(*recording.Intake, []byte) error) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	if sess.Intake == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no capture intake")
	}
	data, err := io.ReadAll(c.Request().Body)
	if err != nil || len(data) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty media body")
	}
	if err := op(sess.Intake, data); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

// revokeRecording reports the user stopped screen sharing in the browser; the
// recorder transitions to interrupted and finalizes what it has.
func (s *Server) revokeRecording(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	if sess.Intake == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no capture intake")
	}
	sess.Intake.Revoke()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) recordingStatus(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	if sess.Recorder == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no capture device")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": sess.Recorder.Status(),
		"error":  sess.Recorder.ErrMsg(),
	})
}

func (s *Server) evaluationStatus(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	view := map[string]any{"status": sess.Pipeline.Status()}
	if r := sess.Pipeline.Result(); r != nil {
		view["result"] = r
	}
	if err := sess.Pipeline.Err(); err != nil {
		view["error"] = err.Error()
	}
	return c.JSON(http.StatusOK, view)
}

var eventsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// storeEvent is the wire shape of one conversation store mutation.
type storeEvent struct {
	Type       string         `json:"type"` // "messages" | "typing"
	CoworkerID string         `json:"coworkerId"`
	Messages   []chat.Message `json:"messages,omitempty"`
	Typing     bool           `json:"typing"`
}

// streamEvents pushes store mutations to the UI over a WebSocket.
func (s *Server) streamEvents(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	conn, err := eventsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}

	var mu sync.Mutex
	closed := false
	sess.Store.Subscribe(func(ev chat.Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		out := storeEvent{CoworkerID: ev.CoworkerID}
		switch ev.Kind {
		case chat.EventMessages:
			out.Type = "messages"
			out.Messages = ev.Messages
		case chat.EventTyping:
			out.Type = "typing"
			out.Typing = ev.Typing
		}
		if werr := conn.WriteJSON(out); werr != nil {
			closed = true
		}
	})

	// Block reading until the client goes away; the subscription then stops
	// writing on its next event.
	for {
		if _, _, rerr := conn.ReadMessage(); rerr != nil {
			break
		}
	}
	mu.Lock()
	closed = true
	mu.Unlock()
	_ = conn.Close()
	return nil
}

// serveCall runs WebRTC signaling for a voice call with the given coworker.
// The call is answered, and its persona fixed, when the browser's audio leg
// comes up.
func (s *Server) serveCall(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	if s.bridge == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "voice transport not configured")
	}
	coworkerID := c.Param("coworkerId")
	s.bridge.ServeWebSocket(c.Response(), c.Request(), func(sink voice.AudioSink) (*voice.Call, error) {
		call, aerr := sess.AnswerCall(context.Background(), coworkerID, sink)
		if aerr != nil {
			log.Printf("[%s] answer call failed: %v", sess.ID, aerr)
			return nil, aerr
		}
		return call, nil
	})
	return nil
}
