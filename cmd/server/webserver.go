package main

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	newton "github.com/marben/newton_fractal"
	"github.com/marben/newton_fractal/config"
	"github.com/marben/newton_fractal/render"
	"github.com/marben/newton_fractal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// webServer serves files from the static folder and runs one session per
// websocket connection on /ws.
type webServer struct {
	cfg      config.Config
	renderer newton.Renderer
}

func newWebServer(cfg config.Config) *webServer {
	return &webServer{cfg: cfg, renderer: render.RendererImpl{}}
}

func (s *webServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.websocketHandler)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Server.StaticDir)))
	return mux
}

func (s *webServer) websocketHandler(w http.ResponseWriter, r *http.Request) {
	logger := log.With().Str("module", "server").Str("remote", r.RemoteAddr).Logger()

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.Server.OriginPatterns,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer c.CloseNow()

	logger.Info().Msg("view connected")
	err = s.serveConn(r.Context(), c, logger)
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		logger.Info().Msg("view disconnected")
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("view closed")
		return
	}
	logger.Warn().Err(err).Msg("view failed")
	c.Close(websocket.StatusInternalError, "internal error")
}

// serveConn reads events in order on one goroutine and pushes the latest
// frame on another until either fails.
func (s *webServer) serveConn(ctx context.Context, c *websocket.Conn, logger zerolog.Logger) error {
	ctrl, err := s.cfg.NewController(s.cfg.Viewport())
	if err != nil {
		return err
	}
	sess := session.New(ctrl, logger)
	bridge := newton.NewBridge()
	var dragging atomic.Bool

	bridge.Request(sess.Snapshot())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			typ, data, err := c.Read(ctx)
			if err != nil {
				return err
			}
			var reply session.Reply
			if typ != websocket.MessageText {
				reply.Err = errors.New("events must be text messages")
			} else if reply, err = sess.Handle(data); err != nil {
				reply = session.Reply{Err: err}
			}
			dragging.Store(sess.Dragging())
			if reply.Redraw {
				bridge.Request(sess.Snapshot())
			}
			for _, m := range reply.Messages() {
				if err := writeMessage(ctx, c, m); err != nil {
					return err
				}
			}
		}
	})
	g.Go(func() error {
		return bridge.Run(ctx, s.frameSink(c, &dragging, logger))
	})
	return g.Wait()
}

// frameSink sends the uniforms and, when rendering is enabled, the PNG frame.
// While dragging the frame is rendered at preview scale. A frame that fails
// to render is logged and skipped, the connection stays up.
func (s *webServer) frameSink(c *websocket.Conn, dragging *atomic.Bool, logger zerolog.Logger) newton.Sink {
	return newton.SinkFunc(func(ctx context.Context, u newton.Uniforms) error {
		if err := writeMessage(ctx, c, session.UniformsMessage(u)); err != nil {
			return err
		}
		if !s.cfg.Render.Enabled {
			return nil
		}
		img, err := render.Frame(ctx, u, s.renderer, s.cfg.RenderOptions(dragging.Load()))
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			logger.Warn().Err(err).Msg("frame skipped")
			return nil
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return errors.Wrap(err, "encode frame")
		}
		return c.Write(ctx, websocket.MessageBinary, buf.Bytes())
	})
}

func writeMessage(ctx context.Context, c *websocket.Conn, m session.Message) error {
	b, err := session.Encode(m)
	if err != nil {
		return err
	}
	return c.Write(ctx, websocket.MessageText, b)
}
