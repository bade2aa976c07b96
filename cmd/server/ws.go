package main

import (
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	mandelgif "github.com/fractalview/mandelgif"
)

// wsHandler streams the animation over a websocket. It takes the same query
// parameters as the plain GET endpoint; the GIF bytes arrive as binary
// messages and the socket is closed normally once the trailer is written.
func wsHandler(cfg *config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sweep, colorize, err := sweepFromQuery(cfg, r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		frames, err := sweep.Frames()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // TODO: tighten in prod
		})
		if err != nil {
			log.Println(err)
			return
		}

		job := uuid.NewString()[:8]
		log.Printf("[%s] websocket render: %d frames for %s", job, len(frames), r.RemoteAddr)
		start := time.Now()

		conn := websocket.NetConn(r.Context(), c, websocket.MessageBinary)
		enc := mandelgif.Encoder{Delay: sweep.Delay, Colorize: colorize}
		seq := mandelgif.RenderSequence(r.Context(), frames, cfg.Workers)
		if err := enc.Encode(conn, seq); err != nil {
			log.Printf("[%s] encode: %v", job, err)
			c.Close(websocket.StatusInternalError, "render failed")
			return
		}
		log.Printf("[%s] done in %s", job, time.Since(start))
		c.Close(websocket.StatusNormalClosure, "")
	}
}
