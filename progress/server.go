package progress

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Server serves a single telemetry page for a single run, pushing Snapshot
// updates to the browser over a websocket at /ws. Routing is handled by
// gorilla/mux rather than net/http's default mux, so additional routes
// (health checks, multiple concurrent runs) have somewhere natural to go.
type Server struct {
	addr string
	view *SnapshotView
}

// NewServer builds a telemetry server that forwards snapshots until ctx is
// cancelled.
func NewServer(ctx context.Context, addr string, snapshots <-chan Snapshot) *Server {
	return &Server{
		addr: addr,
		view: NewSnapshotView(ctx.Done(), snapshots),
	}
}

// Serve blocks, serving the index page and its websocket until the listener
// fails or the process is killed.
func (s *Server) Serve() error {
	router := mux.NewRouter()
	router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.serveWebsocket)

	if err := http.ListenAndServe(s.addr, router); err != nil {
		return fmt.Errorf("progress: serve: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, s.view); err != nil {
		_, _ = w.Write([]byte(err.Error()))
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := newClient(s.view.Updates(), w, r)
	if err != nil {
		log.Println("progress: upgrade:", err)
		return
	}
	defer cli.ws.Close()

	if err := cli.sync(); err != nil {
		log.Println("progress: sync:", err)
	}
}

func renderTemplate(w io.Writer, vc ViewComponent) error {
	t := template.New("index.html")
	tname, err := vc.Parse(t)
	if err != nil {
		return err
	}
	if _, err := t.Parse(bootstrapScript(tname)); err != nil {
		return err
	}
	return t.Execute(w, nil)
}

// bootstrapScript wraps vc's fragment in the page shell and the client-side
// script that patches elements in place as EleUpdate batches arrive, the
// same onmessage idiom the teacher's root view uses.
func bootstrapScript(viewTemplateName string) string {
	return `
	{{ define "index.html" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + window.location.host + "/ws");
				ws.onopen = function() { console.log("progress socket opened") };
				ws.onerror = function(event) { console.log("progress socket error: ", event) };
				ws.onmessage = function(event) {
					const updates = JSON.parse(event.data);
					for (const update of updates) {
						const ele = document.getElementById(update.EleId);
						if (!ele) { continue; }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value);
							}
						}
					}
				}
			</script>
		</head>
		<body>
			{{ template "` + viewTemplateName + `" . }}
		</body>
	</html>
	{{ end }}`
}
