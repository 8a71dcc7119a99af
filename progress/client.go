package progress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait      = 1 * time.Second
	pubResolution  = 100 * time.Millisecond
	pingResolution = 200 * time.Millisecond
	pongWait       = pingResolution * 4

	readDeadline     = time.Second
	writeDeadline    = time.Second
	closeGracePeriod = 10 * time.Second
)

var upgrader = websocket.Upgrader{}

// client publishes a single run's []EleUpdate batches to one browser tab
// over a websocket, at a capped rate. Best suited to idempotent updates:
// updates received faster than pubResolution are dropped, since only the
// latest snapshot is needed to describe current state.
type client struct {
	updates <-chan []EleUpdate
	ws      *websock
	rootCtx context.Context
}

// newClient upgrades the request to a websocket and returns a publisher fed
// by updates.
func newClient(updates <-chan []EleUpdate, w http.ResponseWriter, r *http.Request) (*client, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	return &client{
		updates: updates,
		ws:      newWebSocket(ws),
		rootCtx: r.Context(),
	}, nil
}

// sync runs the read/ping/publish loops concurrently until the client
// disconnects or one leg errors, at which point all legs are cancelled.
func (cli *client) sync() error {
	group, groupCtx := errgroup.WithContext(cli.rootCtx)

	group.Go(func() error { return cli.readMessages(groupCtx) })
	group.Go(func() error { return cli.pingPong(groupCtx) })
	group.Go(func() error { return cli.publish(groupCtx) })

	return group.Wait()
}

var errPongDeadlineExceeded = errors.New("progress: client disconnect, pong deadline exceeded")

func (cli *client) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	defer close(pong)
	cli.ws.Conn().SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return errPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *client) ping(ctx context.Context) error {
	return cli.ws.Write(ctx, func(ws *websocket.Conn) (err error) {
		if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			if isUnexpectedClose(err) {
				err = fmt.Errorf("progress: ping failed: %T %v", err, err)
			}
		}
		return
	})
}

// readMessages keeps the websocket's read pump running so the pong handler
// fires; the run is one-directional, so any client message is discarded.
func (cli *client) readMessages(ctx context.Context) error {
	for {
		err := cli.ws.Read(ctx, func(ws *websocket.Conn) (readErr error) {
			_, _, readErr = ws.ReadMessage()
			return
		})
		if err != nil {
			return err
		}
	}
}

func (cli *client) publish(ctx context.Context) error {
	lastSync := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-cli.updates:
			if !ok {
				return nil
			}
			if time.Since(lastSync) < pubResolution {
				break
			}
			lastSync = time.Now()
			err := cli.ws.Write(ctx, func(ws *websocket.Conn) (writeErr error) {
				if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
					return fmt.Errorf("progress: set deadline: %w", writeErr)
				}
				if writeErr = ws.WriteJSON(updates); writeErr != nil && isUnexpectedClose(writeErr) {
					writeErr = fmt.Errorf("progress: publish failed: %T %v", writeErr, writeErr)
				}
				return
			})
			if err != nil {
				return err
			}
		}
	}
}

func isUnexpectedClose(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// websock serializes reads and writes to the underlying connection, which
// gorilla/websocket requires have at most one concurrent reader and writer.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebSocket(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

func (sock *websock) Conn() *websocket.Conn { return sock.ws }

func (sock *websock) Close() {
	sock.readSem <- struct{}{}
	sock.writeSem <- struct{}{}

	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	sock.ws.Close()
}

var errSockCongestion = errors.New("progress: sock op failed due to congestion")

func (sock *websock) Read(ctx context.Context, readFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return errSockCongestion
	}
}

func (sock *websock) Write(ctx context.Context, writeFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return errSockCongestion
	}
}
