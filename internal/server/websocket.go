package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/vanshika/netviz/internal/config"
	"github.com/vanshika/netviz/internal/datasource"
	"github.com/vanshika/netviz/internal/domain"
	"github.com/vanshika/netviz/internal/metrics"
	"github.com/vanshika/netviz/internal/network"
	"github.com/vanshika/netviz/internal/service"
)

// Commands accepted on the viewer socket.
const (
	cmdLoad      = "load"
	cmdFilter    = "filter"
	cmdReset     = "reset"
	cmdHighlight = "highlight"
	cmdClear     = "clear"
	cmdInfo      = "info"
	cmdLayout    = "layout"
	cmdLabels    = "labels"
	cmdExport    = "export"
)

// Messages sent back to the browser.
const (
	msgHello  = "hello"
	msgView   = "view"
	msgInfo   = "info"
	msgLabels = "labels"
	msgExport = "export"
	msgError  = "error"
)

type command struct {
	Type      string   `json:"type"`
	Dataset   string   `json:"dataset,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Node      string   `json:"node,omitempty"`
	Layout    string   `json:"layout,omitempty"`
}

type helloMessage struct {
	Type    string           `json:"type"`
	Session string           `json:"session"`
	Config  datasetsResponse `json:"config"`
}

type viewMessage struct {
	Type         string              `json:"type"`
	Dataset      string              `json:"dataset"`
	Threshold    float64             `json:"threshold"`
	Layout       string              `json:"layout"`
	Labels       bool                `json:"labels"`
	Highlighted  string              `json:"highlighted,omitempty"`
	Neighborhood []string            `json:"neighborhood,omitempty"`
	Elements     domain.WrappedGraph `json:"elements"`
	Colors       map[string]string   `json:"colors"`
	Positions    []network.Position  `json:"positions,omitempty"`
}

type infoMessage struct {
	Type string           `json:"type"`
	Node network.NodeInfo `json:"node"`
}

type labelsMessage struct {
	Type   string `json:"type"`
	Labels bool   `json:"labels"`
}

type exportMessage struct {
	Type     string               `json:"type"`
	Filename string               `json:"filename"`
	Document domain.ExportDocument `json:"document"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Error   string `json:"error"`
}

// safeConn serializes reads and writes on a websocket connection, which
// gorilla/websocket only allows from one goroutine each.
type safeConn struct {
	c       *websocket.Conn
	writeMu sync.Mutex
	readMu  sync.Mutex
}

func (s *safeConn) ReadMessage() (int, []byte, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.c.ReadMessage()
}

func (s *safeConn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.c.WriteMessage(websocket.TextMessage, data)
}

// ViewerSocket drives one service.Session per websocket connection.
type ViewerSocket struct {
	logger   *slog.Logger
	source   datasource.Source
	registry func() *config.Registry
	upgrader websocket.Upgrader
}

// NewViewerSocket builds the /ws handler. Browsers from allowedOrigins, or
// from the same host, may connect.
func NewViewerSocket(logger *slog.Logger, source datasource.Source, registry func() *config.Registry, allowedOrigins []string) *ViewerSocket {
	v := &ViewerSocket{
		logger:   logger.With("component", "viewer"),
		source:   source,
		registry: registry,
	}
	v.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 64 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, allowedOrigins)
		},
	}
	return v
}

func originAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (v *ViewerSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := v.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an error status
		v.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer c.Close()
	// the server's read and write timeouts do not apply to a long-lived socket
	_ = c.SetReadDeadline(time.Time{})
	_ = c.SetWriteDeadline(time.Time{})

	session := service.NewSession(v.source, v.viewOptions, v.logger)
	ctx, cancel := context.WithCancel(r.Context())
	// unblock the read loop when the server shuts down
	stopClose := context.AfterFunc(ctx, func() {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = c.Close()
	})
	defer stopClose()
	vc := &viewerConn{
		conn:    &safeConn{c: c},
		session: session,
		logger:  v.logger.With("session", session.ID()),
		ctx:     ctx,
	}

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()
	vc.logger.Info("viewer connected", "remote", r.RemoteAddr)
	defer func() {
		cancel()
		session.Close()
		vc.loads.Wait()
		vc.logger.Info("viewer disconnected")
	}()

	reg := v.registry()
	if err := vc.conn.WriteJSON(helloMessage{
		Type:    msgHello,
		Session: session.ID(),
		Config:  configMessage(reg),
	}); err != nil {
		return
	}
	if reg.Default != "" {
		vc.startLoad(reg.Default)
	}

	for {
		_, data, err := vc.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				vc.logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			_ = vc.conn.WriteJSON(errorMessage{Type: msgError, Error: "invalid JSON command"})
			continue
		}
		if cmd.Type == cmdLoad {
			name := cmd.Dataset
			if name == "" {
				name = v.registry().Default
			}
			vc.startLoad(name)
			continue
		}
		if err := vc.reply(cmd); err != nil {
			vc.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

// viewerConn is the per-connection state of the viewer socket.
type viewerConn struct {
	conn    *safeConn
	session *service.Session
	logger  *slog.Logger
	ctx     context.Context
	loads   sync.WaitGroup

	// replyMu orders state changes with the messages describing them so a
	// slow load can never overwrite a newer view on the client.
	replyMu sync.Mutex
}

// startLoad runs a load in the background so the read loop stays responsive
// and a newer load can supersede one still in flight.
func (vc *viewerConn) startLoad(name string) {
	vc.loads.Add(1)
	go func() {
		defer vc.loads.Done()
		_, err := vc.session.Load(vc.ctx, name)

		vc.replyMu.Lock()
		defer vc.replyMu.Unlock()
		switch {
		case errors.Is(err, service.ErrSuperseded), err != nil && vc.ctx.Err() != nil:
			// a newer load owns the reply, or the connection is closing
			vc.logger.Debug("load dropped", "dataset", name, "error", err)
			return
		case err != nil:
			vc.logger.Warn("dataset load failed", "dataset", name, "error", err)
			_ = vc.conn.WriteJSON(errorMessage{Type: msgError, Command: cmdLoad, Error: err.Error()})
			return
		}
		// commands handled while the load finished are already in the state
		_ = vc.conn.WriteJSON(newViewMessage(vc.session.Snapshot()))
	}()
}

func (vc *viewerConn) reply(cmd command) error {
	vc.replyMu.Lock()
	defer vc.replyMu.Unlock()
	return vc.conn.WriteJSON(dispatch(vc.session, cmd))
}

// dispatch runs every command other than load synchronously and returns the
// reply.
func dispatch(session *service.Session, cmd command) any {
	var (
		view service.View
		err  error
	)
	switch cmd.Type {
	case cmdFilter:
		if cmd.Threshold == nil {
			return errorMessage{Type: msgError, Command: cmd.Type, Error: "threshold is required"}
		}
		view, err = session.Filter(*cmd.Threshold)
	case cmdReset:
		view, err = session.Reset()
	case cmdHighlight:
		view, err = session.Highlight(cmd.Node)
	case cmdClear:
		view = session.ClearHighlight()
	case cmdLayout:
		view, err = session.SetLayout(cmd.Layout)
	case cmdLabels:
		return labelsMessage{Type: msgLabels, Labels: session.ToggleLabels()}
	case cmdInfo:
		info, err := session.Info(cmd.Node)
		if err != nil {
			return errorMessage{Type: msgError, Command: cmd.Type, Error: err.Error()}
		}
		return infoMessage{Type: msgInfo, Node: info}
	case cmdExport:
		doc, filename, err := session.Export()
		if err != nil {
			return errorMessage{Type: msgError, Command: cmd.Type, Error: err.Error()}
		}
		return exportMessage{Type: msgExport, Filename: filename, Document: doc}
	default:
		return errorMessage{Type: msgError, Command: cmd.Type, Error: "unknown command"}
	}
	if err != nil {
		return errorMessage{Type: msgError, Command: cmd.Type, Error: err.Error()}
	}
	return newViewMessage(view)
}

func (v *ViewerSocket) viewOptions() service.ViewOptions {
	reg := v.registry()
	return service.ViewOptions{
		Palette:          reg.Palette,
		InitialThreshold: reg.InitialThreshold(),
	}
}

func newViewMessage(view service.View) viewMessage {
	msg := viewMessage{
		Type:        msgView,
		Dataset:     view.Dataset,
		Threshold:   view.Threshold,
		Layout:      view.Layout,
		Labels:      view.Labels,
		Highlighted: view.Highlighted,
		Elements:    domain.Wrap(view.Graph),
		Colors:      view.Colors,
	}
	if view.Neighborhood != nil {
		msg.Neighborhood = append([]string{view.Neighborhood.Center}, view.Neighborhood.Neighbors...)
	}
	if view.Layout == network.LayoutGrid {
		msg.Positions = network.GridPositions(view.Graph, gridSpacing)
	}
	return msg
}

const gridSpacing = 100

func configMessage(reg *config.Registry) datasetsResponse {
	resp := datasetsResponse{
		Default:       reg.Default,
		WeightButtons: reg.WeightButtons,
		Layouts:       network.Layouts(),
		Palette:       paletteOf(reg),
	}
	for _, d := range reg.Datasets {
		resp.Datasets = append(resp.Datasets, domain.DatasetInfo{Name: d.Name, Title: d.Title})
	}
	return resp
}
