package telemetry

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/zap"

	"github.com/biabductor/biabductor/internal/summary"
)

// ProcedureStateProvider is whatever holds the live, in-progress spec
// table a --write-html client wants to introspect — internal/orchestrate.
// Registry implements it directly.
type ProcedureStateProvider interface {
	Summary(proc string) (*summary.Summary, bool)
	ProcedureNames() []string
}

// LiveServer is optional `--write-html` companion: a live
// per-procedure worklist/summary state endpoint. Grounded on
// internal/lsp/handler.go, which registers glsp handlers for LSP's
// fixed textDocument-shaped method set over a JSON-RPC connection;
// glsp's protocol.Handler struct has no slot for an arbitrary custom
// method, so this drops one layer down to the JSON-RPC transport glsp
// itself is built on (sourcegraph/jsonrpc2) and registers two custom
// methods, `procedure/list` and `procedure/state`, in place of
// `textDocument/*`.
type LiveServer struct {
	Provider ProcedureStateProvider
	zlog     *zap.Logger
	upgrader websocket.Upgrader
}

// NewLiveServer returns a LiveServer over provider. A nil zlog falls
// back to a no-op logger.
func NewLiveServer(provider ProcedureStateProvider, zlog *zap.Logger) *LiveServer {
	if zlog == nil {
		zlog = zap.NewNop()
	}
	return &LiveServer{
		Provider: provider,
		zlog:     zlog,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true }, // localhost debug endpoint only
		},
	}
}

// ServeHTTP upgrades the connection to a websocket and runs one
// jsonrpc2.Conn over it until the client disconnects, the same
// "one handler instance per connection, run until disconnect" shape
// glsp's server uses for RunStdio.
func (s *LiveServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.zlog.Warn("liveserver: websocket upgrade failed", zap.Error(err))
		return
	}
	stream := &wsObjectStream{conn: conn}
	rpc := jsonrpc2.NewConn(r.Context(), stream, jsonrpc2.HandlerWithError(s.handle))
	<-rpc.DisconnectNotify()
}

type procedureStateParams struct {
	Procedure string `json:"procedure"`
}

type procedureStateResult struct {
	Procedure string `json:"procedure"`
	Found     bool   `json:"found"`
	Phase     string `json:"phase,omitempty"`
	Status    string `json:"status,omitempty"`
	NumSpecs  int    `json:"num_specs,omitempty"`
	Timeout   bool   `json:"timeout,omitempty"`
}

func (s *LiveServer) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "procedure/list":
		return s.Provider.ProcedureNames(), nil

	case "procedure/state":
		if req.Params == nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
		}
		var params procedureStateParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
		sum, ok := s.Provider.Summary(params.Procedure)
		if !ok {
			return procedureStateResult{Procedure: params.Procedure}, nil
		}
		return procedureStateResult{
			Procedure: params.Procedure,
			Found:     true,
			Phase:     sum.Phase.String(),
			Status:    sum.Status.String(),
			NumSpecs:  len(sum.Payload.Specs),
			Timeout:   sum.Stats.Timeout,
		}, nil

	default:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "unknown method " + req.Method}
	}
}

// wsObjectStream adapts a gorilla websocket connection to jsonrpc2's
// ObjectStream interface, the same role glsp's stdio pipe plays
// for its RunStdio transport.
type wsObjectStream struct{ conn *websocket.Conn }

func (s *wsObjectStream) WriteObject(obj interface{}) error { return s.conn.WriteJSON(obj) }
func (s *wsObjectStream) ReadObject(v interface{}) error    { return s.conn.ReadJSON(v) }
func (s *wsObjectStream) Close() error                      { return s.conn.Close() }
