package relay

import (
	"fmt"

	"github.com/hupe1980/wcpairing/core"
)

// JSON-RPC methods exchanged with the relay server.
const (
	MethodSubscribe   = "irn_subscribe"
	MethodUnsubscribe = "irn_unsubscribe"
	MethodActivate    = "wc_pairingActivate"
	MethodDelete      = "wc_pairingDelete"
	MethodPing        = "wc_pairingPing"
)

const jsonRPCVersion = "2.0"

// Message is a JSON-RPC 2.0 request or response. Requests carry Method;
// responses carry Result or Error.
type Message struct {
	ID      string    `json:"id"`
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method,omitempty"`
	Params  *Params   `json:"params,omitempty"`
	Result  *Result   `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// IsRequest reports whether m is an inbound call rather than a response.
func (m Message) IsRequest() bool { return m.Method != "" }

// Params is the union of every request's parameters.
type Params struct {
	Topic   string              `json:"topic"`
	Relay   *core.RelayProtocol `json:"relay,omitempty"`
	SymKey  string              `json:"symKey,omitempty"`
	Methods []string            `json:"methods,omitempty"`
	Expiry  int64               `json:"expiry,omitempty"`
	Reason  *core.Reason        `json:"reason,omitempty"`
}

// Result is the union of every response's result.
type Result struct {
	OK       bool              `json:"ok"`
	Metadata *core.AppMetadata `json:"metadata,omitempty"`
}

// RPCError is a JSON-RPC error object. It is also the Go error returned by
// calls the relay server rejected.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func newRequest(id, method string, params *Params) Message {
	return Message{ID: id, JSONRPC: jsonRPCVersion, Method: method, Params: params}
}

func newResponse(id string, result *Result) Message {
	return Message{ID: id, JSONRPC: jsonRPCVersion, Result: result}
}
