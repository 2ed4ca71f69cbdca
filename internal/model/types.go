package model

import "time"

// Action is the wg-quick verb applied to a tunnel.
type Action string

const (
	ActionUp   Action = "up"
	ActionDown Action = "down"
)

// Result classifies how a wg-quick invocation ended.
type Result string

const (
	ResultSucceeded  Result = "succeeded"
	ResultFailed     Result = "failed"
	ResultExecFailed Result = "exec_failed"
)

// Outcome is the single report of one up/down request. Only Message is shown
// to the user; the other fields feed the journal.
type Outcome struct {
	Name    string `json:"name"`
	Action  Action `json:"action"`
	Result  Result `json:"result"`
	Message string `json:"message"`
}

// Succeeded reports whether wg-quick exited with status zero.
func (o Outcome) Succeeded() bool {
	return o.Result == ResultSucceeded
}

type TunnelState string

const (
	TunnelDown    TunnelState = "down"
	TunnelUp      TunnelState = "up"
	TunnelUnknown TunnelState = "unknown"
)

// TunnelStatus is the live kernel view of one configured tunnel.
type TunnelStatus struct {
	Name          string      `json:"name"`
	State         TunnelState `json:"state"`
	ListenPort    int         `json:"listen_port,omitempty"`
	Peers         int         `json:"peers"`
	Endpoint      string      `json:"endpoint,omitempty"`
	LastHandshake time.Time   `json:"last_handshake,omitempty"`
	RxBytes       int64       `json:"rx_bytes"`
	TxBytes       int64       `json:"tx_bytes"`
	LastError     string      `json:"last_error,omitempty"`
}
