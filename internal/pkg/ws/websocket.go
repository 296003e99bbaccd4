package ws

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Request represents data which is needed to send RPC requests to a Solana
// node or a gateway stream endpoint.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type subscribeResponse struct {
	Error  map[string]interface{} `json:"error"`
	Result json.RawMessage        `json:"result"`
}

// Connection is a thin wrapper around websocket connection which provides
// convenience methods for subscribing to a feed or making an RPC call.
type Connection struct {
	conn *websocket.Conn
}

// SubscribeTxFeedNode subscribes to the transaction stream of a Solana node
// that exposes the enhanced transactionSubscribe method.
func (c *Connection) SubscribeTxFeedNode(id int, accounts []string) (*Subscription, error) {
	return c.subscribe(newSubTxFeedRequestNode(id, accounts), node)
}

// SubscribeTxFeedGateway subscribes to a gateway transaction feed.
func (c *Connection) SubscribeTxFeedGateway(id int, feedName string, accounts []string) (*Subscription, error) {
	return c.subscribe(newSubTxFeedRequestGateway(id, feedName, accounts), gateway)
}

func (c *Connection) subscribe(req *Request, t subscriptionType) (*Subscription, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	if err = c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return nil, err
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var res subscribeResponse
	if err = json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	if res.Error != nil {
		return nil, fmt.Errorf("error from RPC: %v", res.Error)
	}

	return &Subscription{
		ID:   strings.Trim(string(res.Result), `"`),
		Conn: c,
		Type: t,
	}, nil
}

// Call is a convenience method to make an RPC call.
func (c *Connection) Call(req *Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	if err = c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return nil, err
	}

	_, data, err := c.conn.ReadMessage()

	return data, err
}

// Close closes a connection.
func (c *Connection) Close() error {
	if err := c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	); err != nil {
		return err
	}

	return c.conn.Close()
}

// NewConnection creates and initializes a new websocket connection.
func NewConnection(uri, authToken string) (*Connection, error) {
	header := http.Header{}
	if authToken != "" {
		header.Add("Authorization", authToken)
	}

	tlsConfig := tls.Config{}
	if strings.Contains(uri, "wss") {
		tlsConfig.InsecureSkipVerify = true
	}
	dialer := websocket.Dialer{TLSClientConfig: &tlsConfig}

	conn, resp, err := dialer.Dial(uri, header)
	if err != nil {
		return nil, err
	}
	err = resp.Body.Close()

	return &Connection{
		conn: conn,
	}, err
}

type subscriptionType byte

const (
	gateway subscriptionType = 1
	node    subscriptionType = 2
)

// Subscription represents a subscription to a websocket feed.
type Subscription struct {
	ID   string
	Conn *Connection
	Type subscriptionType
}

// Unsubscribe unsubscribes from the feed.
func (s *Subscription) Unsubscribe() error {
	switch s.Type {
	case gateway:
		return s.unsubscribe(NewRequest(1, "unsubscribe", []interface{}{s.ID}))
	case node:
		return s.unsubscribe(NewRequest(1, "transactionUnsubscribe", []interface{}{s.ID}))
	}

	return fmt.Errorf("unknown subscription type: %d", s.Type)
}

func (s *Subscription) unsubscribe(req *Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	return s.Conn.conn.WriteMessage(websocket.TextMessage, body)
}

// NextMessage is a convenience method which reads and returns the next data
// item from the feed.
func (s *Subscription) NextMessage() ([]byte, error) {
	_, r, err := s.Conn.conn.NextReader()

	if err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}

func newSubTxFeedRequestNode(id int, accounts []string) *Request {
	filter := map[string]interface{}{
		"vote":   false,
		"failed": false,
	}

	if len(accounts) > 0 {
		filter["accountRequired"] = accounts
	}

	return NewRequest(id, "transactionSubscribe", []interface{}{
		filter,
		map[string]interface{}{
			"commitment":          "processed",
			"transactionDetails":  "signatures",
			"showRewards":         false,
			"maxSupportedTransactionVersion": 0,
		},
	})
}

func newSubTxFeedRequestGateway(id int, feedName string, accounts []string) *Request {
	options := map[string]interface{}{
		"include": []string{},
	}

	if len(accounts) > 0 {
		options["filters"] = accounts
	}

	return NewRequest(id, "subscribe", []interface{}{
		feedName, options,
	})
}

// NewRequest is a convenience method to create a Request struct.
func NewRequest(id int, method string, params []interface{}) *Request {
	return &Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
}
