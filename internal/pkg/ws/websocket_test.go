package ws

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest(7, "transactionSubscribe", []interface{}{"param"})

	if req.JSONRPC != "2.0" {
		t.Fatalf("jsonrpc version should be 2.0, got %q", req.JSONRPC)
	}
	if req.ID != 7 || req.Method != "transactionSubscribe" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestSubscribeRequestShapes(t *testing.T) {
	nodeReq := newSubTxFeedRequestNode(1, []string{"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"})
	body, err := json.Marshal(nodeReq)
	if err != nil {
		t.Fatalf("cannot marshal node subscribe request: %v", err)
	}

	for _, want := range []string{
		`"method":"transactionSubscribe"`,
		`"accountRequired"`,
		`"commitment":"processed"`,
		`"vote":false`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("node subscribe request %s should contain %s", body, want)
		}
	}

	gwReq := newSubTxFeedRequestGateway(1, "newTxs", nil)
	body, err = json.Marshal(gwReq)
	if err != nil {
		t.Fatalf("cannot marshal gateway subscribe request: %v", err)
	}

	for _, want := range []string{
		`"method":"subscribe"`,
		`"newTxs"`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("gateway subscribe request %s should contain %s", body, want)
		}
	}
}
