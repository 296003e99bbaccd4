package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/romkoth/shredlink-benchmarking/internal/pkg/ws"
)

// GatewayWS streams transactions from a gateway-style websocket endpoint
// using the generic subscribe method with a named feed.
type GatewayWS struct {
	uri       string
	feedName  string
	authToken string
	accounts  []string
}

const defaultGatewayFeedName = "newTxs"

func NewGatewayWS(uri, authToken, feedName string, accounts []string) *GatewayWS {
	if feedName == "" {
		feedName = defaultGatewayFeedName
	}
	return &GatewayWS{
		uri:       uri,
		feedName:  feedName,
		authToken: authToken,
		accounts:  accounts,
	}
}

// Receive reads the stream until ctx is cancelled or the connection dies,
// closing out either way so the consumer can tell the stream ended.
func (g GatewayWS) Receive(ctx context.Context, wg *sync.WaitGroup, out chan *Message) {
	defer wg.Done()
	defer close(out)

	log.Infof("Initiating connection to %s %s", g.Name(), g.uri)

	conn, err := ws.NewConnection(g.uri, g.authToken)
	if err != nil {
		log.Errorf("cannot establish connection to %s %s: %v", g.Name(), g.uri, err)
		return
	}

	log.Infof("%s connection to %s established", g.Name(), g.uri)

	// Forces the blocking read to return promptly once draining starts.
	go func() {
		<-ctx.Done()
		if err := conn.Close(); err != nil {
			log.Debugf("cannot close socket connection to %s: %v", g.uri, err)
		}
	}()

	sub, err := conn.SubscribeTxFeedGateway(1, g.feedName, g.accounts)
	if err != nil {
		log.Errorf("cannot subscribe to feed %s %q: %v", g.Name(), g.feedName, err)
		return
	}

	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Debugf("cannot unsubscribe from feed %s %q: %v", g.Name(), g.feedName, err)
		}
	}()

	for {
		data, err := sub.NextMessage()
		if err != nil {
			if ctx.Err() != nil {
				log.Infof("stop %s feed", g.Name())
				return
			}

			log.Errorf("failed to read new message from feed %s %q: %v", g.Name(), g.feedName, err)
			select {
			case <-ctx.Done():
			case out <- &Message{Err: err}:
			}
			return
		}

		select {
		case <-ctx.Done():
			log.Infof("stop %s feed", g.Name())
			return
		case out <- &Message{Bytes: data}:
		}
	}
}

// ParseMessage extracts the transaction signature from a feed
// notification. Some gateway deployments publish the signature under the
// txHash field.
func (g GatewayWS) ParseMessage(message *Message) (string, error) {
	var msg gatewayTxFeedResponse
	if err := json.Unmarshal(message.Bytes, &msg); err != nil {
		return "", fmt.Errorf("failed to unmarshal gateway transaction message: %v", err)
	}

	sig := msg.Params.Result.Signature
	if sig == "" {
		sig = msg.Params.Result.TxHash
	}

	return checkSignature(sig, g.Name())
}

func (g GatewayWS) Name() string {
	return fmt.Sprintf("GatewayTransactionsWS(%s)", g.uri)
}
