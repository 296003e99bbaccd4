package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/romkoth/shredlink-benchmarking/internal/pkg/ws"
)

// NodeWS streams transactions from a Solana node (or geyser-enhanced RPC
// provider) exposing the transactionSubscribe websocket method.
type NodeWS struct {
	uri       string
	authToken string
	accounts  []string
}

func NewNodeWS(uri, authToken string, accounts []string) *NodeWS {
	return &NodeWS{
		uri:       uri,
		authToken: authToken,
		accounts:  accounts,
	}
}

// Receive reads the stream until ctx is cancelled or the connection dies,
// closing out either way so the consumer can tell the stream ended.
func (n NodeWS) Receive(ctx context.Context, wg *sync.WaitGroup, out chan *Message) {
	defer wg.Done()
	defer close(out)

	log.Infof("Initiating connection to %s %s", n.Name(), n.uri)

	conn, err := ws.NewConnection(n.uri, n.authToken)
	if err != nil {
		log.Errorf("cannot establish connection to %s %s: %v", n.Name(), n.uri, err)
		return
	}

	log.Infof("%s connection to %s established", n.Name(), n.uri)

	// Forces the blocking read to return promptly once draining starts.
	go func() {
		<-ctx.Done()
		if err := conn.Close(); err != nil {
			log.Debugf("cannot close socket connection to %s: %v", n.uri, err)
		}
	}()

	sub, err := conn.SubscribeTxFeedNode(1, n.accounts)
	if err != nil {
		log.Errorf("cannot subscribe to feed %s: %v", n.Name(), err)
		return
	}

	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Debugf("cannot unsubscribe from feed %s: %v", n.Name(), err)
		}
	}()

	for {
		data, err := sub.NextMessage()
		if err != nil {
			if ctx.Err() != nil {
				log.Infof("stop %s feed", n.Name())
				return
			}

			log.Errorf("failed to read new message from feed %s: %v", n.Name(), err)
			select {
			case <-ctx.Done():
			case out <- &Message{Err: err}:
			}
			return
		}

		select {
		case <-ctx.Done():
			log.Infof("stop %s feed", n.Name())
			return
		case out <- &Message{Bytes: data}:
		}
	}
}

// ParseMessage extracts the transaction signature from a subscription
// notification.
func (n NodeWS) ParseMessage(message *Message) (string, error) {
	var msg nodeTxFeedResponse
	if err := json.Unmarshal(message.Bytes, &msg); err != nil {
		return "", fmt.Errorf("failed to unmarshal node transaction message: %v", err)
	}

	return checkSignature(msg.Params.Result.Signature, n.Name())
}

func (n NodeWS) Name() string {
	return fmt.Sprintf("NodeTransactionsWS(%s)", n.uri)
}
