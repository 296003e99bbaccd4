package feeds

import "fmt"

// Message is one raw frame read off a stream, or the read error that
// ended it.
type Message struct {
	Bytes []byte
	Err   error
}

type nodeTxFeedResponse struct {
	Params struct {
		Result struct {
			Signature string `json:"signature"`
		} `json:"result"`
	} `json:"params"`
}

type gatewayTxFeedResponse struct {
	Params struct {
		Result struct {
			Signature string `json:"signature"`
			TxHash    string `json:"txHash"`
		} `json:"result"`
	} `json:"params"`
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Chars = func() [256]bool {
	var set [256]bool
	for i := 0; i < len(base58Alphabet); i++ {
		set[base58Alphabet[i]] = true
	}
	return set
}()

// validSignature reports whether sig looks like a base58-encoded Solana
// transaction signature. 64-byte signatures encode to 86-88 characters.
func validSignature(sig string) bool {
	if len(sig) < 86 || len(sig) > 88 {
		return false
	}

	for i := 0; i < len(sig); i++ {
		if !base58Chars[sig[i]] {
			return false
		}
	}

	return true
}

func checkSignature(sig, feed string) (string, error) {
	if !validSignature(sig) {
		return "", fmt.Errorf("feed %s produced a malformed signature %q", feed, sig)
	}

	return sig, nil
}
