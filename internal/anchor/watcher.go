package anchor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledgercontrol/internal/models"
)

const (
	// Reconnect settings
	maxReconnectAttempts = 10
	reconnectDelay       = 5 * time.Second

	// One subscription may wait a while before the cluster finalizes
	notificationTimeout = 2 * time.Minute
)

// Watcher upgrades anchored batches from "submitted" to "finalized" by
// subscribing to their transaction signatures over the anchor network's
// websocket endpoint.
type Watcher struct {
	endpoint string
	db       *gorm.DB

	mu      sync.Mutex
	pending map[string]uint // signature -> batch id
}

// NewWatcher builds a watcher from ANCHOR_WS_ENDPOINT
func NewWatcher(db *gorm.DB) (*Watcher, error) {
	endpoint := os.Getenv("ANCHOR_WS_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("ANCHOR_WS_ENDPOINT is not set")
	}
	return &Watcher{
		endpoint: endpoint,
		db:       db,
		pending:  make(map[string]uint),
	}, nil
}

// Watch tracks a submitted anchor signature until finalization
func (w *Watcher) Watch(signature string, batchID uint) {
	w.mu.Lock()
	if _, exists := w.pending[signature]; exists {
		w.mu.Unlock()
		return
	}
	w.pending[signature] = batchID
	w.mu.Unlock()

	go w.watchSignature(signature, batchID)
}

// subscribeRequest is the JSON-RPC signatureSubscribe frame
type subscribeRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// wsMessage is the subset of incoming frames the watcher cares about
type wsMessage struct {
	Method string `json:"method"`
	Params *struct {
		Result struct {
			Value struct {
				Err interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

func (w *Watcher) watchSignature(signature string, batchID uint) {
	defer func() {
		w.mu.Lock()
		delete(w.pending, signature)
		w.mu.Unlock()
	}()

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		finalized, err := w.subscribeOnce(signature)
		if err == nil {
			if finalized {
				w.markFinalized(signature, batchID)
			}
			return
		}

		log.Warnf("Anchor watcher connection failed for batch %d (attempt %d/%d): %v",
			batchID, attempt, maxReconnectAttempts, err)
		time.Sleep(reconnectDelay)
	}

	log.Errorf("Anchor watcher gave up on signature %s for batch %d", signature, batchID)
}

// subscribeOnce runs one websocket session: subscribe, then wait for the
// signature notification or the timeout
func (w *Watcher) subscribeOnce(signature string) (bool, error) {
	conn, _, err := websocket.DefaultDialer.Dial(w.endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	req := subscribeRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]string{"commitment": "finalized"},
		},
	}
	if err := conn.WriteJSON(req); err != nil {
		return false, fmt.Errorf("subscribe failed: %w", err)
	}

	deadline := time.Now().Add(notificationTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return false, err
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return false, fmt.Errorf("read failed: %w", err)
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Method != "signatureNotification" || msg.Params == nil {
			continue
		}

		// A non-nil err means the transaction failed on chain; the batch
		// stays "submitted" and operators investigate via system_logs.
		return msg.Params.Result.Value.Err == nil, nil
	}
}

func (w *Watcher) markFinalized(signature string, batchID uint) {
	err := w.db.Model(&models.SettlementBatch{}).
		Where("id = ? AND anchor_tx_signature = ?", batchID, signature).
		Update("anchor_status", models.AnchorStatusFinalized).Error
	if err != nil {
		log.Errorf("Failed to mark batch %d anchor as finalized: %v", batchID, err)
		return
	}
	log.WithFields(log.Fields{
		"batch_id":  batchID,
		"signature": signature,
	}).Info("Anchor transaction finalized")
}
