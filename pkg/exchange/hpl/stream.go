package hpl

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const hsTimeoutS = 5   // handshake timeout in seconds
const hbIntervalS = 55 // heartbeat interval in seconds

// PriceStream is a websocket subscription to the exchange's allMids feed.
// It reconnects on read failures until stopped via the context or Close.
type PriceStream struct {
	wsURL        string
	dialer       websocket.Dialer
	conn         *websocket.Conn
	lastPingpong time.Time

	doneC          chan struct{}
	stopC          chan struct{}
	isDisconnected bool // temporary disconnection; the stream may auto-reconnect
	isClosed       bool // permanent closure; the stream will not reconnect

	mu      sync.Mutex
	writeMu sync.Mutex
	logger  *log.Entry
}

// SubscribePrices connects to the websocket endpoint and invokes onUpdate
// with a mid-price map for every allMids event until ctx is canceled.
func (e *Exchange) SubscribePrices(ctx context.Context, onUpdate func(map[string]decimal.Decimal)) (*PriceStream, error) {
	if _, err := url.Parse(e.wsURL); err != nil {
		return nil, err
	}
	sm := &PriceStream{
		wsURL: e.wsURL,
		dialer: websocket.Dialer{
			HandshakeTimeout:  time.Duration(hsTimeoutS) * time.Second,
			Subprotocols:      []string{"permessage-deflate"},
			EnableCompression: true,
		},
		logger: log.WithFields(log.Fields{"url": e.wsURL, "sm": "allMids"}),
	}

	if err := sm.connect(); err != nil {
		return nil, err
	}
	sm.lastPingpong = time.Now()
	sm.doneC = make(chan struct{})
	sm.stopC = make(chan struct{})

	params := map[string]string{"type": "allMids"}
	go sm.run(params, func(e []byte) {
		mids, err := parseAllMidsEvent(e)
		if err != nil {
			sm.logger.Error(err)
			return
		}
		if len(mids) == 0 {
			return
		}
		onUpdate(mids)
	})

	go func() {
		select {
		case <-ctx.Done():
			close(sm.stopC)
		case <-sm.doneC:
		}
	}()

	return sm, nil
}

func (sm *PriceStream) connect() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	c, _, err := sm.dialer.Dial(sm.wsURL, nil)
	if err != nil {
		sm.logger.Errorf("fail to connect stream: %v", err)
		return err
	}
	sm.conn = c
	return nil
}

func (sm *PriceStream) sendSubMsg(params map[string]string) error {
	sm.writeMu.Lock()
	defer sm.writeMu.Unlock()

	subMsg := map[string]interface{}{
		"method":       "subscribe",
		"subscription": params,
	}
	return sm.conn.WriteJSON(subMsg)
}

func (sm *PriceStream) writeMessage(messageType int, data []byte) error {
	sm.writeMu.Lock()
	defer sm.writeMu.Unlock()
	return sm.conn.WriteMessage(messageType, data)
}

func (sm *PriceStream) run(params map[string]string, onEvent func(e []byte)) {
	if err := sm.sendSubMsg(params); err != nil {
		sm.logger.Errorf("fail to subscribe stream: %v", err)
		sm.Close()
		return
	}
	sm.isDisconnected = false

	sm.keepAlive(time.Duration(hbIntervalS) * time.Second)

	for {
		select {
		case <-sm.stopC:
			sm.Close()
			return
		default:
			if sm.IsClosed() {
				return
			}
			_, msg, err := sm.conn.ReadMessage()
			if err != nil {
				sm.logger.Errorf("fail to read stream message (trying to reconnect): %v", err)
				sm.handleReconnect(params)
				continue
			}

			// HPL sends `{"channel": "pong"}` as a regular ws message
			var wsGenericRes wsGenericResponse
			if err := json.Unmarshal(msg, &wsGenericRes); err != nil {
				sm.logger.Warnf("found unknown message format: %v: %v", err, string(msg))
				continue
			}
			sm.lastPingpong = time.Now()
			if wsGenericRes.Channel == "pong" {
				sm.logger.Debug("received pong")
				continue
			}
			if wsGenericRes.Channel == "error" {
				sm.logger.Errorf("found err message during stream: %v", string(msg))
				continue
			}
			onEvent(msg)
		}
	}
}

func (sm *PriceStream) handleReconnect(params map[string]string) {
	if !sm.IsDisconnected() {
		sm.forceDisconnect()
	}

	for {
		if sm.IsClosed() {
			return
		}
		select {
		case <-sm.stopC:
			sm.Close()
			return
		default:
			time.Sleep(1 * time.Second)
			if err := sm.connect(); err != nil {
				sm.logger.Errorf("fail to reconnect stream (retrying...): %v", err)
				continue
			}
			if err := sm.sendSubMsg(params); err != nil {
				sm.logger.Errorf("fail to resubscribe stream: %v", err)
				sm.forceDisconnect()
				continue
			}
			sm.logger.Info("reconnect and resubscribe stream success")
			sm.mu.Lock()
			sm.isDisconnected = false
			sm.mu.Unlock()
			return
		}
	}
}

func (sm *PriceStream) keepAlive(interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// must check the state inside the ticker loop to handle reconnections
				if sm.IsClosed() {
					return
				}
				if sm.IsDisconnected() {
					continue
				}
				if time.Since(sm.lastPingpong) > time.Duration((hsTimeoutS+hbIntervalS)*time.Second) {
					sm.logger.Warn("keepAlive timeout: force disconnecting")
					sm.forceDisconnect()
					continue
				}

				ping, _ := json.Marshal(map[string]string{"method": "ping"})
				if err := sm.writeMessage(websocket.TextMessage, ping); err != nil {
					sm.logger.Errorf("fail to write ping during keepAlive: %v", err)
					return
				}
			case <-sm.stopC:
				sm.Close()
				return
			}
		}
	}()
}

func (sm *PriceStream) forceDisconnect() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.isDisconnected = true
	if sm.conn != nil {
		sm.conn.Close()
	}
}

func (sm *PriceStream) IsDisconnected() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.isDisconnected
}

func (sm *PriceStream) IsClosed() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.isClosed
}

// Done is closed once the stream is permanently closed.
func (sm *PriceStream) Done() <-chan struct{} {
	return sm.doneC
}

func (sm *PriceStream) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.isClosed {
		return
	}
	sm.isClosed = true
	if sm.conn != nil {
		sm.conn.Close()
	}
	close(sm.doneC)
}
