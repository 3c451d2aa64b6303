package hyperliquid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newTestWSServer upgrades incoming connections and hands them to fn.
func newTestWSServer(t *testing.T, fn func(conn *websocket.Conn)) (*httptest.Server, string) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		fn(conn)
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return server, wsURL
}

func TestMidsClient_SubscribesAndReceivesUpdates(t *testing.T) {
	server, wsURL := newTestWSServer(t, func(conn *websocket.Conn) {
		// Expect the allMids subscription first.
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		if req.Method != "subscribe" || req.Subscription == nil || req.Subscription.Type != "allMids" {
			t.Errorf("unexpected subscribe request: %+v", req)
			return
		}

		ack := map[string]interface{}{
			"channel": "subscriptionResponse",
			"data":    map[string]interface{}{"method": "subscribe"},
		}
		if err := conn.WriteJSON(ack); err != nil {
			return
		}

		push := map[string]interface{}{
			"channel": "allMids",
			"data": map[string]interface{}{
				"mids": map[string]string{"BTC": "45123.5", "ETH": "2401.2"},
			},
		}
		if err := conn.WriteJSON(push); err != nil {
			return
		}

		// Hold the connection open until the client disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	client, err := NewMidsClient(context.Background(), wsURL, nil)
	if err != nil {
		t.Fatalf("NewMidsClient failed: %v", err)
	}
	defer client.Close()

	select {
	case update := <-client.Updates():
		if update.Mids["BTC"] != "45123.5" || update.Mids["ETH"] != "2401.2" {
			t.Errorf("unexpected mids: %v", update.Mids)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mids update")
	}
}

func TestMidsClient_IgnoresUnknownChannels(t *testing.T) {
	server, wsURL := newTestWSServer(t, func(conn *websocket.Conn) {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		// Garbage, an unrelated channel, then a real push.
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		conn.WriteJSON(map[string]interface{}{"channel": "trades", "data": map[string]interface{}{}})
		conn.WriteJSON(map[string]interface{}{
			"channel": "allMids",
			"data":    map[string]interface{}{"mids": map[string]string{"SOL": "101.5"}},
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	client, err := NewMidsClient(context.Background(), wsURL, nil)
	if err != nil {
		t.Fatalf("NewMidsClient failed: %v", err)
	}
	defer client.Close()

	select {
	case update := <-client.Updates():
		if update.Mids["SOL"] != "101.5" {
			t.Errorf("unexpected mids: %v", update.Mids)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mids update")
	}
}

func TestMidsClient_CloseIsIdempotent(t *testing.T) {
	server, wsURL := newTestWSServer(t, func(conn *websocket.Conn) {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	client, err := NewMidsClient(context.Background(), wsURL, nil)
	if err != nil {
		t.Fatalf("NewMidsClient failed: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("first close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	// Updates channel must be closed.
	if _, ok := <-client.Updates(); ok {
		t.Error("expected updates channel to be closed")
	}
}

func TestMidsClient_DecodeMidsData(t *testing.T) {
	raw := []byte(`{"channel":"allMids","data":{"mids":{"BTC":"45000"}}}`)
	var msg wsMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var data wsMidsData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.Mids["BTC"] != "45000" {
		t.Errorf("unexpected mids: %v", data.Mids)
	}
}
