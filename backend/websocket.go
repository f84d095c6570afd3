// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// Message types of the room channel.
const (
	MsgTypeJoined   = "JOINED"
	MsgTypePresence = "PRESENCE"
	MsgTypeState    = "STATE"
	MsgTypeUpdate   = "UPDATE"
	MsgTypeError    = "ERROR"
	MsgTypePing     = "PING"
	MsgTypePong     = "PONG"
)

// Message is exchanged on the room channel as JSON.
type Message struct {
	Type         string          `json:"type"`
	RoomID       string          `json:"roomId,omitempty"`
	Participants int             `json:"participants,omitempty"`
	State        json.RawMessage `json:"state,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// wsClient is a middleman between the websocket connection and the room.
type wsClient struct {
	rooms  *Rooms
	roomID string

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan Message

	done      chan struct{}
	closeOnce sync.Once
}

// ServeWS upgrades the request and attaches the connection to the room named
// by the "room" query parameter.
func ServeWS(rooms *Rooms, w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "room parameter is required", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	c := &wsClient{
		rooms:  rooms,
		roomID: roomID,
		conn:   conn,
		send:   make(chan Message, 16),
		done:   make(chan struct{}),
	}

	state, peers, err := rooms.join(roomID, c)
	if err != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteJSON(Message{Type: MsgTypeError, RoomID: roomID, Error: err.Error()})
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		conn.Close()
		return
	}

	go c.writePump()
	c.sendJSON(Message{Type: MsgTypeJoined, RoomID: roomID, Participants: len(peers)})
	if state != nil {
		c.sendJSON(Message{Type: MsgTypeState, RoomID: roomID, State: state})
	}
	broadcast(peers, c, Message{Type: MsgTypePresence, RoomID: roomID, Participants: len(peers)})
	go c.readPump()
}

// readPump pumps messages from the websocket connection to the room.
func (c *wsClient) readPump() {
	defer func() {
		remaining := c.rooms.leave(c.roomID, c)
		broadcast(remaining, nil, Message{Type: MsgTypePresence, RoomID: c.roomID, Participants: len(remaining)})
		c.close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			return
		}

		switch msg.Type {
		case MsgTypeUpdate:
			if !json.Valid(msg.State) {
				c.sendJSON(Message{Type: MsgTypeError, Error: "invalid state"})
				continue
			}
			peers, err := c.rooms.setState(c.roomID, msg.State, c)
			if err != nil {
				c.sendJSON(Message{Type: MsgTypeError, Error: err.Error()})
				continue
			}
			broadcast(peers, nil, Message{Type: MsgTypeState, RoomID: c.roomID, State: msg.State})
		case MsgTypePing:
			c.sendJSON(Message{Type: MsgTypePong})
		default:
			log.Printf("Unknown message type: %s", msg.Type)
			c.sendJSON(Message{Type: MsgTypeError, Error: "Unknown message type"})
		}
	}
}

// writePump pumps messages from the room to the websocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) sendJSON(msg Message) {
	select {
	case c.send <- msg:
	default:
		log.Printf("Warning: send buffer full, dropping %s for room %s", msg.Type, c.roomID)
	}
}

// close shuts the connection down and stops the pumps.
func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// broadcast sends msg to every client except skip.
func broadcast(clients []*wsClient, skip *wsClient, msg Message) {
	for _, c := range clients {
		if c != skip {
			c.sendJSON(msg)
		}
	}
}
