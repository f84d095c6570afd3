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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *Rooms) {
	t.Helper()
	rooms := NewRooms(0)
	ts := httptest.NewServer(NewServerHandler(Options{Rooms: rooms}))
	t.Cleanup(func() {
		rooms.Stop()
		ts.Close()
	})
	return ts, rooms
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestHomepage(t *testing.T) {
	ts, _ := newTestServer(t)
	code, body := get(t, ts.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	for _, want := range []string{
		`<section id="templates">`,
		"<h3>세다토론</h3>",
		"실시간 토론방 설정 (선택)",
		`<label for="room-id">참여 코드 (1~999 숫자)</label>`,
		`id="start-debate"`,
		"/static/app.js",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("homepage missing %q", want)
		}
	}
}

func TestDebatePage(t *testing.T) {
	ts, _ := newTestServer(t)
	code, body := get(t, ts.URL+"/debate/123")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	for _, want := range []string{
		"Connecting to Debate Room...",
		`Room ID: <span id="room-id-value">123</span>`,
		`data-local="false"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("room page missing %q", want)
		}
	}

	if code, body := get(t, ts.URL+"/debate/local-1700000000000"); code != http.StatusOK || !strings.Contains(body, `data-local="true"`) {
		t.Errorf("local room page: %d", code)
	}
	for _, bad := range []string{"abc", "1000", "0"} {
		if code, _ := get(t, ts.URL+"/debate/"+bad); code != http.StatusNotFound {
			t.Errorf("/debate/%s status = %d, want 404", bad, code)
		}
	}
}

func TestStaticAssets(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/static/app.js")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/javascript" {
		t.Errorf("Content-Type = %q", ct)
	}
	if csp := resp.Header.Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'self'") {
		t.Errorf("CSP = %q", csp)
	}
}

func TestTemplatesAPI(t *testing.T) {
	ts, _ := newTestServer(t)
	_, body := get(t, ts.URL+"/api/templates")
	var got []DebateTemplate
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(Templates) {
		t.Fatalf("got %d templates", len(got))
	}
	code, body := get(t, ts.URL+"/api/templates/seda-debate")
	if code != http.StatusOK {
		t.Fatalf("GET seda-debate status = %d", code)
	}
	var seda DebateTemplate
	if err := json.Unmarshal([]byte(body), &seda); err != nil {
		t.Fatal(err)
	}
	if seda.Name != "세다토론" || seda.Guide == "" {
		t.Errorf("seda template = %+v", seda)
	}
	if seda.TotalSeconds() != 1380 {
		t.Errorf("TotalSeconds() = %d", seda.TotalSeconds())
	}
	if code, _ := get(t, ts.URL+"/api/templates/nope"); code != http.StatusNotFound {
		t.Errorf("unknown template status = %d, want 404", code)
	}
}

func checkRoom(t *testing.T, ts *httptest.Server, method, query, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+"/api/check-room"+query, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestCheckRoomAPI(t *testing.T) {
	ts, rooms := newTestServer(t)

	if code, _ := checkRoom(t, ts, http.MethodGet, "", ""); code != http.StatusBadRequest {
		t.Errorf("GET without room = %d", code)
	}
	if code, out := checkRoom(t, ts, http.MethodGet, "?room=123", ""); code != http.StatusOK || out["exists"] != false {
		t.Errorf("GET before create = %d %v", code, out)
	}
	if code, out := checkRoom(t, ts, http.MethodPost, "", `{"roomId":"123"}`); code != http.StatusOK || out["success"] != true {
		t.Errorf("POST = %d %v", code, out)
	}
	if code, _ := checkRoom(t, ts, http.MethodPost, "", `{"roomId":"123"}`); code != http.StatusConflict {
		t.Errorf("duplicate POST = %d, want 409", code)
	}
	if code, out := checkRoom(t, ts, http.MethodGet, "?room=123", ""); code != http.StatusOK || out["exists"] != true {
		t.Errorf("GET after create = %d %v", code, out)
	}
	if code, _ := checkRoom(t, ts, http.MethodPost, "", `{}`); code != http.StatusBadRequest {
		t.Errorf("POST without id = %d", code)
	}
	if code, _ := checkRoom(t, ts, http.MethodPost, "", `{"roomId":"5000"}`); code != http.StatusBadRequest {
		t.Errorf("POST out of range = %d", code)
	}
	if code, _ := checkRoom(t, ts, http.MethodPost, "", `{"roomId":"local-99"}`); code != http.StatusOK {
		t.Errorf("POST local = %d", code)
	}
	if code, out := checkRoom(t, ts, http.MethodGet, "?room=local-99", ""); code != http.StatusOK || out["exists"] != false {
		t.Errorf("GET local = %d %v", code, out)
	}
	if code, out := checkRoom(t, ts, http.MethodPost, "", `{"roomId":"local-abc"}`); code != http.StatusOK || out["success"] != true {
		t.Errorf("POST local with non-numeric suffix = %d %v", code, out)
	}
	if ok, _ := rooms.Exists("local-abc"); ok {
		t.Error("local room was registered")
	}
	if code, _ := checkRoom(t, ts, http.MethodDelete, "?room=123", ""); code != http.StatusOK {
		t.Errorf("DELETE = %d", code)
	}
	if len(rooms.List()) != 0 {
		t.Errorf("rooms after delete: %v", rooms.List())
	}
	if code, _ := checkRoom(t, ts, http.MethodPut, "?room=1", ""); code != http.StatusMethodNotAllowed {
		t.Errorf("PUT = %d", code)
	}
}

func dialRoom(t *testing.T, ts *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn, wantType string) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", wantType, err)
		}
		if msg.Type == wantType {
			return msg
		}
	}
}

func TestRoomChannel(t *testing.T) {
	ts, rooms := newTestServer(t)
	if err := rooms.Create("123", nil); err != nil {
		t.Fatal(err)
	}

	host := dialRoom(t, ts, "123")
	if msg := readMsg(t, host, MsgTypeJoined); msg.RoomID != "123" || msg.Participants != 1 {
		t.Errorf("host JOINED = %+v", msg)
	}

	guest := dialRoom(t, ts, "123")
	if msg := readMsg(t, guest, MsgTypeJoined); msg.Participants != 2 {
		t.Errorf("guest JOINED = %+v", msg)
	}
	if msg := readMsg(t, host, MsgTypePresence); msg.Participants != 2 {
		t.Errorf("host PRESENCE = %+v", msg)
	}

	state := json.RawMessage(`{"currentStepIndex":1,"isRunning":true}`)
	if err := host.WriteJSON(Message{Type: MsgTypeUpdate, State: state}); err != nil {
		t.Fatal(err)
	}
	msg := readMsg(t, guest, MsgTypeState)
	var got map[string]any
	if err := json.Unmarshal(msg.State, &got); err != nil || got["isRunning"] != true {
		t.Errorf("guest STATE = %s (%v)", msg.State, err)
	}

	if err := guest.WriteJSON(Message{Type: MsgTypePing}); err != nil {
		t.Fatal(err)
	}
	readMsg(t, guest, MsgTypePong)

	// A late joiner receives the current state right away.
	late := dialRoom(t, ts, "123")
	readMsg(t, late, MsgTypeJoined)
	if msg := readMsg(t, late, MsgTypeState); string(msg.State) != string(state) {
		t.Errorf("late STATE = %s", msg.State)
	}

	late.Close()
	guest.Close()
	for readMsg(t, host, MsgTypePresence).Participants != 1 {
	}
	host.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		if exists, _ := rooms.Exists("123"); !exists {
			break
		}
		select {
		case <-ctx.Done():
			t.Fatal("room not closed after every participant left")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestRoomChannelUnknownRoom(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dialRoom(t, ts, "404")
	msg := readMsg(t, conn, MsgTypeError)
	if msg.Error != ErrRoomNotFound.Error() {
		t.Errorf("ERROR = %+v", msg)
	}
}

func TestRoomChannelRequiresRoom(t *testing.T) {
	ts, _ := newTestServer(t)
	if code, _ := get(t, ts.URL+"/api/ws"); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestStartServerShutdown(t *testing.T) {
	s, err := StartServer(Options{Addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatal(err)
	}
	code, _ := get(t, "http://"+s.Addr().String()+"/")
	if code != http.StatusOK {
		t.Errorf("status = %d", code)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
