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


package e2ehelpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/ttbt-io/debateverify/backend"
	"golang.org/x/net/html"
)

// renderPage parses the stand-in app's page at path.
func renderPage(t *testing.T, path string) *html.Node {
	t.Helper()
	rec := httptest.NewRecorder()
	backend.NewServerHandler(backend.Options{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", path, rec.Code)
	}
	doc, err := htmlquery.Parse(rec.Body)
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return doc
}

func queryAll(t *testing.T, doc *html.Node, l Locator) []*html.Node {
	t.Helper()
	nodes, err := htmlquery.QueryAll(doc, l.XPath())
	if err != nil {
		t.Fatalf("%s: bad xpath %s: %v", l, l.XPath(), err)
	}
	return nodes
}

func TestLocatorsOnHomepage(t *testing.T) {
	doc := renderPage(t, "/")

	for _, tc := range []struct {
		loc     Locator
		wantTag string
		wantID  string
	}{
		{ByRole("heading", "세다토론"), "h3", ""},
		{ByRole("heading", "실시간 토론방 설정 (선택)"), "h3", ""},
		{ByLabel("참여 코드 (1~999 숫자)"), "input", "room-id"},
		{ByRole("button", "토론 시작하기").Within("templates"), "button", "start-debate"},
	} {
		nodes := queryAll(t, doc, tc.loc)
		if len(nodes) != 1 {
			t.Errorf("%s matched %d elements, want 1", tc.loc, len(nodes))
			continue
		}
		if n := nodes[0]; n.Data != tc.wantTag {
			t.Errorf("%s matched <%s>, want <%s>", tc.loc, n.Data, tc.wantTag)
		}
		if tc.wantID != "" {
			if id := htmlquery.SelectAttr(nodes[0], "id"); id != tc.wantID {
				t.Errorf("%s matched #%s, want #%s", tc.loc, id, tc.wantID)
			}
		}
	}

	// The hero section has its own start button.
	if n := len(queryAll(t, doc, ByRole("button", "토론 시작하기"))); n != 2 {
		t.Errorf("unscoped start button matched %d elements, want 2", n)
	}
	if n := len(queryAll(t, doc, ByLabel("참여 코드"))); n != 0 {
		t.Errorf("partial label matched %d elements, want 0", n)
	}
}

func TestLocatorsOnRoomPage(t *testing.T) {
	doc := renderPage(t, "/debate/123")

	for _, tc := range []struct {
		loc      Locator
		wantTag  string
		wantText string
	}{
		{ByText("Connecting to Debate Room..."), "h2", "Connecting to Debate Room..."},
		{ByText("Room ID: 123"), "p", "Room ID: 123"},
	} {
		nodes := queryAll(t, doc, tc.loc)
		if len(nodes) != 1 {
			t.Errorf("%s matched %d elements, want 1", tc.loc, len(nodes))
			continue
		}
		if nodes[0].Data != tc.wantTag {
			t.Errorf("%s matched <%s>, want <%s>", tc.loc, nodes[0].Data, tc.wantTag)
		}
		if got := htmlquery.InnerText(nodes[0]); got != tc.wantText {
			t.Errorf("%s text = %q, want %q", tc.loc, got, tc.wantText)
		}
	}
	if n := len(queryAll(t, doc, ByText("Room ID: 1234"))); n != 0 {
		t.Errorf("other room id matched %d elements, want 0", n)
	}
}
