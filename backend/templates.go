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

// DebateStep is one timed stage of a debate format.
type DebateStep struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Time         int    `json:"time"`
	Team         string `json:"team,omitempty"`
	MaxSpeakTime int    `json:"maxSpeakTime,omitempty"`
}

// DebateTemplate is a debate format offered on the homepage.
type DebateTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Guide       string       `json:"guide,omitempty"`
	Steps       []DebateStep `json:"steps"`
}

// TotalSeconds is the scheduled length of the debate.
func (t DebateTemplate) TotalSeconds() int {
	n := 0
	for _, s := range t.Steps {
		n += s.Time
	}
	return n
}

// Templates lists the formats shown on the homepage, in display order.
var Templates = []DebateTemplate{
	{
		ID:          "free-debate",
		Name:        "자유토론",
		Description: "찬반 입론 후 자유롭게 의견을 교환하는 기본 토론",
		Guide:       "자유토론은 가장 일반적인 토론 형식으로, 찬성과 반대 측이 자유롭게 의견을 교환합니다. 시작 시 각 측의 기본 입장을 발표하고, 자유토론 시간에는 자유롭게 발언할 수 있습니다. 마지막에는 각 측이 마무리 발언을 통해 자신의 입장을 정리합니다.",
		Steps: []DebateStep{
			{ID: "step-1", Type: "입론", Time: 120, Team: "찬성"},
			{ID: "step-2", Type: "입론", Time: 120, Team: "반대"},
			{ID: "step-3", Type: "자유토론", Time: 1200, MaxSpeakTime: 120},
			{ID: "step-4", Type: "마무리 발언", Time: 60, Team: "반대"},
			{ID: "step-5", Type: "마무리 발언", Time: 60, Team: "찬성"},
		},
	},
	{
		ID:          "spar-debate",
		Name:        "SPAR 토론",
		Description: "짧고 강한 1:1 즉흥 토론",
		Guide:       "SPAR 토론은 6분 정도의 짧고 강한 1:1 즉흥 토론 형식입니다. 주제 제시 후 짧은 준비 시간을 가진 뒤, 찬반 각각 1분씩 입론하고 2분간 자유롭게 질문과 반박을 교환합니다. 마지막으로 각 30초씩 마무리 발언을 합니다.",
		Steps: []DebateStep{
			{ID: "step-1", Type: "입론", Time: 30},
			{ID: "step-2", Type: "숙의시간", Time: 30},
			{ID: "step-3", Type: "입론", Time: 60, Team: "찬성"},
			{ID: "step-4", Type: "입론", Time: 60, Team: "반대"},
			{ID: "step-5", Type: "교차질의", Time: 120},
			{ID: "step-6", Type: "마무리 발언", Time: 30, Team: "찬성"},
			{ID: "step-7", Type: "마무리 발언", Time: 30, Team: "반대"},
		},
	},
	{
		ID:          "seda-debate",
		Name:        "세다토론",
		Description: "교차질의와 자유토론을 포함한 대학 맞춤형 구조화 토론",
		Guide:       "세다토론은 대학 토론에서 자주 사용되는 방식으로, 입론-교차질의-자유토론-마무리 발언의 순서로 진행됩니다. 각 팀의 논리적 주장과 반박을 중시하며, 교차질의 시간을 통해 상대방 주장의 약점을 파악하는 것이 중요합니다.",
		Steps: []DebateStep{
			{ID: "step-1", Type: "입론", Time: 180, Team: "찬성"},
			{ID: "step-2", Type: "입론", Time: 180, Team: "반대"},
			{ID: "step-3", Type: "교차질의", Time: 120, Team: "찬성"},
			{ID: "step-4", Type: "교차질의", Time: 120, Team: "반대"},
			{ID: "step-5", Type: "자유토론", Time: 600, MaxSpeakTime: 90},
			{ID: "step-6", Type: "마무리 발언", Time: 90, Team: "반대"},
			{ID: "step-7", Type: "마무리 발언", Time: 90, Team: "찬성"},
		},
	},
}

// FindTemplate returns the template with the given id.
func FindTemplate(id string) (DebateTemplate, bool) {
	for _, t := range Templates {
		if t.ID == id {
			return t, true
		}
	}
	return DebateTemplate{}, false
}
