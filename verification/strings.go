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

package verification

// Visible strings of the debate app that the procedure relies on. A copy
// change in the app has to be mirrored here.
const (
	TemplateName        = "세다토론"
	GuideConfirmButton  = "확인 후 설정하기"
	RealtimeHeading     = "실시간 토론방 설정 (선택)"
	RoomCodeLabel       = "참여 코드 (1~999 숫자)"
	StartDebateButton   = "토론 시작하기"
	TemplatesSectionID  = "templates"
	ConnectingMessage   = "Connecting to Debate Room..."
	RoomIDMessagePrefix = "Room ID: "
)
