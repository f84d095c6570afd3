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
	"fmt"
	"strings"
)

// Locator finds elements the way a user would describe them: by role and
// accessible name, by label, or by visible text. It compiles to an XPath
// expression for chromedp.BySearch.
type Locator struct {
	desc  string
	scope string
	node  string
}

// String describes the locator for logs and errors.
func (l Locator) String() string {
	if l.scope != "" {
		return l.desc + " in " + l.scope
	}
	return l.desc
}

// XPath returns the search expression.
func (l Locator) XPath() string {
	if l.scope != "" {
		return fmt.Sprintf("//*[@id=%s]//%s", xpathLiteral(l.scope), l.node)
	}
	return "//" + l.node
}

// Within restricts the locator to descendants of the element with the given
// id. A leading '#' is accepted.
func (l Locator) Within(id string) Locator {
	l.scope = strings.TrimPrefix(id, "#")
	return l
}

var roleElements = map[string]string{
	"heading": "self::h1 or self::h2 or self::h3 or self::h4 or self::h5 or self::h6",
	"button":  "self::button or (self::input and (@type='button' or @type='submit' or @type='reset'))",
	"link":    "self::a[@href]",
	"textbox": "self::textarea or (self::input and (not(@type) or @type='text' or @type='search' or @type='email' or @type='number'))",
	"dialog":  "self::dialog",
}

// ByRole matches elements with the given ARIA role, implicit or explicit,
// whose accessible name equals name after whitespace normalization.
func ByRole(role, name string) Locator {
	match := "@role=" + xpathLiteral(role)
	if implicit, ok := roleElements[role]; ok {
		match = implicit + " or " + match
	}
	lit := xpathLiteral(name)
	return Locator{
		desc: fmt.Sprintf("%s %q", role, name),
		node: fmt.Sprintf("*[%s][normalize-space(.)=%s or @aria-label=%s or @value=%s]", match, lit, lit, lit),
	}
}

// ByLabel matches form controls labelled with label, either through a
// <label for=...>, a wrapping <label>, or aria-label.
func ByLabel(label string) Locator {
	lit := xpathLiteral(label)
	return Locator{
		desc: fmt.Sprintf("field labelled %q", label),
		node: fmt.Sprintf(
			"*[self::input or self::textarea or self::select][@id=//label[normalize-space(.)=%s]/@for or ancestor::label[normalize-space(.)=%s] or @aria-label=%s]",
			lit, lit, lit),
	}
}

// ByText matches the innermost elements whose text contains text.
func ByText(text string) Locator {
	lit := xpathLiteral(text)
	return Locator{
		desc: fmt.Sprintf("text %q", text),
		node: fmt.Sprintf(
			"*[not(ancestor-or-self::head or self::script or self::style)][contains(normalize-space(.), %s)][not(*[contains(normalize-space(.), %s)])]",
			lit, lit),
	}
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so strings holding both quote kinds are built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	var b strings.Builder
	b.WriteString("concat(")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(`, "'", `)
		}
		b.WriteString("'" + p + "'")
	}
	b.WriteString(")")
	return b.String()
}
