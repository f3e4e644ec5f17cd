package html

import (
	"slices"
	"strings"

	htmllib "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func attr(n *htmllib.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *htmllib.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, htmllib.Attribute{Key: key, Val: val})
}

func classes(n *htmllib.Node) []string {
	return strings.Fields(attr(n, "class"))
}

func hasClass(n *htmllib.Node, class string) bool {
	return slices.Contains(classes(n), class)
}

// setClass adds or removes class so that its presence equals on.
func setClass(n *htmllib.Node, class string, on bool) {
	cs := classes(n)
	has := slices.Contains(cs, class)
	switch {
	case on && !has:
		cs = append(cs, class)
	case !on && has:
		cs = slices.DeleteFunc(cs, func(c string) bool { return c == class })
	default:
		return
	}
	setAttr(n, "class", strings.Join(cs, " "))
}

func isElement(n *htmllib.Node) bool {
	return n != nil && n.Type == htmllib.ElementNode
}

// nextElement returns the next element sibling of n.
func nextElement(n *htmllib.Node) *htmllib.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if isElement(s) {
			return s
		}
	}
	return nil
}

// walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func walk(n *htmllib.Node, fn func(*htmllib.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// findClass returns the first descendant of n carrying class.
func findClass(n *htmllib.Node, class string) *htmllib.Node {
	var found *htmllib.Node
	walk(n, func(c *htmllib.Node) bool {
		if found != nil {
			return false
		}
		if c != n && isElement(c) && hasClass(c, class) {
			found = c
			return false
		}
		return true
	})
	return found
}

func textContent(n *htmllib.Node) string {
	var sb strings.Builder
	walk(n, func(c *htmllib.Node) bool {
		if c.Type == htmllib.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return strings.TrimSpace(sb.String())
}

func removeChildren(n *htmllib.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// setText replaces the children of n with a single text node.
func setText(n *htmllib.Node, text string) {
	removeChildren(n)
	if text != "" {
		n.AppendChild(&htmllib.Node{Type: htmllib.TextNode, Data: text})
	}
}

func element(a atom.Atom, attrs ...htmllib.Attribute) *htmllib.Node {
	return &htmllib.Node{Type: htmllib.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}
