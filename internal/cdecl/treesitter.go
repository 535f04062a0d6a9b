package cdecl

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return string(src[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
// Returning false from the visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// sameNode reports whether a and b cover the same range with the same kind.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

var declaratorKinds = map[string]bool{
	"identifier":               true,
	"init_declarator":          true,
	"pointer_declarator":       true,
	"function_declarator":      true,
	"array_declarator":         true,
	"parenthesized_declarator": true,
	"attributed_declarator":    true,
}

// declarators returns the declarator children of a declaration or
// type_definition, in order.
func declarators(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if declaratorKinds[child.Kind()] {
			out = append(out, child)
		}
	}
	return out
}

// findDeclaredName unwraps a declarator down to the identifier it declares.
func findDeclaredName(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}

	switch node.Kind() {
	case "identifier", "type_identifier", "primitive_type":
		return extractNodeText(node, src)
	case "function_declarator", "pointer_declarator", "array_declarator",
		"init_declarator", "attributed_declarator":
		return findDeclaredName(node.ChildByFieldName("declarator"), src)
	default:
		// parenthesized_declarator and friends wrap one named child
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if name := findDeclaredName(node.NamedChild(i), src); name != "" {
				return name
			}
		}
	}

	return ""
}

// declaresFunction reports whether a declarator declares a function rather
// than a variable or a function pointer.
func declaresFunction(node *sitter.Node) bool {
	for node != nil {
		switch node.Kind() {
		case "function_declarator":
			inner := node.ChildByFieldName("declarator")
			if inner != nil && inner.Kind() == "identifier" {
				return true
			}
			node = inner
		case "pointer_declarator", "init_declarator", "attributed_declarator":
			node = node.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			if node.NamedChildCount() == 0 {
				return false
			}
			node = node.NamedChild(0)
		default:
			return false
		}
	}
	return false
}

// findFunctionParameters returns the parameter list of the function
// declarator inside node.
func findFunctionParameters(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "function_declarator":
			return node.ChildByFieldName("parameters")
		case "pointer_declarator", "attributed_declarator":
			node = node.ChildByFieldName("declarator")
		case "parenthesized_declarator":
			if node.NamedChildCount() == 0 {
				return nil
			}
			node = node.NamedChild(0)
		default:
			return nil
		}
	}
	return nil
}
