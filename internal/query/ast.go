// Package query parses the Boolean query language (AND, OR, NOT, quoted
// phrases, parentheses) into an expression tree. The tree is built once per
// query and discarded after evaluation.
package query

import "fmt"

// Node is one node of the query expression tree. Leaves are terms or phrases,
// internal nodes are Boolean combinators. Parenthesized groups exist only at
// parse time; they shape the tree and leave no node behind.
type Node interface {
	fmt.Stringer
	node()
}

// TermNode is a single raw query word. Analysis happens at evaluation time,
// per target field.
type TermNode struct {
	Term string
}

func (n *TermNode) node()          {}
func (n *TermNode) String() string { return n.Term }

// PhraseNode is a quoted phrase whose analyzed terms must appear at
// consecutive positions in a matching document.
type PhraseNode struct {
	Text string
}

func (n *PhraseNode) node()          {}
func (n *PhraseNode) String() string { return fmt.Sprintf("%q", n.Text) }

// AndNode matches documents matched by both operands.
type AndNode struct {
	Left, Right Node
}

func (n *AndNode) node()          {}
func (n *AndNode) String() string { return fmt.Sprintf("(%s AND %s)", n.Left, n.Right) }

// OrNode matches documents matched by either operand.
type OrNode struct {
	Left, Right Node
}

func (n *OrNode) node()          {}
func (n *OrNode) String() string { return fmt.Sprintf("(%s OR %s)", n.Left, n.Right) }

// NotNode matches the complement of its operand within the field universe.
type NotNode struct {
	Operand Node
}

func (n *NotNode) node()          {}
func (n *NotNode) String() string { return fmt.Sprintf("(NOT %s)", n.Operand) }
