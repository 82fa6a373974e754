package confdiff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Tag classifies one edit operation.
type Tag string

const (
	TagEqual   Tag = "equal"
	TagReplace Tag = "replace"
	TagDelete  Tag = "delete"
	TagInsert  Tag = "insert"
)

// Opcode is one edit operation over the two compared line sequences.
// [AStart,AEnd) indexes the first sequence, [BStart,BEnd) the second; the
// opcodes of a Result partition both sequences with no gaps or overlaps.
type Opcode struct {
	Tag    Tag `json:"tag"`
	AStart int `json:"a_start"`
	AEnd   int `json:"a_end"`
	BStart int `json:"b_start"`
	BEnd   int `json:"b_end"`
}

// Result is the renderable outcome of comparing two configuration texts.
type Result struct {
	First   []string `json:"first"`
	Second  []string `json:"second"`
	Opcodes []Opcode `json:"opcodes"`
}

// Compute diffs two configuration texts line by line. Matching follows the
// Ratcliff/Obershelp sequence matcher (longest contiguous matching runs
// first), so identical inputs always produce identical output.
func Compute(first, second string) Result {
	a := splitLines(first)
	b := splitLines(second)

	ops := difflib.NewMatcher(a, b).GetOpCodes()
	opcodes := make([]Opcode, 0, len(ops))
	for _, op := range ops {
		opcodes = append(opcodes, Opcode{
			Tag:    tagFor(op.Tag),
			AStart: op.I1,
			AEnd:   op.I2,
			BStart: op.J1,
			BEnd:   op.J2,
		})
	}
	return Result{First: a, Second: b, Opcodes: opcodes}
}

func tagFor(t byte) Tag {
	switch t {
	case 'e':
		return TagEqual
	case 'r':
		return TagReplace
	case 'd':
		return TagDelete
	case 'i':
		return TagInsert
	}
	return Tag(string(t))
}

// splitLines splits on any newline convention and never yields a trailing
// empty line for a text ending in a newline.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
