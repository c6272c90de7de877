package utils

import (
	"strings"

	"github.com/crytic/contractops/failures"
)

// ValidateFunctionName accepts either an identifier (a letter or underscore followed by letters, digits or
// underscores) or a full signature such as "transfer(address,uint256)".
func ValidateFunctionName(name string) error {
	if name == "" {
		return &failures.FunctionNameError{Input: name, Reason: "Function name cannot be empty"}
	}
	identifier := name
	if open := strings.IndexByte(name, '('); open >= 0 {
		if !strings.HasSuffix(name, ")") {
			return &failures.FunctionNameError{Input: name, Reason: "Function signature must end with ')'"}
		}
		identifier = name[:open]
		if !isSignatureArgList(name[open+1 : len(name)-1]) {
			return &failures.FunctionNameError{Input: name, Reason: "Function signature has a malformed parameter list"}
		}
	}
	if identifier == "" || !isIdentifierStart(identifier[0]) {
		return &failures.FunctionNameError{Input: name, Reason: "Function name must start with a letter or underscore"}
	}
	for i := 1; i < len(identifier); i++ {
		if !isIdentifierStart(identifier[i]) && !(identifier[i] >= '0' && identifier[i] <= '9') {
			return &failures.FunctionNameError{Input: name, Reason: "Function name can only contain letters, numbers, and underscores"}
		}
	}
	return nil
}

// SplitSignature returns the name part of a function reference and whether the reference was a full signature.
func SplitSignature(ref string) (string, bool) {
	if open := strings.IndexByte(ref, '('); open >= 0 {
		return ref[:open], true
	}
	return ref, false
}

func isIdentifierStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isSignatureArgList accepts nested tuple types like "(uint256,address)[]" but rejects spaces and unbalanced parens.
func isSignatureArgList(args string) bool {
	depth := 0
	for _, c := range args {
		switch c {
		case ' ':
			return false
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
