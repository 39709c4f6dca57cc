package engine

import "strings"

// installStep detects the interpreter from the entry point's first line and
// installs the dependency list with the matching installer, falling back to
// the alternate one on failure. Runs inside the container after the cd, so
// the relative paths resolve under MountPath.
const installStep = "head -1 " + EntryPoint + " | grep -q python3" +
	" && sudo pip3 install -r requirements.txt" +
	" || sudo pip install -r requirements.txt"

// Pipeline assembles the in-container command string: change into the
// mounted build path, install dependencies, then run the payload. The result
// is passed as a single argument to /bin/bash -c.
func Pipeline(payload []string) string {
	chain := []string{
		"cd " + MountPath,
		installStep,
		JoinCommand(payload),
	}
	return strings.Join(chain, " && ")
}

// JoinCommand joins payload tokens with single spaces, single-quoting any
// token the shell would otherwise interpret.
func JoinCommand(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = quoteToken(tok)
	}
	return strings.Join(quoted, " ")
}

func quoteToken(tok string) string {
	if tok == "" {
		return "''"
	}
	if isShellSafe(tok) {
		return tok
	}
	// POSIX single quoting; embedded single quotes become '\''.
	return "'" + strings.ReplaceAll(tok, "'", `'\''`) + "'"
}

func isShellSafe(tok string) bool {
	for _, r := range tok {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case strings.ContainsRune("-_./=:,@+%", r):
		default:
			return false
		}
	}
	return true
}
