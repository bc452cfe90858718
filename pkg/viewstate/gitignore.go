package viewstate

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const gitignoreComment = "# poolnav local view state"

// EnsureIgnored makes sure the project's .gitignore covers the state file at
// statePath. Paths outside projectDir are left alone. It is idempotent; the
// .gitignore is created when missing.
func EnsureIgnored(projectDir, statePath string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	rel, err := filepath.Rel(projectDir, statePath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	rel = filepath.ToSlash(rel)

	gitignorePath := filepath.Join(projectDir, ".gitignore")
	covered, err := isIgnored(gitignorePath, rel)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if covered {
		return nil
	}
	return appendToGitignore(gitignorePath, rel)
}

// isIgnored reports whether any line of the .gitignore at path covers rel.
func isIgnored(path, rel string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if coversPath(line, rel) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// coversPath checks if a gitignore line names rel, its file name, or one of
// its parent directories. Negations and globs other than a trailing "*"
// are not interpreted.
func coversPath(line, rel string) bool {
	if strings.HasPrefix(line, "!") {
		return false
	}
	anchored := strings.HasPrefix(line, "/")
	pattern := strings.TrimPrefix(line, "/")
	for _, suffix := range []string{"/**/*", "/**", "/*", "/"} {
		if strings.HasSuffix(pattern, suffix) {
			pattern = strings.TrimSuffix(pattern, suffix)
			break
		}
	}
	if pattern == "" {
		return false
	}

	if pattern == rel {
		return true
	}
	if !anchored && !strings.Contains(pattern, "/") && pattern == path.Base(rel) {
		return true
	}
	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		if pattern == dir {
			return true
		}
		if !anchored && !strings.Contains(pattern, "/") && pattern == path.Base(dir) {
			return true
		}
	}
	return false
}

// appendToGitignore appends pattern, separated from existing content by a
// blank line.
func appendToGitignore(path, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	var toWrite string
	if len(content) == 0 {
		toWrite = gitignoreComment + "\n" + pattern + "\n"
	} else {
		if content[len(content)-1] != '\n' {
			toWrite = "\n"
		}
		toWrite += "\n" + gitignoreComment + "\n" + pattern + "\n"
	}

	_, err = file.WriteString(toWrite)
	return err
}
