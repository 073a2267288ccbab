package services

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"taskboard-service/logging"
)

// LoadBlackList reads the forbidden-password file at filePath.
func LoadBlackList(filePath string) (map[string]bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open password blacklist: %w", err)
	}
	defer file.Close()

	blackList, skipped, err := parseBlackList(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read password blacklist %s: %w", filePath, err)
	}
	logging.Logger.Infof("Event ID: BLACKLIST_LOADED, Description: Loaded %d passwords from %s, skipped %d lines", len(blackList), filePath, skipped)
	return blackList, nil
}

// parseBlackList takes one password per line. Blank lines, # comments and
// entries that could never pass the length checks are counted as skipped.
func parseBlackList(r io.Reader) (map[string]bool, int, error) {
	blackList := make(map[string]bool)
	skipped := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			skipped++
		case len(line) < minPasswordLength || len(line) > maxPasswordBytes:
			logging.Logger.Debugf("Event ID: BLACKLIST_ENTRY_SKIPPED, Description: Entry of %d bytes is outside the allowed password length", len(line))
			skipped++
		default:
			blackList[line] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}
	return blackList, skipped, nil
}
