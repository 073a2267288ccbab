package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"taskboard-service/repositories"
)

const (
	idCharset      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength       = 5
	defaultIDTries = 16
)

// IDGenerator hands out short alphanumeric primary keys.
type IDGenerator struct {
	MaxAttempts int

	rnd *rand.Rand
}

// NewIDGenerator seeds a locked source, so one generator may be shared by
// concurrent requests.
func NewIDGenerator() *IDGenerator {
	src := &rand.LockedSource{}
	src.Seed(uint64(time.Now().UnixNano()))
	return &IDGenerator{MaxAttempts: defaultIDTries, rnd: rand.New(src)}
}

func (g *IDGenerator) draw() string {
	b := make([]byte, idLength)
	for i := range b {
		b[i] = idCharset[g.rnd.Intn(len(idCharset))]
	}
	return string(b)
}

// New draws ids until checker reports one as unused.
func (g *IDGenerator) New(ctx context.Context, checker repositories.IDChecker) (string, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = defaultIDTries
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id := g.draw()
		taken, err := checker.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check id %s: %w", id, err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free id after %d attempts", attempts)
}
