package db

import (
	"context"
	"testing"
)

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := NewPool(context.Background(), PoolConfig{URL: "postgres://%zz"})
	if err == nil {
		t.Fatal("expected error for malformed database url")
	}
}
